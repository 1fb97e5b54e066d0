package lisprt

import (
	"fmt"
	"strconv"
)

// Word is one 64-bit tagged value as produced by generated code.
type Word uint64

// Nil is the encoded empty list.
const Nil Word = NilTag

// Range of integers that survive the tag shift.
const (
	MaxInt int64 = 1<<(63-IntShift) - 1
	MinInt int64 = -1 << (63 - IntShift)
)

// Value is a decoded Word. Only the fields relevant to Kind are set.
type Value struct {
	Kind Kind
	Int  int64
	Bool bool
	Addr uint64
	Raw  Word
}

// Decode classifies w and extracts its payload.
func Decode(w Word) Value {
	v := Value{Kind: Classify(w), Raw: w}
	switch v.Kind {
	case KindInteger:
		v.Int = w.Int()
	case KindBoolean:
		v.Bool = w.Bool()
	case KindPair, KindVector:
		v.Addr = w.Addr()
	}
	return v
}

// Int returns the signed integer payload. The result is meaningless unless
// Classify(w) == KindInteger.
func (w Word) Int() int64 {
	return int64(w) >> IntShift
}

// Bool returns the boolean payload: any bit above the tag means true.
func (w Word) Bool() bool {
	return w>>BoolShift != 0
}

// Addr recovers the raw heap address of a pair or vector word.
func (w Word) Addr() uint64 {
	switch Classify(w) {
	case KindPair:
		return uint64(w - PairTag)
	case KindVector:
		return uint64(w - VectorTag)
	default:
		return 0
	}
}

// Raw returns the unsigned bit pattern of w.
func (w Word) Raw() uint64 {
	return uint64(w)
}

// Kind is shorthand for Classify(w).
func (w Word) Kind() Kind {
	return Classify(w)
}

// String renders immediate words. Heap words render as their kind and address
// since there is no heap to read from.
func (w Word) String() string {
	v := Decode(w)
	switch v.Kind {
	case KindPair, KindVector:
		return fmt.Sprintf("<%s @%#x>", v.Kind, v.Addr)
	default:
		buf := appendImmediate(nil, v)
		return string(buf)
	}
}

// FitsInt reports whether n can be encoded without losing high bits.
func FitsInt(n int64) bool {
	return n >= MinInt && n <= MaxInt
}

// EncodeInt encodes n as an integer word. High bits outside the range
// reported by FitsInt are dropped.
func EncodeInt(n int64) Word {
	return Word(uint64(n)<<IntShift) | IntTag
}

// EncodeBool encodes b as a boolean word.
func EncodeBool(b bool) Word {
	if b {
		return 1<<BoolShift | BoolTag
	}
	return BoolTag
}

// EncodePair tags a raw heap address as a pair.
func EncodePair(addr uint64) (Word, error) {
	if addr%WordSize != 0 {
		return 0, fmt.Errorf("%w: pair address %#x", ErrMisaligned, addr)
	}
	return Word(addr) + PairTag, nil
}

// EncodeVector tags a raw heap address as a vector.
func EncodeVector(addr uint64) (Word, error) {
	if addr%WordSize != 0 {
		return 0, fmt.Errorf("%w: vector address %#x", ErrMisaligned, addr)
	}
	return Word(addr) + VectorTag, nil
}

// ParseWord parses a raw word written in decimal or with a 0x/0b/0o prefix.
func ParseWord(s string) (Word, error) {
	u, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("parse word %q: %w", s, err)
	}
	return Word(u), nil
}

// appendImmediate appends the text of a non-heap value.
func appendImmediate(dst []byte, v Value) []byte {
	switch v.Kind {
	case KindInteger:
		return strconv.AppendInt(dst, v.Int, 10)
	case KindBoolean:
		if v.Bool {
			return append(dst, "true"...)
		}
		return append(dst, "false"...)
	case KindNil:
		return append(dst, "()"...)
	default:
		dst = append(dst, badValuePrefix...)
		return strconv.AppendUint(dst, uint64(v.Raw), 10)
	}
}

const badValuePrefix = "BAD VALUE: "
