package lisprt

// Kind identifies which variant a Word encodes.
type Kind uint8

const (
	KindInteger Kind = iota
	KindBoolean
	KindPair
	KindNil
	KindVector
	KindUnknown
)

const (
	IntMask  Word = 0b11 // 00000011
	IntTag   Word = 0b00
	IntShift      = 2

	BoolMask  Word = 0b1111111 // 01111111
	BoolTag   Word = 0b0011111
	BoolShift      = 7

	PairMask Word = 0b111 // 00000111
	PairTag  Word = 0b010

	NilMask Word = 0b11111111 // 11111111
	NilTag  Word = 0b11111111

	VectorMask Word = 0b111 // 00000111
	VectorTag  Word = 0b101
)

// WordSize is the width in bytes of one heap word.
const WordSize = 8

var kindNames = [...]string{
	KindInteger: "integer",
	KindBoolean: "boolean",
	KindPair:    "pair",
	KindNil:     "nil",
	KindVector:  "vector",
	KindUnknown: "unknown",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Classify returns the kind encoded in the low bits of w.
//
// The patterns overlap under naive comparison, so the checks run in a fixed
// order: integer, boolean, pair, nil, vector. Anything else is KindUnknown.
func Classify(w Word) Kind {
	switch {
	case w&IntMask == IntTag:
		return KindInteger
	case w&BoolMask == BoolTag:
		return KindBoolean
	case w&PairMask == PairTag:
		return KindPair
	case w&NilMask == NilTag:
		return KindNil
	case w&VectorMask == VectorTag:
		return KindVector
	default:
		return KindUnknown
	}
}

// IsHeap reports whether k refers to heap-resident data.
func (k Kind) IsHeap() bool {
	return k == KindPair || k == KindVector
}
