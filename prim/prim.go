// Package prim implements the language primitives on encoded words. Type
// errors and out-of-range results are reported as stuck states.
package prim

import (
	"fmt"

	"github.com/starfederation/lisprt"
)

func stuck(op, format string, args ...any) error {
	return lisprt.Fail(op + ": " + fmt.Sprintf(format, args...))
}

func intArg(op string, w lisprt.Word) (int64, error) {
	if w.Kind() != lisprt.KindInteger {
		return 0, stuck(op, "expected integer, got %s", w.Kind())
	}
	return w.Int(), nil
}

func intResult(op string, n int64) (lisprt.Word, error) {
	if !lisprt.FitsInt(n) {
		return 0, stuck(op, "overflow")
	}
	return lisprt.EncodeInt(n), nil
}

func Add1(x lisprt.Word) (lisprt.Word, error) {
	n, err := intArg("add1", x)
	if err != nil {
		return 0, err
	}
	return intResult("add1", n+1)
}

func Sub1(x lisprt.Word) (lisprt.Word, error) {
	n, err := intArg("sub1", x)
	if err != nil {
		return 0, err
	}
	return intResult("sub1", n-1)
}

// Plus adds two integers. Both operands are at most 62 bits wide, so the
// int64 sum cannot wrap before the range check.
func Plus(a, b lisprt.Word) (lisprt.Word, error) {
	x, err := intArg("+", a)
	if err != nil {
		return 0, err
	}
	y, err := intArg("+", b)
	if err != nil {
		return 0, err
	}
	return intResult("+", x+y)
}

func Minus(a, b lisprt.Word) (lisprt.Word, error) {
	x, err := intArg("-", a)
	if err != nil {
		return 0, err
	}
	y, err := intArg("-", b)
	if err != nil {
		return 0, err
	}
	return intResult("-", x-y)
}

func Lt(a, b lisprt.Word) (lisprt.Word, error) {
	x, err := intArg("<", a)
	if err != nil {
		return 0, err
	}
	y, err := intArg("<", b)
	if err != nil {
		return 0, err
	}
	return lisprt.EncodeBool(x < y), nil
}

// Eq compares words bit for bit, so heap values are equal only when they are
// the same cell.
func Eq(a, b lisprt.Word) lisprt.Word {
	return lisprt.EncodeBool(a == b)
}

func IsZero(x lisprt.Word) lisprt.Word {
	return lisprt.EncodeBool(x == lisprt.EncodeInt(0))
}

func IsNum(x lisprt.Word) lisprt.Word {
	return lisprt.EncodeBool(x.Kind() == lisprt.KindInteger)
}

// Not is true only for false itself; every other value counts as true.
func Not(x lisprt.Word) lisprt.Word {
	return lisprt.EncodeBool(x == lisprt.EncodeBool(false))
}

func IsPair(x lisprt.Word) lisprt.Word {
	return lisprt.EncodeBool(x.Kind() == lisprt.KindPair)
}

func IsVector(x lisprt.Word) lisprt.Word {
	return lisprt.EncodeBool(x.Kind() == lisprt.KindVector)
}

// Pair allocates a new pair cell.
func Pair(h *lisprt.Heap, head, tail lisprt.Word) (lisprt.Word, error) {
	w, err := h.AllocPair(head, tail)
	if err != nil {
		return 0, stuck("pair", "%v", err)
	}
	return w, nil
}

func Left(h *lisprt.Heap, p lisprt.Word) (lisprt.Word, error) {
	head, _, err := pairArg(h, "left", p)
	return head, err
}

func Right(h *lisprt.Heap, p lisprt.Word) (lisprt.Word, error) {
	_, tail, err := pairArg(h, "right", p)
	return tail, err
}

func pairArg(h *lisprt.Heap, op string, p lisprt.Word) (lisprt.Word, lisprt.Word, error) {
	if p.Kind() != lisprt.KindPair {
		return 0, 0, stuck(op, "expected pair, got %s", p.Kind())
	}
	head, tail, err := h.ReadPair(p.Addr())
	if err != nil {
		return 0, 0, stuck(op, "%v", err)
	}
	return head, tail, nil
}

// MakeVector allocates a vector of length copies of fill.
func MakeVector(h *lisprt.Heap, length, fill lisprt.Word) (lisprt.Word, error) {
	n, err := intArg("vector", length)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, stuck("vector", "negative length %d", n)
	}
	if n > int64(h.Size()/lisprt.WordSize) {
		return 0, stuck("vector", "length %d does not fit in the heap", n)
	}
	elems := make([]lisprt.Word, n)
	for i := range elems {
		elems[i] = fill
	}
	w, err := h.AllocVector(elems)
	if err != nil {
		return 0, stuck("vector", "%v", err)
	}
	return w, nil
}

func VectorLength(h *lisprt.Heap, v lisprt.Word) (lisprt.Word, error) {
	if v.Kind() != lisprt.KindVector {
		return 0, stuck("vector-length", "expected vector, got %s", v.Kind())
	}
	n, err := h.VectorLen(v.Addr())
	if err != nil {
		return 0, stuck("vector-length", "%v", err)
	}
	return lisprt.EncodeInt(int64(n)), nil
}

func VectorGet(h *lisprt.Heap, v, index lisprt.Word) (lisprt.Word, error) {
	if v.Kind() != lisprt.KindVector {
		return 0, stuck("vector-get", "expected vector, got %s", v.Kind())
	}
	i, err := intArg("vector-get", index)
	if err != nil {
		return 0, err
	}
	n, err := h.VectorLen(v.Addr())
	if err != nil {
		return 0, stuck("vector-get", "%v", err)
	}
	if i < 0 || i >= int64(n) {
		return 0, stuck("vector-get", "index %d out of range [0, %d)", i, n)
	}
	return h.Load(v.Addr() + uint64(i+1)*lisprt.WordSize)
}
