package lisprt

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strconv"
	"testing"
)

func mustPair(t testing.TB, h *Heap, head, tail Word) Word {
	t.Helper()
	w, err := h.AllocPair(head, tail)
	if err != nil {
		t.Fatalf("AllocPair: %v", err)
	}
	return w
}

func mustVector(t testing.TB, h *Heap, elems ...Word) Word {
	t.Helper()
	w, err := h.AllocVector(elems)
	if err != nil {
		t.Fatalf("AllocVector: %v", err)
	}
	return w
}

func mustRender(t testing.TB, h *Heap, w Word) string {
	t.Helper()
	got, err := Render(h, w)
	if err != nil {
		t.Fatalf("Render(%#x): %v", uint64(w), err)
	}
	return got
}

func TestRenderIntegers(t *testing.T) {
	for _, n := range []int64{0, 1, -1, 42, -42, 1 << 40, MaxInt, MinInt} {
		if got, want := mustRender(t, nil, EncodeInt(n)), strconv.FormatInt(n, 10); got != want {
			t.Fatalf("render %d = %q, want %q", n, got, want)
		}
	}
}

func TestRenderImmediates(t *testing.T) {
	cases := []struct {
		word Word
		want string
	}{
		{EncodeBool(true), "true"},
		{EncodeBool(false), "false"},
		{Nil, "()"},
		{1, "BAD VALUE: 1"},
		{0xFFFFFFFFFFFFFF7F, "BAD VALUE: " + strconv.FormatUint(0xFFFFFFFFFFFFFF7F, 10)},
	}
	for _, tc := range cases {
		if got := mustRender(t, nil, tc.word); got != tc.want {
			t.Fatalf("render %#x = %q, want %q", uint64(tc.word), got, tc.want)
		}
	}
}

func TestRenderHeapValues(t *testing.T) {
	h := NewHeap(DefaultHeapSize)
	one, two, three := EncodeInt(1), EncodeInt(2), EncodeInt(3)

	cases := []struct {
		name string
		word Word
		want string
	}{
		{"pair", mustPair(t, h, one, two), "(pair 1 2)"},
		{"nested pair", mustPair(t, h, one, mustPair(t, h, two, three)), "(pair 1 (pair 2 3))"},
		{"empty vector", mustVector(t, h), "[]"},
		{"vector", mustVector(t, h, one, two, three), "[1 2 3]"},
		{"single element", mustVector(t, h, Nil), "[()]"},
		{"nested vector", mustVector(t, h, mustVector(t, h), mustVector(t, h, one)), "[[] [1]]"},
		{"pair with bad value", mustPair(t, h, 0b011, EncodeBool(true)), "(pair BAD VALUE: 3 true)"},
		{"vector with bad value", mustVector(t, h, one, 0b110, three), "[1 BAD VALUE: 6 3]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := mustRender(t, h, tc.word); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRenderSharedCellPrintsTwice(t *testing.T) {
	h := NewHeap(DefaultHeapSize)
	shared := mustPair(t, h, EncodeInt(7), Nil)
	root := mustVector(t, h, shared, shared)
	if got, want := mustRender(t, h, root), "[(pair 7 ()) (pair 7 ())]"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestPrintIsIdentity(t *testing.T) {
	h := NewHeap(DefaultHeapSize)
	words := []Word{
		EncodeInt(-9),
		EncodeBool(true),
		Nil,
		mustPair(t, h, EncodeInt(1), EncodeInt(2)),
		mustVector(t, h, EncodeInt(1)),
		0b111,
	}
	for _, w := range words {
		var out bytes.Buffer
		got, err := Print(&out, h, w)
		if err != nil {
			t.Fatalf("Print(%#x): %v", uint64(w), err)
		}
		if got != w {
			t.Fatalf("Print returned %#x, want %#x", uint64(got), uint64(w))
		}
		if out.String() != mustRender(t, h, w) {
			t.Fatalf("Print wrote %q, Render gives %q", out.String(), mustRender(t, h, w))
		}
	}
}

func TestPrintDoesNotMutateHeap(t *testing.T) {
	h := NewHeap(DefaultHeapSize)
	root := mustPair(t, h, mustVector(t, h, EncodeInt(1), EncodeInt(2)), Nil)
	before := append([]byte{}, h.Bytes()...)
	if _, err := Print(&bytes.Buffer{}, h, root); err != nil {
		t.Fatalf("Print: %v", err)
	}
	if !bytes.Equal(before, h.Bytes()) {
		t.Fatalf("heap changed while printing")
	}
}

func TestRenderHeapFaults(t *testing.T) {
	h := NewHeap(64)
	pair := mustPair(t, h, EncodeInt(1), Nil)

	t.Run("no heap", func(t *testing.T) {
		if _, err := Render(nil, pair); !errors.Is(err, ErrNoHeap) {
			t.Fatalf("expected ErrNoHeap, got %v", err)
		}
	})
	t.Run("outside heap", func(t *testing.T) {
		w, _ := EncodePair(DefaultHeapBase + 4096)
		if _, err := Render(h, w); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("expected ErrOutOfBounds, got %v", err)
		}
	})
	t.Run("below heap", func(t *testing.T) {
		w, _ := EncodeVector(DefaultHeapBase - 8)
		if _, err := Render(h, w); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("expected ErrOutOfBounds, got %v", err)
		}
	})
	t.Run("pair straddles end", func(t *testing.T) {
		w, _ := EncodePair(DefaultHeapBase + 56)
		if _, err := Render(h, w); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("expected ErrOutOfBounds, got %v", err)
		}
	})
	t.Run("nothing written on fault", func(t *testing.T) {
		var out bytes.Buffer
		w, _ := EncodePair(DefaultHeapBase + 4096)
		root := mustPair(t, h, EncodeInt(1), w)
		got, err := Print(&out, h, root)
		if err == nil {
			t.Fatalf("expected error")
		}
		if got != root {
			t.Fatalf("Print must return its argument even on error")
		}
		if out.Len() != 0 {
			t.Fatalf("unexpected partial output %q", out.String())
		}
	})
}

func TestRenderBogusVectorLength(t *testing.T) {
	snap := make([]byte, 16)
	binary.LittleEndian.PutUint64(snap, ^uint64(0))
	binary.LittleEndian.PutUint64(snap[8:], uint64(EncodeInt(1)))
	h, err := RestoreHeap(DefaultHeapBase, 64, snap)
	if err != nil {
		t.Fatalf("RestoreHeap: %v", err)
	}
	w, _ := EncodeVector(DefaultHeapBase)
	if _, err := Render(h, w); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
}

func TestRenderDetectsCycle(t *testing.T) {
	self, _ := EncodePair(DefaultHeapBase)
	snap := make([]byte, 16)
	binary.LittleEndian.PutUint64(snap, uint64(EncodeInt(1)))
	binary.LittleEndian.PutUint64(snap[8:], uint64(self))
	h, err := RestoreHeap(DefaultHeapBase, 64, snap)
	if err != nil {
		t.Fatalf("RestoreHeap: %v", err)
	}
	if _, err := Render(h, self); !errors.Is(err, ErrCycle) {
		t.Fatalf("expected ErrCycle, got %v", err)
	}
}

func TestRenderDepthLimit(t *testing.T) {
	h := NewHeap(DefaultHeapSize)
	inner := mustPair(t, h, EncodeInt(3), Nil)
	mid := mustPair(t, h, EncodeInt(2), inner)
	root := mustPair(t, h, EncodeInt(1), mid)

	if _, err := NewPrinter(h, 2).Render(root); !errors.Is(err, ErrTooDeep) {
		t.Fatalf("expected ErrTooDeep, got %v", err)
	}
	got, err := NewPrinter(h, 3).Render(root)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if want := "(pair 1 (pair 2 (pair 3 ())))"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenderDeepListWithinDefaultLimit(t *testing.T) {
	const depth = 5000
	h := NewHeap(depth * 2 * WordSize)
	list := Nil
	for i := depth; i > 0; i-- {
		list = mustPair(t, h, EncodeInt(int64(i)), list)
	}
	got := mustRender(t, h, list)
	if len(got) == 0 || got[:9] != "(pair 1 (" {
		t.Fatalf("unexpected prefix %q", got[:min(len(got), 20)])
	}
}

func TestWordString(t *testing.T) {
	if got := EncodeInt(12).String(); got != "12" {
		t.Fatalf("got %q", got)
	}
	w, _ := EncodeVector(0x10008)
	if got := w.String(); got != "<vector @0x10008>" {
		t.Fatalf("got %q", got)
	}
}

func BenchmarkRenderVector(b *testing.B) {
	h := NewHeap(DefaultHeapSize)
	elems := make([]Word, 64)
	for i := range elems {
		elems[i] = EncodeInt(int64(i))
	}
	vec := mustVector(b, h, elems...)
	root := mustPair(b, h, EncodeBool(true), vec)
	p := NewPrinter(h, 0)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.Render(root); err != nil {
			b.Fatal(err)
		}
	}
}
