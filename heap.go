package lisprt

import (
	"encoding/binary"
	"fmt"
)

const (
	// DefaultHeapSize is the size in bytes of the heap handed to an entry.
	DefaultHeapSize = 4096
	// DefaultHeapBase is the address of the first heap byte. Any 8-byte
	// aligned value keeps the tag bits clear.
	DefaultHeapBase uint64 = 0x10000
)

// Heap is a fixed-size arena of little-endian 64-bit words. Cells are
// bump-allocated, written once and never freed.
//
// Layout matches what generated code writes:
//
//	pair:   [head][tail]
//	vector: [length][e0][e1]...[e(length-1)]
type Heap struct {
	base uint64
	buf  []byte
	used int
}

// NewHeap allocates a heap of size bytes at DefaultHeapBase.
func NewHeap(size int) *Heap {
	h, err := NewHeapAt(DefaultHeapBase, size)
	if err != nil {
		panic(err)
	}
	return h
}

// NewHeapAt allocates a heap of size bytes whose first byte lives at base.
// size is rounded down to a whole number of words.
func NewHeapAt(base uint64, size int) (*Heap, error) {
	if base%WordSize != 0 {
		return nil, fmt.Errorf("%w: heap base %#x", ErrMisaligned, base)
	}
	if size < 0 {
		return nil, fmt.Errorf("negative heap size: %d", size)
	}
	size -= size % WordSize
	if base+uint64(size) < base {
		return nil, fmt.Errorf("heap of %d bytes at %#x overflows the address space", size, base)
	}
	return &Heap{base: base, buf: make([]byte, size)}, nil
}

// RestoreHeap rebuilds a heap from a snapshot of its used bytes.
func RestoreHeap(base uint64, size int, used []byte) (*Heap, error) {
	h, err := NewHeapAt(base, size)
	if err != nil {
		return nil, err
	}
	if err := h.Preload(used); err != nil {
		return nil, err
	}
	return h, nil
}

// Preload copies a snapshot of allocated bytes into an empty heap.
func (h *Heap) Preload(used []byte) error {
	if h.used != 0 {
		return fmt.Errorf("preload into a heap with %d bytes allocated", h.used)
	}
	if len(used) > len(h.buf) {
		return fmt.Errorf("%w: snapshot of %d bytes exceeds heap of %d", ErrHeapExhausted, len(used), len(h.buf))
	}
	if len(used)%WordSize != 0 {
		return fmt.Errorf("%w: snapshot length %d", ErrMisaligned, len(used))
	}
	h.used = copy(h.buf, used)
	return nil
}

// Base returns the address of the first heap byte.
func (h *Heap) Base() uint64 { return h.base }

// Size returns the heap capacity in bytes.
func (h *Heap) Size() int { return len(h.buf) }

// Used returns the number of allocated bytes.
func (h *Heap) Used() int { return h.used }

// Bytes returns the allocated portion of the heap.
func (h *Heap) Bytes() []byte { return h.buf[:h.used] }

func (h *Heap) alloc(words int) (uint64, error) {
	n := words * WordSize
	if words < 0 || n > len(h.buf)-h.used {
		return 0, fmt.Errorf("%w: need %d bytes, %d free", ErrHeapExhausted, n, len(h.buf)-h.used)
	}
	addr := h.base + uint64(h.used)
	h.used += n
	return addr, nil
}

func (h *Heap) store(addr uint64, w Word) {
	off := addr - h.base
	binary.LittleEndian.PutUint64(h.buf[off:off+WordSize], uint64(w))
}

// AllocPair writes a (head, tail) cell and returns its tagged word.
func (h *Heap) AllocPair(head, tail Word) (Word, error) {
	addr, err := h.alloc(2)
	if err != nil {
		return 0, err
	}
	h.store(addr, head)
	h.store(addr+WordSize, tail)
	return EncodePair(addr)
}

// AllocVector writes a length-prefixed vector and returns its tagged word.
func (h *Heap) AllocVector(elems []Word) (Word, error) {
	addr, err := h.alloc(len(elems) + 1)
	if err != nil {
		return 0, err
	}
	h.store(addr, Word(len(elems)))
	for i, e := range elems {
		h.store(addr+uint64(i+1)*WordSize, e)
	}
	return EncodeVector(addr)
}

// offset validates that n words starting at addr lie inside the heap and
// returns the byte offset of addr.
func (h *Heap) offset(addr uint64, n uint64) (int, error) {
	if addr%WordSize != 0 {
		return 0, fmt.Errorf("%w: %#x", ErrMisaligned, addr)
	}
	if addr < h.base || addr-h.base > uint64(len(h.buf)) {
		return 0, fmt.Errorf("%w: address %#x outside [%#x, %#x)", ErrOutOfBounds, addr, h.base, h.base+uint64(len(h.buf)))
	}
	off := addr - h.base
	if n > (uint64(len(h.buf))-off)/WordSize {
		return 0, fmt.Errorf("%w: %d words at %#x", ErrOutOfBounds, n, addr)
	}
	return int(off), nil
}

// Load reads one word at addr.
func (h *Heap) Load(addr uint64) (Word, error) {
	off, err := h.offset(addr, 1)
	if err != nil {
		return 0, err
	}
	return Word(binary.LittleEndian.Uint64(h.buf[off : off+WordSize])), nil
}

// ReadPair reads the head and tail of the pair cell at addr.
func (h *Heap) ReadPair(addr uint64) (Word, Word, error) {
	off, err := h.offset(addr, 2)
	if err != nil {
		return 0, 0, err
	}
	head := binary.LittleEndian.Uint64(h.buf[off : off+WordSize])
	tail := binary.LittleEndian.Uint64(h.buf[off+WordSize : off+2*WordSize])
	return Word(head), Word(tail), nil
}

// VectorLen reads the length word of the vector at addr and checks that all
// of its elements lie inside the heap.
func (h *Heap) VectorLen(addr uint64) (int, error) {
	length, err := h.Load(addr)
	if err != nil {
		return 0, err
	}
	n := uint64(length)
	if n >= uint64(len(h.buf)) {
		return 0, fmt.Errorf("%w: vector at %#x claims %d elements", ErrOutOfBounds, addr, n)
	}
	if _, err := h.offset(addr, 1+n); err != nil {
		return 0, fmt.Errorf("vector at %#x with %d elements: %w", addr, n, err)
	}
	return int(length), nil
}

// ReadVector returns a copy of the elements of the vector at addr.
func (h *Heap) ReadVector(addr uint64) ([]Word, error) {
	n, err := h.VectorLen(addr)
	if err != nil {
		return nil, err
	}
	out := make([]Word, n)
	off := int(addr-h.base) + WordSize
	for i := range out {
		p := off + i*WordSize
		out[i] = Word(binary.LittleEndian.Uint64(h.buf[p : p+WordSize]))
	}
	return out, nil
}

// vectorElem reads element i of a vector whose length was already checked.
func (h *Heap) vectorElem(addr uint64, i int) Word {
	p := int(addr-h.base) + (i+1)*WordSize
	return Word(binary.LittleEndian.Uint64(h.buf[p : p+WordSize]))
}
