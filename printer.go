package lisprt

import (
	"fmt"
	"io"

	"github.com/delaneyj/toolbelt/bytebufferpool"
)

// DefaultMaxDepth bounds how many heap levels the printer descends.
const DefaultMaxDepth = 1 << 16

type frameOp uint8

const (
	opWord  frameOp = iota // render word at depth
	opText                 // write text
	opLeave                // word's address is no longer an ancestor
)

type frame struct {
	op    frameOp
	word  Word
	text  string
	depth int
}

type textSink interface {
	Write(p []byte) (int, error)
	WriteString(s string) (int, error)
}

// Printer renders words, reading pair and vector bodies from a heap.
// The heap is never written.
type Printer struct {
	heap     *Heap
	maxDepth int
}

// NewPrinter returns a printer over h. h may be nil when only immediate
// words will be rendered. maxDepth <= 0 selects DefaultMaxDepth.
func NewPrinter(h *Heap, maxDepth int) *Printer {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Printer{heap: h, maxDepth: maxDepth}
}

// Render returns the text of w.
func (p *Printer) Render(w Word) (string, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := p.write(buf, w); err != nil {
		return "", err
	}
	return string(buf.Bytes()), nil
}

// Print writes the text of w to out and returns w unchanged. Nothing is
// written when the heap cannot be read.
func (p *Printer) Print(out io.Writer, w Word) (Word, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := p.write(buf, w); err != nil {
		return w, err
	}
	if _, err := out.Write(buf.Bytes()); err != nil {
		return w, err
	}
	return w, nil
}

// Render returns the text of w using a default printer over h.
func Render(h *Heap, w Word) (string, error) {
	return NewPrinter(h, 0).Render(w)
}

// Print writes the text of w to out using a default printer over h.
func Print(out io.Writer, h *Heap, w Word) (Word, error) {
	return NewPrinter(h, 0).Print(out, w)
}

// write walks w with an explicit stack. Addresses of the pairs and vectors
// currently being printed are kept in an ancestor set, so shared cells print
// every time they are reached while a cell that contains itself is reported
// as ErrCycle.
func (p *Printer) write(sink textSink, w Word) error {
	stack := getFrameSlice()
	ancestors := getAncestorSet()
	defer func() {
		putFrameSlice(stack)
		putAncestorSet(ancestors)
	}()

	var scratch [32]byte
	stack = append(stack, frame{op: opWord, word: w})
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch f.op {
		case opText:
			sink.WriteString(f.text)
			continue
		case opLeave:
			delete(ancestors, uint64(f.word))
			continue
		}

		v := Decode(f.word)
		if !v.Kind.IsHeap() {
			sink.Write(appendImmediate(scratch[:0], v))
			continue
		}
		if p.heap == nil {
			return fmt.Errorf("%w: %s at %#x", ErrNoHeap, v.Kind, v.Addr)
		}
		if f.depth >= p.maxDepth {
			return fmt.Errorf("%w: limit %d", ErrTooDeep, p.maxDepth)
		}
		if _, ok := ancestors[v.Addr]; ok {
			return fmt.Errorf("%w: %s at %#x contains itself", ErrCycle, v.Kind, v.Addr)
		}

		switch v.Kind {
		case KindPair:
			head, tail, err := p.heap.ReadPair(v.Addr)
			if err != nil {
				return fmt.Errorf("read pair: %w", err)
			}
			ancestors[v.Addr] = struct{}{}
			sink.WriteString("(pair ")
			stack = append(stack,
				frame{op: opLeave, word: Word(v.Addr)},
				frame{op: opText, text: ")"},
				frame{op: opWord, word: tail, depth: f.depth + 1},
				frame{op: opText, text: " "},
				frame{op: opWord, word: head, depth: f.depth + 1},
			)
		case KindVector:
			n, err := p.heap.VectorLen(v.Addr)
			if err != nil {
				return fmt.Errorf("read vector: %w", err)
			}
			ancestors[v.Addr] = struct{}{}
			sink.WriteString("[")
			stack = append(stack,
				frame{op: opLeave, word: Word(v.Addr)},
				frame{op: opText, text: "]"},
			)
			for i := n - 1; i >= 0; i-- {
				stack = append(stack, frame{op: opWord, word: p.heap.vectorElem(v.Addr, i), depth: f.depth + 1})
				if i > 0 {
					stack = append(stack, frame{op: opText, text: " "})
				}
			}
		}
	}
	return nil
}
