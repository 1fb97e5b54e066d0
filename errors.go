package lisprt

import "errors"

var (
	ErrHeapExhausted = errors.New("lisprt: heap exhausted")
	ErrOutOfBounds   = errors.New("lisprt: heap read out of bounds")
	ErrMisaligned    = errors.New("lisprt: misaligned heap address")
	ErrNoHeap        = errors.New("lisprt: heap value without a heap")
	ErrCycle         = errors.New("lisprt: cyclic heap structure")
	ErrTooDeep       = errors.New("lisprt: heap structure nested too deeply")
)
