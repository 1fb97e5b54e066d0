package lisprt

import "github.com/delaneyj/toolbelt"

var (
	framePool    = toolbelt.New(func() []frame { return make([]frame, 0, 32) })
	ancestorPool = toolbelt.New(func() map[uint64]struct{} { return make(map[uint64]struct{}, 16) })
)

func getFrameSlice() []frame {
	return framePool.Get()[:0]
}

func putFrameSlice(s []frame) {
	if s == nil {
		return
	}
	s = s[:0]
	framePool.Put(s)
}

func getAncestorSet() map[uint64]struct{} {
	return ancestorPool.Get()
}

func putAncestorSet(m map[uint64]struct{}) {
	if m == nil {
		return
	}
	clear(m)
	ancestorPool.Put(m)
}
