// Package image stores the result of one entry computation, heap included,
// so a run can be replayed without the code generator.
package image

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/starfederation/lisprt"
	"github.com/zeebo/xxh3"
)

// Version is written into every image and checked on decode.
const Version = 1

var (
	ErrVersion  = errors.New("image: unsupported version")
	ErrChecksum = errors.New("image: heap checksum mismatch")
)

// Image is a heap snapshot plus the word the entry returned. When Failed is
// set the entry got stuck with description Stuck and Root is unused.
type Image struct {
	Version int    `cbor:"1,keyasint"`
	Base    uint64 `cbor:"2,keyasint"`
	Size    int    `cbor:"3,keyasint"`
	Heap    []byte `cbor:"4,keyasint,omitempty"`
	Root    uint64 `cbor:"5,keyasint"`
	Failed  bool   `cbor:"6,keyasint,omitempty"`
	Stuck   string `cbor:"7,keyasint,omitempty"`
	Sum     uint64 `cbor:"8,keyasint"`
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("image: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Capture snapshots h with root as the result.
func Capture(h *lisprt.Heap, root lisprt.Word) *Image {
	heap := append([]byte{}, h.Bytes()...)
	return &Image{
		Version: Version,
		Base:    h.Base(),
		Size:    h.Size(),
		Heap:    heap,
		Root:    uint64(root),
		Sum:     xxh3.Hash(heap),
	}
}

// CaptureStuck snapshots h for an entry that failed with description.
func CaptureStuck(h *lisprt.Heap, description string) *Image {
	img := Capture(h, 0)
	img.Failed = true
	img.Stuck = description
	return img
}

// FromJSON builds an image from a JSON literal, see lisprt.FromJSON. size <= 0
// selects lisprt.DefaultHeapSize.
func FromJSON(data []byte, size int) (*Image, error) {
	if size <= 0 {
		size = lisprt.DefaultHeapSize
	}
	h, err := lisprt.NewHeapAt(lisprt.DefaultHeapBase, size)
	if err != nil {
		return nil, err
	}
	root, err := lisprt.FromJSON(h, data)
	if err != nil {
		if se, ok := lisprt.AsStuck(err); ok {
			return CaptureStuck(h, se.Description), nil
		}
		return nil, err
	}
	return Capture(h, root), nil
}

// Marshal serializes img to canonical CBOR.
func Marshal(img *Image) ([]byte, error) {
	return cborEncMode.Marshal(img)
}

// Unmarshal deserializes an image from CBOR bytes.
func Unmarshal(data []byte) (*Image, error) {
	var img Image
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("image: unmarshal: %w", err)
	}
	if img.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, img.Version)
	}
	if sum := xxh3.Hash(img.Heap); sum != img.Sum {
		return nil, fmt.Errorf("%w: have %#x want %#x", ErrChecksum, sum, img.Sum)
	}
	return &img, nil
}

// Config returns a driver config whose heap matches the snapshot.
func (img *Image) Config() lisprt.Config {
	return lisprt.Config{HeapBase: img.Base, HeapSize: img.Size}
}

// Entry returns an entry computation that restores the snapshot into the
// driver's heap and yields the captured result.
func (img *Image) Entry() lisprt.Entry {
	return func(rt *lisprt.Runtime) (lisprt.Word, error) {
		h := rt.Heap()
		if h.Base() != img.Base || h.Size() != img.Size {
			return 0, fmt.Errorf("image: heap %d bytes at %#x, driver has %d bytes at %#x",
				img.Size, img.Base, h.Size(), h.Base())
		}
		if err := h.Preload(img.Heap); err != nil {
			return 0, fmt.Errorf("image: %w", err)
		}
		if img.Failed {
			return 0, rt.Fail(img.Stuck)
		}
		return lisprt.Word(img.Root), nil
	}
}
