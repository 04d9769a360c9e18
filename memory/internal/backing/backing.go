// Package backing acquires and releases the single contiguous region a memory.Allocator carves
// its blocks from.
package backing

import (
	"github.com/cockroachdb/errors"
)

// ErrOffHeapUnsupported is returned by Acquire when an off-heap region is requested on a platform
// without anonymous memory mappings.
var ErrOffHeapUnsupported = errors.New("off-heap regions are not supported on this platform")

// Region is a zero-initialized byte region of fixed size.
type Region struct {
	data    []byte
	offHeap bool
}

// Acquire returns a zeroed region of size bytes. When offHeap is true the region is an anonymous
// private mapping outside of the Go heap, which the garbage collector never scans.
func Acquire(size int, offHeap bool) (*Region, error) {
	if size <= 0 {
		return nil, errors.Newf("region size must be positive, got %d", size)
	}

	if !offHeap {
		return &Region{data: make([]byte, size)}, nil
	}

	data, err := mapRegion(size)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot map %d bytes", size)
	}
	return &Region{data: data, offHeap: true}, nil
}

// Bytes returns the whole region.
func (r *Region) Bytes() []byte { return r.data }

// Len returns the size of the region in bytes.
func (r *Region) Len() int { return len(r.data) }

// OffHeap reports whether the region lives outside of the Go heap.
func (r *Region) OffHeap() bool { return r.offHeap }

// Release zeroes the region and hands it back to its source. The region must not be used afterwards.
func (r *Region) Release() error {
	if r.data == nil {
		return errors.New("region has already been released")
	}

	clear(r.data)
	data := r.data
	r.data = nil

	if r.offHeap {
		return unmapRegion(data)
	}
	return nil
}
