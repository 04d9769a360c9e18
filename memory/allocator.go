// Package memory implements a fixed-capacity pool allocator. Requests are rounded up into
// geometrically spaced size classes, released blocks are parked on a LIFO free list per class, and
// fresh blocks are bump-allocated from a single contiguous arena until it runs out.
//
// Blocks are identified by Ref, an offset into the arena. Use Bytes to view a block's memory. A Ref
// stays valid until it is passed to Deallocate, or until Clear or Destroy is called.
//
// An Allocator is not safe for concurrent use unless it was created with CreateSynchronized.
package memory

import (
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/dynamikos/dynamikos/memory/internal/backing"
	"github.com/dynamikos/dynamikos/memory/internal/utils"
	"github.com/dynamikos/dynamikos/memutils"
	"github.com/dynamikos/dynamikos/memutils/freelist"
	"github.com/dynamikos/dynamikos/memutils/sizeclass"
	"golang.org/x/exp/slog"
)

// Ref is the offset of an allocated block within the arena.
type Ref int

// NoRef is the Ref returned by failed allocations.
const NoRef Ref = -1

type sizeClass struct {
	size int
	free *freelist.Stack
}

// Allocator is a fixed-capacity size-class pool allocator.
type Allocator struct {
	mutex    utils.OptionalMutex
	logger   *slog.Logger
	observer Observer
	flags    CreateFlags

	// usedBytes is the sum of the class sizes of all outstanding blocks. Unless
	// CreateMonotonicCursor is set it is also the bump cursor.
	usedBytes       int
	cursor          int
	allocationCount int

	capacity int
	table    *sizeclass.Table
	classes  []sizeClass
	region   *backing.Region
	pool     []byte
	live     *swiss.Map[Ref, int]

	destroyed bool
}

type stateValidator struct {
	a *Allocator
}

func (v stateValidator) Validate() error {
	return v.a.validate()
}

func (a *Allocator) monotonicCursor() bool {
	return a.flags&(CreateMonotonicCursor|CreateTrackAllocations) != 0
}

func (a *Allocator) tracksAllocations() bool {
	return a.flags&CreateTrackAllocations != 0
}

func (a *Allocator) bumpOffset() int {
	if a.monotonicCursor() {
		return a.cursor
	}
	return a.usedBytes
}

func (a *Allocator) checkUsable() error {
	if a.destroyed {
		return memutils.ErrDestroyed
	}
	return nil
}

func (a *Allocator) outOfMemory(requested, classSize int) error {
	a.logger.Debug("Allocator::Allocate FAILED",
		slog.Int("Requested", requested),
		slog.Int("ClassSize", classSize),
		slog.Int("UsedBytes", a.usedBytes),
		slog.Int("Capacity", a.capacity),
	)

	if a.observer != nil {
		a.observer.OutOfMemory(requested, classSize, a.usedBytes, a.capacity)
	}

	if classSize == 0 {
		return errors.Wrapf(memutils.ErrOutOfMemory, "a request of %d bytes does not fit in the largest size class of %d bytes", requested, a.capacity)
	}
	return errors.Wrapf(memutils.ErrOutOfMemory, "a request of %d bytes needs a %d byte block, but %d of %d bytes are in use", requested, classSize, a.usedBytes, a.capacity)
}

// Allocate returns a block of at least size bytes. The outstanding byte count grows by the size of
// the block's class, not by size.
//
// The most recently released block of the class is reused if there is one; otherwise the block is
// bump-allocated from the arena. Allocate fails with memutils.ErrInvalidArgument if size is not
// positive and with memutils.ErrOutOfMemory if the block does not fit. A failed Allocate changes
// nothing.
func (a *Allocator) Allocate(size int) (Ref, error) {
	if a == nil {
		return NoRef, errors.Wrap(memutils.ErrInvalidArgument, "allocator is nil")
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	if err := a.checkUsable(); err != nil {
		return NoRef, err
	}

	if size <= 0 {
		return NoRef, errors.Wrapf(memutils.ErrInvalidArgument, "allocation size must be positive, got %d", size)
	}

	index, ok := a.table.Index(size)
	if !ok {
		return NoRef, a.outOfMemory(size, 0)
	}

	class := &a.classes[index]
	if a.usedBytes+class.size > a.capacity {
		return NoRef, a.outOfMemory(size, class.size)
	}

	offset, reused := class.free.Pop()
	if !reused {
		offset = a.bumpOffset()
		if offset+class.size > a.capacity {
			return NoRef, a.outOfMemory(size, class.size)
		}

		if a.monotonicCursor() {
			a.cursor += class.size
		}
	}

	a.usedBytes += class.size
	a.allocationCount++

	if a.live != nil {
		a.live.Put(Ref(offset), index)
	}

	memutils.DebugValidate(stateValidator{a})
	return Ref(offset), nil
}

// Deallocate releases the block at ref so that the next allocation of the same class can reuse it.
//
// size must be the size that was passed to Allocate for ref. A different size may resolve to
// another class and corrupt the accounting; this is only detected when the allocator was created
// with CreateTrackAllocations. Freeing more bytes than are outstanding fails with
// memutils.ErrInvalidFree.
//
// If the class free list cannot grow, Deallocate fails with memutils.ErrFreeListGrowth and changes
// nothing. The block is then never reused, but the caller must still stop using it.
func (a *Allocator) Deallocate(ref Ref, size int) error {
	if a == nil {
		return errors.Wrap(memutils.ErrInvalidArgument, "allocator is nil")
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	if err := a.checkUsable(); err != nil {
		return err
	}

	if ref < 0 || int(ref) >= a.capacity {
		return errors.Wrapf(memutils.ErrInvalidArgument, "reference %d is outside of the arena", ref)
	}

	if size <= 0 {
		return errors.Wrapf(memutils.ErrInvalidArgument, "deallocation size must be positive, got %d", size)
	}

	index, ok := a.table.Index(size)
	if !ok {
		return errors.Wrapf(memutils.ErrInvalidArgument, "a size of %d bytes does not belong to any size class", size)
	}

	if a.live != nil {
		liveIndex, found := a.live.Get(ref)
		if !found {
			return errors.Wrapf(memutils.ErrInvalidFree, "reference %d is not a live allocation", ref)
		}
		if liveIndex != index {
			return errors.Wrapf(memutils.ErrInvalidFree, "reference %d was allocated from the %d byte class, but was freed with a size from the %d byte class",
				ref, a.classes[liveIndex].size, a.classes[index].size)
		}
	}

	class := &a.classes[index]
	if int(ref)+class.size > a.capacity {
		return errors.Wrapf(memutils.ErrInvalidArgument, "block at %d with class size %d runs past the end of the arena", ref, class.size)
	}

	if class.size > a.usedBytes {
		return errors.Wrapf(memutils.ErrInvalidFree, "freeing %d bytes at %d, but only %d bytes are in use", class.size, ref, a.usedBytes)
	}

	if err := class.free.Push(int(ref)); err != nil {
		a.logger.Debug("Allocator::Deallocate FAILED",
			slog.Int("ClassIndex", index),
			slog.Int("FreeBlocks", class.free.Len()),
		)
		if a.observer != nil {
			a.observer.FreeListGrowthFailed(index, class.free.Len())
		}
		return errors.Wrapf(err, "cannot record reference %d in the %d byte class", ref, class.size)
	}

	if a.live != nil {
		a.live.Delete(ref)
	}

	a.usedBytes -= class.size
	a.allocationCount--

	memutils.DebugValidate(stateValidator{a})
	return nil
}

// Clear forgets every outstanding block, empties every free list without releasing its storage,
// and zeroes the whole arena. It costs time proportional to the capacity.
func (a *Allocator) Clear() error {
	if a == nil {
		return errors.Wrap(memutils.ErrInvalidArgument, "allocator is nil")
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	if err := a.checkUsable(); err != nil {
		return err
	}

	a.logger.Debug("Allocator::Clear", slog.Int("UsedBytes", a.usedBytes), slog.Int("Allocations", a.allocationCount))

	for i := range a.classes {
		a.classes[i].free.Reset()
	}

	clear(a.pool)
	a.usedBytes = 0
	a.cursor = 0
	a.allocationCount = 0

	if a.live != nil {
		a.live = swiss.NewMap[Ref, int](liveMapInitialSize)
	}

	return nil
}

// UsedMemory returns the number of bytes held by outstanding blocks, or 0 for a nil or destroyed
// allocator.
func (a *Allocator) UsedMemory() int {
	if a == nil {
		return 0
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.usedBytes
}

// Capacity returns the aligned pool capacity, or 0 for a nil or destroyed allocator.
func (a *Allocator) Capacity() int {
	if a == nil {
		return 0
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.capacity
}

// MemoryPool returns the whole arena, or nil for a nil or destroyed allocator.
func (a *Allocator) MemoryPool() []byte {
	if a == nil {
		return nil
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.pool
}

// AllocationCount returns the number of outstanding blocks.
func (a *Allocator) AllocationCount() int {
	if a == nil {
		return 0
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.allocationCount
}

// SizeClasses returns the class sizes of the allocator in ascending order.
func (a *Allocator) SizeClasses() []int {
	if a == nil {
		return nil
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	if a.destroyed {
		return nil
	}
	return a.table.Sizes()
}

// ClassSize returns the size of the block an allocation of size bytes would receive.
func (a *Allocator) ClassSize(size int) (int, error) {
	if a == nil {
		return 0, errors.Wrap(memutils.ErrInvalidArgument, "allocator is nil")
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	if err := a.checkUsable(); err != nil {
		return 0, err
	}

	index, ok := a.table.Index(size)
	if !ok {
		return 0, errors.Wrapf(memutils.ErrInvalidArgument, "a size of %d bytes does not belong to any size class", size)
	}
	return a.classes[index].size, nil
}

// Bytes returns the memory of the block at ref that was allocated with size. The slice has length
// size and a capacity equal to the class size of the block.
func (a *Allocator) Bytes(ref Ref, size int) ([]byte, error) {
	if a == nil {
		return nil, errors.Wrap(memutils.ErrInvalidArgument, "allocator is nil")
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	if err := a.checkUsable(); err != nil {
		return nil, err
	}

	if ref < 0 || size <= 0 {
		return nil, errors.Wrapf(memutils.ErrInvalidArgument, "invalid block reference %d with size %d", ref, size)
	}

	index, ok := a.table.Index(size)
	if !ok {
		return nil, errors.Wrapf(memutils.ErrInvalidArgument, "a size of %d bytes does not belong to any size class", size)
	}

	start := int(ref)
	end := start + a.classes[index].size
	if end > a.capacity {
		return nil, errors.Wrapf(memutils.ErrInvalidArgument, "block at %d with class size %d runs past the end of the arena", ref, a.classes[index].size)
	}

	return a.pool[start : start+size : end], nil
}

// Validate performs internal consistency checks on the allocator.
func (a *Allocator) Validate() error {
	if a == nil {
		return errors.Wrap(memutils.ErrInvalidArgument, "allocator is nil")
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.validate()
}

func (a *Allocator) validate() error {
	if err := a.checkUsable(); err != nil {
		return err
	}

	if err := a.table.Validate(); err != nil {
		return err
	}

	if len(a.pool) != a.capacity {
		return errors.Newf("the arena is %d bytes, but the capacity is %d", len(a.pool), a.capacity)
	}

	if a.usedBytes < 0 || a.usedBytes > a.capacity {
		return errors.Newf("%d bytes are in use, which is outside of the capacity of %d", a.usedBytes, a.capacity)
	}

	if a.cursor < 0 || a.cursor > a.capacity {
		return errors.Newf("the bump cursor is at %d, which is outside of the capacity of %d", a.cursor, a.capacity)
	}

	if a.allocationCount < 0 {
		return errors.Newf("the allocation count is negative: %d", a.allocationCount)
	}

	for i := range a.classes {
		class := &a.classes[i]
		err := class.free.Visit(func(offset int) error {
			if offset < 0 || offset+class.size > a.capacity {
				return errors.Newf("free block at offset %d in the %d byte class runs outside of the arena", offset, class.size)
			}
			if offset%int(sizeclass.Alignment) != 0 {
				return errors.Newf("free block at offset %d in the %d byte class is not aligned", offset, class.size)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}
