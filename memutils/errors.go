package memutils

import "github.com/pkg/errors"

// PowerOfTwoError is the error returned from CheckPow2 or other methods if the number being tested is not a power of two
var PowerOfTwoError error = errors.New("number must be a power of two")

var (
	// ErrInvalidArgument is returned when an operation receives a nil allocator, a zero or negative size, or a
	// reference that cannot belong to the allocator's arena. The operation does not change any state.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrOutOfMemory is returned when an allocation would push the outstanding byte count past the pool
	// capacity, or when the request is larger than the largest size class. It is never retried internally.
	ErrOutOfMemory = errors.New("out of memory")
	// ErrFreeListGrowth is returned when a size class free list cannot grow to record a released block.
	// The released block is not recorded anywhere and will not be reused.
	ErrFreeListGrowth = errors.New("free list could not grow")
	// ErrDestroyed is returned by every operation on an allocator after Destroy has been called.
	ErrDestroyed = errors.New("allocator has been destroyed")
	// ErrInvalidFree is returned by allocators that track live allocations when a reference is freed
	// twice, was never handed out, or is freed with a size that resolves to a different class.
	ErrInvalidFree = errors.New("invalid free")
)
