package memory

//go:generate mockgen -destination mocks/observer.go -package mocks github.com/dynamikos/dynamikos/memory Observer

// Observer receives notifications about an Allocator's lifecycle and failures. Implementations
// are called synchronously while the allocator is locked and must not call back into it.
type Observer interface {
	// SizeClassesComputed is called exactly once, from New, with the allocator's class sizes.
	SizeClassesComputed(sizes []int)
	// OutOfMemory is called when an allocation fails because the pool is exhausted. classSize is 0
	// when the request does not fit in any class.
	OutOfMemory(requested, classSize, usedBytes, capacity int)
	// FreeListGrowthFailed is called when a released block cannot be recorded because the free list
	// of classIndex is full.
	FreeListGrowthFailed(classIndex, freeBlocks int)
}
