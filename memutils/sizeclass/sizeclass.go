// Package sizeclass builds and searches the table of geometrically spaced size classes that the
// memory package routes allocation requests into.
//
// Class sizes start at MinClassSize and grow by GrowthRatio, each rounded up to Alignment. The
// final class is always the full capacity, so every request that fits in the pool has a class.
// Table construction is a pure function of capacity: it can be run any number of times and always
// produces the same table.
package sizeclass

import (
	"github.com/cockroachdb/errors"
	"github.com/dynamikos/dynamikos/memutils"
	"golang.org/x/exp/slog"
)

const (
	// Alignment is the byte boundary every class size and the pool capacity are rounded up to.
	Alignment uint = 16
	// MinClassSize is the first candidate class size, before alignment.
	MinClassSize int = 4
	// GrowthRatio is the factor between consecutive candidate class sizes. It approximates the
	// golden ratio, which keeps the worst-case internal fragmentation of a class at roughly 38%.
	GrowthRatio float64 = 1.618
	// Log2GrowthRatio is log2(GrowthRatio). Dividing log2(size) by it estimates the class index
	// of size in O(1).
	Log2GrowthRatio float64 = 0.694
)

func init() {
	// Runtime assertion.
	if err := memutils.CheckPow2(Alignment, "sizeclass.Alignment"); err != nil {
		panic(err)
	}
}

// Align rounds size up to Alignment.
func Align(size int) int {
	return memutils.AlignUp(size, Alignment)
}

// visit calls fn once for every class size of the table for capacity, in ascending order.
func visit(capacity int, fn func(size int)) {
	capacity = Align(capacity)
	if capacity <= 0 {
		return
	}

	last := 0
	for candidate := MinClassSize; candidate <= capacity; candidate = next(candidate) {
		size := Align(candidate)
		if size > last {
			fn(size)
			last = size
		}
	}

	if capacity > last {
		fn(capacity)
	}
}

func next(candidate int) int {
	grown := int(float64(candidate) * GrowthRatio)
	if grown <= candidate {
		return candidate + 1
	}
	return grown
}

// Count returns the number of classes Compute would produce for capacity without building the table.
func Count(capacity int) int {
	count := 0
	visit(capacity, func(int) { count++ })
	return count
}

// Compute returns the ascending class sizes for a pool of the given capacity. It has no side effects.
func Compute(capacity int) []int {
	sizes := make([]int, 0, Count(capacity))
	visit(capacity, func(size int) { sizes = append(sizes, size) })
	return sizes
}

// Table is an immutable size-class table for a single pool capacity.
type Table struct {
	capacity int
	sizes    []int
}

// New builds the table for capacity. Capacity is rounded up to Alignment.
func New(capacity int) (*Table, error) {
	if capacity <= 0 {
		return nil, errors.Wrapf(memutils.ErrInvalidArgument, "capacity must be positive, got %d", capacity)
	}

	t := &Table{
		capacity: Align(capacity),
		sizes:    make([]int, Count(capacity)),
	}

	i := 0
	visit(capacity, func(size int) {
		t.sizes[i] = size
		i++
	})

	memutils.DebugValidate(t)
	return t, nil
}

// Capacity returns the aligned capacity the table was built for.
func (t *Table) Capacity() int { return t.capacity }

// Len returns the number of classes in the table.
func (t *Table) Len() int { return len(t.sizes) }

// Size returns the size in bytes of class i.
func (t *Table) Size(i int) int { return t.sizes[i] }

// Last returns the index of the catch-all class.
func (t *Table) Last() int { return len(t.sizes) - 1 }

// Sizes returns a copy of the class sizes.
func (t *Table) Sizes() []int {
	sizes := make([]int, len(t.sizes))
	copy(sizes, t.sizes)
	return sizes
}

// Index returns the index of the smallest class that can hold size bytes. It returns false when
// size is not positive or does not fit in the largest class.
//
// The search jumps to an estimated index using the geometric spacing of the table, walks backward
// past every class that still fits, then steps forward onto the smallest fitting one.
func (t *Table) Index(size int) (int, bool) {
	if size <= 0 {
		return -1, false
	}

	aligned := Align(size)
	if aligned > t.capacity {
		return -1, false
	}

	index := int(float64(memutils.Log2(aligned)) / Log2GrowthRatio)
	if index > t.Last() {
		index = t.Last()
	}

	for index > 0 && aligned <= t.sizes[index] {
		index--
	}

	if t.sizes[index] < aligned {
		index++
	}

	// The estimate can land below the fitting class in tables whose small classes were merged by
	// alignment; walk forward to correct it.
	for t.sizes[index] < aligned {
		index++
	}

	return index, true
}

// Validate checks that the table is strictly ascending, aligned, and ends at the capacity.
func (t *Table) Validate() error {
	if len(t.sizes) == 0 {
		return errors.New("size class table is empty")
	}

	prev := 0
	for i, size := range t.sizes {
		if size <= prev {
			return errors.Newf("class %d has size %d, which does not exceed the previous class size %d", i, size, prev)
		}
		if size%int(Alignment) != 0 {
			return errors.Newf("class %d has size %d, which is not a multiple of %d", i, size, Alignment)
		}
		prev = size
	}

	if prev != t.capacity {
		return errors.Newf("the last class has size %d, but the capacity is %d", prev, t.capacity)
	}

	return nil
}

// LogClasses writes one debug record per class of t to logger.
func LogClasses(logger *slog.Logger, t *Table) {
	if logger == nil || t == nil {
		return
	}

	for i, size := range t.sizes {
		logger.Debug("size class", slog.Int("index", i), slog.Int("size", size))
	}
}
