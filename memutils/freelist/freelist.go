// Package freelist provides the growable LIFO stacks the memory package uses to remember released
// blocks of a single size class.
package freelist

import (
	"github.com/cockroachdb/errors"
	"github.com/dynamikos/dynamikos/memutils"
)

const (
	// DefaultCapacity is the number of entries reserved the first time a stack grows.
	DefaultCapacity int = 10
	// GrowthRatio is the factor applied to the capacity of a full stack when it grows.
	GrowthRatio float64 = 1.618
)

// Stack is a LIFO stack of arena offsets. The zero value is an empty, unlimited stack.
type Stack struct {
	offsets []int
	maxLen  int
}

// NewStack creates an empty stack that refuses to grow past maxLen entries. A maxLen <= 0 means
// the stack may grow without limit.
func NewStack(maxLen int) *Stack {
	return &Stack{maxLen: maxLen}
}

// Len returns the number of offsets currently on the stack.
func (s *Stack) Len() int { return len(s.offsets) }

// Cap returns the number of offsets the stack can hold before it has to grow.
func (s *Stack) Cap() int { return cap(s.offsets) }

// MaxLen returns the growth ceiling, or 0 if the stack is unlimited.
func (s *Stack) MaxLen() int { return s.maxLen }

func (s *Stack) nextCapacity() int {
	current := cap(s.offsets)
	if current == 0 {
		return DefaultCapacity
	}

	grown := int(float64(current) * GrowthRatio)
	if grown <= current {
		grown = current + 1
	}
	return grown
}

func (s *Stack) grow() error {
	capacity := s.nextCapacity()
	if s.maxLen > 0 && capacity > s.maxLen {
		if cap(s.offsets) >= s.maxLen {
			return errors.Wrapf(memutils.ErrFreeListGrowth, "stack is at its limit of %d entries", s.maxLen)
		}
		capacity = s.maxLen
	}

	offsets := make([]int, len(s.offsets), capacity)
	copy(offsets, s.offsets)
	s.offsets = offsets
	return nil
}

// Push records offset as the most recently released block. If the stack is full and cannot grow,
// it returns an error wrapping memutils.ErrFreeListGrowth and the stack is unchanged.
func (s *Stack) Push(offset int) error {
	if len(s.offsets) == cap(s.offsets) {
		if err := s.grow(); err != nil {
			return err
		}
	}

	s.offsets = append(s.offsets, offset)
	return nil
}

// Pop removes and returns the most recently pushed offset.
func (s *Stack) Pop() (int, bool) {
	n := len(s.offsets)
	if n == 0 {
		return 0, false
	}

	offset := s.offsets[n-1]
	s.offsets = s.offsets[:n-1]
	return offset, true
}

// Peek returns the most recently pushed offset without removing it.
func (s *Stack) Peek() (int, bool) {
	n := len(s.offsets)
	if n == 0 {
		return 0, false
	}
	return s.offsets[n-1], true
}

// Visit calls fn for every offset on the stack, from the most recently pushed to the oldest.
func (s *Stack) Visit(fn func(offset int) error) error {
	for i := len(s.offsets) - 1; i >= 0; i-- {
		if err := fn(s.offsets[i]); err != nil {
			return err
		}
	}
	return nil
}

// Reset empties the stack but keeps its storage for reuse.
func (s *Stack) Reset() {
	s.offsets = s.offsets[:0]
}

// Release empties the stack and drops its storage.
func (s *Stack) Release() {
	s.offsets = nil
}
