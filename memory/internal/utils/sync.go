package utils

import (
	"sync"
)

// OptionalMutex is a mutex that only locks when UseMutex is set. Allocators are single-threaded
// unless created with memory.CreateSynchronized.
type OptionalMutex struct {
	Mutex    sync.Mutex
	UseMutex bool
}

func (m *OptionalMutex) Lock() {
	if m.UseMutex {
		m.Mutex.Lock()
	}
}

func (m *OptionalMutex) Unlock() {
	if m.UseMutex {
		m.Mutex.Unlock()
	}
}
