//go:build unix

package memory_test

import (
	"testing"

	"github.com/dynamikos/dynamikos/memory"
	"github.com/stretchr/testify/require"
)

func TestOffHeapArena(t *testing.T) {
	allocator, err := memory.New(nil, 1<<16, memory.CreateOptions{Flags: memory.CreateOffHeapArena})
	require.NoError(t, err)

	ref, err := allocator.Allocate(1000)
	require.NoError(t, err)

	data, err := allocator.Bytes(ref, 1000)
	require.NoError(t, err)
	for i := range data {
		data[i] = byte(i)
	}

	require.NoError(t, allocator.Deallocate(ref, 1000))
	require.NoError(t, allocator.Clear())
	for _, b := range allocator.MemoryPool() {
		require.Zero(t, b)
	}

	require.NoError(t, allocator.Destroy())
	require.Nil(t, allocator.MemoryPool())
}
