package memory_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/dynamikos/dynamikos/memory"
	"github.com/dynamikos/dynamikos/memory/mocks"
	"github.com/dynamikos/dynamikos/memutils"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestObserverSizeClassesComputedOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	observer := mocks.NewMockObserver(ctrl)

	observer.EXPECT().SizeClassesComputed([]int{16, 32, 48, 64}).Times(1)

	allocator := newAllocator(t, 64, memory.CreateOptions{Observer: observer})

	ref, err := allocator.Allocate(16)
	require.NoError(t, err)
	require.NoError(t, allocator.Deallocate(ref, 16))
	require.NoError(t, allocator.Clear())
}

func TestObserverOutOfMemory(t *testing.T) {
	ctrl := gomock.NewController(t)
	observer := mocks.NewMockObserver(ctrl)

	observer.EXPECT().SizeClassesComputed(gomock.Any())
	observer.EXPECT().OutOfMemory(100, 0, 0, 64)
	observer.EXPECT().OutOfMemory(20, 32, 48, 64)

	allocator := newAllocator(t, 64, memory.CreateOptions{Observer: observer})

	_, err := allocator.Allocate(100)
	require.True(t, errors.Is(err, memutils.ErrOutOfMemory))

	_, err = allocator.Allocate(40)
	require.NoError(t, err)

	_, err = allocator.Allocate(20)
	require.True(t, errors.Is(err, memutils.ErrOutOfMemory))
}

func TestObserverFreeListGrowthFailed(t *testing.T) {
	ctrl := gomock.NewController(t)
	observer := mocks.NewMockObserver(ctrl)

	observer.EXPECT().SizeClassesComputed(gomock.Any())
	observer.EXPECT().FreeListGrowthFailed(1, 2)

	allocator := newAllocator(t, 1024, memory.CreateOptions{
		Observer:          observer,
		MaxFreeListLength: 2,
	})

	refs := make([]memory.Ref, 3)
	for i := range refs {
		ref, err := allocator.Allocate(30)
		require.NoError(t, err)
		refs[i] = ref
	}

	require.NoError(t, allocator.Deallocate(refs[0], 30))
	require.NoError(t, allocator.Deallocate(refs[1], 30))

	err := allocator.Deallocate(refs[2], 30)
	require.True(t, errors.Is(err, memutils.ErrFreeListGrowth))
	require.Equal(t, 32, allocator.UsedMemory())
}
