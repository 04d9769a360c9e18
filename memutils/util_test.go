package memutils_test

import (
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/dynamikos/dynamikos/memutils"
	"github.com/stretchr/testify/require"
)

func TestAlignUp(t *testing.T) {
	require.Equal(t, 0, memutils.AlignUp(0, 16))
	require.Equal(t, 16, memutils.AlignUp(1, 16))
	require.Equal(t, 16, memutils.AlignUp(16, 16))
	require.Equal(t, 32, memutils.AlignUp(17, 16))
	require.Equal(t, 112, memutils.AlignUp(100, 16))
	require.Equal(t, 1048576, memutils.AlignUp(1048576, 16))
}

func TestAlignDown(t *testing.T) {
	require.Equal(t, 0, memutils.AlignDown(15, 16))
	require.Equal(t, 16, memutils.AlignDown(31, 16))
	require.Equal(t, 32, memutils.AlignDown(32, 16))
}

func TestCheckPow2(t *testing.T) {
	require.NoError(t, memutils.CheckPow2(16, "alignment"))
	require.NoError(t, memutils.CheckPow2(uint(1), "alignment"))

	err := memutils.CheckPow2(24, "alignment")
	require.Error(t, err)
	require.True(t, errors.Is(err, memutils.PowerOfTwoError))
	require.Contains(t, err.Error(), "alignment is 24")

	require.Error(t, memutils.CheckPow2(0, "alignment"))
}

func TestLog2(t *testing.T) {
	require.Equal(t, 0, memutils.Log2(0))
	require.Equal(t, 0, memutils.Log2(1))
	require.Equal(t, 1, memutils.Log2(2))
	require.Equal(t, 1, memutils.Log2(3))
	require.Equal(t, 6, memutils.Log2(112))
	require.Equal(t, 20, memutils.Log2(1<<20))
	require.Equal(t, 32, memutils.Log2(1<<32))
}

func TestDetailedStatistics(t *testing.T) {
	var stats memutils.DetailedStatistics
	stats.Clear()

	require.Equal(t, math.MaxInt, stats.FreeBlockSizeMin)

	stats.AddFreeBlocks(32, 0)
	require.Equal(t, 0, stats.FreeBlockCount)

	stats.AddFreeBlocks(32, 2)
	stats.AddFreeBlocks(160, 1)

	require.Equal(t, 3, stats.FreeBlockCount)
	require.Equal(t, 224, stats.FreeBlockBytes)
	require.Equal(t, 32, stats.FreeBlockSizeMin)
	require.Equal(t, 160, stats.FreeBlockSizeMax)

	var total memutils.DetailedStatistics
	total.Clear()
	other := memutils.DetailedStatistics{
		Statistics: memutils.Statistics{
			ClassCount:      3,
			AllocationCount: 1,
			CapacityBytes:   64,
			UsedBytes:       16,
		},
		BumpOffset:       16,
		FreeBlockCount:   1,
		FreeBlockBytes:   16,
		FreeBlockSizeMin: 16,
		FreeBlockSizeMax: 16,
	}
	total.AddDetailedStatistics(&stats)
	total.AddDetailedStatistics(&other)

	require.Equal(t, 4, total.FreeBlockCount)
	require.Equal(t, 16, total.FreeBlockSizeMin)
	require.Equal(t, 160, total.FreeBlockSizeMax)
	require.Equal(t, 3, total.ClassCount)
	require.InDelta(t, 0.25, other.Utilization(), 0.0001)
}
