package workload

import (
	"math/rand"
	"testing"

	"github.com/dynamikos/dynamikos/memory"
	"github.com/stretchr/testify/require"
)

func TestFind(t *testing.T) {
	for _, wl := range All() {
		found, ok := Find(wl.Name)
		require.True(t, ok, wl.Name)
		require.Equal(t, wl.Name, found.Name)
		require.NotEmpty(t, found.Description)
	}

	_, ok := Find("nope")
	require.False(t, ok)
}

func TestAllReturnsCopy(t *testing.T) {
	all := All()
	require.Len(t, all, 8)

	all[0].Name = "changed"
	_, ok := Find("changed")
	require.False(t, ok)
}

func TestWorkloadsLeaveNothingOutstanding(t *testing.T) {
	options := []memory.CreateOptions{
		{},
		{Flags: memory.CreateMonotonicCursor | memory.CreateTrackAllocations},
	}

	for _, opts := range options {
		for _, wl := range All() {
			t.Run(opts.Flags.String()+"/"+wl.Name, func(t *testing.T) {
				allocator, err := memory.New(nil, 64<<20, opts)
				require.NoError(t, err)
				defer func() {
					require.NoError(t, allocator.Destroy())
				}()

				result := wl.Run(allocator, rand.New(rand.NewSource(7)), 300)
				require.Equal(t, wl.Name, result.Name)
				require.Equal(t, 300, result.Iterations)
				require.Zero(t, result.Failures)
				require.Zero(t, allocator.UsedMemory())
				require.Zero(t, allocator.AllocationCount())
				require.NoError(t, allocator.Validate())
			})
		}
	}
}

func TestFailuresAreCounted(t *testing.T) {
	allocator, err := memory.New(nil, 1<<20, memory.CreateOptions{})
	require.NoError(t, err)
	defer func() {
		require.NoError(t, allocator.Destroy())
	}()

	wl, ok := Find("arrays")
	require.True(t, ok)

	// Every array is at least 1 MiB and the arena is exactly 1 MiB, so only 1 MiB requests succeed.
	result := wl.Run(allocator, rand.New(rand.NewSource(3)), 50)
	require.NotZero(t, result.Failures)
	require.Less(t, result.Failures, 51)
	require.Zero(t, allocator.UsedMemory())
}

func TestInterleavedKeepsBlocksLive(t *testing.T) {
	allocator, err := memory.New(nil, 1<<20, memory.CreateOptions{})
	require.NoError(t, err)
	defer func() {
		require.NoError(t, allocator.Destroy())
	}()

	wl, ok := Find("interleaved")
	require.True(t, ok)

	w := &worker{allocator: allocator, rng: rand.New(rand.NewSource(11))}
	for i := 0; i < 5000; i++ {
		wl.run(w, i)
		require.LessOrEqual(t, len(w.active), maxActive)
		require.Equal(t, len(w.active), allocator.AllocationCount())
	}
	require.Zero(t, w.failures)
}

func TestResultPerOp(t *testing.T) {
	require.Zero(t, Result{}.PerOp())
	require.Equal(t, int64(5), int64(Result{Iterations: 4, Elapsed: 20}.PerOp()))
}
