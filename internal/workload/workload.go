// Package workload holds the allocation patterns used to benchmark memory.Allocator, both from
// Benchmark functions and from the dkbench command.
package workload

import (
	"math/rand"
	"strconv"
	"time"

	"github.com/dynamikos/dynamikos/memory"
)

// Workload is a named allocation pattern.
type Workload struct {
	Name        string
	Description string
	run         func(w *worker, iteration int)
}

// Result reports one run of a Workload.
type Result struct {
	Name       string
	Iterations int
	Elapsed    time.Duration
	// Failures counts allocations and deallocations the allocator refused.
	Failures int
}

// PerOp returns the average time of a single iteration.
func (r Result) PerOp() time.Duration {
	if r.Iterations == 0 {
		return 0
	}
	return r.Elapsed / time.Duration(r.Iterations)
}

type worker struct {
	allocator *memory.Allocator
	rng       *rand.Rand
	failures  int
	active    []block
}

type block struct {
	ref  memory.Ref
	size int
}

func (w *worker) alloc(size int) (memory.Ref, bool) {
	ref, err := w.allocator.Allocate(size)
	if err != nil {
		w.failures++
		return memory.NoRef, false
	}
	return ref, true
}

func (w *worker) free(ref memory.Ref, size int) {
	if err := w.allocator.Deallocate(ref, size); err != nil {
		w.failures++
	}
}

func (w *worker) bytes(ref memory.Ref, size int) []byte {
	data, err := w.allocator.Bytes(ref, size)
	if err != nil {
		w.failures++
		return nil
	}
	return data
}

// touch zeroes the block to simulate using it.
func (w *worker) touch(ref memory.Ref, size int) {
	clear(w.bytes(ref, size))
}

func (w *worker) write(ref memory.Ref, size int, text string) []byte {
	data := w.bytes(ref, size)
	n := copy(data, text)
	return data[:n]
}

const maxActive = 1000

// entitySize is the size of a small game-entity style record: an id, three float32
// coordinates and a 32 byte name.
const entitySize = 4 + 3*4 + 32

// nodeSize is the size of a binary tree node holding two references and an int.
const nodeSize = 24

var workloads = []Workload{
	{
		Name:        "structs",
		Description: "Randomly sized structs allocated, touched and freed",
		run: func(w *worker, _ int) {
			size := entitySize + w.rng.Intn(64)
			if ref, ok := w.alloc(size); ok {
				w.touch(ref, size)
				w.free(ref, size)
			}
		},
	},
	{
		Name:        "interleaved",
		Description: "Interleaved allocations and deallocations of small blocks with up to 1000 live",
		run: func(w *worker, _ int) {
			const size = 4
			if len(w.active) == maxActive || (len(w.active) > 0 && w.rng.Intn(2) == 0) {
				index := w.rng.Intn(len(w.active))
				w.free(w.active[index].ref, size)
				w.active[index] = w.active[len(w.active)-1]
				w.active = w.active[:len(w.active)-1]
				return
			}
			if ref, ok := w.alloc(size); ok {
				w.active = append(w.active, block{ref: ref, size: size})
			}
		},
	},
	{
		Name:        "fragmentation",
		Description: "Alternating 4 byte and 1 KiB blocks",
		run: func(w *worker, _ int) {
			size := 4
			if w.rng.Intn(2) != 0 {
				size = 1024
			}
			if ref, ok := w.alloc(size); ok {
				w.touch(ref, size)
				w.free(ref, size)
			}
		},
	},
	{
		Name:        "strings",
		Description: "Two short strings and their concatenation in scratch buffers",
		run: func(w *worker, iteration int) {
			w.concat(iteration, w.rng.Intn(32)+1, w.rng.Intn(32)+1, "Hello ", "World ")
		},
	},
	{
		Name:        "mixed",
		Description: "32 byte blocks mixed with 1-2 KiB blocks",
		run: func(w *worker, _ int) {
			size := 32
			if w.rng.Intn(2) != 0 {
				size = w.rng.Intn(1024) + 1024
			}
			if ref, ok := w.alloc(size); ok {
				w.touch(ref, size)
				w.free(ref, size)
			}
		},
	},
	{
		Name:        "trees",
		Description: "Small binary trees of up to 10 nodes built and torn down",
		run: func(w *worker, _ int) {
			depth := w.rng.Intn(10) + 1
			w.active = w.active[:0]
			for j := 0; j < depth; j++ {
				ref, ok := w.alloc(nodeSize)
				if !ok {
					break
				}
				node := w.bytes(ref, nodeSize)
				clear(node)
				if node != nil {
					node[nodeSize-1] = byte(w.rng.Intn(256))
				}
				w.active = append(w.active, block{ref: ref, size: nodeSize})
			}
			for i := len(w.active) - 1; i >= 0; i-- {
				w.free(w.active[i].ref, nodeSize)
			}
			w.active = w.active[:0]
		},
	},
	{
		Name:        "arrays",
		Description: "Large arrays of 1 to 5 MiB",
		run: func(w *worker, _ int) {
			size := (1 << 20) * (w.rng.Intn(5) + 1)
			if ref, ok := w.alloc(size); ok {
				w.touch(ref, size)
				w.free(ref, size)
			}
		},
	},
	{
		Name:        "large-strings",
		Description: "Two 64-575 byte strings and their concatenation",
		run: func(w *worker, iteration int) {
			w.concat(iteration, w.rng.Intn(512)+64, w.rng.Intn(512)+64, "This is string ", "and concatenation ")
		},
	},
}

func (w *worker) concat(iteration, len1, len2 int, prefix1, prefix2 string) {
	suffix := strconv.Itoa(iteration)

	ref1, ok1 := w.alloc(len1)
	ref2, ok2 := w.alloc(len2)
	len3 := len1 + len2 + 1
	ref3, ok3 := w.alloc(len3)

	if ok1 && ok2 && ok3 {
		first := w.write(ref1, len1, prefix1+suffix)
		second := w.write(ref2, len2, prefix2+suffix)
		w.write(ref3, len3, string(first)+" "+string(second))
	}

	if ok1 {
		w.free(ref1, len1)
	}
	if ok2 {
		w.free(ref2, len2)
	}
	if ok3 {
		w.free(ref3, len3)
	}
}

// All returns every workload in the order the benchmark driver runs them.
func All() []Workload {
	all := make([]Workload, len(workloads))
	copy(all, workloads)
	return all
}

// Find returns the workload with the given name.
func Find(name string) (Workload, bool) {
	for _, w := range workloads {
		if w.Name == name {
			return w, true
		}
	}
	return Workload{}, false
}

// Run executes iterations of the workload against allocator. Blocks the workload keeps live
// between iterations are freed before Run returns.
func (wl Workload) Run(allocator *memory.Allocator, rng *rand.Rand, iterations int) Result {
	w := &worker{
		allocator: allocator,
		rng:       rng,
		active:    make([]block, 0, maxActive),
	}

	start := time.Now()
	for i := 0; i < iterations; i++ {
		wl.run(w, i)
	}
	elapsed := time.Since(start)

	for _, b := range w.active {
		w.free(b.ref, b.size)
	}

	return Result{
		Name:       wl.Name,
		Iterations: iterations,
		Elapsed:    elapsed,
		Failures:   w.failures,
	}
}
