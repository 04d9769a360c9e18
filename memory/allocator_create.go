package memory

import (
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/dynamikos/dynamikos/memory/internal/backing"
	"github.com/dynamikos/dynamikos/memory/internal/utils"
	"github.com/dynamikos/dynamikos/memutils"
	"github.com/dynamikos/dynamikos/memutils/freelist"
	"github.com/dynamikos/dynamikos/memutils/sizeclass"
	"golang.org/x/exp/slog"
)

// CreateFlags indicate specific allocator behaviors to activate or deactivate
type CreateFlags int32

var allocatorCreateFlagsMapping = make(map[CreateFlags]string)

func (f CreateFlags) Register(str string) {
	allocatorCreateFlagsMapping[f] = str
}

func (f CreateFlags) String() string {
	if f == 0 {
		return "None"
	}

	var names []string
	for bit := CreateFlags(1); bit != 0 && bit <= f; bit <<= 1 {
		if f&bit == 0 {
			continue
		}

		name, ok := allocatorCreateFlagsMapping[bit]
		if !ok {
			name = "Unknown"
		}
		names = append(names, name)
	}

	return strings.Join(names, "|")
}

const (
	// CreateSynchronized guards every operation of the allocator with a single mutex. Without it,
	// the consumer must guarantee that the allocator is used from only one goroutine at a time.
	CreateSynchronized CreateFlags = 1 << iota
	// CreateMonotonicCursor gives fresh allocations their own bump cursor that only ever moves
	// forward until Clear. By default the outstanding byte count doubles as the bump cursor, which
	// lets a fresh allocation land on bytes still held by a live block of another class after a
	// deallocation.
	CreateMonotonicCursor
	// CreateTrackAllocations records every live block so that Deallocate can reject references
	// that were never handed out, are freed twice, or are freed with a size from another class.
	// Fresh blocks are placed with a monotonic cursor as if CreateMonotonicCursor were set, so a
	// fresh block never lands on a tracked live one.
	CreateTrackAllocations
	// CreateOffHeapArena places the arena in an anonymous memory mapping outside of the Go heap.
	// Only available on unix platforms.
	CreateOffHeapArena
)

func init() {
	CreateSynchronized.Register("CreateSynchronized")
	CreateMonotonicCursor.Register("CreateMonotonicCursor")
	CreateTrackAllocations.Register("CreateTrackAllocations")
	CreateOffHeapArena.Register("CreateOffHeapArena")
}

// liveMapInitialSize is the initial capacity of the live allocation map used by
// CreateTrackAllocations.
const liveMapInitialSize = 42

// CreateOptions contains optional settings when creating an allocator
type CreateOptions struct {
	// Flags indicates specific allocator behaviors to activate or deactivate
	Flags CreateFlags
	// MaxFreeListLength caps the number of released blocks a single size class can remember.
	// Deallocate fails with memutils.ErrFreeListGrowth once a class free list would have to grow
	// past it. 0 means unlimited.
	MaxFreeListLength int
	// Observer is an optional hook that is told about construction and failures. It is called
	// synchronously from the allocator's operations.
	Observer Observer
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// New creates an Allocator managing a pool of capacity bytes, rounded up to sizeclass.Alignment.
//
// logger may be nil, in which case nothing is logged. New fails with memutils.ErrInvalidArgument
// if capacity is not positive and with a wrapped error if the arena cannot be acquired.
func New(logger *slog.Logger, capacity int, options CreateOptions) (*Allocator, error) {
	if logger == nil {
		logger = discardLogger()
	}

	if capacity <= 0 {
		return nil, errors.Wrapf(memutils.ErrInvalidArgument, "capacity must be positive, got %d", capacity)
	}

	if options.MaxFreeListLength < 0 {
		return nil, errors.Wrapf(memutils.ErrInvalidArgument, "MaxFreeListLength must not be negative, got %d", options.MaxFreeListLength)
	}

	table, err := sizeclass.New(capacity)
	if err != nil {
		return nil, err
	}

	region, err := backing.Acquire(table.Capacity(), options.Flags&CreateOffHeapArena != 0)
	if err != nil {
		return nil, errors.Wrap(err, "failed to acquire the arena")
	}

	classes := make([]sizeClass, table.Len())
	for i := range classes {
		classes[i] = sizeClass{
			size: table.Size(i),
			free: freelist.NewStack(options.MaxFreeListLength),
		}
	}

	a := &Allocator{
		mutex: utils.OptionalMutex{
			UseMutex: options.Flags&CreateSynchronized != 0,
		},
		logger:   logger,
		observer: options.Observer,
		flags:    options.Flags,

		capacity: table.Capacity(),
		table:    table,
		classes:  classes,
		region:   region,
		pool:     region.Bytes(),
	}

	if a.tracksAllocations() {
		a.live = swiss.NewMap[Ref, int](liveMapInitialSize)
	}

	logger.Debug("Allocator::New",
		slog.Int("Capacity", a.capacity),
		slog.Int("ClassCount", table.Len()),
		slog.String("Flags", options.Flags.String()),
	)
	sizeclass.LogClasses(logger, table)

	if a.observer != nil {
		a.observer.SizeClassesComputed(table.Sizes())
	}

	memutils.DebugValidate(stateValidator{a})
	return a, nil
}

// Destroy releases every free list and the arena. The arena is zeroed before it is released.
// Every later call on the allocator, including a second Destroy, fails with memutils.ErrDestroyed.
func (a *Allocator) Destroy() error {
	if a == nil {
		return errors.Wrap(memutils.ErrInvalidArgument, "allocator is nil")
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	if a.destroyed {
		return memutils.ErrDestroyed
	}

	a.logger.Debug("Allocator::Destroy", slog.Int("Capacity", a.capacity), slog.Int("UsedBytes", a.usedBytes))

	for i := range a.classes {
		a.classes[i].free.Release()
	}

	err := a.region.Release()

	a.destroyed = true
	a.usedBytes = 0
	a.cursor = 0
	a.allocationCount = 0
	a.capacity = 0
	a.classes = nil
	a.table = nil
	a.region = nil
	a.pool = nil
	a.live = nil

	if err != nil {
		a.logger.Error("error releasing the arena", slog.Any("error", err))
		return errors.Wrap(err, "failed to release the arena")
	}

	return nil
}
