package memory

import (
	"github.com/dynamikos/dynamikos/memutils"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// CalculateStatistics sums the allocator's current state into stats. Call stats.Clear() first to
// get the allocator's figures alone.
func (a *Allocator) CalculateStatistics(stats *memutils.DetailedStatistics) {
	if a == nil {
		return
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	if a.destroyed {
		return
	}

	a.addDetailedStatistics(stats)
}

func (a *Allocator) addDetailedStatistics(stats *memutils.DetailedStatistics) {
	stats.ClassCount += len(a.classes)
	stats.AllocationCount += a.allocationCount
	stats.CapacityBytes += a.capacity
	stats.UsedBytes += a.usedBytes
	stats.BumpOffset += a.bumpOffset()

	for i := range a.classes {
		stats.AddFreeBlocks(a.classes[i].size, a.classes[i].free.Len())
	}
}

// BuildStatsString returns a JSON document describing the allocator. When detailed is true, the
// document lists every size class with its free list.
func (a *Allocator) BuildStatsString(detailed bool) string {
	if a == nil {
		return "{}"
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	writer := jwriter.NewWriter()
	objState := writer.Object()

	if a.destroyed {
		objState.Name("Destroyed").Bool(true)
		objState.End()
		return string(writer.Bytes())
	}

	var stats memutils.DetailedStatistics
	stats.Clear()
	a.addDetailedStatistics(&stats)

	objState.Name("Flags").String(a.flags.String())
	a.printStatistics(objState.Name("Total").Object(), &stats)

	if detailed {
		a.printSizeClasses(&objState)
	}

	objState.End()
	return string(writer.Bytes())
}

func (a *Allocator) printStatistics(json jwriter.ObjectState, stats *memutils.DetailedStatistics) {
	defer json.End()

	json.Name("CapacityBytes").Int(stats.CapacityBytes)
	json.Name("UsedBytes").Int(stats.UsedBytes)
	json.Name("Utilization").Float64(stats.Utilization())
	json.Name("Allocations").Int(stats.AllocationCount)
	json.Name("BumpOffset").Int(stats.BumpOffset)
	json.Name("SizeClasses").Int(stats.ClassCount)
	json.Name("FreeBlocks").Int(stats.FreeBlockCount)
	json.Name("FreeBlockBytes").Int(stats.FreeBlockBytes)

	if stats.FreeBlockCount > 0 {
		json.Name("FreeBlockSizeMin").Int(stats.FreeBlockSizeMin)
		json.Name("FreeBlockSizeMax").Int(stats.FreeBlockSizeMax)
	}

	if a.live != nil {
		json.Name("TrackedAllocations").Int(a.live.Count())
	}
}

func (a *Allocator) printSizeClasses(json *jwriter.ObjectState) {
	arrayState := json.Name("SizeClasses").Array()
	defer arrayState.End()

	for i := range a.classes {
		class := &a.classes[i]

		obj := arrayState.Object()
		obj.Name("Index").Int(i)
		obj.Name("Size").Int(class.size)
		obj.Name("FreeBlocks").Int(class.free.Len())
		obj.Name("FreeListCapacity").Int(class.free.Cap())
		obj.End()
	}
}
