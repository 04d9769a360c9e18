package memutils

import "math"

type Statistics struct {
	ClassCount      int
	AllocationCount int
	CapacityBytes   int
	UsedBytes       int
}

func (s *Statistics) Clear() {
	s.ClassCount = 0
	s.AllocationCount = 0
	s.CapacityBytes = 0
	s.UsedBytes = 0
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.ClassCount += other.ClassCount
	s.AllocationCount += other.AllocationCount
	s.CapacityBytes += other.CapacityBytes
	s.UsedBytes += other.UsedBytes
}

// DetailedStatistics extends Statistics with the state of the bump cursor and the blocks
// currently parked on free lists.
type DetailedStatistics struct {
	Statistics
	BumpOffset       int
	FreeBlockCount   int
	FreeBlockBytes   int
	FreeBlockSizeMin int
	FreeBlockSizeMax int
}

func (s *DetailedStatistics) Clear() {
	s.Statistics.Clear()
	s.BumpOffset = 0
	s.FreeBlockCount = 0
	s.FreeBlockBytes = 0
	s.FreeBlockSizeMin = math.MaxInt
	s.FreeBlockSizeMax = 0
}

// AddFreeBlocks records count free blocks of the given class size.
func (s *DetailedStatistics) AddFreeBlocks(size int, count int) {
	if count <= 0 {
		return
	}

	s.FreeBlockCount += count
	s.FreeBlockBytes += size * count

	if size < s.FreeBlockSizeMin {
		s.FreeBlockSizeMin = size
	}

	if size > s.FreeBlockSizeMax {
		s.FreeBlockSizeMax = size
	}
}

func (s *DetailedStatistics) AddDetailedStatistics(other *DetailedStatistics) {
	s.Statistics.AddStatistics(&other.Statistics)
	s.BumpOffset += other.BumpOffset
	s.FreeBlockCount += other.FreeBlockCount
	s.FreeBlockBytes += other.FreeBlockBytes

	if other.FreeBlockSizeMin < s.FreeBlockSizeMin {
		s.FreeBlockSizeMin = other.FreeBlockSizeMin
	}

	if other.FreeBlockSizeMax > s.FreeBlockSizeMax {
		s.FreeBlockSizeMax = other.FreeBlockSizeMax
	}
}

// Utilization returns the ratio of used bytes to capacity, or 0 for an empty capacity.
func (s *Statistics) Utilization() float64 {
	if s.CapacityBytes == 0 {
		return 0
	}
	return float64(s.UsedBytes) / float64(s.CapacityBytes)
}
