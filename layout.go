package ntfsgo

import "math"

// layout is the geometry math for Format: given a requested image size and
// cluster size, derive the MFT entry count, cluster count, bitmap size and
// final partition size.
type layout struct {
	HeaderBytes        int32
	MftEntryCount      int32
	MftBytes           int32
	ClusterSize        int32
	ClusterCount       int32
	BitmapBytes        int32
	MaxExtentsPerEntry int32
	PartitionSize      int32

	MftStart    int32
	BitmapStart int32
	DataStart   int32
}

// minSize returns the smallest partition size that can hold the header,
// two MFT entries, one bitmap byte and one cluster.
func minSize(clusterSize, maxExtentsPerEntry int32) int32 {
	return bootRecordSize + 2*entrySize(maxExtentsPerEntry) + 1 + clusterSize
}

// computeLayout derives the full on-disk geometry for a requested image
// size. clusterSize must be > 0 and divisible by 4; maxExtentsPerEntry
// must be > 0.
func computeLayout(size int64, clusterSize, maxExtentsPerEntry int32) layout {
	l := layout{
		HeaderBytes:        bootRecordSize,
		ClusterSize:        clusterSize,
		MaxExtentsPerEntry: maxExtentsPerEntry,
	}

	mftEntrySize := entrySize(maxExtentsPerEntry)
	l.MftEntryCount = int32(math.Floor(0.1 * float64(size) / float64(mftEntrySize)))
	l.MftBytes = l.MftEntryCount * mftEntrySize

	remaining := size - int64(l.HeaderBytes) - int64(l.MftBytes)
	if remaining < 0 {
		remaining = 0
	}

	l.ClusterCount = int32(math.Floor(8 * float64(remaining) / (1 + 8*float64(clusterSize))))
	if l.ClusterCount < 0 {
		l.ClusterCount = 0
	}

	l.BitmapBytes = int32(math.Ceil(float64(l.ClusterCount) / 8))

	l.MftStart = l.HeaderBytes
	l.BitmapStart = l.MftStart + l.MftBytes
	l.DataStart = l.BitmapStart + l.BitmapBytes

	l.PartitionSize = l.HeaderBytes + l.MftBytes + l.BitmapBytes + l.ClusterCount*clusterSize

	return l
}

// layoutFromBootRecord reconstructs the geometry of an already-formatted
// image from its boot record, trusting the stored offsets rather than
// recomputing them, so that a corrupted-but-plausible boot record can
// still be flagged by the consistency checker instead of silently
// recomputed into something else.
func layoutFromBootRecord(r BootRecord) layout {
	mftEntrySize := entrySize(r.MaxExtentsPerEntry)

	l := layout{
		HeaderBytes:        bootRecordSize,
		ClusterSize:        r.ClusterSize,
		ClusterCount:       r.ClusterCount,
		MaxExtentsPerEntry: r.MaxExtentsPerEntry,
		PartitionSize:      r.PartitionSize,
		MftStart:           r.MftStart,
		BitmapStart:        r.BitmapStart,
		DataStart:          r.DataStart,
	}

	l.MftBytes = l.BitmapStart - l.MftStart
	if mftEntrySize > 0 {
		l.MftEntryCount = l.MftBytes / mftEntrySize
	}

	l.BitmapBytes = l.DataStart - l.BitmapStart

	return l
}
