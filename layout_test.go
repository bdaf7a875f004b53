package ntfsgo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeLayoutRegionsAreContiguous(t *testing.T) {
	l := computeLayout(1<<20, DefaultClusterSize, DefaultMaxExtentsPerEntry)

	assert.Equal(t, l.MftStart, l.HeaderBytes)
	assert.Equal(t, l.BitmapStart, l.MftStart+l.MftBytes)
	assert.Equal(t, l.DataStart, l.BitmapStart+l.BitmapBytes)
	assert.Equal(t, l.PartitionSize, l.DataStart+l.ClusterCount*l.ClusterSize)
}

func TestComputeLayoutScalesWithSize(t *testing.T) {
	small := computeLayout(1<<20, DefaultClusterSize, DefaultMaxExtentsPerEntry)
	big := computeLayout(10<<20, DefaultClusterSize, DefaultMaxExtentsPerEntry)

	assert.Greater(t, big.ClusterCount, small.ClusterCount)
	assert.Greater(t, big.MftEntryCount, small.MftEntryCount)
}

func TestComputeLayoutNeverNegative(t *testing.T) {
	l := computeLayout(0, DefaultClusterSize, DefaultMaxExtentsPerEntry)

	assert.GreaterOrEqual(t, l.ClusterCount, int32(0))
	assert.GreaterOrEqual(t, l.MftEntryCount, int32(0))
}

func TestMinSizeFitsTwoEntriesAndOneCluster(t *testing.T) {
	min := minSize(DefaultClusterSize, DefaultMaxExtentsPerEntry)

	want := int32(bootRecordSize) + 2*entrySize(DefaultMaxExtentsPerEntry) + 1 + DefaultClusterSize
	assert.Equal(t, want, min)
}

func TestLayoutFromBootRecordMatchesComputeLayout(t *testing.T) {
	want := computeLayout(4<<20, DefaultClusterSize, DefaultMaxExtentsPerEntry)

	record := BootRecord{
		PartitionSize:      want.PartitionSize,
		ClusterSize:        want.ClusterSize,
		ClusterCount:       want.ClusterCount,
		MftStart:           want.MftStart,
		BitmapStart:        want.BitmapStart,
		DataStart:          want.DataStart,
		MaxExtentsPerEntry: want.MaxExtentsPerEntry,
	}

	got := layoutFromBootRecord(record)

	assert.Equal(t, want.MftEntryCount, got.MftEntryCount)
	assert.Equal(t, want.MftBytes, got.MftBytes)
	assert.Equal(t, want.BitmapBytes, got.BitmapBytes)
}
