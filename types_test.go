package ntfsgo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtentDescriptorRoundTrip(t *testing.T) {
	cases := []ExtentDescriptor{
		{StartCluster: 0, Count: 1},
		{StartCluster: 1234, Count: 99},
		freeExtentDescriptor(),
	}

	for _, e := range cases {
		buf := make([]byte, extentDescriptorSize)
		encodeExtentDescriptor(buf, e)
		assert.Equal(t, e, decodeExtentDescriptor(buf))
	}
}

func TestExtentDescriptorUnused(t *testing.T) {
	assert.True(t, freeExtentDescriptor().Unused())
	assert.False(t, ExtentDescriptor{StartCluster: 0, Count: 1}.Unused())
}

func TestMftEntryRoundTrip(t *testing.T) {
	const maxExtents = int32(4)

	entry := MftEntry{
		Index:       3,
		UID:         42,
		IsDirectory: true,
		Order:       1,
		Count:       2,
		Name:        "docs",
		Size:        4096,
		Extents: []ExtentDescriptor{
			{StartCluster: 10, Count: 5},
			freeExtentDescriptor(),
			freeExtentDescriptor(),
			freeExtentDescriptor(),
		},
	}

	buf := make([]byte, entrySize(maxExtents))
	require.NoError(t, encodeMftEntry(buf, entry, maxExtents))

	got := decodeMftEntry(buf, entry.Index, maxExtents)
	assert.Equal(t, entry, got)
}

func TestMftEntryRejectsWrongExtentCount(t *testing.T) {
	entry := MftEntry{Extents: []ExtentDescriptor{freeExtentDescriptor()}}
	buf := make([]byte, entrySize(4))

	err := encodeMftEntry(buf, entry, 4)
	assert.Error(t, err)
}

func TestFreeMftEntry(t *testing.T) {
	e := freeMftEntry(7, 3)

	assert.True(t, e.Free())
	assert.Equal(t, int32(7), e.Index)
	assert.Len(t, e.Extents, 3)

	for _, ext := range e.Extents {
		assert.True(t, ext.Unused())
	}
}

func TestNameRoundTrip(t *testing.T) {
	dst := make([]byte, nameSize)
	require.NoError(t, encodeName(dst, "readme1.txt"[:maxNameLen]))
	assert.Equal(t, "readme1.txt"[:maxNameLen], decodeName(dst))
}

func TestNameTooLong(t *testing.T) {
	dst := make([]byte, nameSize)
	err := encodeName(dst, "this-name-is-way-too-long-for-the-slot")
	assert.Error(t, err)
}

func TestBootRecordRoundTrip(t *testing.T) {
	record := BootRecord{
		Signature:          "NTFSGO",
		Description:        "test image",
		PartitionSize:      1 << 20,
		ClusterSize:        1024,
		ClusterCount:       512,
		MftStart:           260,
		BitmapStart:        2340,
		DataStart:          2404,
		MaxExtentsPerEntry: 8,
	}

	buf, err := encodeBootRecord(record)
	require.NoError(t, err)
	assert.Len(t, buf, bootRecordSize)

	assert.Equal(t, record, decodeBootRecord(buf))
}

func TestBootRecordDescriptionTooLong(t *testing.T) {
	long := make([]byte, descriptionSize)
	for i := range long {
		long[i] = 'a'
	}

	_, err := encodeBootRecord(BootRecord{Signature: "X", Description: string(long)})
	assert.Error(t, err)
}
