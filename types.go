package ntfsgo

import (
	"encoding/binary"
	"fmt"
)

// Reserved UIDs.
const (
	FreeUID = int32(0)
	RootUID = int32(1)
)

// Field widths, fixed by the on-disk layout. Every multi-byte integer is
// little-endian signed 32-bit; booleans occupy one byte.
const (
	signatureSize   = 9
	descriptionSize = 251
	nameSize        = 12
	maxNameLen      = nameSize - 1

	extentDescriptorSize = 4 + 4 // StartCluster, Count

	// mftEntryHeaderSize is everything in an MftEntry before the inline
	// extent array: UID, IsDirectory, Order, Count, Name, Size.
	mftEntryHeaderSize = 4 + 1 + 4 + 4 + nameSize + 4

	bootRecordSize = signatureSize + descriptionSize + 4*7
)

// DefaultClusterSize and DefaultMaxExtentsPerEntry are the geometry
// parameters Format uses when the caller does not override them through
// a FormatOption.
const (
	DefaultClusterSize        = 1024
	DefaultMaxExtentsPerEntry = 8
)

// ExtentDescriptor is a contiguous run of clusters: [StartCluster,
// StartCluster+Count). StartCluster == -1 marks an unused slot; the
// first unused slot terminates the list within an MftEntry.
type ExtentDescriptor struct {
	StartCluster int32
	Count        int32
}

// Unused reports whether this slot is the sentinel "no extent here".
func (e ExtentDescriptor) Unused() bool {
	return e.StartCluster == -1
}

func freeExtentDescriptor() ExtentDescriptor {
	return ExtentDescriptor{StartCluster: -1, Count: 0}
}

func encodeExtentDescriptor(buf []byte, e ExtentDescriptor) {
	binary.LittleEndian.PutUint32(buf[0:4], uint32(e.StartCluster))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(e.Count))
}

func decodeExtentDescriptor(buf []byte) ExtentDescriptor {
	return ExtentDescriptor{
		StartCluster: int32(binary.LittleEndian.Uint32(buf[0:4])),
		Count:        int32(binary.LittleEndian.Uint32(buf[4:8])),
	}
}

// MftEntry is one fixed-size slot of the Master File Table. A node (file
// or directory) is represented by one or more entries sharing the same
// UID, Name, IsDirectory flag and Size, distinguished by Order (0-based)
// out of Count total entries.
type MftEntry struct {
	Index       int32 // slot index within the MFT; not persisted, carried for convenience
	UID         int32
	IsDirectory bool
	Order       int32
	Count       int32
	Name        string
	Size        int32
	Extents     []ExtentDescriptor // length is always maxExtentsPerEntry
}

func freeMftEntry(index int32, maxExtents int32) MftEntry {
	extents := make([]ExtentDescriptor, maxExtents)
	for i := range extents {
		extents[i] = freeExtentDescriptor()
	}

	return MftEntry{
		Index:   index,
		UID:     FreeUID,
		Extents: extents,
	}
}

// Free reports whether this slot currently holds no node.
func (e MftEntry) Free() bool {
	return e.UID == FreeUID
}

// entrySize returns the on-disk byte size of an MftEntry for a given
// maxExtentsPerEntry, the only layout parameter that varies per image.
func entrySize(maxExtentsPerEntry int32) int32 {
	return mftEntryHeaderSize + maxExtentsPerEntry*extentDescriptorSize
}

func encodeName(dst []byte, name string) error {
	if len(name) > maxNameLen {
		return fmt.Errorf("name %q exceeds %d significant bytes", name, maxNameLen)
	}

	for i := range dst {
		dst[i] = 0
	}

	copy(dst, name)

	return nil
}

func decodeName(src []byte) string {
	n := 0
	for n < len(src) && src[n] != 0 {
		n++
	}

	return string(src[:n])
}

func encodeMftEntry(buf []byte, e MftEntry, maxExtentsPerEntry int32) error {
	if int32(len(e.Extents)) != maxExtentsPerEntry {
		return fmt.Errorf("entry has %d extent slots, want %d", len(e.Extents), maxExtentsPerEntry)
	}

	binary.LittleEndian.PutUint32(buf[0:4], uint32(e.UID))

	if e.IsDirectory {
		buf[4] = 1
	} else {
		buf[4] = 0
	}

	binary.LittleEndian.PutUint32(buf[5:9], uint32(e.Order))
	binary.LittleEndian.PutUint32(buf[9:13], uint32(e.Count))

	if err := encodeName(buf[13:13+nameSize], e.Name); err != nil {
		return err
	}

	off := 13 + nameSize
	binary.LittleEndian.PutUint32(buf[off:off+4], uint32(e.Size))
	off += 4

	for _, ext := range e.Extents {
		encodeExtentDescriptor(buf[off:off+extentDescriptorSize], ext)
		off += extentDescriptorSize
	}

	return nil
}

func decodeMftEntry(buf []byte, index int32, maxExtentsPerEntry int32) MftEntry {
	e := MftEntry{Index: index}

	e.UID = int32(binary.LittleEndian.Uint32(buf[0:4]))
	e.IsDirectory = buf[4] != 0
	e.Order = int32(binary.LittleEndian.Uint32(buf[5:9]))
	e.Count = int32(binary.LittleEndian.Uint32(buf[9:13]))
	e.Name = decodeName(buf[13 : 13+nameSize])

	off := 13 + nameSize
	e.Size = int32(binary.LittleEndian.Uint32(buf[off : off+4]))
	off += 4

	e.Extents = make([]ExtentDescriptor, maxExtentsPerEntry)
	for i := range e.Extents {
		e.Extents[i] = decodeExtentDescriptor(buf[off : off+extentDescriptorSize])
		off += extentDescriptorSize
	}

	return e
}

// BootRecord is the fixed header at offset 0 describing the image
// layout. All *Start fields are absolute byte offsets from the start of
// the image.
type BootRecord struct {
	Signature          string
	Description        string
	PartitionSize      int32
	ClusterSize        int32
	ClusterCount       int32
	MftStart           int32
	BitmapStart        int32
	DataStart          int32
	MaxExtentsPerEntry int32
}

func encodeCString(dst []byte, s string) error {
	if len(s) > len(dst)-1 {
		return fmt.Errorf("string %q exceeds %d bytes", s, len(dst)-1)
	}

	for i := range dst {
		dst[i] = 0
	}

	copy(dst, s)

	return nil
}

func decodeCString(src []byte) string {
	n := 0
	for n < len(src) && src[n] != 0 {
		n++
	}

	return string(src[:n])
}

func encodeBootRecord(r BootRecord) ([]byte, error) {
	buf := make([]byte, bootRecordSize)

	if err := encodeCString(buf[0:signatureSize], r.Signature); err != nil {
		return nil, err
	}

	if err := encodeCString(buf[signatureSize:signatureSize+descriptionSize], r.Description); err != nil {
		return nil, err
	}

	off := signatureSize + descriptionSize

	for _, v := range []int32{
		r.PartitionSize, r.ClusterSize, r.ClusterCount,
		r.MftStart, r.BitmapStart, r.DataStart, r.MaxExtentsPerEntry,
	} {
		binary.LittleEndian.PutUint32(buf[off:off+4], uint32(v))
		off += 4
	}

	return buf, nil
}

func decodeBootRecord(buf []byte) BootRecord {
	var r BootRecord

	r.Signature = decodeCString(buf[0:signatureSize])
	r.Description = decodeCString(buf[signatureSize : signatureSize+descriptionSize])

	off := signatureSize + descriptionSize

	read := func() int32 {
		v := int32(binary.LittleEndian.Uint32(buf[off : off+4]))
		off += 4

		return v
	}

	r.PartitionSize = read()
	r.ClusterSize = read()
	r.ClusterCount = read()
	r.MftStart = read()
	r.BitmapStart = read()
	r.DataStart = read()
	r.MaxExtentsPerEntry = read()

	return r
}
