package ntfsgo

import (
	"fmt"
	"log/slog"
)

// Image owns the backing byte store for one formatted partition: the boot
// record, the typed MFT/bitmap accessors built on top of it, and bounds-
// checked positioned raw I/O.
type Image struct {
	backend diskBackend
	record  BootRecord
	geom    layout
	path    string
	logger  *slog.Logger
}

// Open opens an existing image at path. A missing file is reported as
// ErrNotFormatted; an existing file whose boot record fails validation is
// reported as ErrCorrupted, and the image is left closed in both cases.
func Open(path string, opts ...ImageOption) (*Image, error) {
	cfg := defaultImageConfig()
	for _, o := range opts {
		o(&cfg)
	}

	backend, err := openFileBackend(path, false)
	if err != nil {
		return nil, wrapErr(ErrNotFormatted, "open %s", path)
	}

	size, err := backend.size()
	if err != nil {
		_ = backend.close()
		return nil, wrapErr(err, "stat %s", path)
	}

	if size < bootRecordSize {
		_ = backend.close()
		return nil, wrapErr(ErrCorrupted, "%s is shorter than a boot record", path)
	}

	raw := make([]byte, bootRecordSize)
	if err := backend.readAt(raw, 0); err != nil {
		_ = backend.close()
		return nil, wrapErr(ErrCorrupted, "read boot record of %s", path)
	}

	record := decodeBootRecord(raw)
	if err := validateBootRecord(record, size); err != nil {
		_ = backend.close()
		return nil, wrapErr(ErrCorrupted, "validate boot record of %s: %v", path, err)
	}

	img := &Image{
		backend: backend,
		record:  record,
		geom:    layoutFromBootRecord(record),
		path:    path,
		logger:  cfg.logger,
	}

	img.logger.Debug("opened image", slog.String("path", path), slog.Int("cluster_count", int(record.ClusterCount)))

	return img, nil
}

// Format truncates (creating if necessary) the file at path and writes a
// fresh boot record, a fully-free MFT, a zero bitmap, zero clusters and
// the root directory. Returns an Image ready for use.
func Format(path string, size int64, signature, description string, opts ...FormatOption) (*Image, error) {
	fcfg := defaultFormatConfig()
	for _, o := range opts {
		o(&fcfg)
	}

	icfg := defaultImageConfig()

	if len(signature) > 8 {
		return nil, wrapErr(ErrBadFormat, "signature %q exceeds 8 characters", signature)
	}

	if len(description) > 250 {
		return nil, wrapErr(ErrBadFormat, "description exceeds 250 characters")
	}

	min := int64(minSize(fcfg.clusterSize, fcfg.maxExtentsPerEntry))
	if size < min {
		return nil, wrapErr(ErrBadFormat, "size %d below minimum %d", size, min)
	}

	if size > int64(maxInt32) {
		return nil, wrapErr(ErrBadFormat, "size %d exceeds INT32_MAX", size)
	}

	if fcfg.clusterSize <= 0 || fcfg.clusterSize%4 != 0 {
		return nil, wrapErr(ErrBadFormat, "cluster size %d must be positive and divisible by 4", fcfg.clusterSize)
	}

	geom := computeLayout(size, fcfg.clusterSize, fcfg.maxExtentsPerEntry)

	backend, err := openFileBackend(path, true)
	if err != nil {
		return nil, wrapErr(ErrBadFormat, "create %s: %v", path, err)
	}

	if err := backend.truncate(0); err != nil {
		_ = backend.close()
		return nil, wrapErr(ErrBadFormat, "truncate %s: %v", path, err)
	}

	if err := backend.truncate(int64(geom.PartitionSize)); err != nil {
		_ = backend.close()
		return nil, wrapErr(ErrBadFormat, "truncate %s: %v", path, err)
	}

	record := BootRecord{
		Signature:          signature,
		Description:        description,
		PartitionSize:       geom.PartitionSize,
		ClusterSize:        geom.ClusterSize,
		ClusterCount:       geom.ClusterCount,
		MftStart:           geom.MftStart,
		BitmapStart:        geom.BitmapStart,
		DataStart:          geom.DataStart,
		MaxExtentsPerEntry: geom.MaxExtentsPerEntry,
	}

	img := &Image{
		backend: backend,
		record:  record,
		geom:    geom,
		path:    path,
		logger:  icfg.logger,
	}

	if err := img.writeBootRecord(record); err != nil {
		_ = backend.close()
		return nil, wrapErr(err, "write boot record")
	}

	if err := img.formatMft(); err != nil {
		_ = backend.close()
		return nil, wrapErr(err, "format mft")
	}

	if err := img.formatBitmap(); err != nil {
		_ = backend.close()
		return nil, wrapErr(err, "format bitmap")
	}

	if err := img.formatRoot(); err != nil {
		_ = backend.close()
		return nil, wrapErr(err, "format root directory")
	}

	if err := backend.sync(); err != nil {
		_ = backend.close()
		return nil, wrapErr(err, "sync formatted image")
	}

	img.logger.Info("formatted image",
		slog.String("path", path),
		slog.Int("partition_size", int(geom.PartitionSize)),
		slog.Int("cluster_count", int(geom.ClusterCount)),
		slog.Int("mft_entry_count", int(geom.MftEntryCount)),
	)

	return img, nil
}

const maxInt32 = int64(1<<31 - 1)

func validateBootRecord(r BootRecord, fileSize int64) error {
	if r.ClusterSize <= 0 || r.ClusterSize%4 != 0 {
		return fmt.Errorf("cluster size %d must be positive and divisible by 4", r.ClusterSize)
	}

	if r.MftStart <= 0 || r.BitmapStart <= 0 || r.DataStart <= 0 {
		return fmt.Errorf("region starts must all be positive")
	}

	if r.MaxExtentsPerEntry <= 0 {
		return fmt.Errorf("max extents per entry must be positive")
	}

	min := minSize(r.ClusterSize, r.MaxExtentsPerEntry)
	if r.PartitionSize < min {
		return fmt.Errorf("partition size %d below minimum %d", r.PartitionSize, min)
	}

	if int64(r.PartitionSize) > fileSize {
		return fmt.Errorf("partition size %d exceeds file size %d", r.PartitionSize, fileSize)
	}

	return nil
}

func (img *Image) writeBootRecord(r BootRecord) error {
	buf, err := encodeBootRecord(r)
	if err != nil {
		return err
	}

	return img.backend.writeAt(buf, 0)
}

// formatMft pre-fills every MFT slot with a free entry.
func (img *Image) formatMft() error {
	entrySize := entrySize(img.geom.MaxExtentsPerEntry)
	free := freeMftEntry(0, img.geom.MaxExtentsPerEntry)

	buf := make([]byte, entrySize)
	if err := encodeMftEntry(buf, free, img.geom.MaxExtentsPerEntry); err != nil {
		return err
	}

	for i := int32(0); i < img.geom.MftEntryCount; i++ {
		off := int64(img.geom.MftStart) + int64(i)*int64(entrySize)
		if err := img.backend.writeAt(buf, off); err != nil {
			return fmt.Errorf("write free mft entry %d: %w", i, err)
		}
	}

	return nil
}

func (img *Image) formatBitmap() error {
	zero := make([]byte, img.geom.BitmapBytes)
	return img.backend.writeAt(zero, int64(img.geom.BitmapStart))
}

// formatRoot writes the root directory: MFT index 0, UID 1, a single
// 1-cluster extent at cluster 0, and the 4-byte self-parent payload.
func (img *Image) formatRoot() error {
	root := MftEntry{
		Index:       0,
		UID:         RootUID,
		IsDirectory: true,
		Order:       0,
		Count:       1,
		Name:        "/",
		Size:        4,
		Extents:     make([]ExtentDescriptor, img.geom.MaxExtentsPerEntry),
	}

	for i := range root.Extents {
		root.Extents[i] = freeExtentDescriptor()
	}

	root.Extents[0] = ExtentDescriptor{StartCluster: 0, Count: 1}

	if err := img.writeEntry(root); err != nil {
		return err
	}

	if err := img.writeBit(0, true); err != nil {
		return err
	}

	payload := make([]byte, 4)
	putInt32(payload, RootUID)

	return img.writeCluster(0, payload, 4)
}

// Close releases the backing byte store.
func (img *Image) Close() error {
	return img.backend.close()
}

// BootRecord returns a copy of the image's boot record.
func (img *Image) BootRecord() BootRecord {
	return img.record
}

// Path returns the host path the image was opened or formatted from.
func (img *Image) Path() string {
	return img.path
}

// rawRead reads len(p) bytes at the given absolute offset. pos and
// pos+len(p) must fall within the partition.
func (img *Image) rawRead(pos int64, p []byte) error {
	if pos < 0 || pos+int64(len(p)) > int64(img.record.PartitionSize) {
		return wrapErr(ErrOutOfBounds, "read pos=%d len=%d partition=%d", pos, len(p), img.record.PartitionSize)
	}

	return img.backend.readAt(p, pos)
}

// rawWrite writes p at the given absolute offset. pos and pos+len(p) must
// fall within the partition.
func (img *Image) rawWrite(pos int64, p []byte) error {
	if pos < 0 || pos+int64(len(p)) > int64(img.record.PartitionSize) {
		return wrapErr(ErrOutOfBounds, "write pos=%d len=%d partition=%d", pos, len(p), img.record.PartitionSize)
	}

	return img.backend.writeAt(p, pos)
}

func putInt32(dst []byte, v int32) {
	dst[0] = byte(v)
	dst[1] = byte(v >> 8)
	dst[2] = byte(v >> 16)
	dst[3] = byte(v >> 24)
}

func getInt32(src []byte) int32 {
	return int32(src[0]) | int32(src[1])<<8 | int32(src[2])<<16 | int32(src[3])<<24
}
