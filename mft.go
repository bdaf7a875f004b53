package ntfsgo

import "sort"

// entrySizeBytes returns this image's on-disk MftEntry size.
func (img *Image) entrySizeBytes() int32 {
	return entrySize(img.geom.MaxExtentsPerEntry)
}

func (img *Image) entryOffset(i int32) int64 {
	return int64(img.geom.MftStart) + int64(i)*int64(img.entrySizeBytes())
}

// readEntry reads the MFT slot at index i.
func (img *Image) readEntry(i int32) (MftEntry, error) {
	if i < 0 || i >= img.geom.MftEntryCount {
		return MftEntry{}, wrapErr(ErrMftOutOfBounds, "mft index %d (count=%d)", i, img.geom.MftEntryCount)
	}

	buf := make([]byte, img.entrySizeBytes())
	if err := img.rawRead(img.entryOffset(i), buf); err != nil {
		return MftEntry{}, err
	}

	return decodeMftEntry(buf, i, img.geom.MaxExtentsPerEntry), nil
}

// writeEntry writes e to its own Index slot.
func (img *Image) writeEntry(e MftEntry) error {
	if e.Index < 0 || e.Index >= img.geom.MftEntryCount {
		return wrapErr(ErrMftOutOfBounds, "mft index %d (count=%d)", e.Index, img.geom.MftEntryCount)
	}

	buf := make([]byte, img.entrySizeBytes())
	if err := encodeMftEntry(buf, e, img.geom.MaxExtentsPerEntry); err != nil {
		return wrapErr(err, "encode mft entry %d", e.Index)
	}

	return img.rawWrite(img.entryOffset(e.Index), buf)
}

// readEntriesByUID scans the whole MFT for entries sharing uid, returning
// them sorted ascending by Order. A stable sort preserves scan order for
// duplicate orders, which are not expected but are not fatal here.
func (img *Image) readEntriesByUID(uid int32) ([]MftEntry, error) {
	var out []MftEntry

	for i := int32(0); i < img.geom.MftEntryCount; i++ {
		e, err := img.readEntry(i)
		if err != nil {
			return nil, err
		}

		if e.UID == uid {
			out = append(out, e)
		}
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Order < out[b].Order
	})

	return out, nil
}
