package ntfsgo

import (
	"fmt"
	"strings"
)

func hline(width int) string {
	return strings.Repeat("-", width)
}

// FormatBootRecord renders the boot record as a fixed-width key/value
// table.
func FormatBootRecord(img *Image) string {
	r := img.BootRecord()

	var b strings.Builder

	fmt.Fprintf(&b, "%-22s %s\n", "signature", r.Signature)
	fmt.Fprintf(&b, "%-22s %s\n", "description", r.Description)
	fmt.Fprintf(&b, "%-22s %d\n", "partition size", r.PartitionSize)
	fmt.Fprintf(&b, "%-22s %d\n", "cluster size", r.ClusterSize)
	fmt.Fprintf(&b, "%-22s %d\n", "cluster count", r.ClusterCount)
	fmt.Fprintf(&b, "%-22s %d\n", "mft entry count", img.geom.MftEntryCount)
	fmt.Fprintf(&b, "%-22s %d\n", "max extents per entry", r.MaxExtentsPerEntry)
	fmt.Fprintf(&b, "%-22s %d\n", "mft start", r.MftStart)
	fmt.Fprintf(&b, "%-22s %d\n", "bitmap start", r.BitmapStart)
	fmt.Fprintf(&b, "%-22s %d\n", "data start", r.DataStart)

	return b.String()
}

// FormatMft renders the MFT as a fixed-width table. When all is false,
// only in-use entries are listed.
func FormatMft(img *Image, all bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%-6s %-10s %-4s %-11s %-5s %-10s %s\n", "index", "uid", "dir", "name", "order", "count", "size")
	fmt.Fprintln(&b, hline(70))

	for i := int32(0); i < img.geom.MftEntryCount; i++ {
		e, err := img.readEntry(i)
		if err != nil {
			fmt.Fprintf(&b, "%-6d <error: %v>\n", i, err)
			continue
		}

		if e.Free() && !all {
			continue
		}

		dir := "-"
		if e.IsDirectory {
			dir = "+"
		}

		fmt.Fprintf(&b, "%-6d %-10d %-4s %-11s %-5d %-10d %d\n", i, e.UID, dir, e.Name, e.Order, e.Count, e.Size)
	}

	return b.String()
}

// FormatBitmap renders the cluster allocation bitmap as rows of 64 bits,
// '1' for allocated and '0' for free.
func FormatBitmap(img *Image) string {
	const perRow = 64

	var b strings.Builder

	for i := int32(0); i < img.geom.ClusterCount; i += perRow {
		fmt.Fprintf(&b, "%8d  ", i)

		for j := i; j < i+perRow && j < img.geom.ClusterCount; j++ {
			bit, err := img.readBit(j)
			if err != nil {
				b.WriteByte('?')
				continue
			}

			if bit {
				b.WriteByte('1')
			} else {
				b.WriteByte('0')
			}
		}

		b.WriteByte('\n')
	}

	return b.String()
}
