package ntfsgo

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestImage(t *testing.T, partitionSize int64) *Image {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.img")

	img, err := Format(path, partitionSize, "NTFSGO", "printer test")
	require.NoError(t, err)

	t.Cleanup(func() { img.Close() })

	return img
}

func TestFormatBootRecordIncludesKeyFields(t *testing.T) {
	img := newTestImage(t, 1<<20)

	out := FormatBootRecord(img)

	assert.Contains(t, out, "NTFSGO")
	assert.Contains(t, out, "printer test")
	assert.Contains(t, out, "mft entry count")
}

func TestFormatMftHidesFreeEntriesByDefault(t *testing.T) {
	img := newTestImage(t, 1<<20)

	withoutFree := FormatMft(img, false)
	withFree := FormatMft(img, true)

	assert.Less(t, strings.Count(withoutFree, "\n"), strings.Count(withFree, "\n"))
	assert.Contains(t, withoutFree, "/")
}

func TestFormatBitmapMarksRootClusterAllocated(t *testing.T) {
	img := newTestImage(t, 1<<20)

	out := FormatBitmap(img)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.NotEmpty(t, lines)

	firstRow := lines[0]
	assert.Contains(t, firstRow, "1")
}
