package ntfsgo

import (
	"bytes"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, partitionSize int64) (*Image, *Manager) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.img")

	img, err := Format(path, partitionSize, "NTFSGO", "")
	require.NoError(t, err)

	t.Cleanup(func() { img.Close() })

	mgr := NewManager(img, WithRand(rand.New(rand.NewSource(1))))

	return img, mgr
}

func TestManagerCreateAppliesPlusOneClusterRule(t *testing.T) {
	_, mgr := newTestManager(t, 1<<20)

	node, err := mgr.Create("file.txt", false, DefaultClusterSize)
	require.NoError(t, err)

	// size exactly fills one cluster; the +1 rule should allocate two.
	assert.Equal(t, int32(2), node.ClusterCount())
}

func TestManagerCreateRejectsDuplicateUID(t *testing.T) {
	_, mgr := newTestManager(t, 1<<20)

	a, err := mgr.Create("a.txt", false, 10)
	require.NoError(t, err)

	b, err := mgr.Create("b.txt", false, 10)
	require.NoError(t, err)

	assert.NotEqual(t, a.UID(), b.UID())
}

func TestManagerSaveThenFind(t *testing.T) {
	_, mgr := newTestManager(t, 1<<20)

	node, err := mgr.Create("notes.txt", false, 128)
	require.NoError(t, err)

	found, err := mgr.Find(node.UID())
	require.NoError(t, err)

	assert.Equal(t, node.Name(), found.Name())
	assert.Equal(t, node.Size(), found.Size())
	assert.Equal(t, node.Clusters(), found.Clusters())
}

func TestManagerFindMissingUID(t *testing.T) {
	_, mgr := newTestManager(t, 1<<20)

	_, err := mgr.Find(999999)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestManagerReleaseFreesEntriesAndBitmap(t *testing.T) {
	img, mgr := newTestManager(t, 1<<20)

	node, err := mgr.Create("gone.txt", false, 64)
	require.NoError(t, err)

	clusters := node.Clusters()

	require.NoError(t, mgr.Release(node))

	for _, c := range clusters {
		allocated, err := img.readBit(c)
		require.NoError(t, err)
		assert.False(t, allocated)
	}

	_, err = mgr.Find(node.UID())
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestManagerResizeInPlaceWithinSlack(t *testing.T) {
	_, mgr := newTestManager(t, 1<<20)

	node, err := mgr.Create("grow.txt", false, 10)
	require.NoError(t, err)

	originalClusters := node.Clusters()

	// 10 bytes get two clusters; growing into the reserved second cluster
	// leaves less than one cluster of slack, so the extents are kept.
	resized, err := mgr.Resize(node, DefaultClusterSize+20)
	require.NoError(t, err)

	assert.Equal(t, int32(DefaultClusterSize+20), resized.Size())
	assert.Equal(t, originalClusters, resized.Clusters())
}

func TestManagerResizeReallocatesBeyondSlack(t *testing.T) {
	_, mgr := newTestManager(t, 4<<20)

	node, err := mgr.Create("grow-big.txt", false, 10)
	require.NoError(t, err)

	resized, err := mgr.Resize(node, DefaultClusterSize*10)
	require.NoError(t, err)

	assert.Equal(t, node.UID(), resized.UID())
	assert.Equal(t, DefaultClusterSize*10, resized.Size())
	assert.Greater(t, len(resized.Clusters()), len(node.Clusters()))
}

func TestManagerRename(t *testing.T) {
	_, mgr := newTestManager(t, 1<<20)

	node, err := mgr.Create("old.txt", false, 10)
	require.NoError(t, err)

	renamed, err := mgr.Rename(node, "new.txt")
	require.NoError(t, err)

	assert.Equal(t, "new.txt", renamed.Name())
	assert.Equal(t, node.UID(), renamed.UID())
}

func TestManagerRenameRejectsOverlongName(t *testing.T) {
	_, mgr := newTestManager(t, 1<<20)

	node, err := mgr.Create("old.txt", false, 10)
	require.NoError(t, err)

	_, err = mgr.Rename(node, "this-name-is-definitely-too-long-for-a-slot")
	assert.Error(t, err)
}

func TestManagerCloneCopiesPayload(t *testing.T) {
	_, mgr := newTestManager(t, 1<<20)

	src, err := mgr.Create("src.txt", false, 5)
	require.NoError(t, err)

	require.NoError(t, mgr.WriteInto(src, bytes.NewReader([]byte("hello"))))

	clone, err := mgr.Clone(src, "clone.txt")
	require.NoError(t, err)

	assert.NotEqual(t, src.UID(), clone.UID())
	assert.Equal(t, "clone.txt", clone.Name())

	var buf bytes.Buffer
	require.NoError(t, mgr.ReadFrom(clone, &buf))
	assert.Equal(t, "hello", buf.String())
}

func TestManagerWriteIntoThenReadFromRoundTrip(t *testing.T) {
	_, mgr := newTestManager(t, 1<<20)

	payload := []byte("the quick brown fox")

	node, err := mgr.Create("fox.txt", false, int32(len(payload)))
	require.NoError(t, err)

	require.NoError(t, mgr.WriteInto(node, bytes.NewReader(payload)))

	var buf bytes.Buffer
	require.NoError(t, mgr.ReadFrom(node, &buf))

	assert.Equal(t, payload, buf.Bytes())
}

func TestManagerFindFreeExtentsFallsBackToFragmentedRuns(t *testing.T) {
	img, mgr := newTestManager(t, 1<<20)

	// Mark every odd cluster allocated so that no two free clusters are
	// adjacent; findFreeExtents must fall back to gathering several
	// one-cluster runs instead of one contiguous one.
	for i := int32(1); i < img.geom.ClusterCount; i += 2 {
		require.NoError(t, img.writeBit(i, true))
	}

	extents, err := mgr.findFreeExtents(DefaultClusterSize * 3)
	require.NoError(t, err)
	assert.Greater(t, len(extents), 1)
}

func TestManagerCreateFailsWhenClustersExhausted(t *testing.T) {
	img, mgr := newTestManager(t, 1<<20)

	for i := int32(0); i < img.geom.ClusterCount; i++ {
		require.NoError(t, img.writeBit(i, true))
	}

	_, err := mgr.Create("nospace.txt", false, 10)
	assert.ErrorIs(t, err, ErrNotEnoughClusters)
}
