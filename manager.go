package ntfsgo

import (
	"io"
	"log/slog"
	"math"
	"math/rand"
)

// Manager is the allocator and lifecycle controller for nodes: it owns
// UID generation, extent/entry search, and every create/save/release/
// resize/rename/clone operation. It holds no cache; every read goes
// through its Image.
type Manager struct {
	img    *Image
	rng    *rand.Rand
	logger *slog.Logger
}

// NewManager wraps img with a node allocator.
func NewManager(img *Image, opts ...ManagerOption) *Manager {
	cfg := defaultManagerConfig()
	for _, o := range opts {
		o(&cfg)
	}

	return &Manager{img: img, rng: cfg.rng, logger: cfg.logger}
}

func ceilDiv(a, b int32) int32 {
	if a <= 0 {
		return 0
	}

	return (a + b - 1) / b
}

// freshUID draws a uniformly random int32 in [1, math.MaxInt32] and
// rejects collisions by scanning the MFT. Deterministic seeding is
// supplied by injecting a *rand.Rand via WithRand.
func (m *Manager) freshUID() (int32, error) {
	for {
		candidate := m.rng.Int31n(math.MaxInt32) + 1

		existing, err := m.img.readEntriesByUID(candidate)
		if err != nil {
			return 0, err
		}

		if len(existing) == 0 {
			return candidate, nil
		}
	}
}

// findFreeExtents searches for extents totaling exactly
// ceil(size/clusterSize)+1 clusters: first a single contiguous run
// (phase 1), falling back to the maximal free runs in ascending cluster
// order, the last one cut short once the target is reached (phase 2).
func (m *Manager) findFreeExtents(size int32) ([]ExtentDescriptor, error) {
	clusterSize := m.img.geom.ClusterSize
	clusterCount := m.img.geom.ClusterCount
	target := ceilDiv(size, clusterSize) + 1

	runStart, runLen := int32(-1), int32(0)

	for i := int32(0); i < clusterCount; i++ {
		allocated, err := m.img.readBit(i)
		if err != nil {
			return nil, err
		}

		if allocated {
			runLen = 0
			continue
		}

		if runLen == 0 {
			runStart = i
		}

		runLen++

		if runLen == target {
			return []ExtentDescriptor{{StartCluster: runStart, Count: target}}, nil
		}
	}

	var extents []ExtentDescriptor

	var total int32

	runStart, runLen = -1, 0

	flush := func() {
		if runLen > 0 {
			extents = append(extents, ExtentDescriptor{StartCluster: runStart, Count: runLen})
			total += runLen
			runStart, runLen = -1, 0
		}
	}

	for i := int32(0); i < clusterCount && total < target; i++ {
		allocated, err := m.img.readBit(i)
		if err != nil {
			return nil, err
		}

		if !allocated {
			if runLen == 0 {
				runStart = i
			}

			runLen++

			if total+runLen == target {
				break
			}
		} else {
			flush()
		}
	}

	flush()

	if total < target {
		return nil, wrapErr(ErrNotEnoughClusters, "need %d clusters, found %d", target, total)
	}

	return extents, nil
}

// findFreeEntries returns exactly ceil(extentCount/maxExtentsPerEntry)
// free MFT slot indices, in ascending index order.
func (m *Manager) findFreeEntries(extentCount int32) ([]int32, error) {
	need := ceilDiv(extentCount, m.img.geom.MaxExtentsPerEntry)
	if need == 0 {
		need = 1
	}

	var free []int32

	for i := int32(0); i < m.img.geom.MftEntryCount && int32(len(free)) < need; i++ {
		e, err := m.img.readEntry(i)
		if err != nil {
			return nil, err
		}

		if e.Free() {
			free = append(free, i)
		}
	}

	if int32(len(free)) < need {
		return nil, wrapErr(ErrNotEnoughMftItems, "need %d mft entries, found %d", need, len(free))
	}

	return free, nil
}

// allocate searches for extents and entries for a node of the given
// identity and lays out the resulting entries, without touching the
// bitmap or the MFT. Callers persist the result via Save.
func (m *Manager) allocate(uid int32, name string, isDirectory bool, size int32) ([]MftEntry, error) {
	extents, err := m.findFreeExtents(size)
	if err != nil {
		return nil, err
	}

	slots, err := m.findFreeEntries(int32(len(extents)))
	if err != nil {
		return nil, err
	}

	maxExtents := m.img.geom.MaxExtentsPerEntry
	entries := make([]MftEntry, len(slots))
	cursor := 0

	for i, idx := range slots {
		e := MftEntry{
			Index:       idx,
			UID:         uid,
			IsDirectory: isDirectory,
			Order:       int32(i),
			Count:       int32(len(slots)),
			Name:        name,
			Size:        size,
			Extents:     make([]ExtentDescriptor, maxExtents),
		}

		for j := range e.Extents {
			if cursor < len(extents) {
				e.Extents[j] = extents[cursor]
				cursor++
			} else {
				e.Extents[j] = freeExtentDescriptor()
			}
		}

		entries[i] = e
	}

	return entries, nil
}

// Create allocates a fresh UID, extents and MFT entries for a new node
// and persists it.
func (m *Manager) Create(name string, isDirectory bool, size int32) (Node, error) {
	uid, err := m.freshUID()
	if err != nil {
		return Node{}, err
	}

	entries, err := m.allocate(uid, name, isDirectory, size)
	if err != nil {
		return Node{}, err
	}

	node, err := newNode(entries)
	if err != nil {
		return Node{}, err
	}

	if err := m.Save(node); err != nil {
		return Node{}, err
	}

	m.logger.Debug("created node", slog.Int("uid", int(uid)), slog.String("name", name), slog.Int("size", int(size)))

	return node, nil
}

// Save sets the bitmap bits for every cluster node lists and writes
// every one of its MFT entries.
func (m *Manager) Save(node Node) error {
	for _, c := range node.Clusters() {
		if err := m.img.writeBit(c, true); err != nil {
			return err
		}
	}

	for _, e := range node.Entries() {
		if err := m.img.writeEntry(e); err != nil {
			return err
		}
	}

	return nil
}

// Release clears node's bitmap bits and overwrites every entry with a
// free-sentinel record, preserving slot indices. Clusters themselves are
// not zeroed.
func (m *Manager) Release(node Node) error {
	for _, c := range node.Clusters() {
		if err := m.img.writeBit(c, false); err != nil {
			return err
		}
	}

	for _, e := range node.Entries() {
		if err := m.img.writeEntry(freeMftEntry(e.Index, m.img.geom.MaxExtentsPerEntry)); err != nil {
			return err
		}
	}

	return nil
}

// Resize changes node's payload size. When newSize still fits the
// current capacity within one cluster of slack, entries are rewritten in
// place with the same extents. Otherwise the node is released and a
// fresh allocation attempted under the same UID/name/isDirectory; on
// allocation failure the original node is restored by re-saving it.
func (m *Manager) Resize(node Node, newSize int32) (Node, error) {
	capacity := node.Capacity(m.img.geom.ClusterSize)

	if newSize <= capacity && capacity-newSize < m.img.geom.ClusterSize {
		resized := make([]MftEntry, len(node.Entries()))

		for i, e := range node.Entries() {
			e.Size = newSize
			resized[i] = e
		}

		newNode, err := newNode(resized)
		if err != nil {
			return Node{}, err
		}

		if err := m.Save(newNode); err != nil {
			return Node{}, err
		}

		return newNode, nil
	}

	if err := m.Release(node); err != nil {
		return Node{}, err
	}

	entries, err := m.allocate(node.UID(), node.Name(), node.IsDirectory(), newSize)
	if err != nil {
		if restoreErr := m.Save(node); restoreErr != nil {
			return Node{}, restoreErr
		}

		return Node{}, err
	}

	newNode, err := newNode(entries)
	if err != nil {
		return Node{}, err
	}

	if err := m.Save(newNode); err != nil {
		return Node{}, err
	}

	return newNode, nil
}

// Rename rewrites every entry of node with newName, preserving all other
// fields.
func (m *Manager) Rename(node Node, newName string) (Node, error) {
	if len(newName) > maxNameLen {
		return Node{}, wrapErr(ErrBadFormat, "name %q exceeds %d bytes", newName, maxNameLen)
	}

	renamed := make([]MftEntry, len(node.Entries()))

	for i, e := range node.Entries() {
		e.Name = newName
		renamed[i] = e
	}

	newNode, err := newNode(renamed)
	if err != nil {
		return Node{}, err
	}

	if err := m.Save(newNode); err != nil {
		return Node{}, err
	}

	return newNode, nil
}

// Clone allocates a new node with a fresh UID, identical size and
// isDirectory as source, and copies every byte of source's clusters into
// the new node's clusters. The clone is not linked into any directory.
func (m *Manager) Clone(source Node, newName string) (Node, error) {
	uid, err := m.freshUID()
	if err != nil {
		return Node{}, err
	}

	entries, err := m.allocate(uid, newName, source.IsDirectory(), source.Size())
	if err != nil {
		return Node{}, err
	}

	clone, err := newNode(entries)
	if err != nil {
		return Node{}, err
	}

	if err := m.Save(clone); err != nil {
		return Node{}, err
	}

	srcClusters := source.Clusters()
	dstClusters := clone.Clusters()

	buf := make([]byte, m.img.geom.ClusterSize)

	for i := range srcClusters {
		if err := m.img.readCluster(srcClusters[i], buf, m.img.geom.ClusterSize); err != nil {
			return Node{}, err
		}

		if err := m.img.writeCluster(dstClusters[i], buf, m.img.geom.ClusterSize); err != nil {
			return Node{}, err
		}
	}

	return clone, nil
}

// Find assembles the Node for uid from its live MFT entries.
func (m *Manager) Find(uid int32) (Node, error) {
	entries, err := m.img.readEntriesByUID(uid)
	if err != nil {
		return Node{}, err
	}

	if len(entries) == 0 {
		return Node{}, wrapErr(ErrNodeNotFound, "uid %d", uid)
	}

	return newNode(entries)
}

// WriteInto copies exactly node.Size() bytes from source into node's
// clusters.
func (m *Manager) WriteInto(node Node, source io.Reader) error {
	return m.img.writeClustersStream(node.Clusters(), source, int64(node.Size()))
}

// ReadFrom copies exactly node.Size() bytes from node's clusters into
// dest.
func (m *Manager) ReadFrom(node Node, dest io.Writer) error {
	return m.img.readClustersStream(node.Clusters(), dest, int64(node.Size()))
}

// WriteIntoBuffer is the contiguous-buffer form of WriteInto.
func (m *Manager) WriteIntoBuffer(node Node, buf []byte) error {
	return m.img.writeClusters(node.Clusters(), buf, node.Size())
}

// ReadFromBuffer is the contiguous-buffer form of ReadFrom.
func (m *Manager) ReadFromBuffer(node Node, buf []byte) error {
	return m.img.readClusters(node.Clusters(), buf, node.Size())
}
