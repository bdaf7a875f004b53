package ntfsgo

import (
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/google/uuid"
)

// Checker validates allocation against reachability: a boot-record
// self-check, a parallel per-node size↔cluster-count check, and a tree
// reachability DFS.
type Checker struct {
	img     *Image
	mgr     *Manager
	tree    *Tree
	workers int
	logger  *slog.Logger
}

// NewChecker builds a Checker over img/mgr/tree.
func NewChecker(img *Image, mgr *Manager, tree *Tree, opts ...CheckerOption) *Checker {
	cfg := defaultCheckerConfig()
	for _, o := range opts {
		o(&cfg)
	}

	return &Checker{img: img, mgr: mgr, tree: tree, workers: cfg.workers, logger: cfg.logger}
}

// CheckBootRecord compares the boot record's geometry against the
// backing file's actual length and the region sizes it implies.
func (c *Checker) CheckBootRecord() ([]string, bool) {
	var warnings []string

	warn := func(format string, a ...any) {
		warnings = append(warnings, "boot record: "+fmt.Sprintf(format, a...))
	}

	record := c.img.BootRecord()
	geom := layoutFromBootRecord(record)

	actualSize, err := c.img.backend.size()
	if err != nil {
		warn("stat failed: %v", err)
	} else if actualSize != int64(record.PartitionSize) {
		warn("file size %d does not match partition size %d", actualSize, record.PartitionSize)
	}

	mftEntrySize := entrySize(record.MaxExtentsPerEntry)
	if mftEntrySize > 0 && geom.MftBytes%mftEntrySize != 0 {
		warn("mft region %d bytes is not a multiple of entry size %d", geom.MftBytes, mftEntrySize)
	}

	wantBitmapBytes := int32(math.Ceil(float64(record.ClusterCount) / 8))
	if geom.BitmapBytes != wantBitmapBytes {
		warn("bitmap region is %d bytes, expected %d", geom.BitmapBytes, wantBitmapBytes)
	}

	dataBytes := record.PartitionSize - record.DataStart
	wantDataBytes := record.ClusterCount * record.ClusterSize

	if dataBytes != wantDataBytes {
		warn("data region is %d bytes, expected %d", dataBytes, wantDataBytes)
	}

	return warnings, len(warnings) == 0
}

// nodeSizeCursor is the shared work queue for CheckNodeSizes: the next
// MFT index to pull and the set of UIDs already checked.
type nodeSizeCursor struct {
	mu      sync.Mutex
	next    int32
	visited map[int32]bool
}

func (cur *nodeSizeCursor) take(total int32) (int32, bool) {
	cur.mu.Lock()
	defer cur.mu.Unlock()

	for cur.next < total {
		idx := cur.next
		cur.next++

		return idx, true
	}

	return 0, false
}

func (cur *nodeSizeCursor) markVisited(uid int32) bool {
	cur.mu.Lock()
	defer cur.mu.Unlock()

	if cur.visited[uid] {
		return false
	}

	cur.visited[uid] = true

	return true
}

// CheckNodeSizes scans the MFT once per distinct UID and warns when a
// node's allocated cluster count doesn't bracket its declared size, per
// the +1-cluster rule: fewer bytes of capacity than the size, or more than
// ceil(size/clusterSize)+1 clusters. Work is distributed across c.workers goroutines
// pulling from a shared cursor; a second mutex guards the output slice.
func (c *Checker) CheckNodeSizes() ([]string, bool) {
	cursor := &nodeSizeCursor{visited: make(map[int32]bool)}

	var (
		outMu    sync.Mutex
		warnings []string
		wg       sync.WaitGroup
	)

	clusterSize := c.img.geom.ClusterSize
	total := c.img.geom.MftEntryCount

	worker := func() {
		defer wg.Done()

		for {
			idx, ok := cursor.take(total)
			if !ok {
				return
			}

			entry, err := c.img.readEntry(idx)
			if err != nil {
				outMu.Lock()
				warnings = append(warnings, fmt.Sprintf("node size: read mft entry %d: %v", idx, err))
				outMu.Unlock()

				continue
			}

			if entry.Free() || !cursor.markVisited(entry.UID) {
				continue
			}

			node, err := c.mgr.Find(entry.UID)
			if err != nil {
				outMu.Lock()
				warnings = append(warnings, fmt.Sprintf("node size: uid %d: %v", entry.UID, err))
				outMu.Unlock()

				continue
			}

			clusters := node.ClusterCount()
			capacity := clusters * clusterSize

			if capacity < node.Size() {
				outMu.Lock()
				warnings = append(warnings, fmt.Sprintf("node size: uid %d has too few clusters (%d bytes in %d clusters)", entry.UID, node.Size(), clusters))
				outMu.Unlock()
			} else if (clusters-2)*clusterSize >= node.Size() {
				outMu.Lock()
				warnings = append(warnings, fmt.Sprintf("node size: uid %d has too many clusters (%d bytes in %d clusters)", entry.UID, node.Size(), clusters))
				outMu.Unlock()
			}
		}
	}

	workers := c.workers
	if workers <= 0 {
		workers = 1
	}

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go worker()
	}

	wg.Wait()

	return warnings, len(warnings) == 0
}

// CheckReachability walks the directory tree from root, flags any UID
// reached through more than one parent, then scans the whole MFT for
// live UIDs that were never reached.
func (c *Checker) CheckReachability() ([]string, bool) {
	var warnings []string

	visited := map[int32]bool{RootUID: true}

	var dfs func(node Node) error

	dfs = func(node Node) error {
		if !node.IsDirectory() {
			return nil
		}

		kids, err := c.tree.readChildren(node)
		if err != nil {
			return err
		}

		for _, k := range kids[1:] {
			if visited[k.UID()] {
				warnings = append(warnings, fmt.Sprintf("reachability: uid %d present in multiple directories", k.UID()))
				continue
			}

			visited[k.UID()] = true

			if err := dfs(k); err != nil {
				return err
			}
		}

		return nil
	}

	root, err := c.mgr.Find(RootUID)
	if err != nil {
		return append(warnings, fmt.Sprintf("reachability: %v", err)), false
	}

	if err := dfs(root); err != nil {
		warnings = append(warnings, fmt.Sprintf("reachability: %v", err))
	}

	seen := map[int32]bool{}

	for i := int32(0); i < c.img.geom.MftEntryCount; i++ {
		e, err := c.img.readEntry(i)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("reachability: read mft entry %d: %v", i, err))
			continue
		}

		if e.Free() || seen[e.UID] {
			continue
		}

		seen[e.UID] = true

		if !visited[e.UID] {
			warnings = append(warnings, fmt.Sprintf("reachability: uid %d is unreachable", e.UID))
		}
	}

	return warnings, len(warnings) == 0
}

// Run executes all three checks and returns the combined warnings and
// overall success flag.
func (c *Checker) Run() ([]string, bool) {
	runID := uuid.New().String()
	logger := c.logger.With(slog.String("run_id", runID))

	var all []string

	ok := true

	for _, check := range []func() ([]string, bool){c.CheckBootRecord, c.CheckNodeSizes, c.CheckReachability} {
		warnings, good := check()
		all = append(all, warnings...)
		ok = ok && good
	}

	logger.Info("check complete", slog.Bool("ok", ok), slog.Int("warnings", len(all)))

	return all, ok
}
