package ntfsgo

// Node is the in-memory aggregate of all MFT entries sharing a UID,
// sorted by entry order. It is value-like: copying it is free, and it
// never mutates the backing image directly — only Manager does that.
type Node struct {
	entries []MftEntry
}

// newNode builds a Node from a non-empty, order-sorted entry list.
func newNode(entries []MftEntry) (Node, error) {
	if len(entries) == 0 {
		return Node{}, wrapErr(ErrNodeConstruct, "empty entry list")
	}

	return Node{entries: entries}, nil
}

// UID returns the node's identifier, shared by all of its entries.
func (n Node) UID() int32 { return n.entries[0].UID }

// Name returns the node's name.
func (n Node) Name() string { return n.entries[0].Name }

// IsDirectory reports whether the node is a directory.
func (n Node) IsDirectory() bool { return n.entries[0].IsDirectory }

// Size returns the node's payload size in bytes.
func (n Node) Size() int32 { return n.entries[0].Size }

// EntryCount returns how many MFT entries make up this node.
func (n Node) EntryCount() int32 { return n.entries[0].Count }

// Entries returns the node's MFT entries, sorted by Order.
func (n Node) Entries() []MftEntry {
	return n.entries
}

// Extents concatenates, in entry order, each entry's used extent slots
// up to the first sentinel.
func (n Node) Extents() []ExtentDescriptor {
	var out []ExtentDescriptor

	for _, e := range n.entries {
		for _, ext := range e.Extents {
			if ext.Unused() {
				break
			}

			out = append(out, ext)
		}
	}

	return out
}

// Clusters expands Extents into the flat, ordered list of cluster
// indices the node occupies.
func (n Node) Clusters() []int32 {
	var out []int32

	for _, ext := range n.Extents() {
		for c := ext.StartCluster; c < ext.StartCluster+ext.Count; c++ {
			out = append(out, c)
		}
	}

	return out
}

// ClusterCount returns len(Clusters()) without building the slice twice
// when only the count is needed.
func (n Node) ClusterCount() int32 {
	var total int32
	for _, ext := range n.Extents() {
		total += ext.Count
	}

	return total
}

// Capacity returns the total byte capacity backing this node:
// ClusterCount * clusterSize.
func (n Node) Capacity(clusterSize int32) int32 {
	return n.ClusterCount() * clusterSize
}
