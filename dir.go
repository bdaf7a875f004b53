package ntfsgo

import (
	"io"
	"log/slog"
	"strings"
)

// Tree is the directory layer built on top of a Manager: path parsing,
// name resolution, and the top-level filesystem operations (Ls, Mkdir,
// Mkfile, Mv, Cp, Cat, ...).
type Tree struct {
	mgr    *Manager
	cwd    int32
	logger *slog.Logger
}

// NewTree builds a Tree rooted at RootUID.
func NewTree(mgr *Manager, logger *slog.Logger) *Tree {
	if logger == nil {
		logger = slog.Default()
	}

	return &Tree{mgr: mgr, cwd: RootUID, logger: logger}
}

func encodeUIDs(uids []int32) []byte {
	buf := make([]byte, len(uids)*4)
	for i, u := range uids {
		putInt32(buf[i*4:i*4+4], u)
	}

	return buf
}

func decodeUIDs(buf []byte) []int32 {
	n := len(buf) / 4
	out := make([]int32, n)

	for i := 0; i < n; i++ {
		out[i] = getInt32(buf[i*4 : i*4+4])
	}

	return out
}

// readChildren returns dir's children in storage order; index 0 is the
// parent link.
func (t *Tree) readChildren(dir Node) ([]Node, error) {
	if !dir.IsDirectory() {
		return nil, wrapErr(ErrNotADirectory, "uid %d", dir.UID())
	}

	buf := make([]byte, dir.Size())
	if err := t.mgr.ReadFromBuffer(dir, buf); err != nil {
		return nil, err
	}

	uids := decodeUIDs(buf)
	nodes := make([]Node, len(uids))

	for i, uid := range uids {
		n, err := t.mgr.Find(uid)
		if err != nil {
			return nil, err
		}

		nodes[i] = n
	}

	return nodes, nil
}

// add appends child to dir's children, idempotently succeeding if a
// same-named, same-UID entry is already present.
func (t *Tree) add(dir, child Node) (Node, error) {
	children, err := t.readChildren(dir)
	if err != nil {
		return Node{}, err
	}

	for _, c := range children[1:] {
		if c.Name() != child.Name() {
			continue
		}

		if c.UID() == child.UID() {
			return dir, nil
		}

		return Node{}, wrapErr(ErrAlreadyExists, "name %q", child.Name())
	}

	uids := make([]int32, len(children)+1)
	for i, c := range children {
		uids[i] = c.UID()
	}

	uids[len(children)] = child.UID()

	newDir, err := t.mgr.Resize(dir, int32(len(uids)*4))
	if err != nil {
		return Node{}, err
	}

	if err := t.mgr.WriteIntoBuffer(newDir, encodeUIDs(uids)); err != nil {
		return Node{}, err
	}

	return newDir, nil
}

// remove drops the entry whose UID matches child from dir's children.
func (t *Tree) remove(dir, child Node) (Node, error) {
	children, err := t.readChildren(dir)
	if err != nil {
		return Node{}, err
	}

	uids := make([]int32, 0, len(children))

	for _, c := range children {
		if c.UID() == child.UID() {
			continue
		}

		uids = append(uids, c.UID())
	}

	newDir, err := t.mgr.Resize(dir, int32(len(uids)*4))
	if err != nil {
		return Node{}, err
	}

	if err := t.mgr.WriteIntoBuffer(newDir, encodeUIDs(uids)); err != nil {
		return Node{}, err
	}

	return newDir, nil
}

// setParent overwrites a directory's own parent-link slot (payload
// element 0) in place, used by Mv when a directory changes parents.
func (t *Tree) setParent(dir Node, parentUID int32) error {
	buf := make([]byte, dir.Size())
	if err := t.mgr.ReadFromBuffer(dir, buf); err != nil {
		return err
	}

	putInt32(buf[0:4], parentUID)

	return t.mgr.WriteIntoBuffer(dir, buf)
}

// parse splits path into an anchor UID (root if path is absolute, the
// current directory otherwise), its non-empty components ("." and ".."
// are kept for walk to interpret), and whether
// it ends in "/" (the referent must then be a directory).
func (t *Tree) parse(path string) (anchor int32, comps []string, trailingSlash bool) {
	anchor = t.cwd
	if strings.HasPrefix(path, "/") {
		anchor = RootUID
	}

	trailingSlash = strings.HasSuffix(path, "/")

	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return anchor, nil, trailingSlash
	}

	for _, c := range strings.Split(trimmed, "/") {
		if c != "" {
			comps = append(comps, c)
		}
	}

	return anchor, comps, trailingSlash
}

// walk resolves comps starting from anchor: "." stays, ".." moves to the
// parent (clamped at root), and a literal component requires the current
// node to be a directory and matches one of its children by exact name.
func (t *Tree) walk(anchor int32, comps []string) (Node, error) {
	current, err := t.mgr.Find(anchor)
	if err != nil {
		return Node{}, err
	}

	for _, comp := range comps {
		switch comp {
		case ".":
			continue
		case "..":
			if current.UID() == RootUID {
				continue
			}

			kids, err := t.readChildren(current)
			if err != nil {
				return Node{}, err
			}

			current, err = t.mgr.Find(kids[0].UID())
			if err != nil {
				return Node{}, err
			}
		default:
			if !current.IsDirectory() {
				return Node{}, wrapErr(ErrPathNotFound, "%q is not a directory", comp)
			}

			kids, err := t.readChildren(current)
			if err != nil {
				return Node{}, err
			}

			found := false

			for _, k := range kids[1:] {
				if k.Name() == comp {
					current, found = k, true
					break
				}
			}

			if !found {
				return Node{}, wrapErr(ErrPathNotFound, "no such entry %q", comp)
			}
		}
	}

	return current, nil
}

// resolve is the full path resolver: parse then walk, failing if a
// trailing "/" was given but the referent is not a directory.
func (t *Tree) resolve(path string) (Node, error) {
	anchor, comps, trailingSlash := t.parse(path)

	node, err := t.walk(anchor, comps)
	if err != nil {
		return Node{}, err
	}

	if trailingSlash && !node.IsDirectory() {
		return Node{}, wrapErr(ErrPathNotFound, "%q is not a directory", path)
	}

	return node, nil
}

// Resolve exposes path resolution for read-only collaborators (the info
// command's metadata dump).
func (t *Tree) Resolve(path string) (Node, error) {
	return t.resolve(path)
}

// splitPath separates the final path component from everything before
// it, preserving a leading "/" on the parent path when path is absolute.
func splitPath(path string) (parentPath, leaf string) {
	trimmed := strings.TrimSuffix(path, "/")

	idx := strings.LastIndex(trimmed, "/")
	if idx == -1 {
		return ".", trimmed
	}

	parentPath = trimmed[:idx]
	if parentPath == "" {
		parentPath = "/"
	}

	return parentPath, trimmed[idx+1:]
}

// Pwd walks from the current directory upward via parent links to root
// and formats the result as "/a/b/c/".
func (t *Tree) Pwd() (string, error) {
	cur, err := t.mgr.Find(t.cwd)
	if err != nil {
		return "", err
	}

	var names []string

	for cur.UID() != RootUID {
		kids, err := t.readChildren(cur)
		if err != nil {
			return "", err
		}

		names = append(names, cur.Name())

		cur, err = t.mgr.Find(kids[0].UID())
		if err != nil {
			return "", err
		}
	}

	if len(names) == 0 {
		return "/", nil
	}

	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}

	return "/" + strings.Join(names, "/") + "/", nil
}

// Cd resolves p and, if it names a directory, makes it the current
// directory.
func (t *Tree) Cd(p string) error {
	node, err := t.resolve(p)
	if err != nil {
		return err
	}

	if !node.IsDirectory() {
		return wrapErr(ErrNotADirectory, "%q", p)
	}

	t.cwd = node.UID()

	return nil
}

// Ls resolves p (the current directory if p is empty) to a directory and
// returns its children, excluding the parent link.
func (t *Tree) Ls(p string) ([]Node, error) {
	if p == "" {
		p = "."
	}

	node, err := t.resolve(p)
	if err != nil {
		return nil, err
	}

	if !node.IsDirectory() {
		return nil, wrapErr(ErrNotADirectory, "%q", p)
	}

	kids, err := t.readChildren(node)
	if err != nil {
		return nil, err
	}

	return kids[1:], nil
}

// Mkdir creates an empty directory at p. The parent must exist and must
// not already contain an entry of the same name.
func (t *Tree) Mkdir(p string) error {
	parentPath, leaf := splitPath(p)
	if leaf == "" {
		return wrapErr(ErrBadFormat, "empty name in %q", p)
	}

	parent, err := t.resolve(parentPath)
	if err != nil {
		return err
	}

	if !parent.IsDirectory() {
		return wrapErr(ErrNotADirectory, "%q", parentPath)
	}

	kids, err := t.readChildren(parent)
	if err != nil {
		return err
	}

	for _, k := range kids[1:] {
		if k.Name() == leaf {
			return wrapErr(ErrAlreadyExists, "%q", p)
		}
	}

	node, err := t.mgr.Create(leaf, true, 4)
	if err != nil {
		return err
	}

	newParent, err := t.add(parent, node)
	if err != nil {
		_ = t.mgr.Release(node)
		return err
	}

	if err := t.mgr.WriteIntoBuffer(node, encodeUIDs([]int32{newParent.UID()})); err != nil {
		_, _ = t.remove(newParent, node)
		_ = t.mgr.Release(node)

		return err
	}

	t.logger.Info("mkdir", slog.String("path", p), slog.Int("uid", int(node.UID())))

	return nil
}

// Rmdir removes the empty directory at p.
func (t *Tree) Rmdir(p string) error {
	node, err := t.resolve(p)
	if err != nil {
		return err
	}

	if !node.IsDirectory() {
		return wrapErr(ErrNotADirectory, "%q", p)
	}

	if node.UID() == RootUID {
		return wrapErr(ErrDirectoryNotEmpty, "cannot remove root")
	}

	if node.Size() != 4 {
		return wrapErr(ErrDirectoryNotEmpty, "%q", p)
	}

	parentPath, _ := splitPath(p)

	parent, err := t.resolve(parentPath)
	if err != nil {
		return err
	}

	if _, err := t.remove(parent, node); err != nil {
		return err
	}

	return t.mgr.Release(node)
}

// Mkfile creates a file of size n at p, reading its payload from r.
func (t *Tree) Mkfile(p string, r io.Reader, n int32) error {
	parentPath, leaf := splitPath(p)
	if leaf == "" {
		return wrapErr(ErrBadFormat, "empty name in %q", p)
	}

	parent, err := t.resolve(parentPath)
	if err != nil {
		return err
	}

	if !parent.IsDirectory() {
		return wrapErr(ErrNotADirectory, "%q", parentPath)
	}

	kids, err := t.readChildren(parent)
	if err != nil {
		return err
	}

	for _, k := range kids[1:] {
		if k.Name() == leaf {
			return wrapErr(ErrAlreadyExists, "%q", p)
		}
	}

	node, err := t.mgr.Create(leaf, false, n)
	if err != nil {
		return err
	}

	newParent, err := t.add(parent, node)
	if err != nil {
		_ = t.mgr.Release(node)
		return err
	}

	if err := t.mgr.WriteInto(node, r); err != nil {
		_, _ = t.remove(newParent, node)
		_ = t.mgr.Release(node)

		return err
	}

	t.logger.Info("mkfile", slog.String("path", p), slog.Int("uid", int(node.UID())), slog.Int("size", int(n)))

	return nil
}

// Rm removes the file at p.
func (t *Tree) Rm(p string) error {
	node, err := t.resolve(p)
	if err != nil {
		return err
	}

	if node.IsDirectory() {
		return wrapErr(ErrNotAFile, "%q", p)
	}

	parentPath, _ := splitPath(p)

	parent, err := t.resolve(parentPath)
	if err != nil {
		return err
	}

	if _, err := t.remove(parent, node); err != nil {
		return err
	}

	return t.mgr.Release(node)
}

// destination resolves a move/copy target: a trailing "/" names a
// directory the leaf keeps its source name in, otherwise the path splits
// into (directory, newName).
func (t *Tree) destination(dst, srcLeaf string) (dir Node, newName string, err error) {
	if strings.HasSuffix(dst, "/") {
		dir, err = t.resolve(dst)
		newName = srcLeaf
	} else {
		var dstParentPath string

		dstParentPath, newName = splitPath(dst)
		dir, err = t.resolve(dstParentPath)
	}

	if err != nil {
		return Node{}, "", err
	}

	if !dir.IsDirectory() {
		return Node{}, "", wrapErr(ErrNotADirectory, "%q", dst)
	}

	return dir, newName, nil
}

// Mv resolves src, then moves/renames it to dst. Rename always happens
// before the parent-differs check, even for a same-directory rename. Any
// mid-flight failure is undone in reverse order.
func (t *Tree) Mv(src, dst string) error {
	srcParentPath, srcLeaf := splitPath(src)

	srcParent, err := t.resolve(srcParentPath)
	if err != nil {
		return err
	}

	if !srcParent.IsDirectory() {
		return wrapErr(ErrNotADirectory, "%q", srcParentPath)
	}

	srcKids, err := t.readChildren(srcParent)
	if err != nil {
		return err
	}

	var (
		srcNode Node
		found   bool
	)

	for _, k := range srcKids[1:] {
		if k.Name() == srcLeaf {
			srcNode, found = k, true
			break
		}
	}

	if !found {
		return wrapErr(ErrPathNotFound, "%q", src)
	}

	destDir, newName, err := t.destination(dst, srcLeaf)
	if err != nil {
		return err
	}

	destKids, err := t.readChildren(destDir)
	if err != nil {
		return err
	}

	for _, k := range destKids[1:] {
		if k.Name() == newName && k.UID() != srcNode.UID() {
			return wrapErr(ErrAlreadyExists, "%q", dst)
		}
	}

	renamed, err := t.mgr.Rename(srcNode, newName)
	if err != nil {
		return err
	}

	if destDir.UID() == srcParent.UID() {
		return nil
	}

	newSrcParent, err := t.remove(srcParent, renamed)
	if err != nil {
		_, _ = t.mgr.Rename(renamed, srcLeaf)
		return err
	}

	newDestDir, err := t.add(destDir, renamed)
	if err != nil {
		_, _ = t.add(newSrcParent, renamed)
		_, _ = t.mgr.Rename(renamed, srcLeaf)

		return err
	}

	if renamed.IsDirectory() {
		if err := t.setParent(renamed, newDestDir.UID()); err != nil {
			return err
		}
	}

	return nil
}

// Cp clones the file at src into dst. Directory sources are refused.
func (t *Tree) Cp(src, dst string) error {
	srcParentPath, srcLeaf := splitPath(src)

	srcParent, err := t.resolve(srcParentPath)
	if err != nil {
		return err
	}

	if !srcParent.IsDirectory() {
		return wrapErr(ErrNotADirectory, "%q", srcParentPath)
	}

	srcKids, err := t.readChildren(srcParent)
	if err != nil {
		return err
	}

	var (
		srcNode Node
		found   bool
	)

	for _, k := range srcKids[1:] {
		if k.Name() == srcLeaf {
			srcNode, found = k, true
			break
		}
	}

	if !found {
		return wrapErr(ErrFileNotFound, "%q", src)
	}

	if srcNode.IsDirectory() {
		return wrapErr(ErrNotAFile, "%q", src)
	}

	destDir, newName, err := t.destination(dst, srcLeaf)
	if err != nil {
		return err
	}

	destKids, err := t.readChildren(destDir)
	if err != nil {
		return err
	}

	for _, k := range destKids[1:] {
		if k.Name() == newName {
			return wrapErr(ErrAlreadyExists, "%q", dst)
		}
	}

	clone, err := t.mgr.Clone(srcNode, newName)
	if err != nil {
		return err
	}

	if _, err := t.add(destDir, clone); err != nil {
		_ = t.mgr.Release(clone)
		return err
	}

	return nil
}

// Cat resolves p to a file and streams its payload to w.
func (t *Tree) Cat(p string, w io.Writer) error {
	node, err := t.resolve(p)
	if err != nil {
		return err
	}

	if node.IsDirectory() {
		return wrapErr(ErrNotAFile, "%q", p)
	}

	return t.mgr.ReadFrom(node, w)
}
