package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/pilat/ntfsgo"
)

// engine bundles the opened image with the managers built on top of it.
// It is nil-safe for img/mgr/tree before the first successful open or
// format.
type engine struct {
	path        string
	workers     int
	signature   string
	description string
	logger      *slog.Logger

	img  *ntfsgo.Image
	mgr  *ntfsgo.Manager
	tree *ntfsgo.Tree
}

func newEngine(cfg cliConfig, logger *slog.Logger) *engine {
	return &engine{
		path:        cfg.ImagePath,
		workers:     cfg.CheckerWorkers,
		signature:   cfg.Signature,
		description: cfg.Description,
		logger:      logger,
	}
}

// tryOpen attempts to open an existing image at startup; a missing or
// unformatted file is not an error at this stage, just an unopened
// engine.
func (e *engine) tryOpen() {
	img, err := ntfsgo.Open(e.path, ntfsgo.WithLogger(e.logger))
	if err != nil {
		return
	}

	e.attach(img)
}

func (e *engine) attach(img *ntfsgo.Image) {
	e.img = img
	e.mgr = ntfsgo.NewManager(img, ntfsgo.WithManagerLogger(e.logger))
	e.tree = ntfsgo.NewTree(e.mgr, e.logger)
}

func (e *engine) opened() bool {
	return e.img != nil
}

func (e *engine) requireOpen() error {
	if !e.opened() {
		return fmt.Errorf("no image is open")
	}

	return nil
}

func (e *engine) checker() *ntfsgo.Checker {
	return ntfsgo.NewChecker(e.img, e.mgr, e.tree, ntfsgo.WithWorkers(e.workers), ntfsgo.WithCheckerLogger(e.logger))
}

// parseSize parses a size string with an optional K/M/G decimal suffix:
// K=10^3, M=10^6, G=10^9.
func parseSize(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty size")
	}

	mult := int64(1)
	suffix := s[len(s)-1]

	switch suffix {
	case 'K', 'k':
		mult = 1_000
		s = s[:len(s)-1]
	case 'M', 'm':
		mult = 1_000_000
		s = s[:len(s)-1]
	case 'G', 'g':
		mult = 1_000_000_000
		s = s[:len(s)-1]
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}

	return n * mult, nil
}

// errReply maps a directory-layer/manager/image error to the short CLI
// reply string it corresponds to, or "ERROR: <message>" when unmapped.
func errReply(err error) string {
	switch {
	case errors.Is(err, ntfsgo.ErrAlreadyExists):
		return "EXISTS"
	case errors.Is(err, ntfsgo.ErrDirectoryNotEmpty):
		return "NOT EMPTY"
	case errors.Is(err, ntfsgo.ErrFileNotFound), errors.Is(err, ntfsgo.ErrNotAFile):
		return "FILE NOT FOUND"
	case errors.Is(err, ntfsgo.ErrPathNotFound), errors.Is(err, ntfsgo.ErrNotADirectory), errors.Is(err, ntfsgo.ErrRootNotFound):
		return "PATH NOT FOUND"
	case errors.Is(err, ntfsgo.ErrWrongArguments):
		return "ERROR: wrong number of arguments"
	default:
		return fmt.Sprintf("ERROR: %v", err)
	}
}

func formatNodeInfo(n ntfsgo.Node) string {
	var b strings.Builder

	kind := "file"
	if n.IsDirectory() {
		kind = "directory"
	}

	fmt.Fprintf(&b, "name:    %s\n", n.Name())
	fmt.Fprintf(&b, "uid:     %d\n", n.UID())
	fmt.Fprintf(&b, "type:    %s\n", kind)
	fmt.Fprintf(&b, "size:    %d\n", n.Size())
	fmt.Fprintf(&b, "extents: %d\n", len(n.Extents()))
	fmt.Fprintf(&b, "clusters: %d\n", n.ClusterCount())

	return b.String()
}
