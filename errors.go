package ntfsgo

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
)

// Image-level errors.
var (
	ErrNotFormatted      = errors.New("partition is not formatted")
	ErrCorrupted         = errors.New("partition boot record is corrupted")
	ErrBadFormat         = errors.New("invalid format arguments")
	ErrOutOfBounds       = errors.New("access outside of the partition bounds")
	ErrMftOutOfBounds    = errors.New("mft item index is out of bounds")
	ErrBitmapOutOfBounds = errors.New("bitmap bit index is out of bounds")
	ErrDataOutOfBounds   = errors.New("cluster index is out of bounds")
	ErrClusterOverflow   = errors.New("data does not fit into the requested clusters")
)

// Node manager errors.
var (
	ErrNotEnoughClusters = errors.New("not enough free clusters")
	ErrNotEnoughMftItems = errors.New("not enough free mft items")
	ErrNodeNotFound      = errors.New("node not found")
	ErrNodeConstruct     = errors.New("no mft items given for node construction")
)

// Directory layer errors.
var (
	ErrNotADirectory     = errors.New("not a directory")
	ErrNotAFile          = errors.New("not a file")
	ErrPathNotFound      = errors.New("path not found")
	ErrFileNotFound      = errors.New("file not found")
	ErrAlreadyExists     = errors.New("entry already exists")
	ErrDirectoryNotEmpty = errors.New("directory not empty")
	ErrRootNotFound      = errors.New("root directory not found")
)

// CLI-level errors.
var ErrWrongArguments = errors.New("wrong number of arguments")

// wrapErr annotates err with the caller's file:line and chains it with fmt's
// %w so errors.Is/errors.As still see through to the sentinel.
func wrapErr(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	_, file, line, ok := runtime.Caller(1)
	if !ok {
		file, line = "unknown", 0
	}

	msg := fmt.Sprintf(format, args...)

	return fmt.Errorf("%s:%d: %s: %w", filepath.Base(file), line, msg, err)
}
