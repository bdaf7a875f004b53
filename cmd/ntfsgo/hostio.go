package main

import (
	"io"

	"github.com/spf13/afero"
)

// hostFs is the afero.Fs incp/outcp read and write the host side of a
// copy through, so tests can substitute afero.NewMemMapFs() for the real
// filesystem.
var hostFs afero.Fs = afero.NewOsFs()

// incp reads hostPath off hostFs and returns its content and size.
func incp(hostPath string) ([]byte, int64, error) {
	f, err := hostFs.Open(hostPath)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, 0, err
	}

	buf := make([]byte, info.Size())
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, 0, err
	}

	return buf, info.Size(), nil
}

// outcp writes data to hostPath on hostFs, creating or truncating it.
func outcp(hostPath string, data []byte) error {
	f, err := hostFs.Create(hostPath)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(data)

	return err
}
