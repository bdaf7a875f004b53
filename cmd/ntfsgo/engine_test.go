package main

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilat/ntfsgo"
)

func newTestEngine(t *testing.T) *engine {
	t.Helper()

	cfg := defaultCliConfig()
	cfg.ImagePath = filepath.Join(t.TempDir(), "test.img")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return newEngine(cfg, logger)
}

func TestParseSizeSuffixes(t *testing.T) {
	cases := map[string]int64{
		"10":  10,
		"1K":  1_000,
		"2M":  2_000_000,
		"1G":  1_000_000_000,
		"3k":  3_000,
	}

	for in, want := range cases {
		got, err := parseSize(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestParseSizeRejectsGarbage(t *testing.T) {
	_, err := parseSize("not-a-size")
	assert.Error(t, err)
}

func TestErrReplyMapsSentinels(t *testing.T) {
	cases := map[error]string{
		ntfsgo.ErrAlreadyExists:     "EXISTS",
		ntfsgo.ErrDirectoryNotEmpty: "NOT EMPTY",
		ntfsgo.ErrFileNotFound:      "FILE NOT FOUND",
		ntfsgo.ErrNotAFile:          "FILE NOT FOUND",
		ntfsgo.ErrPathNotFound:      "PATH NOT FOUND",
		ntfsgo.ErrNotADirectory:     "PATH NOT FOUND",
		ntfsgo.ErrWrongArguments:    "ERROR: wrong number of arguments",
	}

	for err, want := range cases {
		assert.Equal(t, want, errReply(err))
	}
}

func TestEngineRequireOpenBeforeFormat(t *testing.T) {
	e := newTestEngine(t)

	assert.False(t, e.opened())
	assert.Error(t, e.requireOpen())
}

func TestEngineFormatThenCommands(t *testing.T) {
	e := newTestEngine(t)

	reply := cmdFormat(e, []string{"1M"})
	require.Equal(t, "OK", reply)
	require.True(t, e.opened())

	assert.Equal(t, "OK", cmdMkdir(e, []string{"/docs"}))
	assert.Equal(t, "EXISTS", cmdMkdir(e, []string{"/docs"}))

	assert.Equal(t, "+ docs", cmdLs(e, nil))
}

func TestEngineIncpOutcpRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	require.Equal(t, "OK", cmdFormat(e, []string{"1M"}))

	hostFs = afero.NewMemMapFs()
	t.Cleanup(func() { hostFs = afero.NewOsFs() })

	require.NoError(t, afero.WriteFile(hostFs, "/host/in.txt", []byte("payload"), 0o644))

	assert.Equal(t, "OK", cmdIncp(e, []string{"/host/in.txt", "/in.txt"}))
	assert.Equal(t, "OK", cmdOutcp(e, []string{"/in.txt", "/host/out.txt"}))

	out, err := afero.ReadFile(hostFs, "/host/out.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), out)
}

func TestEngineCheckReportsOK(t *testing.T) {
	e := newTestEngine(t)
	require.Equal(t, "OK", cmdFormat(e, []string{"1M"}))

	assert.Equal(t, "OK", cmdCheck(e, nil))
}

func TestEngineCatMissingFile(t *testing.T) {
	e := newTestEngine(t)
	require.Equal(t, "OK", cmdFormat(e, []string{"1M"}))

	assert.Equal(t, "FILE NOT FOUND", cmdCat(e, []string{"/missing.txt"}))
}

func TestFormatNodeInfoRendersFields(t *testing.T) {
	e := newTestEngine(t)
	require.Equal(t, "OK", cmdFormat(e, []string{"1M"}))

	node, err := e.tree.Resolve("/")
	require.NoError(t, err)

	info := formatNodeInfo(node)
	assert.Contains(t, info, "type:    directory")
	assert.Contains(t, info, "uid:     1")
}
