package ntfsgo

import (
	"io"
	"log/slog"
	"math/rand"
	"time"
)

// imageConfig holds the Image constructor's optional settings.
type imageConfig struct {
	logger *slog.Logger
}

func defaultImageConfig() imageConfig {
	return imageConfig{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// ImageOption configures Open. Format takes FormatOption values only and
// always logs to a discarding logger.
type ImageOption func(*imageConfig)

// WithLogger attaches a structured logger to the image opened by Open,
// which emits a Debug-level message once the image is open.
func WithLogger(logger *slog.Logger) ImageOption {
	return func(c *imageConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// formatConfig holds Format's optional geometry overrides.
type formatConfig struct {
	clusterSize        int32
	maxExtentsPerEntry int32
}

func defaultFormatConfig() formatConfig {
	return formatConfig{
		clusterSize:        DefaultClusterSize,
		maxExtentsPerEntry: DefaultMaxExtentsPerEntry,
	}
}

// FormatOption configures Format's geometry. format(size, signature,
// description) keeps cluster size and max-extents-per-entry as
// implementation constants; these options let tests exercise alternate
// geometries without touching the default.
type FormatOption func(*formatConfig)

// WithClusterSize overrides the default 1024-byte cluster size.
func WithClusterSize(size int32) FormatOption {
	return func(c *formatConfig) {
		c.clusterSize = size
	}
}

// WithMaxExtentsPerEntry overrides the default number of inline extent
// slots per MFT entry.
func WithMaxExtentsPerEntry(n int32) FormatOption {
	return func(c *formatConfig) {
		c.maxExtentsPerEntry = n
	}
}

// managerConfig holds the Manager constructor's optional settings.
type managerConfig struct {
	logger *slog.Logger
	rng    *rand.Rand
}

func defaultManagerConfig() managerConfig {
	return managerConfig{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ManagerOption configures NewManager. The UID generator seeds from
// wall-clock by default; WithRand lets tests inject a seeded *rand.Rand
// for deterministic UID allocation.
type ManagerOption func(*managerConfig)

// WithManagerLogger attaches a structured logger to the Manager.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(c *managerConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRand injects a *rand.Rand for deterministic UID allocation in
// tests.
func WithRand(rng *rand.Rand) ManagerOption {
	return func(c *managerConfig) {
		if rng != nil {
			c.rng = rng
		}
	}
}

// CheckerOption configures NewChecker.
type CheckerOption func(*checkerConfig)

type checkerConfig struct {
	workers int
	logger  *slog.Logger
}

func defaultCheckerConfig() checkerConfig {
	return checkerConfig{
		workers: 4,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithWorkers sets the number of goroutines the per-node size check uses.
func WithWorkers(n int) CheckerOption {
	return func(c *checkerConfig) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithCheckerLogger attaches a structured logger to the Checker.
func WithCheckerLogger(logger *slog.Logger) CheckerOption {
	return func(c *checkerConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}
