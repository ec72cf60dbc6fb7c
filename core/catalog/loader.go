// Package catalog - Pricing table loader
// Load gates a table through decode and validation, and keeps the last
// table that passed so a broken update can fall back to it.
package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"go.uber.org/zap"

	"dbu-cost/core/types"
	"dbu-cost/internal/errors"
	"dbu-cost/internal/logging"
)

const (
	lkgTableFile = "pricing-lkg.json"
	lkgMetaFile  = "pricing-lkg.meta.json"
)

// Metadata describes where a loaded table came from
type Metadata struct {
	Version              string    `json:"version"`
	Currency             string    `json:"currency"`
	SavedAt              time.Time `json:"saved_at"`
	UsedLegacyConversion bool      `json:"used_legacy_conversion,omitempty"`
	FromCache            bool      `json:"-"`
}

// LoadResult is a usable table plus any issues that forced a fallback
type LoadResult struct {
	Table    *types.PricingTable
	Metadata Metadata

	// Issues is empty unless the table came from the cache
	Issues []string
}

// Loader reads pricing tables and maintains the last-known-good copy
type Loader struct {
	cacheDir string
	fallback bool
	now      func() time.Time
	logger   *zap.Logger
}

// LoaderOption configures a Loader
type LoaderOption func(*Loader)

// WithCacheDir sets where the last-known-good table is kept.
// An empty dir disables the cache entirely.
func WithCacheDir(dir string) LoaderOption {
	return func(l *Loader) { l.cacheDir = dir }
}

// WithFallback controls whether a failed load returns the cached table
func WithFallback(enabled bool) LoaderOption {
	return func(l *Loader) { l.fallback = enabled }
}

// WithClock overrides the time source for SavedAt
func WithClock(now func() time.Time) LoaderOption {
	return func(l *Loader) { l.now = now }
}

// WithLogger overrides the component logger
func WithLogger(logger *zap.Logger) LoaderOption {
	return func(l *Loader) { l.logger = logger }
}

// DefaultCacheDir is $XDG_CACHE_HOME/dbu-cost
func DefaultCacheDir() string {
	return filepath.Join(xdg.CacheHome, "dbu-cost")
}

// NewLoader creates a loader with fallback enabled and the XDG cache dir
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		cacheDir: DefaultCacheDir(),
		fallback: true,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logging.Named("catalog")
	}
	return l
}

// Load reads the table at path
func (l *Loader) Load(path string) (*LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return l.fallbackOrFail(errors.Wrapf(errors.TypeLoad, err, "pricing table %s could not be read", path))
	}
	return l.LoadBytes(data)
}

// LoadBytes gates data through decode and validation. On success the
// table becomes the new last-known-good; on failure the cached table is
// returned with the issues when fallback is enabled.
func (l *Loader) LoadBytes(data []byte) (*LoadResult, error) {
	table, legacy, err := Decode(data)
	if err != nil {
		return l.fallbackOrFail(err)
	}
	if legacy {
		l.logger.Warn("legacy pricing format detected, converted to normalized schema",
			zap.Int("records", len(table.Records)))
	}
	if err := Validate(table); err != nil {
		return l.fallbackOrFail(err)
	}

	meta := Metadata{
		Version:              table.Version,
		Currency:             string(table.Currency),
		SavedAt:              l.now().UTC(),
		UsedLegacyConversion: legacy,
	}
	l.logger.Debug("pricing table loaded",
		zap.String("version", meta.Version),
		zap.String("currency", meta.Currency),
		zap.Int("records", len(table.Records)))

	if err := l.store(table, meta); err != nil {
		l.logger.Warn("failed to persist last known good pricing table", zap.Error(err))
	}
	return &LoadResult{Table: table, Metadata: meta, Issues: []string{}}, nil
}

// LastKnownGood returns the cached table, or a NOT_FOUND error
func (l *Loader) LastKnownGood() (*LoadResult, error) {
	if l.cacheDir == "" {
		return nil, errors.NotFound("last known good pricing table", "cache disabled")
	}
	tablePath := filepath.Join(l.cacheDir, lkgTableFile)
	data, err := os.ReadFile(tablePath)
	if err != nil {
		return nil, errors.NotFound("last known good pricing table", tablePath)
	}
	table, _, err := Decode(data)
	if err != nil {
		l.logger.Warn("ignoring stored last known good pricing table", zap.Strings("issues", errors.IssuesOf(err)))
		return nil, err
	}

	meta := Metadata{Version: table.Version, Currency: string(table.Currency)}
	if raw, err := os.ReadFile(filepath.Join(l.cacheDir, lkgMetaFile)); err == nil {
		if err := json.Unmarshal(raw, &meta); err != nil {
			l.logger.Warn("ignoring unreadable last known good metadata", zap.Error(err))
		}
	}
	meta.FromCache = true
	return &LoadResult{Table: table, Metadata: meta}, nil
}

func (l *Loader) fallbackOrFail(cause error) (*LoadResult, error) {
	issues := errors.IssuesOf(cause)
	l.logger.Warn("pricing load failed", zap.Error(cause))

	if l.fallback {
		if cached, err := l.LastKnownGood(); err == nil {
			l.logger.Warn("serving last known good pricing table",
				zap.String("version", cached.Metadata.Version),
				zap.Time("saved_at", cached.Metadata.SavedAt))
			cached.Issues = issues
			return cached, nil
		}
	}

	if errors.IsType(cause, errors.TypeValidation) || errors.IsType(cause, errors.TypeParsing) {
		return nil, cause
	}
	return nil, errors.Load("pricing data load failed", issues).WithContext("cause", cause.Error())
}

func (l *Loader) store(table *types.PricingTable, meta Metadata) error {
	if l.cacheDir == "" {
		return nil
	}
	if err := os.MkdirAll(l.cacheDir, 0o755); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(l.cacheDir, lkgTableFile), table); err != nil {
		return err
	}
	return writeJSON(filepath.Join(l.cacheDir, lkgMetaFile), meta)
}

// writeJSON replaces path through a temp file and rename
func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
