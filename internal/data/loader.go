// Package data decodes price tables and loads them from storage.
package data

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/newthinker/quantsim/internal/core"
	"github.com/newthinker/quantsim/internal/metrics"
	"github.com/newthinker/quantsim/internal/storage/archive"
	"go.uber.org/zap"
)

// Format identifies a price table encoding
type Format string

const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

// FormatOf picks the encoding from the file extension
func FormatOf(p string) (Format, error) {
	switch strings.ToLower(path.Ext(p)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".parquet", ".pq":
		return FormatParquet, nil
	}
	return "", core.WrapError(core.ErrDataFormat, fmt.Errorf("unsupported price table %q, want .csv or .parquet", p))
}

// Decode parses raw bytes in the given format and validates the result
func Decode(format Format, raw []byte) (core.Series, error) {
	var (
		s   core.Series
		err error
	)
	switch format {
	case FormatCSV:
		s, err = DecodeCSV(bytes.NewReader(raw))
	case FormatParquet:
		s, err = DecodeParquet(raw)
	default:
		return nil, core.WrapError(core.ErrDataFormat, fmt.Errorf("unknown format %q", format))
	}
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Encode serialises the series in the given format
func Encode(format Format, s core.Series) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case FormatCSV:
		err = EncodeCSV(&buf, s)
	case FormatParquet:
		err = EncodeParquet(&buf, s)
	default:
		err = core.WrapError(core.ErrDataFormat, fmt.Errorf("unknown format %q", format))
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Loader reads price tables from a storage backend
type Loader struct {
	store   archive.Storage
	metrics *metrics.Registry
	logger  *zap.Logger
}

// LoaderOption configures a Loader
type LoaderOption func(*Loader)

// WithMetrics records load counts and durations
func WithMetrics(m *metrics.Registry) LoaderOption {
	return func(l *Loader) { l.metrics = m }
}

// WithLogger sets the loader's logger
func WithLogger(logger *zap.Logger) LoaderOption {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader creates a loader over store
func NewLoader(store archive.Storage, opts ...LoaderOption) *Loader {
	l := &Loader{store: store, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads, decodes and validates the price table at p
func (l *Loader) Load(ctx context.Context, p string) (core.Series, error) {
	format, err := FormatOf(p)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	s, err := l.load(ctx, format, p)
	if l.metrics != nil {
		l.metrics.RecordDataLoad(string(format), err, time.Since(start).Seconds())
	}
	if err != nil {
		l.logger.Warn("price table load failed", zap.String("path", p), zap.Error(err))
		return nil, err
	}

	l.logger.Info("price table loaded",
		zap.String("path", p),
		zap.String("format", string(format)),
		zap.Int("bars", len(s)),
		zap.Time("first", s[0].Time),
		zap.Time("last", s.Last().Time),
	)
	return s, nil
}

func (l *Loader) load(ctx context.Context, format Format, p string) (core.Series, error) {
	raw, err := l.store.Read(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}
	s, err := Decode(format, raw)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", p, err)
	}
	return s, nil
}

// List returns the price tables stored under prefix
func (l *Loader) List(ctx context.Context, prefix string) ([]string, error) {
	paths, err := l.store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	tables := paths[:0]
	for _, p := range paths {
		if _, err := FormatOf(p); err == nil {
			tables = append(tables, p)
		}
	}
	return tables, nil
}
