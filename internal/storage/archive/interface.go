// Package archive reads and writes price tables and reports on local disk
// or S3-compatible object storage.
package archive

import (
	"context"
	"errors"
	"fmt"

	"github.com/newthinker/quantsim/internal/config"
)

// ErrNotFound is returned when no object exists at a path
var ErrNotFound = errors.New("object not found")

// Storage defines the interface for price table backends
type Storage interface {
	// Read retrieves data from the given path
	Read(ctx context.Context, path string) ([]byte, error)

	// Write stores data at the given path
	Write(ctx context.Context, path string, data []byte) error

	// List returns all paths matching the prefix
	List(ctx context.Context, prefix string) ([]string, error)

	// Exists checks if data exists at the given path
	Exists(ctx context.Context, path string) (bool, error)
}

// Open builds the backend selected by the data section
func Open(cfg config.DataConfig) (Storage, error) {
	switch cfg.Source {
	case "", "localfs":
		return NewLocalFS(cfg.Root)
	case "s3":
		return NewS3(S3Config{
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		})
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.Source)
	}
}
