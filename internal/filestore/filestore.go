// Package filestore preserves original uploads. Files are staged first and
// only promoted to their final location when the dataset that refers to them
// is committed.
package filestore

import (
	"context"
	"io"
)

type Store interface {
	// Stage holds data for name. The staged Location is unique within the
	// store and may differ from name; Name always returns name unchanged.
	// Nothing is visible at the final location until Commit.
	Stage(ctx context.Context, name string, data []byte) (Staged, error)
	// Open returns the preserved bytes at location and their size.
	Open(ctx context.Context, location string) (io.ReadCloser, int64, error)
	Remove(ctx context.Context, location string) error
}

type Staged interface {
	Name() string
	Location() string
	Commit(ctx context.Context) error
	// Discard drops the staged bytes, or the promoted file if Commit already
	// ran.
	Discard(ctx context.Context) error
}
