package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/feedasfor-cyber/expense-management-app/internal/apperror"
	"github.com/google/uuid"
)

// GCS keeps uploads as objects in a Cloud Storage bucket. Staging is held in
// memory; the object is written on Commit.
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
}

func NewGCS(client *storage.Client, bucket, prefix string) *GCS {
	return &GCS{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

func (g *GCS) Stage(_ context.Context, name string, data []byte) (Staged, error) {
	// A short random tag keeps object names unique.
	ext := path.Ext(name)
	objectName := strings.TrimSuffix(name, ext) + "_" + uuid.NewString()[:8] + ext

	return &gcsStaged{
		store:  g,
		name:   name,
		object: path.Join(g.prefix, objectName),
		data:   data,
	}, nil
}

func (g *GCS) Open(ctx context.Context, location string) (io.ReadCloser, int64, error) {
	object, err := g.objectFromLocation(location)
	if err != nil {
		return nil, 0, err
	}

	r, err := g.client.Bucket(g.bucket).Object(object).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, 0, apperror.New(apperror.CodeNotFound, "Original file not found")
		}
		return nil, 0, fmt.Errorf("failed to open object %s: %w", object, err)
	}
	return r, r.Attrs.Size, nil
}

func (g *GCS) Remove(ctx context.Context, location string) error {
	object, err := g.objectFromLocation(location)
	if err != nil {
		return err
	}
	if err := g.client.Bucket(g.bucket).Object(object).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete object %s: %w", object, err)
	}
	return nil
}

func (g *GCS) location(object string) string {
	return "gs://" + g.bucket + "/" + object
}

func (g *GCS) objectFromLocation(location string) (string, error) {
	prefix := "gs://" + g.bucket + "/"
	if !strings.HasPrefix(location, prefix) {
		return "", apperror.New(apperror.CodeNotFound, "Original file not found")
	}
	return strings.TrimPrefix(location, prefix), nil
}

type gcsStaged struct {
	store     *GCS
	name      string
	object    string
	data      []byte
	committed bool
}

func (s *gcsStaged) Name() string {
	return s.name
}

func (s *gcsStaged) Location() string {
	return s.store.location(s.object)
}

func (s *gcsStaged) Commit(ctx context.Context) error {
	if s.committed {
		return nil
	}

	w := s.store.client.Bucket(s.store.bucket).Object(s.object).
		If(storage.Conditions{DoesNotExist: true}).
		NewWriter(ctx)
	w.ContentType = "text/csv"

	if _, err := w.Write(s.data); err != nil {
		w.Close()
		return fmt.Errorf("failed to upload file to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	s.committed = true
	s.data = nil
	return nil
}

func (s *gcsStaged) Discard(ctx context.Context) error {
	s.data = nil
	if !s.committed {
		return nil
	}
	return s.store.Remove(ctx, s.Location())
}
