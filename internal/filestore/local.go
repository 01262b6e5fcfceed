package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/feedasfor-cyber/expense-management-app/internal/apperror"
	"github.com/google/uuid"
)

const stagingDirName = ".staging"

// Local keeps uploads in a directory on disk. Staged files live under
// dir/.staging until committed.
type Local struct {
	dir        string
	stagingDir string

	// reserved holds final names handed out to staged files that have not
	// been committed or discarded yet.
	mu       sync.Mutex
	reserved map[string]struct{}
}

func NewLocal(dir string) (*Local, error) {
	stagingDir := filepath.Join(dir, stagingDirName)
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return &Local{dir: dir, stagingDir: stagingDir, reserved: make(map[string]struct{})}, nil
}

func (l *Local) Dir() string {
	return l.dir
}

func (l *Local) Stage(_ context.Context, name string, data []byte) (Staged, error) {
	finalName := l.reserve(name)

	stagingPath := filepath.Join(l.stagingDir, uuid.NewString()+".part")
	if err := os.WriteFile(stagingPath, data, 0o644); err != nil {
		l.release(finalName)
		return nil, fmt.Errorf("failed to stage upload: %w", err)
	}

	return &localStaged{
		store:       l,
		name:        name,
		reserved:    finalName,
		stagingPath: stagingPath,
		finalPath:   filepath.Join(l.dir, finalName),
	}, nil
}

func (l *Local) Open(_ context.Context, location string) (io.ReadCloser, int64, error) {
	f, err := os.Open(location)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, apperror.New(apperror.CodeNotFound, "Original file not found")
		}
		return nil, 0, fmt.Errorf("failed to open original file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("failed to stat original file: %w", err)
	}
	if info.IsDir() {
		f.Close()
		return nil, 0, apperror.New(apperror.CodeNotFound, "Original file not found")
	}
	return f, info.Size(), nil
}

func (l *Local) Remove(_ context.Context, location string) error {
	if err := os.Remove(location); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove original file: %w", err)
	}
	return nil
}

// SweepStaging deletes staged files older than maxAge, which a crash between
// staging and commit would otherwise leave behind.
func (l *Local) SweepStaging(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(l.stagingDir)
	if err != nil {
		return 0, fmt.Errorf("failed to read staging directory: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".part") {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(l.stagingDir, entry.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

// reserve returns name, or name with a numeric suffix before the extension,
// such that no existing or reserved file uses it.
func (l *Local) reserve(name string) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	candidate := name
	for i := 1; ; i++ {
		_, taken := l.reserved[candidate]
		if !taken {
			if _, err := os.Stat(filepath.Join(l.dir, candidate)); err != nil {
				break
			}
		}
		candidate = base + "_" + strconv.Itoa(i) + ext
	}
	l.reserved[candidate] = struct{}{}
	return candidate
}

func (l *Local) release(name string) {
	l.mu.Lock()
	delete(l.reserved, name)
	l.mu.Unlock()
}

type localStaged struct {
	store       *Local
	name        string
	reserved    string
	stagingPath string
	finalPath   string
	committed   bool
}

func (s *localStaged) Name() string {
	return s.name
}

func (s *localStaged) Location() string {
	return s.finalPath
}

func (s *localStaged) Commit(_ context.Context) error {
	if s.committed {
		return nil
	}
	if err := os.Rename(s.stagingPath, s.finalPath); err != nil {
		return fmt.Errorf("failed to move upload into place: %w", err)
	}
	s.committed = true
	s.store.release(s.reserved)
	return nil
}

func (s *localStaged) Discard(_ context.Context) error {
	defer s.store.release(s.reserved)

	path := s.stagingPath
	if s.committed {
		path = s.finalPath
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to discard upload: %w", err)
	}
	return nil
}
