package mapping

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/sdassow/atomic"
)

// FileStore keeps the table as one JSON object on disk.
//
// Every operation holds mu for the in-process writers and an advisory
// lock on <path>.lock for writers in other processes sharing the file.
// Writes replace the file atomically.
type FileStore struct {
	path string

	mu   sync.Mutex
	lock *flock.Flock
}

func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

func (s *FileStore) Load(ctx context.Context) (Mapping, error) {
	var m Mapping
	err := s.locked(ctx, func() error {
		var err error
		m, err = s.read()
		return err
	})
	return m, err
}

func (s *FileStore) Put(ctx context.Context, rowID, accountID string) error {
	if rowID == "" || accountID == "" {
		return fmt.Errorf("mapping: missing row_id or account_id")
	}

	return s.locked(ctx, func() error {
		m, err := s.read()
		if err != nil {
			return err
		}
		m[rowID] = accountID
		return s.write(m)
	})
}

func (s *FileStore) Get(ctx context.Context, rowID string) (string, error) {
	m, err := s.Load(ctx)
	if err != nil {
		return "", err
	}

	accountID, ok := m[rowID]
	if !ok {
		return "", ErrNotFound
	}
	return accountID, nil
}

func (s *FileStore) locked(ctx context.Context, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("%w: creating directory: %v", ErrStorageUnavailable, err)
	}

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("%w: acquiring file lock: %v", ErrStorageUnavailable, err)
	}
	defer s.lock.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	return fn()
}

// read loads the table, writing an empty one first if the file is absent.
func (s *FileStore) read() (Mapping, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		m := Mapping{}
		if err := s.write(m); err != nil {
			return nil, err
		}
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrStorageUnavailable, s.path, err)
	}

	m := Mapping{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrStorageUnavailable, s.path, err)
	}
	if m == nil {
		// literal null
		m = Mapping{}
	}
	return m, nil
}

func (s *FileStore) write(m Mapping) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding: %v", ErrStorageUnavailable, err)
	}

	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrStorageUnavailable, s.path, err)
	}
	return nil
}
