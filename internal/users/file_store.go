package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"
)

// FileStore keeps users in a JSON file. Writes go to a temp file renamed over
// the original, under an exclusive flock shared with other processes. sem
// serializes callers within this process, since a held flock is re-entrant.
type FileStore struct {
	path string
	lock *flock.Flock
	sem  chan struct{}
}

type fileDoc struct {
	Users []User `json:"users"`
}

// NewFileStore prepares the directory and lock file for path.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("users file dir: %w", err)
	}
	return &FileStore{path: path, lock: flock.New(path + ".lock"), sem: make(chan struct{}, 1)}, nil
}

// Load returns every stored user id; a missing file is an empty set.
func (s *FileStore) Load(ctx context.Context) ([]int64, error) {
	if err := s.lockCtx(ctx, false); err != nil {
		return nil, err
	}
	defer s.unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(doc.Users))
	for _, u := range doc.Users {
		ids = append(ids, u.ID)
	}
	return ids, nil
}

// Add appends u unless the id is already present.
func (s *FileStore) Add(ctx context.Context, u User) error {
	if err := s.lockCtx(ctx, true); err != nil {
		return err
	}
	defer s.unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	for _, existing := range doc.Users {
		if existing.ID == u.ID {
			return nil
		}
	}
	doc.Users = append(doc.Users, u)
	sort.SliceStable(doc.Users, func(i, j int) bool { return doc.Users[i].FirstSeen.Before(doc.Users[j].FirstSeen) })
	return s.write(doc)
}

// Close is a no-op; the lock is held only during calls.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) lockCtx(ctx context.Context, exclusive bool) error {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("lock %s: %w", s.path, ctx.Err())
	}
	try := s.lock.TryRLockContext
	if exclusive {
		try = s.lock.TryLockContext
	}
	ok, err := try(ctx, 20*time.Millisecond)
	if err != nil || !ok {
		<-s.sem
		if err == nil {
			err = errors.New("not acquired")
		}
		return fmt.Errorf("lock %s: %w", s.path, err)
	}
	return nil
}

func (s *FileStore) unlock() {
	s.lock.Unlock()
	<-s.sem
}

func (s *FileStore) read() (fileDoc, error) {
	var doc fileDoc
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return doc, nil
}

func (s *FileStore) write(doc fileDoc) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("rename %s: %w", s.path, err)
	}
	return nil
}
