package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// FileStore keeps one JSON file per snapshot under dir/<login>/.
// File names start with the zero-padded fetch time so that a plain name sort
// is chronological.
type FileStore struct {
	dir string
}

// OpenFile creates dir if needed and returns a store rooted there.
func OpenFile(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Save(ctx context.Context, snap *Snapshot) error {
	if err := validate(snap); err != nil {
		return err
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	dir := filepath.Join(s.dir, snap.Login)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	name := fmt.Sprintf("%020d-%s.json", snap.FetchedAt.UnixNano(), snap.ID)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(dir, name))
}

func (s *FileStore) Latest(ctx context.Context, login string) (*Snapshot, error) {
	names, err := s.names(login)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, notFound(login)
	}
	return s.read(login, names[0])
}

func (s *FileStore) List(ctx context.Context, login string) ([]Info, error) {
	names, err := s.names(login)
	if err != nil {
		return nil, err
	}
	infos := make([]Info, 0, len(names))
	for _, name := range names {
		snap, err := s.read(login, name)
		if err != nil {
			return nil, err
		}
		infos = append(infos, snap.Info)
	}
	return infos, nil
}

func (s *FileStore) Close() error { return nil }

// names returns the snapshot files of login, newest first.
func (s *FileStore) names(login string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, strings.ToLower(login)))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	slices.Reverse(names)
	return names, nil
}

func (s *FileStore) read(login, name string) (*Snapshot, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, strings.ToLower(login), name))
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return &snap, nil
}
