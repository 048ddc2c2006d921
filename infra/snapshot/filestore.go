// Package snapshot provides the file backed snapshot store used by the
// application, one JSON file per dispatch day.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	coresnapshot "github.com/todatrack/todatrack/core/snapshot"
)

const defaultPrefix = "toda_data"

// FileStore keeps one file per day label under a directory, named
// <prefix>-<label>.json. Writes go through a temp file and a rename so
// a crash never leaves a torn snapshot behind.
type FileStore struct {
	dir    string
	prefix string
}

// NewFileStore creates dir when missing and returns a store rooted
// there. An empty prefix falls back to "toda_data".
func NewFileStore(dir, prefix string) (*FileStore, error) {
	if prefix == "" {
		prefix = defaultPrefix
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &FileStore{dir: dir, prefix: prefix}, nil
}

func (s *FileStore) path(label string) string {
	return filepath.Join(s.dir, s.prefix+"-"+label+".json")
}

// Save writes snap under label, replacing any previous file.
func (s *FileStore) Save(ctx context.Context, label string, snap coresnapshot.Snapshot) error {
	if !coresnapshot.ValidLabel(label) {
		return &coresnapshot.PersistenceError{Op: "save", Label: label, Err: fmt.Errorf("malformed label")}
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return &coresnapshot.PersistenceError{Op: "save", Label: label, Err: err}
	}
	path := s.path(label)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return &coresnapshot.PersistenceError{Op: "save", Label: label, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		return &coresnapshot.PersistenceError{Op: "save", Label: label, Err: err}
	}
	return nil
}

// Load reads and validates the snapshot stored under label.
func (s *FileStore) Load(ctx context.Context, label string) (coresnapshot.Snapshot, error) {
	var snap coresnapshot.Snapshot
	data, err := os.ReadFile(s.path(label))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = coresnapshot.ErrNotFound
		}
		return snap, &coresnapshot.PersistenceError{Op: "load", Label: label, Err: err}
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return coresnapshot.Snapshot{}, &coresnapshot.PersistenceError{Op: "load", Label: label, Err: err}
	}
	if err := snap.Validate(); err != nil {
		return coresnapshot.Snapshot{}, &coresnapshot.PersistenceError{Op: "load", Label: label, Err: err}
	}
	return snap, nil
}

// Labels lists the stored day labels in ascending order. Files that do
// not follow the <prefix>-<date>.json pattern are ignored.
func (s *FileStore) Labels(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, &coresnapshot.PersistenceError{Op: "list", Err: err}
	}
	var labels []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasPrefix(name, s.prefix+"-") || !strings.HasSuffix(name, ".json") {
			continue
		}
		label := strings.TrimSuffix(strings.TrimPrefix(name, s.prefix+"-"), ".json")
		if !coresnapshot.ValidLabel(label) {
			continue
		}
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels, nil
}

// Latest loads the snapshot with the highest label and returns the
// label alongside. With nothing stored it reports ErrNotFound.
func (s *FileStore) Latest(ctx context.Context) (coresnapshot.Snapshot, string, error) {
	labels, err := s.Labels(ctx)
	if err != nil {
		return coresnapshot.Snapshot{}, "", err
	}
	if len(labels) == 0 {
		return coresnapshot.Snapshot{}, "", &coresnapshot.PersistenceError{Op: "load", Err: coresnapshot.ErrNotFound}
	}
	label := labels[len(labels)-1]
	snap, err := s.Load(ctx, label)
	return snap, label, err
}
