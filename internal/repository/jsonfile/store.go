// Package jsonfile implements the repository interfaces on flat JSON files.
//
// STORAGE MODEL:
// Each collection (users, posts, connections, notifications) is one JSON
// array in its own file under the data directory. Every mutation follows the
// same cycle:
//
//	load the whole file → mutate the slice in memory → replace the whole file
//
// There are no partial updates and no indexes. This is a deliberate stand-in
// for a database at small scale; the repository interfaces keep the rest of
// the codebase ignorant of it.
//
// ATOMIC REPLACE:
// Writes go to a temp file in the same directory, fsync'd, then rename over
// the real file. rename(2) is atomic on POSIX filesystems, so a reader can
// observe the old contents or the new contents but never a torn file — even
// if the process dies mid-write.
//
// CONCURRENCY:
// A mutex per collection serializes the read-modify-write cycle WITHIN one
// collection, so two concurrent likes on the same post cannot silently drop
// each other inside this store. Mutations that span two collections (e.g. a
// like that also appends a notification) are NOT transactional — each
// collection write commits independently.
package jsonfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store bundles the per-collection repositories backed by one data directory.
// Each repository owns exactly one file; they share nothing but the directory.
type Store struct {
	Users         *UserStore
	Posts         *PostStore
	Connections   *ConnectionStore
	Notifications *NotificationStore
}

// New creates the data directory if needed and initializes each collection
// file with an empty array exactly once. Existing files are left untouched.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("jsonfile: creating data directory %s: %w", dir, err)
	}

	s := &Store{
		Users:         &UserStore{c: &collection{path: filepath.Join(dir, "users.json")}},
		Posts:         &PostStore{c: &collection{path: filepath.Join(dir, "posts.json")}},
		Connections:   &ConnectionStore{c: &collection{path: filepath.Join(dir, "connections.json")}},
		Notifications: &NotificationStore{c: &collection{path: filepath.Join(dir, "notifications.json")}},
	}

	for _, c := range []*collection{s.Users.c, s.Posts.c, s.Connections.c, s.Notifications.c} {
		if err := c.init(); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// collection is a single on-disk JSON array plus the mutex that serializes
// its read-modify-write cycle.
type collection struct {
	path string
	mu   sync.Mutex
}

// init writes an empty array if the file doesn't exist yet.
func (c *collection) init() error {
	if _, err := os.Stat(c.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("jsonfile: checking %s: %w", c.path, err)
	}
	if err := writeFileAtomic(c.path, []byte("[]\n")); err != nil {
		return fmt.Errorf("jsonfile: initializing %s: %w", c.path, err)
	}
	return nil
}

// load reads and decodes an entire collection file.
//
// Free function (not a method) because Go methods cannot have their own type
// parameters. Callers hold the collection mutex when the load is part of a
// mutation; plain reads go without it — the atomic rename guarantees they
// never see a half-written file.
func load[T any](c *collection) ([]T, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("jsonfile: reading %s: %w", c.path, err)
	}
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("jsonfile: decoding %s: %w", c.path, err)
	}
	return records, nil
}

// save encodes and atomically replaces an entire collection file.
func save[T any](c *collection, records []T) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("jsonfile: encoding %s: %w", c.path, err)
	}
	if err := writeFileAtomic(c.path, append(data, '\n')); err != nil {
		return fmt.Errorf("jsonfile: writing %s: %w", c.path, err)
	}
	return nil
}

// writeFileAtomic writes data to a temp file in the target's directory and
// renames it into place. The temp file must be on the same filesystem for
// the rename to be atomic, hence same-directory.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
