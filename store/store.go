// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package store implements locked, atomic read/write of named files in a
// work directory: every read takes a shared lock, every write streams to
// a sibling ".tmp" file, fsyncs it, and atomically renames it over the
// target, mediated by a sibling ".lock" file.
package store

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/solidcoredata/tablechain/coreerr"
)

// Store is a handle on one work directory. All operations are safe to
// call from multiple goroutines in this process and, via the sidecar
// lock files, from multiple processes sharing the directory.
type Store struct {
	dir string
}

// Open returns a Store rooted at dir. dir must already exist.
func Open(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the work directory path.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(name string) string     { return filepath.Join(s.dir, name) }
func (s *Store) lockPath(name string) string { return filepath.Join(s.dir, name+".lock") }
func (s *Store) tmpPath(name string) string  { return filepath.Join(s.dir, name+".tmp") }

func (s *Store) lock(name string) *flock.Flock {
	return flock.New(s.lockPath(name))
}

// Read returns the current contents of name, or coreerr.NotFound if it is
// absent.
func (s *Store) Read(name string) ([]byte, error) {
	fl := s.lock(name)
	if err := fl.RLock(); err != nil {
		return nil, coreerr.New(coreerr.Io, err)
	}
	defer fl.Unlock()

	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, coreerr.New(coreerr.NotFound, err)
		}
		return nil, coreerr.New(coreerr.Io, err)
	}
	return data, nil
}

// Write atomically replaces name's contents with data: it streams to a
// sibling "name.tmp", fsyncs it, then renames it over name. Concurrent
// readers observe either the prior value or the new one, never partial
// bytes; concurrent writers serialize on the exclusive lock.
func (s *Store) Write(name string, data []byte) error {
	fl := s.lock(name)
	if err := fl.Lock(); err != nil {
		return coreerr.New(coreerr.Io, err)
	}
	defer fl.Unlock()

	tmp := s.tmpPath(name)
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return coreerr.New(coreerr.Io, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return coreerr.New(coreerr.Io, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return coreerr.New(coreerr.Io, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return coreerr.New(coreerr.Io, err)
	}
	if err := os.Rename(tmp, s.path(name)); err != nil {
		os.Remove(tmp)
		return coreerr.New(coreerr.Io, err)
	}
	// Best-effort cleanup of the lock sidecar; errors here never surface.
	os.Remove(s.lockPath(name))
	return nil
}

// Remove deletes name. Removing an absent file is not an error (a
// truncation sweep may race a concurrent reader, or the name may simply
// already be gone).
func (s *Store) Remove(name string) error {
	fl := s.lock(name)
	if err := fl.Lock(); err != nil {
		return coreerr.New(coreerr.Io, err)
	}
	defer fl.Unlock()

	if err := os.Remove(s.path(name)); err != nil && !os.IsNotExist(err) {
		return coreerr.New(coreerr.Io, err)
	}
	os.Remove(s.lockPath(name))
	return nil
}

// List returns every entry name directly in the work directory,
// excluding the ".lock"/".tmp" sidecars: they are never relied upon
// after the owning operation returns.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, coreerr.New(coreerr.Io, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		n := e.Name()
		if filepath.Ext(n) == ".lock" || filepath.Ext(n) == ".tmp" {
			continue
		}
		names = append(names, n)
	}
	return names, nil
}
