// Daily3Albums Unlock
// Copyright (c) 2026 The Daily3Albums Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Daily3Albums Unlock.
//
// Daily3Albums Unlock is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Daily3Albums Unlock is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Daily3Albums Unlock.  If not, see <http://www.gnu.org/licenses/>.

// Package lastgood persists the most recent artifact that was committed as
// fresh, so it survives restarts.
package lastgood

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/daily3albums/unlock/pkg/artifact"
	"github.com/daily3albums/unlock/pkg/helpers/syncutil"
	"github.com/spf13/afero"
	bolt "go.etcd.io/bbolt"
)

const (
	BackendFile   = "file"
	BackendBolt   = "bolt"
	BackendMemory = "memory"

	BucketLastGood = "last_known_good"
	keyArtifact    = "artifact"
)

// Store holds a single last-known-good artifact. Load returns nil with no
// error when nothing has been saved.
type Store interface {
	Load() (*artifact.Artifact, error)
	Save(art *artifact.Artifact) error
	Close() error
}

func encode(art *artifact.Artifact) ([]byte, error) {
	if art == nil {
		return nil, errors.New("cannot save nil artifact")
	}
	if len(art.Raw) > 0 {
		return art.Raw, nil
	}
	data, err := json.Marshal(art)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal artifact: %w", err)
	}
	return data, nil
}

func decode(data []byte) (*artifact.Artifact, error) {
	art, err := artifact.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("stored artifact is invalid: %w", err)
	}
	return art, nil
}

// MemoryStore keeps the artifact in process memory only.
type MemoryStore struct {
	art *artifact.Artifact
	mu  syncutil.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load() (*artifact.Artifact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.art, nil
}

func (m *MemoryStore) Save(art *artifact.Artifact) error {
	if art == nil {
		return errors.New("cannot save nil artifact")
	}
	m.mu.Lock()
	m.art = art
	m.mu.Unlock()
	return nil
}

func (*MemoryStore) Close() error { return nil }

// FileStore writes the raw artifact payload to a single file. Writes go
// through a temporary file and a rename.
type FileStore struct {
	fs   afero.Fs
	path string
	mu   syncutil.Mutex
}

func NewFileStore(fs afero.Fs, path string) *FileStore {
	return &FileStore{fs: fs, path: path}
}

func (f *FileStore) Load() (*artifact.Artifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := afero.ReadFile(f.fs, f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.path, err)
	}
	return decode(data)
}

func (f *FileStore) Save(art *artifact.Artifact) error {
	data, err := encode(art)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.fs.MkdirAll(filepath.Dir(f.path), 0o750); err != nil {
		return fmt.Errorf("failed to create store dir: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := afero.WriteFile(f.fs, tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := f.fs.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", f.path, err)
	}
	return nil
}

func (*FileStore) Close() error { return nil }

// BoltStore keeps the artifact in a bbolt database.
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt opens or creates the database at path.
func OpenBolt(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create store dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(BucketLastGood))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bucket %q: %w", BucketLastGood, err)
	}
	return &BoltStore{db: db}, nil
}

func (b *BoltStore) Load() (*artifact.Artifact, error) {
	var data []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(BucketLastGood))
		if bucket == nil {
			return fmt.Errorf("bucket %q does not exist", BucketLastGood)
		}
		if v := bucket.Get([]byte(keyArtifact)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to view bolt database: %w", err)
	}
	if data == nil {
		return nil, nil
	}
	return decode(data)
}

func (b *BoltStore) Save(art *artifact.Artifact) error {
	data, err := encode(art)
	if err != nil {
		return err
	}
	err = b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BucketLastGood)).Put([]byte(keyArtifact), data)
	})
	if err != nil {
		return fmt.Errorf("failed to update bolt database: %w", err)
	}
	return nil
}

func (b *BoltStore) Close() error {
	if err := b.db.Close(); err != nil {
		return fmt.Errorf("failed to close bolt database: %w", err)
	}
	return nil
}

// Open returns the store for a configured backend.
func Open(backend, path string) (Store, error) {
	switch backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendBolt:
		bs, err := OpenBolt(path)
		if err != nil {
			return nil, err
		}
		return bs, nil
	case BackendFile, "":
		return NewFileStore(afero.NewOsFs(), path), nil
	default:
		return nil, fmt.Errorf("unknown last-good backend %q", backend)
	}
}
