// Package memory provides an in-memory ObjectStore. Useful as a test
// fixture store and for rehearsing runs without a cloud account.
package memory

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gobeaver/shelfkit"
)

type object struct {
	data    []byte
	tags    map[string]string
	modTime time.Time
}

// Store is an in-memory implementation of shelfkit.ObjectStore. The
// hierarchical namespace capability is configurable so both mover strategies
// can be exercised against it.
type Store struct {
	mu      sync.RWMutex
	objects map[string]*object
	dirs    map[string]bool
	atomic  bool
}

// Config holds configuration for the memory store
type Config struct {
	// AtomicRename makes the store report hierarchical namespace semantics
	// and accept Rename calls.
	AtomicRename bool
}

// New creates a new in-memory store
func New(cfg ...Config) *Store {
	s := &Store{
		objects: make(map[string]*object),
		dirs:    make(map[string]bool),
	}
	if len(cfg) > 0 {
		s.atomic = cfg[0].AtomicRename
	}
	return s
}

// Put seeds an object. Intended for tests and fixtures.
func (s *Store) Put(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[name] = &object{
		data:    append([]byte(nil), data...),
		tags:    make(map[string]string),
		modTime: time.Now(),
	}
}

// Exists reports whether an object is present. Intended for tests.
func (s *Store) Exists(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[name]
	return ok
}

// Data returns a copy of an object's content. Intended for tests.
func (s *Store) Data(name string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[name]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), obj.data...), true
}

// List implements shelfkit.ObjectLister. Names are walked in sorted order so
// runs over a fixture are deterministic.
func (s *Store) List(ctx context.Context, prefix string, fn func(shelfkit.ObjectInfo) error) error {
	s.mu.RLock()
	infos := make([]shelfkit.ObjectInfo, 0, len(s.objects))
	for name, obj := range s.objects {
		if strings.HasPrefix(name, prefix) {
			infos = append(infos, shelfkit.ObjectInfo{
				Name:         name,
				Size:         int64(len(obj.data)),
				LastModified: obj.modTime,
			})
		}
	}
	s.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })

	for _, info := range infos {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(info); err != nil {
			if err == shelfkit.ErrStopList {
				return nil
			}
			return err
		}
	}
	return nil
}

// ReadPrefix implements shelfkit.ObjectStore
func (s *Store) ReadPrefix(ctx context.Context, name string, maxBytes int64) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[name]
	if !ok {
		return nil, shelfkit.NewPathError("read-prefix", name, shelfkit.ErrNotExist)
	}
	n := int64(len(obj.data))
	if maxBytes > 0 && maxBytes < n {
		n = maxBytes
	}
	return append([]byte(nil), obj.data[:n]...), nil
}

// GetTags implements shelfkit.ObjectTagger
func (s *Store) GetTags(ctx context.Context, name string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[name]
	if !ok {
		return nil, shelfkit.NewPathError("get-tags", name, shelfkit.ErrNotExist)
	}
	tags := make(map[string]string, len(obj.tags))
	for k, v := range obj.tags {
		tags[k] = v
	}
	return tags, nil
}

// SetTags implements shelfkit.ObjectTagger
func (s *Store) SetTags(ctx context.Context, name string, tags map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[name]
	if !ok {
		return shelfkit.NewPathError("set-tags", name, shelfkit.ErrNotExist)
	}
	obj.tags = make(map[string]string, len(tags))
	for k, v := range tags {
		obj.tags[k] = v
	}
	return nil
}

// Copy implements shelfkit.ObjectStore. The copy is immediate; there is no
// asynchronous completion to confirm.
func (s *Store) Copy(ctx context.Context, src, dst string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[src]
	if !ok {
		return shelfkit.NewPathError("copy", src, shelfkit.ErrNotExist)
	}
	tags := make(map[string]string, len(obj.tags))
	for k, v := range obj.tags {
		tags[k] = v
	}
	s.objects[dst] = &object{
		data:    append([]byte(nil), obj.data...),
		tags:    tags,
		modTime: time.Now(),
	}
	return nil
}

// Delete implements shelfkit.ObjectStore
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[name]; !ok {
		return shelfkit.NewPathError("delete", name, shelfkit.ErrNotExist)
	}
	delete(s.objects, name)
	return nil
}

// Checksum implements shelfkit.ObjectStore
func (s *Store) Checksum(ctx context.Context, name string, algorithm shelfkit.ChecksumAlgorithm) (string, error) {
	s.mu.RLock()
	obj, ok := s.objects[name]
	var data []byte
	if ok {
		data = append([]byte(nil), obj.data...)
	}
	s.mu.RUnlock()

	if !ok {
		return "", shelfkit.NewPathError("checksum", name, shelfkit.ErrNotExist)
	}
	sum, err := shelfkit.CalculateChecksum(bytes.NewReader(data), algorithm)
	if err != nil {
		return "", shelfkit.NewPathError("checksum", name, err)
	}
	return sum, nil
}

// AccountCapabilities implements shelfkit.CanProbe
func (s *Store) AccountCapabilities(ctx context.Context) (shelfkit.Capabilities, error) {
	return shelfkit.Capabilities{SupportsAtomicRename: s.atomic}, nil
}

// Rename implements shelfkit.CanRename
func (s *Store) Rename(ctx context.Context, src, dst string, overwrite bool) error {
	if !s.atomic {
		return shelfkit.NewPathError("rename", src, shelfkit.ErrNotSupported)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[src]
	if !ok {
		return shelfkit.NewPathError("rename", src, shelfkit.ErrNotExist)
	}
	if _, exists := s.objects[dst]; exists && !overwrite {
		return shelfkit.NewPathError("rename", dst, shelfkit.ErrExist)
	}
	s.objects[dst] = obj
	delete(s.objects, src)
	return nil
}

// CreateDir implements shelfkit.CanRename. Re-creating an existing directory
// is success.
func (s *Store) CreateDir(ctx context.Context, path string) error {
	if !s.atomic {
		return shelfkit.NewPathError("create-dir", path, shelfkit.ErrNotSupported)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirs[strings.TrimSuffix(path, "/")] = true
	return nil
}

// Ensure Store implements required and optional interfaces
var (
	_ shelfkit.ObjectStore = (*Store)(nil)
	_ shelfkit.CanProbe    = (*Store)(nil)
	_ shelfkit.CanRename   = (*Store)(nil)
)
