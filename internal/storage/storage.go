// Package storage is a small durable key-value store for editor state.
//
// Values live in memory and are written through to a YAML file on every
// Set. The file is replaced atomically, so a crash mid-write leaves the
// previous contents intact.
package storage

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/glslpad/internal/logger"
)

// DefaultQuota matches the per-origin limit browsers apply to localStorage.
const DefaultQuota = 5 << 20

// ErrQuotaExceeded is returned when a write would push the store past its quota.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// WriteError reports a failed write. Key lists the keys of the write,
// comma separated. The store is left as it was before the call.
type WriteError struct {
	Key string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("storage: write %q: %v", e.Key, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Store is a string map persisted as YAML.
type Store struct {
	mu     sync.Mutex
	path   string
	quota  int64
	values map[string]string
}

// Open loads the store at path. A missing file is an empty store.
// quota <= 0 selects DefaultQuota.
func Open(path string, quota int64) (*Store, error) {
	if quota <= 0 {
		quota = DefaultQuota
	}
	s := &Store{
		path:   path,
		quota:  quota,
		values: make(map[string]string),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading storage: %w", err)
	}
	if err := yaml.Unmarshal(data, &s.values); err != nil {
		return nil, fmt.Errorf("parsing storage %s: %w", path, err)
	}
	if s.values == nil {
		s.values = make(map[string]string)
	}

	logger.Named("storage").Debug("opened", zap.String("path", path), zap.Int("keys", len(s.values)))
	return s, nil
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Get returns the value for key.
func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores value under key and writes the file.
// Failures are returned as *WriteError.
func (s *Store) Set(key, value string) error {
	return s.SetAll(map[string]string{key: value})
}

// SetAll stores every entry in one write. Either all entries are
// committed or none are. Failures are returned as *WriteError.
func (s *Store) SetAll(entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]string, len(s.values)+len(entries))
	for k, v := range s.values {
		next[k] = v
	}
	for k, v := range entries {
		next[k] = v
	}
	keys := strings.Join(sortedKeys(entries), ", ")

	if used := usage(next); used > s.quota {
		return &WriteError{Key: keys, Err: fmt.Errorf("%w: %d of %d bytes", ErrQuotaExceeded, used, s.quota)}
	}

	if err := s.write(next); err != nil {
		return &WriteError{Key: keys, Err: err}
	}
	s.values = next
	return nil
}

// Usage returns the bytes counted against the quota.
func (s *Store) Usage() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return usage(s.values)
}

// usage counts key and value bytes, the way browsers size localStorage.
func usage(values map[string]string) int64 {
	var n int64
	for k, v := range values {
		n += int64(len(k) + len(v))
	}
	return n
}

func sortedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// encode renders values as a YAML mapping that reads back byte for byte.
// Plain and block scalars fold or strip line breaks, so every value is
// double quoted. Values that are not UTF-8 are stored as !!binary.
func encode(values map[string]string) ([]byte, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range sortedKeys(values) {
		doc.Content = append(doc.Content, scalar(k), scalar(values[k]))
	}
	return yaml.Marshal(doc)
}

func scalar(v string) *yaml.Node {
	if !utf8.ValidString(v) {
		return &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!binary",
			Value: base64.StdEncoding.EncodeToString([]byte(v)),
		}
	}
	return &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   "!!str",
		Style: yaml.DoubleQuotedStyle,
		Value: v,
	}
}

func (s *Store) write(values map[string]string) error {
	data, err := encode(values)
	if err != nil {
		return fmt.Errorf("encoding: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".storage-*.yaml")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}
	return nil
}
