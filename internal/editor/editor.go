// Package editor holds the shader text being edited and its save state.
package editor

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/glslpad/internal/logger"
)

// Storage keys for persisted shader text.
const (
	KeyVertex   = "glslpad.vertexShader"
	KeyFragment = "glslpad.fragmentShader"
)

// KV is the durable storage the editor saves into. SetAll commits every
// entry or none.
type KV interface {
	Get(key string) (string, bool)
	SetAll(entries map[string]string) error
}

// Pair is a vertex/fragment shader pair.
type Pair struct {
	Vertex   string
	Fragment string
}

// Source is the shader text under edit.
type Source struct {
	Vertex   string
	Fragment string

	dirty   bool
	saveErr error
}

// Load reads saved text from store, falling back to defaults per key.
func Load(store KV, defaults Pair) *Source {
	s := &Source{Vertex: defaults.Vertex, Fragment: defaults.Fragment}
	if store == nil {
		return s
	}
	if v, ok := store.Get(KeyVertex); ok {
		s.Vertex = v
	}
	if f, ok := store.Get(KeyFragment); ok {
		s.Fragment = f
	}
	return s
}

// Pair returns the current text.
func (s *Source) Pair() Pair {
	return Pair{Vertex: s.Vertex, Fragment: s.Fragment}
}

// SetVertex replaces the vertex text. It reports whether the text changed.
func (s *Source) SetVertex(text string) bool {
	if text == s.Vertex {
		return false
	}
	s.Vertex = text
	s.dirty = true
	return true
}

// SetFragment replaces the fragment text. It reports whether the text changed.
func (s *Source) SetFragment(text string) bool {
	if text == s.Fragment {
		return false
	}
	s.Fragment = text
	s.dirty = true
	return true
}

// Dirty reports unsaved edits since the last load or successful save.
func (s *Source) Dirty() bool {
	return s.dirty
}

// SaveError returns the error from the last failed save, cleared by the
// next successful one.
func (s *Source) SaveError() error {
	return s.saveErr
}

// Save writes both shaders to store in one write, so the stored pair
// always belongs together. On failure the source stays dirty.
func (s *Source) Save(store KV) error {
	err := store.SetAll(map[string]string{
		KeyVertex:   s.Vertex,
		KeyFragment: s.Fragment,
	})
	if err != nil {
		return s.failed(err)
	}
	s.dirty = false
	s.saveErr = nil
	logger.Named("editor").Info("shaders saved",
		zap.Int("vertex_bytes", len(s.Vertex)),
		zap.Int("fragment_bytes", len(s.Fragment)))
	return nil
}

func (s *Source) failed(err error) error {
	s.saveErr = err
	logger.Named("editor").Warn("save failed", zap.Error(err))
	return fmt.Errorf("saving shaders: %w", err)
}

// Revert replaces the text with defaults. The result is unsaved.
func (s *Source) Revert(defaults Pair) {
	changed := s.SetVertex(defaults.Vertex)
	if s.SetFragment(defaults.Fragment) {
		changed = true
	}
	if changed {
		logger.Named("editor").Info("shaders reverted to defaults")
	}
}
