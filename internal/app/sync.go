package app

import (
	"github.com/Faultbox/glslpad/internal/editor"
	"github.com/Faultbox/glslpad/internal/engine/shader"
)

// sourceSync rebuilds the material only when the edited text differs from
// what was last built.
type sourceSync struct {
	built   bool
	applied editor.Pair
	err     error
}

// apply builds pair into mat if it changed and returns the build error
// for the current text.
func (s *sourceSync) apply(pair editor.Pair, mat *shader.Material) error {
	if s.built && pair == s.applied {
		return s.err
	}
	s.built = true
	s.applied = pair
	s.err = mat.SetSource(pair.Vertex, pair.Fragment)
	return s.err
}

// Err returns the build error for the current text.
func (s *sourceSync) Err() error {
	return s.err
}

func firstPath(paths []string) (string, bool) {
	for _, p := range paths {
		if p != "" {
			return p, true
		}
	}
	return "", false
}
