// Package shaders provides the built-in GLSL shader pair.
package shaders

import _ "embed"

// DefaultVertexShader is the vertex shader loaded when nothing is saved.
//
//go:embed default.vert
var DefaultVertexShader string

// DefaultFragmentShader is the fragment shader loaded when nothing is saved.
//
//go:embed default.frag
var DefaultFragmentShader string
