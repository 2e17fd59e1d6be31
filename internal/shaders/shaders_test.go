package shaders

import (
	"strings"
	"testing"
)

func TestDefaultsDeclareFedUniforms(t *testing.T) {
	if !strings.HasPrefix(DefaultVertexShader, "#version 410 core") {
		t.Error("vertex shader must target GLSL 410 core")
	}
	if !strings.HasPrefix(DefaultFragmentShader, "#version 410 core") {
		t.Error("fragment shader must target GLSL 410 core")
	}

	for _, name := range []string{"projectionMatrix", "modelViewMatrix"} {
		if !strings.Contains(DefaultVertexShader, "uniform mat4 "+name) {
			t.Errorf("vertex shader missing uniform %s", name)
		}
	}

	for _, decl := range []string{
		"uniform vec3 point", "uniform bool isOver", "uniform float bottom",
		"uniform vec3 modelColor", "uniform vec3 incompleteColor", "uniform vec3 selectedColor",
		"uniform vec3 bottomColor", "uniform vec3 contourColor", "uniform vec3 outsideColor",
		"uniform vec3 lightDirection",
	} {
		if !strings.Contains(DefaultFragmentShader, decl) {
			t.Errorf("fragment shader missing %q", decl)
		}
	}
}
