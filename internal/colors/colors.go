// Package colors manages the tint slots fed to the model shader.
package colors

import (
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/Faultbox/glslpad/internal/config"
)

// Slot names a tint.
type Slot string

// Tint slots in display order.
const (
	Model      Slot = "model"
	Incomplete Slot = "incomplete"
	Selected   Slot = "selected"
	Bottom     Slot = "bottom"
	Contour    Slot = "contour"
	Outside    Slot = "outside"
)

// Slots lists every slot in display order.
var Slots = []Slot{Model, Incomplete, Selected, Bottom, Contour, Outside}

// Uniform returns the shader uniform fed by the slot, e.g. "modelColor".
func (s Slot) Uniform() string {
	return string(s) + "Color"
}

// Label is the slot name for display.
func (s Slot) Label() string {
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

type entry struct {
	hex string
	rgb mgl32.Vec3
}

// Settings holds the text and parsed value of every slot.
type Settings struct {
	entries map[Slot]entry
}

// New creates settings from the config's hex strings.
func New(cfg config.ColorsConfig) *Settings {
	s := &Settings{entries: make(map[Slot]entry, len(Slots))}
	for slot, hex := range map[Slot]string{
		Model:      cfg.Model,
		Incomplete: cfg.Incomplete,
		Selected:   cfg.Selected,
		Bottom:     cfg.Bottom,
		Contour:    cfg.Contour,
		Outside:    cfg.Outside,
	} {
		s.Set(slot, hex)
	}
	return s
}

// Set stores hex for slot. Text that does not parse yields black; the
// return value reports whether it parsed.
func (s *Settings) Set(slot Slot, hex string) bool {
	rgb, ok := ParseHex(hex)
	s.entries[slot] = entry{hex: hex, rgb: rgb}
	return ok
}

// Hex returns the text last set for slot.
func (s *Settings) Hex(slot Slot) string {
	return s.entries[slot].hex
}

// RGB returns the parsed color for slot in 0..1.
func (s *Settings) RGB(slot Slot) mgl32.Vec3 {
	return s.entries[slot].rgb
}

// Uniforms maps uniform names to colors.
func (s *Settings) Uniforms() map[string]mgl32.Vec3 {
	u := make(map[string]mgl32.Vec3, len(Slots))
	for _, slot := range Slots {
		u[slot.Uniform()] = s.entries[slot].rgb
	}
	return u
}

// Config returns the current text as a config section.
func (s *Settings) Config() config.ColorsConfig {
	return config.ColorsConfig{
		Model:      s.Hex(Model),
		Incomplete: s.Hex(Incomplete),
		Selected:   s.Hex(Selected),
		Bottom:     s.Hex(Bottom),
		Contour:    s.Hex(Contour),
		Outside:    s.Hex(Outside),
	}
}

// ParseHex parses "#rrggbb" or "#rgb", with or without the leading '#'.
// Anything else is black.
func ParseHex(hex string) (mgl32.Vec3, bool) {
	hex = strings.TrimSpace(hex)
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	if len(hex) != 4 && len(hex) != 7 {
		return mgl32.Vec3{}, false
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return mgl32.Vec3{}, false
	}
	return mgl32.Vec3{float32(c.R), float32(c.G), float32(c.B)}, true
}
