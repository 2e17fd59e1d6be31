package app

import (
	"fmt"
	"path/filepath"

	"github.com/AllenDang/cimgui-go/imgui"
	"go.uber.org/zap"

	"github.com/Faultbox/glslpad/internal/colors"
)

var (
	colorError = imgui.NewVec4(1.0, 0.4, 0.4, 1.0)
	colorOK    = imgui.NewVec4(0.4, 0.8, 0.4, 1.0)
	colorDim   = imgui.NewVec4(0.6, 0.6, 0.6, 1.0)
)

// render is called each frame to draw the UI.
func (a *App) render() {
	a.pollImports()
	a.compiled.apply(a.source.Pair(), a.material)
	a.pushColors()

	// F12 captures the previous frame's viewport
	if imgui.IsKeyChordPressed(imgui.KeyChord(imgui.KeyF12)) {
		a.captureViewport()
	}

	a.renderMenuBar()

	viewport := imgui.MainViewport()
	workPos := viewport.WorkPos()
	workSize := viewport.WorkSize()

	statusBarHeight := float32(30)
	sideWidth := workSize.X * 0.4
	contentHeight := workSize.Y - statusBarHeight
	shadersHeight := contentHeight * 0.65

	flags := imgui.WindowFlagsNoMove | imgui.WindowFlagsNoResize | imgui.WindowFlagsNoCollapse

	imgui.SetNextWindowPos(workPos)
	imgui.SetNextWindowSize(imgui.NewVec2(workSize.X-sideWidth, contentHeight))
	if imgui.BeginV("Viewport", nil, flags|imgui.WindowFlagsNoScrollbar|imgui.WindowFlagsNoScrollWithMouse) {
		a.renderViewport()
	}
	imgui.End()

	title := "Shaders###Shaders"
	if a.source.Dirty() {
		title = "Shaders *###Shaders"
	}
	imgui.SetNextWindowPos(imgui.NewVec2(workPos.X+workSize.X-sideWidth, workPos.Y))
	imgui.SetNextWindowSize(imgui.NewVec2(sideWidth, shadersHeight))
	if imgui.BeginV(title, nil, flags) {
		a.renderShaders()
	}
	imgui.End()

	imgui.SetNextWindowPos(imgui.NewVec2(workPos.X+workSize.X-sideWidth, workPos.Y+shadersHeight))
	imgui.SetNextWindowSize(imgui.NewVec2(sideWidth, contentHeight-shadersHeight))
	if imgui.BeginV("Colors", nil, flags) {
		a.renderColors()
	}
	imgui.End()

	imgui.SetNextWindowPos(imgui.NewVec2(workPos.X, workPos.Y+contentHeight))
	imgui.SetNextWindowSize(imgui.NewVec2(workSize.X, statusBarHeight))
	if imgui.BeginV("##StatusBar", nil, flags|imgui.WindowFlagsNoTitleBar|imgui.WindowFlagsNoScrollbar) {
		a.renderStatusBar()
	}
	imgui.End()
}

// pollImports mounts finished model loads.
func (a *App) pollImports() {
	m, err := a.importer.Poll(a.mesh)
	if err != nil {
		a.importErr = err
		return
	}
	if m != nil {
		a.model = m
		a.importErr = nil
	}
}

func (a *App) renderMenuBar() {
	if !imgui.BeginMainMenuBar() {
		return
	}
	if imgui.BeginMenu("File") {
		if imgui.MenuItemBool("Open STL...") {
			a.openModelDialog()
		}
		if imgui.MenuItemBoolV("Show sphere", "", false, a.model != nil) {
			a.showSphere()
		}
		imgui.Separator()
		if imgui.MenuItemBool("Reset camera") {
			if cam := a.cameras.Get(); cam != nil {
				cam.Reset()
			}
		}
		if imgui.MenuItemBool("Revert shaders") {
			a.source.Revert(defaultShaders())
		}
		if imgui.MenuItemBoolV("Save screenshot", "F12", false, true) {
			a.captureViewport()
		}
		if imgui.MenuItemBool("Save settings") {
			a.saveSettings()
		}
		imgui.Separator()
		if imgui.MenuItemBool("Exit") {
			a.backend.SetShouldClose(true)
		}
		imgui.EndMenu()
	}
	imgui.EndMainMenuBar()
}

// renderViewport shows the scene and routes mouse input to picking and
// the camera.
func (a *App) renderViewport() {
	avail := imgui.ContentRegionAvail()
	w, h := int32(avail.X), int32(avail.Y)
	if w < 1 || h < 1 {
		return
	}
	if err := a.renderer.Resize(w, h); err != nil {
		a.log.Error("viewport resize failed", zap.Error(err))
		return
	}

	// The scene is drawn below, after input; ImGui samples the texture
	// when the frame is submitted.
	texRef := imgui.NewTextureRefTextureID(imgui.TextureID(a.renderer.Texture()))
	imgui.ImageWithBgV(
		*texRef,
		imgui.NewVec2(float32(w), float32(h)),
		imgui.NewVec2(0, 1), // UV flipped
		imgui.NewVec2(1, 0),
		imgui.NewVec4(0, 0, 0, 1),
		imgui.NewVec4(1, 1, 1, 1),
	)

	if imgui.IsItemHovered() {
		origin := imgui.ItemRectMin()
		mouse := imgui.MousePos()
		a.pointer = a.pipeline.Update(mouse.X-origin.X, mouse.Y-origin.Y, float32(w), float32(h), a.mesh)
		a.hovering = true

		if cam := a.cameras.Get(); cam != nil {
			if imgui.IsMouseDragging(imgui.MouseButtonLeft) {
				delta := imgui.CurrentIO().MouseDelta()
				cam.Orbit(delta.X, delta.Y)
			}
			if wheel := imgui.CurrentIO().MouseWheel(); wheel != 0 {
				cam.ZoomBy(wheel)
			}
		}
	} else if a.hovering {
		a.pointer = a.pipeline.Leave(a.mesh)
		a.hovering = false
	}

	a.renderer.Render(a.mesh)
}

func (a *App) renderShaders() {
	// Ctrl+S (Cmd+S on macOS) while the editor has focus
	saveChord := imgui.KeyChord(imgui.ModCtrl) | imgui.KeyChord(imgui.KeyS)
	if imgui.IsWindowFocusedV(imgui.FocusedFlagsRootAndChildWindows) && imgui.IsKeyChordPressed(saveChord) {
		a.saveShaders()
	}

	avail := imgui.ContentRegionAvail()
	editorHeight := (avail.Y - 4*imgui.TextLineHeightWithSpacing()) / 2
	if editorHeight < 60 {
		editorHeight = 60
	}
	size := imgui.NewVec2(-1, editorHeight)
	flags := imgui.InputTextFlagsAllowTabInput

	imgui.Text("Vertex Shader")
	vertex := a.source.Vertex
	if imgui.InputTextMultiline("##vertex", &vertex, size, flags, nil) {
		a.source.SetVertex(vertex)
	}

	imgui.Text("Fragment Shader")
	fragment := a.source.Fragment
	if imgui.InputTextMultiline("##fragment", &fragment, size, flags, nil) {
		a.source.SetFragment(fragment)
	}

	if err := a.compiled.Err(); err != nil {
		imgui.PushTextWrapPos()
		imgui.TextColored(colorError, err.Error())
		imgui.PopTextWrapPos()
	}

	switch {
	case a.source.SaveError() != nil && a.source.Dirty():
		imgui.TextColored(colorError, "Save failed: "+a.source.SaveError().Error())
	case a.source.Dirty():
		imgui.TextColored(colorDim, "Unsaved changes (Ctrl+S to save)")
	default:
		imgui.TextColored(colorOK, "Saved")
	}
}

func (a *App) renderColors() {
	for _, slot := range colors.Slots {
		rgb := a.colors.RGB(slot)
		imgui.ColorButton("##swatch"+string(slot), imgui.NewVec4(rgb.X(), rgb.Y(), rgb.Z(), 1))
		imgui.SameLine()

		hex := a.colors.Hex(slot)
		if imgui.InputTextWithHint(slot.Label()+"##"+string(slot), "#rrggbb", &hex, 0, nil) {
			a.colors.Set(slot, hex)
		}
	}
	if a.colorsSaved != "" {
		imgui.TextDisabled("Settings " + a.colorsSaved)
	}
}

func (a *App) renderStatusBar() {
	name := "sphere"
	if a.model != nil {
		name = fmt.Sprintf("%s (%d triangles)", a.model.Name, a.model.Geometry.TriangleCount())
	}
	imgui.Text("Model: " + name)

	imgui.SameLine()
	p := a.pointer.Point
	if a.pointer.IsOver {
		imgui.Text(fmt.Sprintf("| Point: %.3f, %.3f, %.3f", p.X(), p.Y(), p.Z()))
	} else {
		imgui.TextColored(colorDim, "| Not over model")
	}

	if a.importErr != nil {
		imgui.SameLine()
		imgui.TextColored(colorError, "| Import failed: "+a.importErr.Error())
	}
	if a.lastShot != "" {
		imgui.SameLine()
		imgui.TextDisabled("| " + filepath.Base(a.lastShot))
	}
}
