// Package app is the glslpad window: a shader viewport, the shader editor,
// color settings and model import wired to one render loop.
package app

import (
	"fmt"
	"path/filepath"

	"github.com/AllenDang/cimgui-go/backend"
	"github.com/AllenDang/cimgui-go/backend/sdlbackend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/glslpad/internal/colors"
	"github.com/Faultbox/glslpad/internal/config"
	"github.com/Faultbox/glslpad/internal/editor"
	"github.com/Faultbox/glslpad/internal/engine/camera"
	"github.com/Faultbox/glslpad/internal/engine/debug"
	"github.com/Faultbox/glslpad/internal/engine/geometry"
	"github.com/Faultbox/glslpad/internal/engine/lighting"
	"github.com/Faultbox/glslpad/internal/engine/picking"
	"github.com/Faultbox/glslpad/internal/engine/scene"
	"github.com/Faultbox/glslpad/internal/engine/shader"
	"github.com/Faultbox/glslpad/internal/importer"
	"github.com/Faultbox/glslpad/internal/logger"
	"github.com/Faultbox/glslpad/internal/shaders"
	"github.com/Faultbox/glslpad/internal/storage"
)

// App holds the window and everything drawn in it.
// All fields are owned by the render thread.
type App struct {
	cfg     *config.Config
	backend backend.Backend[sdlbackend.SDLWindowFlags]
	log     *zap.Logger

	cameras  *camera.Store
	pipeline *picking.Pipeline
	renderer *scene.Renderer
	material *shader.Material
	mesh     *scene.Mesh
	importer *importer.Importer

	store    *storage.Store
	source   *editor.Source
	compiled sourceSync
	colors   *colors.Settings
	shots    *debug.ScreenshotCapture

	// Status
	pointer     picking.PointerState
	hovering    bool
	model       *importer.Model // nil while the sphere is shown
	importErr   error
	colorsSaved string
	lastShot    string
}

// New opens the window and builds the initial scene.
func New(cfg *config.Config) (*App, error) {
	a := &App{
		cfg: cfg,
		log: logger.Named("app"),
	}

	store, err := storage.Open(cfg.StoragePath(), cfg.Storage.QuotaBytes)
	if err != nil {
		return nil, fmt.Errorf("opening shader storage: %w", err)
	}
	a.store = store

	a.backend, err = backend.CreateBackend(sdlbackend.NewSDLBackend())
	if err != nil {
		return nil, fmt.Errorf("creating backend: %w", err)
	}
	a.backend.SetBgColor(imgui.NewVec4(0.1, 0.1, 0.12, 1.0))
	a.backend.CreateWindow(cfg.Window.Title, cfg.Window.Width, cfg.Window.Height)
	if cfg.Window.FPSLimit > 0 {
		a.backend.SetTargetFPS(uint(cfg.Window.FPSLimit))
	}
	a.backend.SetDropCallback(a.onDrop)

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("initializing OpenGL: %w", err)
	}
	a.log.Info("OpenGL ready",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))))

	c := cfg.Camera
	a.cameras = camera.NewStore(camera.NewOrtho(mgl32.Vec3(c.Position), mgl32.Vec3(c.Up), c.Zoom, c.Near, c.Far))
	a.pipeline = picking.NewPipeline(a.cameras)

	a.renderer, err = scene.NewRenderer(a.cameras, int32(cfg.Window.Width), int32(cfg.Window.Height), int32(cfg.Window.MSAA))
	if err != nil {
		return nil, err
	}

	a.material = shader.NewMaterial(shader.NewGLBackend())
	a.mesh = scene.NewMesh(scene.GLUploader{}, a.material)
	a.showSphere()

	a.colors = colors.New(cfg.Colors)
	a.pushColors()
	a.mesh.SetUniform(lighting.UniformLightDirection, lighting.SunDirection(cfg.Light.Azimuth, cfg.Light.Elevation))

	a.shots = debug.NewScreenshotCapture(filepath.Join(config.ConfigDir(), "screenshots"), "glslpad")

	a.source = editor.Load(a.store, defaultShaders())
	a.compiled.apply(a.source.Pair(), a.material)

	a.importer = importer.New(cfg.Model.Watch)
	if cfg.Model.Path != "" {
		a.importer.Load(cfg.Model.Path)
	}

	return a, nil
}

func defaultShaders() editor.Pair {
	return editor.Pair{
		Vertex:   shaders.DefaultVertexShader,
		Fragment: shaders.DefaultFragmentShader,
	}
}

// Run starts the main loop. It returns when the window closes.
func (a *App) Run() error {
	a.backend.Run(a.render)
	return nil
}

// Close releases GPU resources and stops background work.
func (a *App) Close() {
	if a.importer != nil {
		if err := a.importer.Close(); err != nil {
			a.log.Warn("closing importer", zap.Error(err))
		}
	}
	if a.mesh != nil {
		a.mesh.Destroy()
	}
	if a.renderer != nil {
		a.renderer.Destroy()
	}
}

// showSphere mounts the procedural sphere. Pending imports and the
// file watch are cancelled so they cannot replace it afterwards.
func (a *App) showSphere() {
	if a.importer != nil {
		a.importer.Cancel()
	}
	s := a.cfg.Sphere
	g := geometry.Sphere(s.Radius, s.WidthSegments, s.HeightSegments)
	a.mesh.ReplaceGeometry(g)
	a.mesh.SetUniform(importer.UniformBottom, -g.Bounds().Size().Z()/2)
	a.model = nil
}

func (a *App) pushColors() {
	for name, rgb := range a.colors.Uniforms() {
		a.mesh.SetUniform(name, rgb)
	}
}

// onDrop queues the first dropped file; the rest are ignored.
func (a *App) onDrop(paths []string) {
	path, ok := firstPath(paths)
	if !ok {
		return
	}
	if len(paths) > 1 {
		a.log.Info("multiple files dropped, importing the first", zap.Int("count", len(paths)))
	}
	a.importer.Load(path)
}

// openModelDialog shows a native file dialog off the render thread.
// The chosen file goes straight to the importer, which hands the result
// back on the next Poll.
func (a *App) openModelDialog() {
	go func() {
		filename, err := dialog.File().
			Filter("STL Models", "stl").
			Filter("All Files", "*").
			Title("Open STL Model").
			Load()
		if err != nil {
			if err != dialog.ErrCancelled {
				a.log.Warn("file dialog failed", zap.Error(err))
			}
			return
		}
		a.importer.Load(filename)
	}()
}

func (a *App) saveShaders() {
	if err := a.source.Save(a.store); err != nil {
		a.log.Warn("shaders not saved", zap.Error(err))
	}
}

// captureViewport writes the last rendered viewport frame to a PNG.
func (a *App) captureViewport() {
	pixels, w, h := a.renderer.ReadPixels()
	path, err := a.shots.CaptureFromPixels(pixels, w, h)
	if err != nil {
		a.log.Warn("screenshot failed", zap.Error(err))
		a.lastShot = "screenshot failed"
		return
	}
	a.log.Info("screenshot saved", zap.String("path", path))
	a.lastShot = path
}

func (a *App) saveSettings() {
	a.cfg.Colors = a.colors.Config()
	if err := a.cfg.Save(); err != nil {
		a.log.Warn("settings not saved", zap.Error(err))
		a.colorsSaved = "save failed"
		return
	}
	a.colorsSaved = "saved"
}
