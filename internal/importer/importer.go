// Package importer loads STL models off the render thread and mounts them
// onto a mesh.
package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/glslpad/internal/engine/geometry"
	"github.com/Faultbox/glslpad/internal/logger"
	"github.com/Faultbox/glslpad/pkg/formats"
)

// UniformBottom is the uniform set to minus half the model height.
const UniformBottom = "bottom"

// Target receives imported geometry. ReplaceGeometry must release the
// previous geometry before taking the new one.
type Target interface {
	ReplaceGeometry(g *geometry.Geometry)
	SetUniform(name string, value any)
}

// Model is a decoded, centered model ready to mount.
type Model struct {
	Path     string // Empty for in-memory payloads
	Name     string
	Geometry *geometry.Geometry
	Offset   mgl32.Vec3 // Translation applied to center the model
	Size     mgl32.Vec3
}

// Bottom is the value of the bottom uniform for this model.
func (m *Model) Bottom() float32 {
	return -m.Size.Z() / 2
}

type result struct {
	seq   uint64
	path  string
	model *Model
	err   error
}

// Importer decodes models asynchronously. Load may be called from any
// goroutine; Poll and ImportBytes must run on the render thread.
type Importer struct {
	seq     atomic.Uint64
	results chan result
	log     *zap.Logger

	mu      sync.Mutex
	watcher *watcher
	current string
}

// New creates an importer. With watch set, the last imported file is
// reloaded whenever it changes on disk.
func New(watch bool) *Importer {
	i := &Importer{
		results: make(chan result, 8),
		log:     logger.Named("importer"),
	}
	if watch {
		w, err := newWatcher(i.Load)
		if err != nil {
			i.log.Warn("file watching disabled", zap.Error(err))
		} else {
			i.watcher = w
		}
	}
	return i
}

// Load starts decoding path in the background. Only the most recent
// request is ever applied.
func (i *Importer) Load(path string) {
	seq := i.seq.Add(1)
	i.log.Info("loading model", zap.String("path", path), zap.Uint64("seq", seq))

	go func() {
		m, err := decodeFile(path)
		i.results <- result{seq: seq, path: path, model: m, err: err}
	}()
}

// Poll applies the newest finished load to target, if any.
// It returns the mounted model, or the newest load's error. Stale results
// are dropped.
func (i *Importer) Poll(target Target) (*Model, error) {
	var mounted *Model
	var lastErr error

	for {
		select {
		case r := <-i.results:
			if r.seq != i.seq.Load() {
				i.log.Debug("dropping stale load", zap.String("path", r.path), zap.Uint64("seq", r.seq))
				continue
			}
			if r.err != nil {
				i.log.Error("model load failed", zap.String("path", r.path), zap.Error(r.err))
				mounted, lastErr = nil, r.err
				continue
			}
			mount(target, r.model)
			i.watch(r.path)
			i.log.Info("model mounted",
				zap.String("path", r.path),
				zap.Int("triangles", r.model.Geometry.TriangleCount()))
			mounted, lastErr = r.model, nil
		default:
			return mounted, lastErr
		}
	}
}

// ImportBytes decodes data and mounts it on target immediately. Any
// background load still in flight becomes stale and the previous file is
// no longer watched.
func (i *Importer) ImportBytes(data []byte, name string, target Target) (*Model, error) {
	i.Cancel()

	m, err := decode(data)
	if err != nil {
		i.log.Error("model import failed", zap.String("name", name), zap.Error(err))
		return nil, err
	}
	m.Name = name
	mount(target, m)
	return m, nil
}

// Cancel drops every load still in flight and stops watching the last
// imported file. Call it before mounting geometry the importer did not
// produce.
func (i *Importer) Cancel() {
	i.seq.Add(1)

	i.mu.Lock()
	defer i.mu.Unlock()
	if i.watcher != nil && i.current != "" {
		i.watcher.unfollow()
		i.log.Debug("stopped watching", zap.String("path", i.current))
	}
	i.current = ""
}

// Close stops the file watcher.
func (i *Importer) Close() error {
	if i.watcher != nil {
		return i.watcher.close()
	}
	return nil
}

func (i *Importer) watch(path string) {
	if i.watcher == nil || path == "" {
		return
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if path == i.current {
		return
	}
	if err := i.watcher.follow(path); err != nil {
		i.log.Warn("cannot watch model", zap.String("path", path), zap.Error(err))
		return
	}
	i.current = path
}

// mount swaps the geometry onto target and refreshes size-derived uniforms.
func mount(target Target, m *Model) {
	target.ReplaceGeometry(m.Geometry)
	target.SetUniform(UniformBottom, m.Bottom())
}

func decodeFile(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model: %w", err)
	}
	m, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	m.Path = path
	m.Name = filepath.Base(path)
	return m, nil
}

// decode parses STL data into centered geometry.
func decode(data []byte) (*Model, error) {
	stl, err := formats.ParseSTL(data)
	if err != nil {
		return nil, err
	}

	tris := make([]geometry.Triangle, len(stl.Triangles))
	for n, t := range stl.Triangles {
		tris[n] = geometry.Triangle{
			Normal: mgl32.Vec3(t.Normal),
			Vertices: [3]mgl32.Vec3{
				mgl32.Vec3(t.Vertices[0]),
				mgl32.Vec3(t.Vertices[1]),
				mgl32.Vec3(t.Vertices[2]),
			},
		}
	}

	centered, offset := geometry.FromTriangles(tris).Centered()
	return &Model{
		Name:     stl.Name,
		Geometry: centered,
		Offset:   offset,
		Size:     centered.Bounds().Size(),
	}, nil
}
