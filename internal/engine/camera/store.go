package camera

// Store holds the camera that the viewport currently renders with.
//
// It is created once by the app and handed to every component that needs
// projection math. All access happens on the render thread, so it is not
// locked.
type Store struct {
	active *Ortho
}

// NewStore creates a store holding cam.
func NewStore(cam *Ortho) *Store {
	return &Store{active: cam}
}

// Set replaces the active camera.
func (s *Store) Set(cam *Ortho) {
	s.active = cam
}

// Get returns the active camera, or nil if none was set. A nil store
// has no camera.
func (s *Store) Get() *Ortho {
	if s == nil {
		return nil
	}
	return s.active
}
