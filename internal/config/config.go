// Package config handles application configuration loading and management.
package config

// Config holds all application settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Camera  CameraConfig  `yaml:"camera"`
	Sphere  SphereConfig  `yaml:"sphere"`
	Model   ModelConfig   `yaml:"model"`
	Light   LightConfig   `yaml:"light"`
	Colors  ColorsConfig  `yaml:"colors"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title    string `yaml:"title"`
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
	FPSLimit int    `yaml:"fps_limit"`
	MSAA     int    `yaml:"msaa"` // Viewport samples, 1 disables multisampling
}

// CameraConfig holds the initial orthographic camera framing.
type CameraConfig struct {
	Position [3]float32 `yaml:"position"`
	Up       [3]float32 `yaml:"up"`
	Zoom     float32    `yaml:"zoom"`
	Near     float32    `yaml:"near"`
	Far      float32    `yaml:"far"`
}

// SphereConfig holds the procedural sphere shown before any model is loaded.
type SphereConfig struct {
	Radius         float32 `yaml:"radius"`
	WidthSegments  int     `yaml:"width_segments"`
	HeightSegments int     `yaml:"height_segments"`
}

// ModelConfig holds STL import settings.
type ModelConfig struct {
	Path  string `yaml:"path"`  // Imported at startup when set
	Watch bool   `yaml:"watch"` // Re-import the current file when it changes on disk
}

// LightConfig holds the directional light fed to shaders as lightDirection.
type LightConfig struct {
	Azimuth   float32 `yaml:"azimuth"`   // Degrees, 0 faces the default camera
	Elevation float32 `yaml:"elevation"` // Degrees above the horizon
}

// ColorsConfig holds hex colors for each tint slot.
type ColorsConfig struct {
	Model      string `yaml:"model"`
	Incomplete string `yaml:"incomplete"`
	Selected   string `yaml:"selected"`
	Bottom     string `yaml:"bottom"`
	Contour    string `yaml:"contour"`
	Outside    string `yaml:"outside"`
}

// StorageConfig holds durable shader storage settings.
type StorageConfig struct {
	Path       string `yaml:"path"` // Empty means <ConfigDir>/storage.yaml
	QuotaBytes int64  `yaml:"quota_bytes"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:    "glslpad",
			Width:    1280,
			Height:   800,
			FPSLimit: 60,
			MSAA:     4,
		},
		Camera: CameraConfig{
			Position: [3]float32{0, -10, 0},
			Up:       [3]float32{0, 0, 1},
			Zoom:     50,
			Near:     0.1,
			Far:      1000,
		},
		Sphere: SphereConfig{
			Radius:         5,
			WidthSegments:  256,
			HeightSegments: 256,
		},
		Light: LightConfig{
			Azimuth:   30,
			Elevation: 35,
		},
		Colors: ColorsConfig{
			Model:      "#c8c8c8",
			Incomplete: "#5a5a5a",
			Selected:   "#ff3b30",
			Bottom:     "#2f6bff",
			Contour:    "#1c1c1c",
			Outside:    "#ffb000",
		},
		Storage: StorageConfig{
			QuotaBytes: 5 << 20,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
