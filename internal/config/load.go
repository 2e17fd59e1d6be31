package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings that would leave the viewport unusable.
func (c *Config) Validate() error {
	if c.Camera.Zoom <= 0 {
		return fmt.Errorf("camera.zoom must be positive, got %v", c.Camera.Zoom)
	}
	if c.Camera.Near >= c.Camera.Far {
		return fmt.Errorf("camera.near (%v) must be less than camera.far (%v)", c.Camera.Near, c.Camera.Far)
	}
	if c.Sphere.Radius <= 0 {
		return fmt.Errorf("sphere.radius must be positive, got %v", c.Sphere.Radius)
	}
	if c.Sphere.WidthSegments < 3 || c.Sphere.HeightSegments < 2 {
		return fmt.Errorf("sphere segments too low: %dx%d", c.Sphere.WidthSegments, c.Sphere.HeightSegments)
	}
	if c.Window.MSAA < 1 {
		c.Window.MSAA = 1
	}
	return nil
}

// StoragePath returns the shader storage file, resolving the default location.
func (c *Config) StoragePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	return filepath.Join(ConfigDir(), "storage.yaml")
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./glslpad.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "glslpad")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "glslpad")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "glslpad")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "glslpad")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
