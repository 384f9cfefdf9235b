// pkg/host/config.go
package host

import (
	"fmt"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Config is the host surface configuration. It never configures handler
// discovery or loading; the embedding supplies the App directly.
type Config struct {
	MountPath          string `toml:"mount_path"`
	MetricsPath        string `toml:"metrics_path"`
	DefaultContentType string `toml:"default_content_type"`
	ErrorBody          string `toml:"error_body"`
}

func DefaultConfig() Config {
	return Config{
		MountPath:          "/",
		MetricsPath:        "/metrics",
		DefaultContentType: "text/html",
		ErrorBody:          "internal server error\n",
	}
}

func LoadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := DefaultConfig()
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if !strings.HasPrefix(c.MountPath, "/") {
		return fmt.Errorf("mount_path must start with /: %q", c.MountPath)
	}
	if !strings.HasPrefix(c.MetricsPath, "/") {
		return fmt.Errorf("metrics_path must start with /: %q", c.MetricsPath)
	}
	if c.MountPath == c.MetricsPath {
		return fmt.Errorf("mount_path and metrics_path collide: %q", c.MountPath)
	}
	if c.DefaultContentType == "" {
		return fmt.Errorf("default_content_type must not be empty")
	}
	return nil
}
