package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all goalgame configuration.
type Config struct {
	Storage StorageConfig `toml:"storage"`
	Sweep   SweepConfig   `toml:"sweep"`
	Server  ServerConfig  `toml:"server"`
}

type StorageConfig struct {
	GlobalPath  string `toml:"global_path"`
	ProjectFile string `toml:"project_file"`
}

type SweepConfig struct {
	IntervalSeconds int `toml:"interval_seconds"`
}

type ServerConfig struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Storage: StorageConfig{
			GlobalPath:  "~/.goalgame",
			ProjectFile: ".goalgame/game.db",
		},
		Sweep: SweepConfig{
			IntervalSeconds: 60,
		},
		Server: ServerConfig{
			Name:    "goalgame",
			Version: "1.0.0",
		},
	}
}

// Load reads config from the given path, falling back to defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	_, err = toml.Decode(string(data), &cfg)
	return cfg, err
}

// SweepInterval returns the configured sweep interval as a duration.
func (c Config) SweepInterval() time.Duration {
	if c.Sweep.IntervalSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.Sweep.IntervalSeconds) * time.Second
}
