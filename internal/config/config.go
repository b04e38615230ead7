package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/standardbeagle/flowgen/internal/errors"
	"github.com/standardbeagle/flowgen/internal/flow"
)

// Config is the resolved project configuration. Values come from
// .flowgen.kdl (preferred) or .flowgen.toml in the project root; missing
// files mean defaults.
type Config struct {
	Project Project `toml:"project"`
	Output  Output  `toml:"output"`
	Batch   Batch   `toml:"batch"`
	Watch   Watch   `toml:"watch"`
	Cache   Cache   `toml:"cache"`
}

type Project struct {
	Root string `toml:"root"`
	Name string `toml:"name"`
}

type Output struct {
	// LabelLimit caps node label length in runes before truncation.
	LabelLimit int    `toml:"label_limit"`
	Pretty     bool   `toml:"pretty"`
	Dir        string `toml:"dir"`
}

type Batch struct {
	Include       []string `toml:"include"`
	Exclude       []string `toml:"exclude"`
	MaxGoroutines int      `toml:"max_goroutines"`
}

type Watch struct {
	DebounceMs int `toml:"debounce_ms"`
}

type Cache struct {
	Enabled    bool `toml:"enabled"`
	MaxEntries int  `toml:"max_entries"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Output: Output{
			LabelLimit: flow.DefaultLabelLimit,
		},
		Batch: Batch{
			Include: []string{
				"**/*.cpp", "**/*.cc", "**/*.cxx", "**/*.c",
				"**/*.h", "**/*.hpp", "**/*.hxx",
				"**/*.java", "**/*.rs",
			},
			Exclude: []string{
				"**/target/**", "**/build/**", "**/.git/**",
				"**/node_modules/**",
			},
			MaxGoroutines: 4,
		},
		Watch: Watch{
			DebounceMs: 200,
		},
		Cache: Cache{
			Enabled:    true,
			MaxEntries: 512,
		},
	}
}

// Load resolves the effective configuration for projectRoot. A .flowgen.kdl
// wins over a .flowgen.toml; neither means defaults. The returned config is
// always validated.
func Load(projectRoot string) (*Config, error) {
	cfg, err := LoadKDL(projectRoot)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg, err = LoadTOML(projectRoot)
		if err != nil {
			return nil, err
		}
	}
	if cfg == nil {
		cfg = Default()
	}
	if cfg.Project.Root == "" {
		if abs, err := filepath.Abs(projectRoot); err == nil {
			cfg.Project.Root = abs
		} else {
			cfg.Project.Root = projectRoot
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadTOML reads .flowgen.toml from projectRoot. A missing file returns
// (nil, nil).
func LoadTOML(projectRoot string) (*Config, error) {
	path := filepath.Join(projectRoot, ".flowgen.toml")
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewConfigError("file", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(content, cfg); err != nil {
		return nil, errors.NewConfigError("file", path, err)
	}
	return cfg, nil
}

// Validate rejects values the rest of the pipeline cannot work with.
func (c *Config) Validate() error {
	if c.Output.LabelLimit < 0 {
		return errors.NewConfigError("output.label_limit",
			fmt.Sprint(c.Output.LabelLimit), fmt.Errorf("must be non-negative"))
	}
	if c.Batch.MaxGoroutines < 1 {
		return errors.NewConfigError("batch.max_goroutines",
			fmt.Sprint(c.Batch.MaxGoroutines), fmt.Errorf("must be at least 1"))
	}
	if c.Watch.DebounceMs < 0 {
		return errors.NewConfigError("watch.debounce_ms",
			fmt.Sprint(c.Watch.DebounceMs), fmt.Errorf("must be non-negative"))
	}
	if c.Cache.MaxEntries < 0 {
		return errors.NewConfigError("cache.max_entries",
			fmt.Sprint(c.Cache.MaxEntries), fmt.Errorf("must be non-negative"))
	}
	return nil
}
