package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/dgallion1/guides/internal/resolver"
	"github.com/goccy/go-yaml"
)

// ProjectFiles are looked up in the source directory, in order, when no
// project file is configured.
var ProjectFiles = []string{"guides.toml", "guides.yaml", "guides.yml"}

type Config struct {
	Port string

	// Auth for the /api routes; empty disables it.
	APIKey string

	// Sources and output
	SourceDir string
	OutputDir string
	Root      string
	Formats   []string
	Tags      []string

	// Project file; empty means look for ProjectFiles in SourceDir.
	ProjectFile string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Build state
	BuildTimeout time.Duration
	BuildTTL     time.Duration
	Strict       bool

	LogLevel string

	Interlinks map[string]resolver.Inventory
}

// Project is the optional guides.toml / guides.yaml settings file. Set
// values replace the environment defaults.
type Project struct {
	Root       string                        `toml:"root" yaml:"root"`
	Formats    []string                      `toml:"formats" yaml:"formats"`
	Tags       []string                      `toml:"tags" yaml:"tags"`
	Output     string                        `toml:"output" yaml:"output"`
	Interlinks map[string]resolver.Inventory `toml:"interlinks" yaml:"interlinks"`
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("GUIDES_API_KEY"),

		SourceDir: envOr("GUIDES_SOURCE_DIR", "docs"),
		OutputDir: envOr("GUIDES_OUTPUT_DIR", "_build"),
		Root:      envOr("GUIDES_ROOT", "index"),
		Formats:   envList("GUIDES_FORMATS", []string{"html"}),
		Tags:      envList("GUIDES_TAGS", nil),

		ProjectFile: os.Getenv("GUIDES_CONFIG"),

		WorkerCount:  envInt("GUIDES_WORKERS", 4),
		MaxQueueSize: envInt("GUIDES_MAX_QUEUE", 16),

		BuildTimeout: envDuration("GUIDES_BUILD_TIMEOUT", 5*time.Minute),
		BuildTTL:     envDuration("GUIDES_BUILD_TTL", 1*time.Hour),
		Strict:       envBool("GUIDES_STRICT", false),

		LogLevel: envOr("GUIDES_LOG_LEVEL", "info"),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 16
	}
	if cfg.BuildTimeout <= 0 {
		cfg.BuildTimeout = 5 * time.Minute
	}
	if cfg.BuildTTL <= 0 {
		cfg.BuildTTL = 1 * time.Hour
	}

	return cfg
}

// LoadProject reads a project file, choosing the decoder by extension.
func LoadProject(path string) (Project, error) {
	var p Project
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read project file: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), &p); err != nil {
			return p, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &p); err != nil {
			return p, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return p, fmt.Errorf("unsupported project file type %q", ext)
	}
	return p, nil
}

// FindProject returns the configured project file, or the first of
// ProjectFiles present in the source directory. ok is false when there is
// none.
func (c Config) FindProject() (path string, ok bool) {
	if c.ProjectFile != "" {
		return c.ProjectFile, true
	}
	for _, name := range ProjectFiles {
		p := filepath.Join(c.SourceDir, name)
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

// Apply overlays the values set in p.
func (c *Config) Apply(p Project) {
	if p.Root != "" {
		c.Root = p.Root
	}
	if len(p.Formats) > 0 {
		c.Formats = p.Formats
	}
	if len(p.Tags) > 0 {
		c.Tags = p.Tags
	}
	if p.Output != "" {
		c.OutputDir = p.Output
	}
	if len(p.Interlinks) > 0 {
		if c.Interlinks == nil {
			c.Interlinks = map[string]resolver.Inventory{}
		}
		for k, v := range p.Interlinks {
			c.Interlinks[k] = v
		}
	}
}

// ApplyProject overlays the project file found by FindProject, if any,
// and records its path.
func (c *Config) ApplyProject() error {
	path, ok := c.FindProject()
	if !ok {
		return nil
	}
	p, err := LoadProject(path)
	if err != nil {
		return err
	}
	c.Apply(p)
	c.ProjectFile = path
	return nil
}

// Validate checks the settings. Formats must be among known.
func (c Config) Validate(known ...string) error {
	if c.SourceDir == "" {
		return errors.New("GUIDES_SOURCE_DIR is required")
	}
	if c.Root == "" {
		return errors.New("GUIDES_ROOT is required")
	}
	if len(c.Formats) == 0 {
		return errors.New("at least one output format is required")
	}
	for _, f := range c.Formats {
		if !slices.Contains(known, f) {
			return fmt.Errorf("unknown output format %q (known: %s)", f, strings.Join(known, ", "))
		}
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("GUIDES_WORKERS must be positive, got %d", c.WorkerCount)
	}
	for name, inv := range c.Interlinks {
		if inv.URL == "" {
			return fmt.Errorf("interlink %q has no url", name)
		}
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps GUIDES_LOG_LEVEL values to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return l, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envList splits a comma-separated variable, dropping empty items.
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
