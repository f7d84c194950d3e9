package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexanderramin/nora/internal/llm"
	"gopkg.in/yaml.v3"
)

// File mirrors ~/.nora/config.yaml. Zero values mean "use the default".
type File struct {
	DB       string  `yaml:"db"`
	Timezone string  `yaml:"timezone"`
	LLM      LLMFile `yaml:"llm"`
}

// LLMFile is the llm section of the config file.
type LLMFile struct {
	APIKey            string `yaml:"api_key"`
	Endpoint          string `yaml:"endpoint"`
	Model             string `yaml:"model"`
	TimeoutMs         int    `yaml:"timeout_ms"`
	MaxTokens         int    `yaml:"max_tokens"`
	RequestsPerMinute *int   `yaml:"requests_per_minute"`
	LogCalls          *bool  `yaml:"log_calls"`
}

// Config is the resolved configuration: defaults, then the file, then
// NORA_* environment variables.
type Config struct {
	Path     string // file that was read, empty if none existed
	DBPath   string
	Timezone string
	LLM      llm.LLMConfig
}

// DefaultDir returns ~/.nora.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".nora"), nil
}

// DefaultPath returns NORA_CONFIG if set, otherwise ~/.nora/config.yaml.
func DefaultPath() (string, error) {
	if p := os.Getenv("NORA_CONFIG"); p != "" {
		return p, nil
	}
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load resolves configuration from path. A missing file is not an error.
// Unknown keys are, so typos do not silently fall back to defaults.
func Load(path string) (*Config, error) {
	var f File
	cfg := &Config{}

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		default:
			if err := decode(raw, &f); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
			cfg.Path = path
		}
	}

	cfg.DBPath = f.DB
	cfg.Timezone = f.Timezone
	cfg.LLM = f.LLM.apply(llm.DefaultConfig())

	if v := os.Getenv("NORA_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("NORA_TIMEZONE"); v != "" {
		cfg.Timezone = v
	}
	llm.ApplyEnv(&cfg.LLM)

	if cfg.DBPath == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		cfg.DBPath = filepath.Join(dir, "nora.db")
	}
	cfg.DBPath = expandHome(cfg.DBPath)

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Location returns the configured timezone, or time.Local when unset.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func decode(raw []byte, f *File) error {
	dec := yaml.NewDecoder(strings.NewReader(string(raw)))
	dec.KnownFields(true)
	if err := dec.Decode(f); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (l LLMFile) apply(cfg llm.LLMConfig) llm.LLMConfig {
	if l.APIKey != "" {
		cfg.APIKey = l.APIKey
	}
	if l.Endpoint != "" {
		cfg.Endpoint = l.Endpoint
	}
	if l.Model != "" {
		cfg.Model = l.Model
	}
	if l.TimeoutMs > 0 {
		cfg.TimeoutMs = l.TimeoutMs
	}
	if l.RequestsPerMinute != nil && *l.RequestsPerMinute >= 0 {
		cfg.RequestsPerMinute = *l.RequestsPerMinute
	}
	if l.LogCalls != nil {
		cfg.LogCalls = *l.LogCalls
	}
	if l.MaxTokens > 0 {
		tc := cfg.Tasks[llm.TaskSchedulePlan]
		tc.MaxTokens = l.MaxTokens
		cfg.Tasks[llm.TaskSchedulePlan] = tc
	}
	return cfg
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// Sample is written by `nora config init`.
const Sample = `# nora configuration
# db: ~/.nora/nora.db
# timezone: Europe/Berlin
llm:
  api_key: your_aiml_api_key_here
  # endpoint: https://api.aimlapi.com/v1/chat/completions
  # model: anthropic/claude-opus-4-5
  # timeout_ms: 30000
  # max_tokens: 2048
  # requests_per_minute: 0
  # log_calls: false
`

// WriteSample writes Sample to path unless a file already exists there.
func WriteSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("config already exists at %s", path)
		}
		return fmt.Errorf("creating config: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(Sample); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
