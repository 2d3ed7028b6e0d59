// Package config loads the interviewai configuration.
//
// Values are resolved in this order, later sources winning:
//
//  1. built-in defaults (Groq, llama-3.3-70b-versatile)
//  2. the YAML file, by default os.UserConfigDir()/interviewai/config.yaml
//  3. environment variables, including those read from .env and .env.local
//
// Example file:
//
//	addr: :8000
//	provider:
//	  api_key: $GROQ_API_KEY
//	  text_model: llama-3.3-70b-versatile
//	search:
//	  max_results: 5
//	  projection: '{answer, results: [.results[] | {title, url, content}]}'
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"github.com/interviewai/backend/pkg/genx"
	"github.com/interviewai/backend/pkg/search"
)

const (
	appDir     = "interviewai"
	configFile = "config.yaml"

	DefaultAddr        = ":8000"
	DefaultBaseURL     = "https://api.groq.com/openai/v1"
	DefaultTextModel   = "llama-3.3-70b-versatile"
	DefaultVisionModel = "meta-llama/llama-4-scout-17b-16e-instruct"
	DefaultGeminiModel = "gemini-2.5-flash"
)

// Config is the resolved configuration.
type Config struct {
	Addr     string         `yaml:"addr,omitempty"`
	Provider ProviderConfig `yaml:"provider"`
	Gemini   GeminiConfig   `yaml:"gemini,omitempty"`
	Search   SearchConfig   `yaml:"search,omitempty"`
	Vision   VisionConfig   `yaml:"vision,omitempty"`

	// Answer overrides the sampling parameters of spoken answers.
	Answer *genx.ModelParams `yaml:"answer,omitempty"`

	// Path is the file the config was read from, empty when none existed.
	Path string `yaml:"-"`
}

// ProviderConfig is an OpenAI-compatible chat completions endpoint.
type ProviderConfig struct {
	BaseURL     string `yaml:"base_url,omitempty"`
	APIKey      string `yaml:"api_key,omitempty"`
	TextModel   string `yaml:"text_model,omitempty"`
	VisionModel string `yaml:"vision_model,omitempty"`
	MaxRetries  int    `yaml:"max_retries,omitempty"`
}

// GeminiConfig enables Gemini for screenshot transcription when an API key
// is set.
type GeminiConfig struct {
	APIKey string `yaml:"api_key,omitempty"`
	Model  string `yaml:"model,omitempty"`
}

type SearchConfig struct {
	APIKey     string         `yaml:"api_key,omitempty"`
	BaseURL    string         `yaml:"base_url,omitempty"`
	MaxResults int            `yaml:"max_results,omitempty"`
	Projection *search.JQExpr `yaml:"projection,omitempty"`
}

type VisionConfig struct {
	SummaryChunkSize int    `yaml:"summary_chunk_size,omitempty"`
	AnswerChunkSize  int    `yaml:"answer_chunk_size,omitempty"`
	DefaultLanguage  string `yaml:"default_language,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Addr: DefaultAddr,
		Provider: ProviderConfig{
			BaseURL:     DefaultBaseURL,
			TextModel:   DefaultTextModel,
			VisionModel: DefaultVisionModel,
			MaxRetries:  2,
		},
		Gemini: GeminiConfig{Model: DefaultGeminiModel},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	return filepath.Join(base, appDir, configFile), nil
}

// Load resolves the configuration. An empty path means DefaultPath; a
// missing default file is not an error, a missing explicit one is.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		cfg.Path = path
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg.mergeEnv()
	cfg.expandEnv()
	return cfg, nil
}

// Save writes cfg to path as YAML.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// loadDotEnv copies .env and .env.local values into the environment
// without overriding variables that are already set.
func loadDotEnv() error {
	for _, name := range []string{".env", ".env.local"} {
		values, err := godotenv.Read(name)
		if err != nil {
			continue
		}
		for k, v := range values {
			if _, exists := os.LookupEnv(k); exists {
				continue
			}
			if err := os.Setenv(k, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Config) mergeEnv() {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.Addr, "INTERVIEWAI_ADDR")
	set(&c.Provider.APIKey, "GROQ_API_KEY")
	set(&c.Provider.BaseURL, "INTERVIEWAI_BASE_URL")
	set(&c.Provider.TextModel, "INTERVIEWAI_TEXT_MODEL")
	set(&c.Provider.VisionModel, "INTERVIEWAI_VISION_MODEL")
	set(&c.Gemini.APIKey, "GEMINI_API_KEY")
	set(&c.Search.APIKey, "TAVILY_API_KEY")
	if v := strings.TrimSpace(os.Getenv("INTERVIEWAI_SEARCH_MAX_RESULTS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Search.MaxResults = n
		}
	}
}

// expandEnv resolves "$VAR" references in secret fields.
func (c *Config) expandEnv() {
	for _, p := range []*string{&c.Provider.APIKey, &c.Gemini.APIKey, &c.Search.APIKey} {
		if strings.HasPrefix(*p, "$") {
			*p = os.ExpandEnv(*p)
		}
	}
}

// Validate reports settings that make the server unusable.
func (c *Config) Validate() error {
	if c.Provider.APIKey == "" {
		return errors.New("config: provider api key is not set (GROQ_API_KEY)")
	}
	if c.Provider.TextModel == "" {
		return errors.New("config: provider text_model is empty")
	}
	return nil
}

// Redacted returns a copy of c with secrets masked for display.
func (c *Config) Redacted() *Config {
	r := *c
	for _, p := range []*string{&r.Provider.APIKey, &r.Gemini.APIKey, &r.Search.APIKey} {
		*p = mask(*p)
	}
	return &r
}

func mask(secret string) string {
	if len(secret) <= 8 {
		if secret == "" {
			return ""
		}
		return "****"
	}
	return secret[:4] + "****" + secret[len(secret)-4:]
}
