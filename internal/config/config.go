// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/recipe-alpaca/internal/llm"
)

// Defaults used when neither a flag nor the config file sets a value.
const (
	DefaultSeedURL        = "https://www.bbcgoodfood.com/recipes/carbonara-arancini"
	DefaultMaxRecipes     = 10
	DefaultPairsPerRecipe = 5
	DefaultOutput         = "website_alpaca_dataset.jsonl"
	DefaultDelay          = 2 * time.Second
	DefaultProvider       = string(llm.ProviderGemini)
	DefaultFormat         = "labeled"
)

// Config is the run configuration. It can be loaded from a JSON file; CLI
// flags override file values.
type Config struct {
	// Crawl
	SeedURL        string   `json:"seed_url,omitempty" validate:"omitempty,url"`
	Domain         string   `json:"domain,omitempty"` // Substring every recipe link must contain; defaults to SeedURL
	MaxRecipes     int      `json:"max_recipes,omitempty" validate:"min=0"`
	PairsPerRecipe int      `json:"pairs_per_recipe,omitempty" validate:"min=0"`
	Delay          Duration `json:"delay,omitempty" validate:"min=0"`
	Output         string   `json:"output,omitempty"`

	// Generation
	Provider string `json:"provider,omitempty"` // Checked by llm.ParseProvider
	Model    string `json:"model,omitempty"`
	Format   string `json:"format,omitempty" validate:"omitempty,oneof=labeled json"`
	APIKey   string `json:"api_key,omitempty"`

	// Behavior
	UseBrowser     bool   `json:"use_browser,omitempty"`     // Fall back to a headless browser for script-rendered pages
	RespectRobots  bool   `json:"respect_robots,omitempty"`  // Skip links disallowed by robots.txt
	PersistVisited bool   `json:"persist_visited,omitempty"` // Keep the visited set in <output>.visited
	DatabaseURL    string `json:"database_url,omitempty"`    // PostgreSQL URL for the visited set and run history
	Verbose        bool   `json:"verbose,omitempty"`

	// set holds config keys given explicitly, so MergeWithDefaults keeps
	// their zero values.
	set map[string]bool
}

// MarkSet records that the named config keys were given explicitly.
func (c *Config) MarkSet(keys ...string) {
	if c.set == nil {
		c.set = make(map[string]bool, len(keys))
	}
	for _, key := range keys {
		c.set[key] = true
	}
}

// IsSet reports whether key was given in the config file or via MarkSet.
func (c *Config) IsSet(key string) bool {
	return c.set[key]
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		SeedURL:        DefaultSeedURL,
		MaxRecipes:     DefaultMaxRecipes,
		PairsPerRecipe: DefaultPairsPerRecipe,
		Delay:          Duration(DefaultDelay),
		Output:         DefaultOutput,
		Provider:       DefaultProvider,
		Format:         DefaultFormat,
	}
}

// Error is a configuration problem. Configuration errors are fatal.
type Error struct {
	Field   string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := "config error: "
	if e.Field != "" {
		msg += fmt.Sprintf("'%s' ", e.Field)
	}
	msg += e.Message
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// LoadConfig loads configuration from a JSON file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, &Error{Message: "config path is empty"}
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Message: fmt.Sprintf("failed to read config file %s", path), Cause: err}
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &Error{Message: "failed to parse config JSON", Cause: err}
	}

	var present map[string]json.RawMessage
	if err := json.Unmarshal(data, &present); err != nil {
		return nil, &Error{Message: "failed to parse config JSON", Cause: err}
	}
	for key := range present {
		cfg.MarkSet(key)
	}

	return &cfg, nil
}

var validate = newValidator()

// newValidator reports fields by their config file key.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// Validate checks field values. Required credentials are checked separately
// by RequireAPIKey once the environment has been consulted.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return c.validateProvider()
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &Error{Message: "invalid configuration", Cause: err}
	}

	first := fieldErrs[0]
	return &Error{
		Field:   first.Field(),
		Message: describe(first),
		Cause:   err,
	}
}

func (c *Config) validateProvider() error {
	if c.Provider == "" {
		return nil
	}
	if _, err := llm.ParseProvider(c.Provider); err != nil {
		return &Error{Field: "provider", Message: err.Error()}
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		return "must be non-negative"
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	case "url":
		return fmt.Sprintf("must be an absolute URL, got %q", fe.Value())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

// MergeWithDefaults returns a new Config with unset fields filled from
// defaults. Numeric fields keep an explicit zero.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.SeedURL == "" {
		result.SeedURL = defaults.SeedURL
	}
	if result.Domain == "" {
		result.Domain = defaults.Domain
	}
	if result.Output == "" {
		result.Output = defaults.Output
	}
	if result.Provider == "" {
		result.Provider = defaults.Provider
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.Format == "" {
		result.Format = defaults.Format
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	// Zero is a valid limit, so only keys never given take the default.
	if result.MaxRecipes == 0 && !c.IsSet("max_recipes") {
		result.MaxRecipes = defaults.MaxRecipes
	}
	if result.PairsPerRecipe == 0 && !c.IsSet("pairs_per_recipe") {
		result.PairsPerRecipe = defaults.PairsPerRecipe
	}
	if result.Delay == 0 && !c.IsSet("delay") {
		result.Delay = defaults.Delay
	}

	// A bool set anywhere stays set.
	result.UseBrowser = result.UseBrowser || defaults.UseBrowser
	result.RespectRobots = result.RespectRobots || defaults.RespectRobots
	result.PersistVisited = result.PersistVisited || defaults.PersistVisited
	result.Verbose = result.Verbose || defaults.Verbose

	return result
}

// LinkDomain is the substring recipe links must contain. An unset domain
// falls back to the whole seed URL.
func (c *Config) LinkDomain() string {
	if c.Domain != "" {
		return c.Domain
	}
	return c.SeedURL
}

// FromEnv fills the API key from the provider's environment variable when
// it is not already set.
func (c *Config) FromEnv(getenv func(string) string) {
	if c.APIKey != "" {
		return
	}
	c.APIKey = getenv(c.provider().APIKeyEnvVar())
}

// RequireAPIKey fails when no credential is available.
func (c *Config) RequireAPIKey() error {
	if c.APIKey != "" {
		return nil
	}
	return &Error{
		Message: fmt.Sprintf("%s environment variable is not set (or use --api-key)", c.provider().APIKeyEnvVar()),
	}
}

// LLMConfig returns the client configuration for the selected provider.
func (c *Config) LLMConfig() *llm.Config {
	return llm.ConfigFor(c.provider()).WithModel(c.Model)
}

func (c *Config) provider() llm.Provider {
	if c.Provider == "" {
		return llm.ProviderGemini
	}
	return llm.Provider(c.Provider)
}
