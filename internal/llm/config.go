// Package llm provides centralized LLM configuration and client abstractions.
// Callers depend on the Client interface and pick a provider through Config.
package llm

import (
	"fmt"
	"time"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderOpenAI is the OpenAI chat completions provider
	ProviderOpenAI Provider = "openai"
)

const (
	// DefaultGeminiModel is used when no model is configured for Gemini
	DefaultGeminiModel = "gemini-2.5-flash"
	// DefaultOpenAIModel is used when no model is configured for OpenAI
	DefaultOpenAIModel = "gpt-3.5-turbo"
	// DefaultOpenAIBaseURL is the public OpenAI API root
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTemperature keeps generated pairs varied across attempts
	DefaultTemperature float32 = 0.8
	// DefaultTimeout bounds a single generation request
	DefaultTimeout = 120 * time.Second
)

// Config holds the model configuration for the application
type Config struct {
	Provider    Provider
	Model       string
	Temperature float32
	// BaseURL is only used by OpenAI-compatible providers.
	BaseURL string
	Timeout time.Duration
}

// DefaultConfig returns the default configuration (Gemini)
func DefaultConfig() *Config {
	return ConfigFor(ProviderGemini)
}

// ConfigFor returns the default configuration for a provider
func ConfigFor(provider Provider) *Config {
	cfg := &Config{
		Provider:    provider,
		Temperature: DefaultTemperature,
		Timeout:     DefaultTimeout,
	}
	switch provider {
	case ProviderOpenAI:
		cfg.Model = DefaultOpenAIModel
		cfg.BaseURL = DefaultOpenAIBaseURL
	default:
		cfg.Model = DefaultGeminiModel
	}
	return cfg
}

// WithModel returns a copy of the Config using model. An empty model keeps the current one.
func (c *Config) WithModel(model string) *Config {
	newConfig := *c
	if model != "" {
		newConfig.Model = model
	}
	return &newConfig
}

// APIKeyEnvVar returns the environment variable holding the provider credential
func (p Provider) APIKeyEnvVar() string {
	switch p {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	default:
		return "GEMINI_API_KEY"
	}
}

// ParseProvider validates a provider name
func ParseProvider(name string) (Provider, error) {
	switch Provider(name) {
	case ProviderGemini, ProviderOpenAI:
		return Provider(name), nil
	default:
		return "", fmt.Errorf("unknown LLM provider %q (expected %q or %q)", name, ProviderGemini, ProviderOpenAI)
	}
}
