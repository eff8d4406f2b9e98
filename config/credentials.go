package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrMissingAPIKey means the review credential is not set.
var ErrMissingAPIKey = errors.New("API key is not set")

// ConfigurationError is a fatal problem with the environment, reported
// before any document is processed.
type ConfigurationError struct {
	Var string
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %v", e.Var, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Credentials are the resolved values for talking to the review service.
type Credentials struct {
	APIKey  string
	BaseURL string
}

// ResolveCredentials reads the API key and base URL from the environment
// variables named in cfg. A missing key is a *ConfigurationError wrapping
// ErrMissingAPIKey; a missing base URL falls back to cfg.DefaultBaseURL.
func ResolveCredentials(cfg LLMConfig) (Credentials, error) {
	keyEnv := cfg.APIKeyEnv
	if keyEnv == "" {
		keyEnv = "OPENAI_API_KEY"
	}
	key := strings.TrimSpace(os.Getenv(keyEnv))
	if key == "" {
		return Credentials{}, &ConfigurationError{Var: keyEnv, Err: ErrMissingAPIKey}
	}

	baseURL := cfg.DefaultBaseURL
	if cfg.BaseURLEnv != "" {
		if v := strings.TrimSpace(os.Getenv(cfg.BaseURLEnv)); v != "" {
			baseURL = v
		}
	}

	return Credentials{APIKey: key, BaseURL: baseURL}, nil
}
