package ai

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Fallbacks for a RuntimeConfig field left at zero. The config package seeds
// its defaults from these, so a loaded config always carries explicit values.
const (
	DefaultHTTPTimeout    = 60 * time.Second
	DefaultRetryAttempts  = 3
	DefaultRetryBaseDelay = 500 * time.Millisecond
	DefaultRetryMaxDelay  = 4 * time.Second
	DefaultOllamaHost     = "http://127.0.0.1:11434"
)

// RuntimeFactory builds a Runtime from resolved settings.
type RuntimeFactory func(RuntimeConfig) Runtime

// RuntimeConfig is the provider-independent view of the AI settings, built by
// config.Global.Runtime.
type RuntimeConfig struct {
	HTTPTimeout time.Duration
	RetryMax    int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// APIKey authenticates OpenRouter requests.
	APIKey string
	// Host is the Ollama base URL.
	Host string
}

func (c RuntimeConfig) withDefaults() RuntimeConfig {
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = DefaultHTTPTimeout
	}
	if c.RetryMax <= 0 {
		c.RetryMax = DefaultRetryAttempts
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = DefaultRetryBaseDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = DefaultRetryMaxDelay
	}
	if c.MaxDelay < c.BaseDelay {
		c.MaxDelay = c.BaseDelay
	}
	if c.Host == "" {
		c.Host = DefaultOllamaHost
	}
	return c
}

func (c RuntimeConfig) retryPolicy() retryPolicy {
	return retryPolicy{attempts: c.RetryMax, baseDelay: c.BaseDelay, maxDelay: c.MaxDelay}
}

var (
	registryMu sync.RWMutex
	registry   = map[string]RuntimeFactory{}
)

// RegisterRuntime registers a provider name with its factory.
func RegisterRuntime(name string, f RuntimeFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(name)] = f
}

// GetRuntime creates a Runtime for the given provider if registered.
func GetRuntime(name string, cfg RuntimeConfig) (Runtime, bool) {
	registryMu.RLock()
	f, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	registryMu.RUnlock()
	if !ok {
		return nil, false
	}
	return f(cfg.withDefaults()), true
}

// Providers lists the registered provider names in sorted order.
func Providers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func init() {
	RegisterRuntime(ProviderOpenRouter, func(c RuntimeConfig) Runtime {
		return NewClient(c.APIKey, c.HTTPTimeout, c.RetryMax, c.BaseDelay, c.MaxDelay)
	})
	RegisterRuntime(ProviderOllama, func(c RuntimeConfig) Runtime {
		return NewOllamaClient(c.Host, c.HTTPTimeout, c.RetryMax, c.BaseDelay, c.MaxDelay)
	})
}
