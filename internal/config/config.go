// Package config loads defectlens settings from defaults, an optional .env
// file, DEFECTLENS_* environment variables and ~/.defectlens/config.yaml.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/defectlens-cli/internal/ai"
	"github.com/KaramelBytes/defectlens-cli/internal/montecarlo"
)

const (
	dirName   = ".defectlens"
	envPrefix = "DEFECTLENS"
)

// Global configuration structure.
type Global struct {
	// AI suggestions
	APIKey          string  `mapstructure:"api_key" yaml:"api_key"`
	DefaultProvider string  `mapstructure:"default_provider" yaml:"default_provider"`
	DefaultModel    string  `mapstructure:"default_model" yaml:"default_model"`
	MaxTokens       int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	Temperature     float64 `mapstructure:"temperature" yaml:"temperature"`
	Language        string  `mapstructure:"language" yaml:"language"`

	// HTTP/Retry configuration
	HTTPTimeoutSec   int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	RetryMaxAttempts int `mapstructure:"retry_max_attempts" yaml:"retry_max_attempts"`
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms"`
	RetryMaxDelayMs  int `mapstructure:"retry_max_delay_ms" yaml:"retry_max_delay_ms"`

	// Local runtimes (Ollama)
	OllamaHost string `mapstructure:"ollama_host" yaml:"ollama_host"`

	// Simulation
	Simulations int       `mapstructure:"simulations" yaml:"simulations"`
	Scenarios   []float64 `mapstructure:"scenarios" yaml:"scenarios"`
	Workers     int       `mapstructure:"workers" yaml:"workers"`

	// Analysis
	HistogramBins int `mapstructure:"histogram_bins" yaml:"histogram_bins"`
	TopCategories int `mapstructure:"top_categories" yaml:"top_categories"`
	CacheTTLSec   int `mapstructure:"cache_ttl_sec" yaml:"cache_ttl_sec"`

	LogLevel   string `mapstructure:"log_level" yaml:"log_level"`
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
}

// Keys lists every settable key, sorted.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	keys = append(keys, "api_key")
	sort.Strings(keys)
	return keys
}

var defaults = map[string]any{
	"default_provider":    ai.ProviderOpenRouter,
	"default_model":       "",
	"max_tokens":          1024,
	"temperature":         0.4,
	"language":            "en",
	"http_timeout_sec":    int(ai.DefaultHTTPTimeout / time.Second),
	"retry_max_attempts":  ai.DefaultRetryAttempts,
	"retry_base_delay_ms": int(ai.DefaultRetryBaseDelay / time.Millisecond),
	"retry_max_delay_ms":  int(ai.DefaultRetryMaxDelay / time.Millisecond),
	"ollama_host":         ai.DefaultOllamaHost,
	"simulations":         montecarlo.DefaultSimulations,
	"scenarios":           montecarlo.DefaultScenarios(),
	"workers":             0,
	"histogram_bins":      10,
	"top_categories":      8,
	"cache_ttl_sec":       600,
	"log_level":           "info",
	"listen_addr":         "127.0.0.1:8080",
}

// DefaultPath returns ~/.defectlens/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, dirName, "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.defectlens/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	// .env in the working directory is optional; real env vars win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.WithError(err).Debug("ignoring unreadable .env")
	}

	v := newViper()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	// OPENROUTER_API_KEY is the conventional name; DEFECTLENS_API_KEY also works.
	_ = v.BindEnv("api_key", envPrefix+"_API_KEY", "OPENROUTER_API_KEY")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		path, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(filepath.Dir(path))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) && !(cfgFile != "" && errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// Env values for list keys arrive as one string, possibly with percents.
	if s := os.Getenv(envPrefix + "_SCENARIOS"); s != "" {
		sc, err := ParseScenarios(s)
		if err != nil {
			return nil, err
		}
		v.Set("scenarios", sc)
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.Simulations > montecarlo.MaxSimulations {
		return nil, fmt.Errorf("simulations %d exceeds the maximum of %d", c.Simulations, montecarlo.MaxSimulations)
	}
	return &c, nil
}

// Defaults returns the built-in settings, ignoring files and environment.
func Defaults() *Global {
	var c Global
	if err := newViper().Unmarshal(&c); err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return &c
}

func newViper() *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	return v
}

// Set assigns key to the string value, converting it to the field's type.
func (c *Global) Set(key, value string) error {
	atoi := func(dst *int) error {
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: expected an integer, got %q", key, value)
		}
		*dst = n
		return nil
	}
	switch key {
	case "api_key":
		c.APIKey = value
	case "default_provider":
		if value != ai.ProviderOpenRouter && value != ai.ProviderOllama {
			return fmt.Errorf("default_provider: unknown provider %q", value)
		}
		c.DefaultProvider = value
	case "default_model":
		c.DefaultModel = value
	case "language":
		c.Language = strings.ToLower(value)
	case "ollama_host":
		c.OllamaHost = value
	case "log_level":
		if _, err := logrus.ParseLevel(value); err != nil {
			return fmt.Errorf("log_level: %w", err)
		}
		c.LogLevel = value
	case "listen_addr":
		c.ListenAddr = value
	case "temperature":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("temperature: expected a number, got %q", value)
		}
		c.Temperature = f
	case "scenarios":
		sc, err := ParseScenarios(value)
		if err != nil {
			return err
		}
		c.Scenarios = sc
	case "max_tokens":
		return atoi(&c.MaxTokens)
	case "http_timeout_sec":
		return atoi(&c.HTTPTimeoutSec)
	case "retry_max_attempts":
		return atoi(&c.RetryMaxAttempts)
	case "retry_base_delay_ms":
		return atoi(&c.RetryBaseDelayMs)
	case "retry_max_delay_ms":
		return atoi(&c.RetryMaxDelayMs)
	case "simulations":
		var n int
		if err := atoi(&n); err != nil {
			return err
		}
		if n > montecarlo.MaxSimulations {
			return fmt.Errorf("simulations must be at most %d", montecarlo.MaxSimulations)
		}
		c.Simulations = n
	case "workers":
		return atoi(&c.Workers)
	case "histogram_bins":
		return atoi(&c.HistogramBins)
	case "top_categories":
		return atoi(&c.TopCategories)
	case "cache_ttl_sec":
		return atoi(&c.CacheTTLSec)
	default:
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys(), ", "))
	}
	return nil
}

// ParseScenarios reads a comma-separated list of reductions such as
// "0,0.1,0.2" or "0%,10%,20%".
func ParseScenarios(s string) ([]float64, error) {
	var out []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		pct := strings.HasSuffix(part, "%")
		f, err := strconv.ParseFloat(strings.TrimSuffix(part, "%"), 64)
		if err != nil {
			return nil, fmt.Errorf("scenarios: invalid reduction %q", part)
		}
		if pct {
			f /= 100
		}
		if math.IsNaN(f) || f < 0 || f >= 1 {
			return nil, fmt.Errorf("scenarios: reduction %q must be in [0, 1)", part)
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, errors.New("scenarios: at least one reduction is required")
	}
	return out, nil
}

// Runtime builds the AI runtime config for the current settings.
func (c *Global) Runtime() ai.RuntimeConfig {
	return ai.RuntimeConfig{
		HTTPTimeout: time.Duration(c.HTTPTimeoutSec) * time.Second,
		RetryMax:    c.RetryMaxAttempts,
		BaseDelay:   time.Duration(c.RetryBaseDelayMs) * time.Millisecond,
		MaxDelay:    time.Duration(c.RetryMaxDelayMs) * time.Millisecond,
		APIKey:      c.APIKey,
		Host:        c.OllamaHost,
	}
}

// Simulation builds the Monte Carlo config for the current settings.
func (c *Global) Simulation() montecarlo.Config {
	return montecarlo.Config{
		Scenarios:   c.Scenarios,
		Simulations: c.Simulations,
		Workers:     c.Workers,
	}
}

// CacheTTL returns the analysis cache lifetime.
func (c *Global) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSec) * time.Second
}

// Redacted returns a copy safe to print.
func (c Global) Redacted() Global {
	if n := len(c.APIKey); n > 0 {
		keep := 4
		if n <= 8 {
			keep = 0
		}
		c.APIKey = strings.Repeat("*", n-keep) + c.APIKey[n-keep:]
	}
	return c
}
