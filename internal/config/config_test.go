package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/defectlens-cli/internal/ai"
	"github.com/KaramelBytes/defectlens-cli/internal/montecarlo"
)

func TestLoadDefaultsAndFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load missing file: %v", err)
	}
	if c.DefaultProvider != "openrouter" || c.Simulations != 10000 || len(c.Scenarios) != 4 {
		t.Fatalf("unexpected defaults: %+v", c)
	}

	yaml := "simulations: 500\nscenarios: [0, 0.25]\nlanguage: es\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err = Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Simulations != 500 || c.Language != "es" {
		t.Fatalf("file values not applied: %+v", c)
	}
	if len(c.Scenarios) != 2 || c.Scenarios[1] != 0.25 {
		t.Fatalf("unexpected scenarios %v", c.Scenarios)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("workers: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DEFECTLENS_WORKERS", "6")
	t.Setenv("DEFECTLENS_SCENARIOS", "0%,50%")
	t.Setenv("OPENROUTER_API_KEY", "sk-test-123456")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Workers != 6 {
		t.Fatalf("expected env workers=6, got %d", c.Workers)
	}
	if len(c.Scenarios) != 2 || c.Scenarios[1] != 0.5 {
		t.Fatalf("unexpected scenarios %v", c.Scenarios)
	}
	if c.APIKey != "sk-test-123456" {
		t.Fatalf("api key not bound from OPENROUTER_API_KEY")
	}
	if got := c.Redacted().APIKey; got != "**********3456" {
		t.Fatalf("unexpected redaction %q", got)
	}
}

func TestSetAndSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for k, v := range map[string]string{"simulations": "2000", "default_provider": "ollama", "scenarios": "0,0.15"} {
		if err := c.Set(k, v); err != nil {
			t.Fatalf("Set %s: %v", k, err)
		}
	}
	if err := c.Set("simulations", "1000001"); err == nil {
		t.Fatalf("expected simulations above the maximum to be rejected")
	}
	if err := c.Set("simulations", "many"); err == nil {
		t.Fatalf("expected integer error")
	}
	if err := c.Set("default_provider", "skynet"); err == nil {
		t.Fatalf("expected unknown provider error")
	}
	if err := c.Set("nope", "1"); err == nil {
		t.Fatalf("expected unknown key error")
	}
	if err := Save(c, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	again, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.Simulations != 2000 || again.DefaultProvider != "ollama" || again.Scenarios[1] != 0.15 {
		t.Fatalf("round trip lost values: %+v", again)
	}
	if again.Simulation().Simulations != 2000 {
		t.Fatalf("simulation config not derived")
	}
}

func TestParseScenarios(t *testing.T) {
	if _, err := ParseScenarios("0, 1"); err == nil {
		t.Fatalf("expected out of range error")
	}
	for _, bad := range []string{"NaN", "0,nan", "NaN%"} {
		if _, err := ParseScenarios(bad); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
	if _, err := ParseScenarios(" , "); err == nil {
		t.Fatalf("expected empty list error")
	}
	got, err := ParseScenarios("0, 10%, 0.2")
	if err != nil || len(got) != 3 || got[1] != 0.1 {
		t.Fatalf("unexpected %v %v", got, err)
	}
}

func TestDefaultsFeedRuntimeConfig(t *testing.T) {
	c := Defaults()
	rc := c.Runtime()
	if rc.HTTPTimeout != ai.DefaultHTTPTimeout || rc.RetryMax != ai.DefaultRetryAttempts ||
		rc.BaseDelay != ai.DefaultRetryBaseDelay || rc.MaxDelay != ai.DefaultRetryMaxDelay ||
		rc.Host != ai.DefaultOllamaHost {
		t.Fatalf("runtime config does not carry the defaults: %+v", rc)
	}
	if c.Simulation().Simulations != montecarlo.DefaultSimulations {
		t.Fatalf("unexpected simulation defaults: %+v", c.Simulation())
	}
}

func TestLoadRejectsOversizedSimulations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("DEFECTLENS_SIMULATIONS", "5000000")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected simulations above the maximum to be rejected")
	}
}
