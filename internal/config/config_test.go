package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultURL, cfg.URL)
	assert.Equal(t, "rolls.txt", cfg.RollsFile)
	assert.Equal(t, 1500*time.Millisecond, cfg.LoadDelay)
	assert.Equal(t, 500, cfg.FailThreshold)
	assert.False(t, cfg.Headless)
	assert.True(t, cfg.RespectRobots)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
url: https://example.edu/result.php
load_delay: 2s
fail_threshold: 800
assist:
  provider: OpenAI
`), 0o644))

	t.Setenv("RESULTFETCH_OUTPUT", "out.csv")
	t.Setenv("RESULTFETCH_FAIL_THRESHOLD", "900")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Bool("headless", false, "")
	flags.Bool("no-robots", false, "")
	flags.Duration("submit-delay", 0, "")
	require.NoError(t, flags.Parse([]string{"--headless", "--no-robots"}))

	cfg, err := Load(file, flags)
	require.NoError(t, err)

	assert.Equal(t, "https://example.edu/result.php", cfg.URL)
	assert.Equal(t, 2*time.Second, cfg.LoadDelay)
	assert.Equal(t, 900, cfg.FailThreshold)
	assert.Equal(t, "out.csv", cfg.Output)
	assert.Equal(t, "openai", cfg.Assist.Provider)
	assert.True(t, cfg.Headless)
	assert.False(t, cfg.RespectRobots)
	// unchanged flag leaves the default in place
	assert.Equal(t, 2500*time.Millisecond, cfg.SubmitDelay)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relative url", func(c *Config) { c.URL = "/index.php" }},
		{"ftp url", func(c *Config) { c.URL = "ftp://x/y" }},
		{"negative delay", func(c *Config) { c.SubmitDelay = -time.Second }},
		{"zero threshold", func(c *Config) { c.FailThreshold = 0 }},
		{"shrinking scale", func(c *Config) { c.ChallengeScale = 0.5 }},
		{"empty output", func(c *Config) { c.Output = "" }},
		{"no viewport", func(c *Config) { c.Width = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestMarshalYAML_ReadableDurations(t *testing.T) {
	cfg := Default()
	out, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "load_delay: 1.5s")
	assert.Contains(t, text, "submit_delay: 2.5s")
	assert.Contains(t, text, "between_delay: 1s")
	assert.NotContains(t, text, "1500000000")

	file := filepath.Join(t.TempDir(), "shown.yaml")
	require.NoError(t, os.WriteFile(file, out, 0o644))
	again, err := Load(file, nil)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}
