package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tempo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "auto", cfg.Mode)
	assert.Equal(t, "text", cfg.Output)
	assert.Equal(t, 100, cfg.Limit)
	assert.Equal(t, 0, cfg.ScanLimit)
	assert.Equal(t, 100*ScanPerMoment, cfg.EffectiveScanLimit())
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeFile(t, "mode: iterator\nlimit: 5\nlog:\n  level: debug\n")
	t.Setenv("TEMPO_LIMIT", "7")
	t.Setenv("TEMPO_LOG_FORMAT", "json")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "iterator", cfg.Mode)
	assert.Equal(t, 7, cfg.Limit)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_HomeFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.WriteFile(filepath.Join(home, ".tempo.yaml"), []byte("output: json\n"), 0o644))

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Output)
}

func TestValidate(t *testing.T) {
	valid := Config{Mode: "auto", Output: "text", Limit: 10, ScanLimit: 10, Log: LogConfig{Level: "info", Format: "json"}}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad mode", func(c *Config) { c.Mode = "cron" }, "Mode"},
		{"bad output", func(c *Config) { c.Output = "xml" }, "Output"},
		{"zero limit", func(c *Config) { c.Limit = 0 }, "Limit"},
		{"negative scan limit", func(c *Config) { c.ScanLimit = -1 }, "ScanLimit"},
		{"bad now", func(c *Config) { c.Now = "yesterday" }, "Now"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "Level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "Format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestLoad_LargeLimitWithoutScanLimit(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TEMPO_LIMIT", "200000")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, 200000*ScanPerMoment, cfg.EffectiveScanLimit())
}

func TestEffectiveScanLimit(t *testing.T) {
	cfg := Config{Limit: 5, ScanLimit: 3}
	assert.Equal(t, 3, cfg.EffectiveScanLimit())

	cfg.ScanLimit = 0
	assert.Equal(t, 5*ScanPerMoment, cfg.EffectiveScanLimit())
}

func TestLoad_ErrorsCarryStack(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)

	type stackTracer interface{ StackTrace() errors.StackTrace }
	var st stackTracer
	assert.True(t, errors.As(err, &st))
}

func TestNowTime(t *testing.T) {
	cfg := Config{}
	_, ok, err := cfg.NowTime()
	require.NoError(t, err)
	assert.False(t, ok)

	cfg.Now = "2024-02-29T10:30:00+02:00"
	now, ok, err := cfg.NowTime()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 8, now.UTC().Hour())
}

func TestYAML(t *testing.T) {
	cfg := Config{Mode: "timetype", Output: "yaml", Limit: 3, ScanLimit: 30, Log: LogConfig{Level: "warn", Format: "console"}}
	out, err := cfg.YAML()
	require.NoError(t, err)

	var back Config
	require.NoError(t, yaml.Unmarshal([]byte(out), &back))
	assert.Equal(t, cfg, back)
	assert.NotContains(t, out, "now:")
}
