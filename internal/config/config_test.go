package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"wisefido-sleep-diary/internal/config"
	"wisefido-sleep-diary/internal/metrics"
	"wisefido-sleep-diary/internal/normalizer"
	"wisefido-sleep-diary/internal/schema"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, "console", cfg.Log.Format)
	require.Equal(t, normalizer.DefaultLatencyPolicy(), cfg.LatencyPolicy())
	require.Equal(t, normalizer.DefaultWASOPolicy(), cfg.WASOPolicy())
	require.True(t, cfg.Normalizer.MergeSimilarNames)
	require.Equal(t, metrics.DefaultOptions(), cfg.MetricsOptions())
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("SLEEP_DIARY_LOG_LEVEL", "debug")
	t.Setenv("SLEEP_DIARY_NORMALIZER_MAX_LATENCY_MINUTES", "180")
	t.Setenv("SLEEP_DIARY_NORMALIZER_LATENCY_MISSING", "null")
	t.Setenv("SLEEP_DIARY_METRICS_TIB_START", "lights_off")
	t.Setenv("SLEEP_DIARY_METRICS_BOUNDS", "pass")
	t.Setenv("SLEEP_DIARY_METRICS_SUBTRACT_INERTIA", "true")

	cfg, err := config.Load("")
	require.NoError(t, err)

	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, 180.0, cfg.Normalizer.MaxLatencyMinutes)
	require.Equal(t, normalizer.MissingAsNull, cfg.LatencyPolicy().Missing)

	opts := cfg.MetricsOptions()
	require.Equal(t, metrics.StartLightsOff, opts.TIBStart)
	require.Equal(t, metrics.BoundsPass, opts.Bounds)
	require.True(t, opts.SubtractInertia)
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, "sleep-diary.yaml", `
log:
  format: json
normalizer:
  max_waso_minutes: 480
  merge_similar_names: false
metrics:
  tst_end: wake_final
  max_inertia_minutes: 20
  rolling_window: 5
`)
	t.Setenv("SLEEP_DIARY_METRICS_ROLLING_WINDOW", "3")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, "json", cfg.Log.Format)
	require.Equal(t, 480.0, cfg.WASOPolicy().MaxMinutes)
	require.False(t, cfg.Normalizer.MergeSimilarNames)
	require.Equal(t, metrics.EndWakeFinal, cfg.MetricsOptions().TSTEnd)
	require.Equal(t, 20.0, cfg.Metrics.MaxInertiaMinutes)
	require.Equal(t, 3, cfg.Metrics.RollingWindow, "environment overrides file")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"SLEEP_DIARY_NORMALIZER_MAX_LATENCY_MINUTES": "60",
		"SLEEP_DIARY_NORMALIZER_MAX_WASO_MINUTES":    "900",
		"SLEEP_DIARY_NORMALIZER_LATENCY_MISSING":     "drop",
		"SLEEP_DIARY_METRICS_TIB_START":              "sofa",
		"SLEEP_DIARY_METRICS_BOUNDS":                 "clamp",
		"SLEEP_DIARY_LOG_FORMAT":                     "xml",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := config.Load("")
			require.Error(t, err)
		})
	}
}

func TestNormalizerOptions(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	opts, err := cfg.NormalizerOptions()
	require.NoError(t, err)
	require.NoError(t, opts.Validate())
	require.Equal(t, schema.Default().Version, opts.Schema.Version)
	require.Equal(t, cfg.MetricsOptions().RequiredFields(), opts.Required)
	require.Equal(t, "Sarah Cetola", opts.Aliases["sarah c."])
}

func TestNormalizerOptions_BadSchemaFile(t *testing.T) {
	t.Setenv("SLEEP_DIARY_SCHEMA_FILE", writeFile(t, "schema.yaml", "version: 0\nfields: []\n"))
	cfg, err := config.Load("")
	require.NoError(t, err)

	_, err = cfg.NormalizerOptions()
	require.Error(t, err)
}

func TestLoadAliases(t *testing.T) {
	defaults, err := config.LoadAliases("")
	require.NoError(t, err)
	require.Equal(t, config.DefaultNameAliases, defaults)

	defaults["maria"] = "changed"
	require.Equal(t, "Maria Iob", config.DefaultNameAliases["maria"])

	path := writeFile(t, "aliases.yaml", "aliases:\n  \"g. verdi\": Giuseppe Verdi\n  gv: Giuseppe Verdi\n")
	aliases, err := config.LoadAliases(path)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"g. verdi": "Giuseppe Verdi", "gv": "Giuseppe Verdi"}, aliases)

	empty, err := config.LoadAliases(writeFile(t, "empty.yaml", ""))
	require.NoError(t, err)
	require.Empty(t, empty)

	_, err = config.LoadAliases(writeFile(t, "bad.yaml", "aliases: [1, 2"))
	require.Error(t, err)
}
