package normalizer_test

import (
	"testing"

	"wisefido-sleep-diary/internal/models"
	"wisefido-sleep-diary/internal/normalizer"

	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 {
	return &v
}

func TestParseLatency_DefaultPolicy(t *testing.T) {
	p := normalizer.DefaultLatencyPolicy()
	cases := []struct {
		name string
		raw  any
		want float64
	}{
		{"plain", "15", 15},
		{"with unit", "15 min", 15},
		{"numeric", 20.0, 20},
		{"integer", 30, 30},
		{"slash range", "10/15", 12.5},
		{"minutes in hh:mm", "30:00", 30},
		{"hours and minutes", "01:30", 90},
		{"seconds suffix", "00:20:00", 20},
		{"decimal comma", "1,30", 90},
		{"repaired digits", "125", 15},
		{"outlier", 200.0, 0},
		{"negative", -5, 0},
		{"blank", "  ", 0},
		{"nil", nil, 0},
		{"non answer word", "subito", 0},
		{"non answer phrase", "non ricordo", 0},
		{"english non answer", "don't remember", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := normalizer.ParseLatency(tc.raw, p)
			require.NotNil(t, got)
			require.InDelta(t, tc.want, *got, 1e-9)
		})
	}
}

func TestParseLatency_NullPolicy(t *testing.T) {
	p := normalizer.DefaultLatencyPolicy()
	p.Missing = normalizer.MissingAsNull

	require.Nil(t, normalizer.ParseLatency(nil, p))
	require.Nil(t, normalizer.ParseLatency("non ricordo", p))
	require.Nil(t, normalizer.ParseLatency(500.0, p))
	require.Nil(t, normalizer.ParseLatency("abc", p))
	require.Equal(t, f64(0), normalizer.ParseLatency("0", p))
	require.Equal(t, f64(45), normalizer.ParseLatency("45", p))
}

func TestParseLatency_RepairOnlyAboveMax(t *testing.T) {
	p := normalizer.DefaultLatencyPolicy()
	p.MaxMinutes = 240
	require.Equal(t, f64(125), normalizer.ParseLatency("125", p))

	p.MaxMinutes = 120
	require.Equal(t, f64(15), normalizer.ParseLatency("125", p))

	p.RepairDigits = false
	require.Equal(t, f64(0), normalizer.ParseLatency("125", p))
}

func TestParseLatency_TypedValues(t *testing.T) {
	p := normalizer.DefaultLatencyPolicy()
	require.Equal(t, f64(30), normalizer.ParseLatency(models.TimeOfDay{Hour: 0, Minute: 30}, p))
	require.Equal(t, f64(0), normalizer.ParseLatency(true, p))
}

func TestLatencyPolicy_Validate(t *testing.T) {
	p := normalizer.DefaultLatencyPolicy()
	require.NoError(t, p.Validate())

	p.MaxMinutes = 100
	require.Error(t, p.Validate())

	p = normalizer.DefaultLatencyPolicy()
	p.MaxMinutes = 241
	require.Error(t, p.Validate())

	p = normalizer.DefaultLatencyPolicy()
	p.Missing = "drop"
	require.Error(t, p.Validate())
}

func TestParseWASO(t *testing.T) {
	p := normalizer.DefaultWASOPolicy()
	cases := []struct {
		name string
		raw  any
		want float64
	}{
		{"minutes", "20", 20},
		{"hh:mm", "01:30", 90},
		{"hours only", "2:00", 120},
		{"minutes in hh:mm", "30:00", 30},
		{"excel fraction", 0.0625, 90},
		{"slash range", "10/20", 15},
		{"capped", 1000.0, 720},
		{"negative", -3.0, 0},
		{"nil", nil, 0},
		{"blank", "", 0},
		{"non answer", "nessuno", 0},
		{"never", "mai sveglio", 0},
		{"with text", "circa 40 minuti", 40},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.InDelta(t, tc.want, normalizer.ParseWASO(tc.raw, p), 1e-9)
		})
	}
}

func TestParseWASO_NeverExceedsMax(t *testing.T) {
	p := normalizer.WASOPolicy{MaxMinutes: 480}
	require.NoError(t, p.Validate())
	for _, raw := range []any{"12:00", "900", 5000, "08:01", "600/700"} {
		got := normalizer.ParseWASO(raw, p)
		require.GreaterOrEqual(t, got, 0.0)
		require.LessOrEqual(t, got, 480.0, "input %v", raw)
	}
}

func TestWASOPolicy_Validate(t *testing.T) {
	require.NoError(t, normalizer.DefaultWASOPolicy().Validate())
	require.Error(t, normalizer.WASOPolicy{MaxMinutes: 479}.Validate())
	require.Error(t, normalizer.WASOPolicy{MaxMinutes: 721}.Validate())
}

func TestParseCount(t *testing.T) {
	require.Equal(t, 2.0, normalizer.ParseCount("2"))
	require.Equal(t, 2.5, normalizer.ParseCount("2/3"))
	require.Equal(t, 3.0, normalizer.ParseCount(3.0))
	require.Equal(t, 4.0, normalizer.ParseCount("4 volte"))
	require.Equal(t, 0.0, normalizer.ParseCount(nil))
	require.Equal(t, 0.0, normalizer.ParseCount("nessuna"))
	require.Equal(t, 0.0, normalizer.ParseCount(-1))
}

func TestParseEstimatedHours(t *testing.T) {
	cases := []struct {
		name string
		raw  any
		want *float64
	}{
		{"hh:mm", "7:30", f64(7.5)},
		{"decimal comma", "7,5", f64(7.5)},
		{"decimal point", "7.5", f64(7.5)},
		{"dot minutes", "7.30", f64(7.5)},
		{"plain", "7", f64(7)},
		{"with unit", "circa 6 ore", f64(6)},
		{"slash range", "6/7", f64(6.5)},
		{"excel fraction", 7.5 / 24, f64(7.5)},
		{"numeric", 8.0, f64(8)},
		{"out of range", "30", nil},
		{"zero", 0.0, nil},
		{"nil", nil, nil},
		{"non answer", "non lo so", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := normalizer.ParseEstimatedHours(tc.raw)
			if tc.want == nil {
				require.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			require.InDelta(t, *tc.want, *got, 1e-9)
		})
	}
}
