package schema_test

import (
	"errors"
	"strings"
	"testing"

	"wisefido-sleep-diary/internal/schema"

	"github.com/stretchr/testify/require"
)

const rose = "A che ora ti sei alzato dal letto? (utilizza il formato hh:mm)"

func TestDefault_CoversAllFields(t *testing.T) {
	s := schema.Default()
	require.Greater(t, s.Version, 0)
	for _, f := range schema.AllFields {
		require.NotEmpty(t, s.Variants(f), "field %s has no variants", f)
	}
}

func TestNormalizeHeader(t *testing.T) {
	require.Equal(t,
		schema.NormalizeHeader("A che ora ti sei svegliato per l'ultima volta"),
		schema.NormalizeHeader("  a che ora  ti sei SVEGLIATO per l’ultima volta \n"),
	)
	require.Equal(t, "start time", schema.NormalizeHeader("Start time"))
}

func TestResolve_MapsVariants(t *testing.T) {
	s := schema.Default()
	headers := []string{
		"ID",
		"Start time",
		"Nome e cognome",
		"  " + strings.ToUpper(rose) + " ",
		"Start time", // 重复列
	}
	m, err := s.Resolve(headers, []schema.Field{schema.FieldRespondent, schema.FieldRoseFromBed})
	require.NoError(t, err)

	h, ok := m.Header(schema.FieldRoseFromBed)
	require.True(t, ok)
	require.Equal(t, headers[3], h)
	require.True(t, m.Has(schema.FieldSubmittedAt))
	require.False(t, m.Has(schema.FieldWASO))
	require.Equal(t, []string{"ID"}, m.Unmapped)
	require.Equal(t, []string{"Start time"}, m.Duplicates[schema.FieldSubmittedAt])
}

func TestResolve_MissingRequiredIsStructural(t *testing.T) {
	s := schema.Default()
	_, err := s.Resolve([]string{"Nome e cognome"}, []schema.Field{schema.FieldRespondent, schema.FieldLightsOff})
	require.Error(t, err)
	require.True(t, errors.Is(err, schema.ErrMissingColumn))

	var missing *schema.MissingColumnError
	require.True(t, errors.As(err, &missing))
	require.Equal(t, schema.FieldLightsOff, missing.Field)
	require.Contains(t, err.Error(), "lights_off")
}

func TestParse_Validation(t *testing.T) {
	_, err := schema.Parse([]byte("version: 1\nfields:\n  - field: bogus\n    variants: [x]\n"))
	require.Error(t, err)

	_, err = schema.Parse([]byte("version: 1\nfields:\n  - field: waso\n    variants: []\n"))
	require.Error(t, err)

	_, err = schema.Parse([]byte("version: 1\nfields:\n  - field: waso\n    variants: [A]\n  - field: latency\n    variants: [a]\n"))
	require.Error(t, err, "same header for two fields")

	_, err = schema.Parse([]byte("version: 0\nfields: []\n"))
	require.Error(t, err)

	s, err := schema.Load(strings.NewReader("version: 3\nfields:\n  - field: respondent\n    variants: [Cliente]\n"))
	require.NoError(t, err)
	require.Equal(t, 3, s.Version)
	m, err := s.Resolve([]string{"cliente"}, []schema.Field{schema.FieldRespondent})
	require.NoError(t, err)
	require.Equal(t, 3, m.Version)
}

func TestLoadFile_EmptyPathUsesDefault(t *testing.T) {
	s, err := schema.LoadFile("")
	require.NoError(t, err)
	require.Equal(t, schema.Default().Version, s.Version)

	_, err = schema.LoadFile("/nonexistent/schema.yaml")
	require.Error(t, err)
}
