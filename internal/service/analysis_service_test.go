package service

import (
	"context"
	"errors"
	"testing"

	"wisefido-sleep-diary/internal/config"
	"wisefido-sleep-diary/internal/metrics"
	"wisefido-sleep-diary/internal/models"
	"wisefido-sleep-diary/internal/normalizer"
	"wisefido-sleep-diary/internal/schema"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	hName    = "Name"
	hStart   = "Start time"
	hBed     = "What time did you get into bed? (use hh:mm format)"
	hLights  = "What time did you turn off the lights to go to sleep? (use hh:mm format)"
	hLatency = "How long did it take you to fall asleep? (minutes, digits only)"
	hWASO    = "In total, how long were you awake during the night? (use hh:mm format, e.g. 01:30)"
	hRose    = "What time did you get out of bed? (use hh:mm format)"
)

func uploadDataset() *models.Dataset {
	return &models.Dataset{
		Headers: []string{hName, hStart, hBed, hLights, hLatency, hWASO, hRose},
		Rows: []models.RawRecord{
			{hName: "Maria Iob", hStart: "2024-03-06 08:00:00", hBed: "22:00", hLights: "22:30", hLatency: "10", hRose: "06:00"},
			{hName: "maria", hStart: "2024-03-05 08:15:00", hBed: "23.00", hLights: "23:30", hLatency: "15", hWASO: "00:20", hRose: "06:15"},
			{hName: "sarah c.", hStart: "2024-03-05 09:00:00", hBed: "24:00", hLights: "non ricordo", hRose: "07:30"},
			{hName: "", hStart: "2024-03-07 08:00:00", hBed: "22:00", hRose: "06:00"},
		},
	}
}

func newTestService(t *testing.T) AnalysisService {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	svc, err := NewAnalysisServiceFromConfig(cfg, zap.NewNop())
	require.NoError(t, err)
	return svc
}

// mockCleaner 模拟数据清洗器
type mockCleaner struct {
	mock.Mock
}

func (m *mockCleaner) Clean(ds *models.Dataset) (*normalizer.CleanResult, error) {
	args := m.Called(ds)
	if res := args.Get(0); res != nil {
		return res.(*normalizer.CleanResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestAnalysisService_Analyze_AllRespondents(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.Analyze(context.Background(), AnalyzeRequest{Dataset: uploadDataset()})
	require.NoError(t, err)
	require.NotEmpty(t, resp.RunID)
	require.Empty(t, resp.Respondent)
	require.Equal(t, []string{"Maria Iob", "Sarah Cetola"}, resp.Respondents)
	require.Equal(t, 1, resp.Dropped)
	require.Equal(t, 1, resp.Unparsed[schema.FieldLightsOff])

	require.Len(t, resp.Results, 3)
	require.Equal(t, 1, resp.Results[0].Record.RowIndex, "sorted by submission time")
	require.Equal(t, 2, resp.Results[1].Record.RowIndex)
	require.Equal(t, 0, resp.Results[2].Record.RowIndex)

	require.Equal(t, 3, resp.Summary.Nights)
	require.Equal(t, 2, resp.Summary.ValidNights)
	require.True(t, resp.Summary.Partial)
	require.InDelta(t, 7.625, *resp.Summary.Overall.TimeInBedHours, 1e-9)
}

func TestAnalysisService_Analyze_SingleRespondent(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.Analyze(context.Background(), AnalyzeRequest{
		Dataset:    uploadDataset(),
		Respondent: "maria iob",
	})
	require.NoError(t, err)
	require.Equal(t, "Maria Iob", resp.Respondent)
	require.Equal(t, []string{"Maria Iob", "Sarah Cetola"}, resp.Respondents)
	require.Len(t, resp.Results, 2)

	first := resp.Results[0]
	require.InDelta(t, 7.25, *first.Metrics.TimeInBedHours, 1e-9)
	require.InDelta(t, 370.0/60, *first.Metrics.SleepDurationHours, 1e-9)

	second := resp.Results[1]
	require.InDelta(t, 8.0, *second.Metrics.TimeInBedHours, 1e-9)
	require.InDelta(t, (7.25+8)/2, *second.Metrics.Rolling7TimeInBedHours, 1e-9)

	require.Equal(t, 2, resp.Summary.ValidNights)
	require.InDelta(t, 12.5, *resp.Summary.Overall.LatencyMinutes, 1e-9)
}

func TestAnalysisService_Analyze_UnknownRespondent(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Analyze(context.Background(), AnalyzeRequest{
		Dataset:    uploadDataset(),
		Respondent: "Nobody",
	})
	require.ErrorIs(t, err, ErrUnknownRespondent)
}

func TestAnalysisService_Analyze_MissingColumn(t *testing.T) {
	svc := newTestService(t)
	ds := &models.Dataset{
		Headers: []string{hName, hBed},
		Rows:    []models.RawRecord{{hName: "Maria", hBed: "22:00"}},
	}

	_, err := svc.Analyze(context.Background(), AnalyzeRequest{Dataset: ds})
	require.Error(t, err)
	require.True(t, errors.Is(err, schema.ErrMissingColumn))

	var missing *schema.MissingColumnError
	require.True(t, errors.As(err, &missing))
}

func TestAnalysisService_Analyze_InvalidRequest(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Analyze(context.Background(), AnalyzeRequest{})
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.Analyze(ctx, AnalyzeRequest{Dataset: uploadDataset()})
	require.ErrorIs(t, err, context.Canceled)
}

func TestAnalysisService_Analyze_CleanerError(t *testing.T) {
	engine, err := metrics.NewEngine(metrics.DefaultOptions())
	require.NoError(t, err)
	svc := NewAnalysisService(nil, engine, nil).(*analysisService)

	cleaner := &mockCleaner{}
	svc.SetCleanerForTest(cleaner)

	ds := uploadDataset()
	cause := &schema.MissingColumnError{Field: schema.FieldRoseFromBed}
	cleaner.On("Clean", ds).Return(nil, cause)

	_, err = svc.Analyze(context.Background(), AnalyzeRequest{Dataset: ds})
	require.ErrorIs(t, err, schema.ErrMissingColumn)
	cleaner.AssertExpectations(t)
}

func TestAnalysisService_Analyze_UsesCleanedRecords(t *testing.T) {
	engine, err := metrics.NewEngine(metrics.DefaultOptions())
	require.NoError(t, err)
	svc := NewAnalysisService(nil, engine, zap.NewNop()).(*analysisService)

	cleaner := &mockCleaner{}
	svc.SetCleanerForTest(cleaner)

	ds := &models.Dataset{}
	cleaner.On("Clean", ds).Return(&normalizer.CleanResult{
		Records: []models.NormalizedRecord{
			{
				RowIndex:     0,
				RespondentID: models.StringPtr("Claudia Raia"),
				WentToBed:    &models.TimeOfDay{Hour: 23, Minute: 0},
				LightsOff:    &models.TimeOfDay{Hour: 23, Minute: 0},
				RoseFromBed:  &models.TimeOfDay{Hour: 7, Minute: 0},
			},
			{RowIndex: 1},
		},
		MergeMap: map[string]string{"Raia C": "Claudia Raia"},
		Dropped:  1,
	}, nil)

	resp, err := svc.Analyze(context.Background(), AnalyzeRequest{Dataset: ds, Respondent: "raia c"})
	require.NoError(t, err)
	require.Equal(t, "Claudia Raia", resp.Respondent)
	require.Len(t, resp.Results, 1)
	require.InDelta(t, 8.0, *resp.Results[0].Metrics.SleepDurationHours, 1e-9)
	require.Equal(t, 1, resp.Dropped)
	cleaner.AssertExpectations(t)
}

func TestAnalysisService_Respondents(t *testing.T) {
	svc := newTestService(t)

	names, err := svc.Respondents(context.Background(), uploadDataset())
	require.NoError(t, err)
	require.Equal(t, []string{"Maria Iob", "Sarah Cetola"}, names)

	_, err = svc.Respondents(context.Background(), nil)
	require.Error(t, err)
}
