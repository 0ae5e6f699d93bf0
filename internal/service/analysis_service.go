package service

import (
	"context"
	"errors"
	"fmt"

	"wisefido-sleep-diary/internal/config"
	"wisefido-sleep-diary/internal/metrics"
	"wisefido-sleep-diary/internal/models"
	"wisefido-sleep-diary/internal/normalizer"
	"wisefido-sleep-diary/internal/schema"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrUnknownRespondent 请求的受访者不在上传数据中
var ErrUnknownRespondent = errors.New("respondent not found in upload")

// datasetCleaner 数据清洗接口（用于测试和扩展）
type datasetCleaner interface {
	Clean(ds *models.Dataset) (*normalizer.CleanResult, error)
}

// AnalysisService 睡眠日记分析服务接口
type AnalysisService interface {
	// Analyze 清洗上传数据并计算每晚指标、滚动平均和汇总
	Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error)

	// Respondents 返回上传数据中（合并后）的受访者列表
	Respondents(ctx context.Context, ds *models.Dataset) ([]string, error)
}

// analysisService 实现
type analysisService struct {
	cleaner datasetCleaner
	engine  *metrics.Engine
	logger  *zap.Logger
}

// NewAnalysisService 创建 AnalysisService 实例
func NewAnalysisService(cleaner *normalizer.Cleaner, engine *metrics.Engine, logger *zap.Logger) AnalysisService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &analysisService{
		cleaner: cleaner,
		engine:  engine,
		logger:  logger,
	}
}

// NewAnalysisServiceFromConfig 按配置组装清洗器和指标引擎
func NewAnalysisServiceFromConfig(cfg *config.Config, logger *zap.Logger) (AnalysisService, error) {
	opts, err := cfg.NormalizerOptions()
	if err != nil {
		return nil, err
	}
	cleaner, err := normalizer.NewCleaner(opts, logger)
	if err != nil {
		return nil, err
	}
	engine, err := metrics.NewEngine(cfg.MetricsOptions())
	if err != nil {
		return nil, err
	}
	return NewAnalysisService(cleaner, engine, logger), nil
}

// SetCleanerForTest 设置清洗器接口（用于测试）
func (s *analysisService) SetCleanerForTest(cleaner datasetCleaner) {
	s.cleaner = cleaner
}

// ============================================
// Request/Response DTOs
// ============================================

// AnalyzeRequest 分析请求
type AnalyzeRequest struct {
	Dataset    *models.Dataset // 必填
	Respondent string          // 为空时分析全部受访者（滚动窗口跨受访者计算）
}

// AnalyzeResponse 分析响应
type AnalyzeResponse struct {
	RunID       string
	Respondent  string   // 规范化后的受访者，全部时为空
	Respondents []string // 上传数据中的全部受访者
	Results     []models.NightResult
	Summary     metrics.Summary

	MergeMap map[string]string
	Unparsed map[schema.Field]int
	Dropped  int // 姓名为空被排除的行数
}

// Analyze 分析上传数据
// 流程：清洗 -> 排除姓名为空的行 -> 按受访者筛选 -> 排序并计算指标 -> 汇总
// 表头结构错误原样返回（errors.Is(err, schema.ErrMissingColumn)）
func (s *analysisService) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error) {
	if req.Dataset == nil {
		return nil, fmt.Errorf("dataset is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := s.logger.With(zap.String("run_id", runID))
	logger.Info("analysis started",
		zap.Int("rows", len(req.Dataset.Rows)),
		zap.String("respondent", req.Respondent),
	)

	cleaned, err := s.cleaner.Clean(req.Dataset)
	if err != nil {
		logger.Error("failed to normalize upload", zap.Error(err))
		return nil, err
	}

	records := cleaned.Identified()
	respondents := metrics.ListRespondents(records)

	respondent := ""
	if req.Respondent != "" {
		respondent, err = resolveRespondent(req.Respondent, respondents, cleaned.MergeMap)
		if err != nil {
			logger.Warn("respondent not found", zap.String("respondent", req.Respondent))
			return nil, err
		}
		records = metrics.FilterRespondent(records, respondent)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := s.engine.Process(records)
	summary := metrics.Summarize(results, s.engine.Options().RollingWindow)

	logger.Info("analysis completed",
		zap.String("respondent", respondent),
		zap.Int("nights", summary.Nights),
		zap.Int("valid_nights", summary.ValidNights),
		zap.Int("dropped", cleaned.Dropped),
		zap.Bool("partial", summary.Partial),
	)

	return &AnalyzeResponse{
		RunID:       runID,
		Respondent:  respondent,
		Respondents: respondents,
		Results:     results,
		Summary:     summary,
		MergeMap:    cleaned.MergeMap,
		Unparsed:    cleaned.Unparsed,
		Dropped:     cleaned.Dropped,
	}, nil
}

// Respondents 返回受访者列表
func (s *analysisService) Respondents(ctx context.Context, ds *models.Dataset) ([]string, error) {
	if ds == nil {
		return nil, fmt.Errorf("dataset is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cleaned, err := s.cleaner.Clean(ds)
	if err != nil {
		return nil, err
	}
	return metrics.ListRespondents(cleaned.Identified()), nil
}

// resolveRespondent 将请求中的姓名对应到上传数据中的受访者
// 依次尝试：原样匹配、规范化后匹配、经合并映射后匹配
func resolveRespondent(requested string, respondents []string, merge map[string]string) (string, error) {
	candidates := []string{requested}
	if canonical := normalizer.CanonicalName(requested, nil); canonical != nil {
		candidates = append(candidates, *canonical)
		if merged := normalizer.ApplyMerge(canonical, merge); merged != nil {
			candidates = append(candidates, *merged)
		}
	}
	for _, c := range candidates {
		for _, r := range respondents {
			if c == r {
				return r, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRespondent, requested)
}
