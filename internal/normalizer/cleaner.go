// Package normalizer 将睡眠日记中手工填写的单元格清洗为类型化字段
//
// 包级函数（ParseTime、ParseLatency、ParseWASO、CanonicalName 等）都是纯函数：
// 不共享可变状态、不 panic，无法解析时返回 nil 或策略规定的缺失值。
// Cleaner 负责把这些函数应用到整张表，并记录解析失败的统计。
package normalizer

import (
	"fmt"

	"wisefido-sleep-diary/internal/models"
	"wisefido-sleep-diary/internal/schema"

	"go.uber.org/zap"
)

// Options 清洗配置
type Options struct {
	Schema   *schema.Schema
	Required []schema.Field // 必需字段，缺失时返回结构性错误
	Aliases  map[string]string
	Latency  LatencyPolicy
	WASO     WASOPolicy

	MergeSimilarNames bool // 是否做启发式姓名合并
}

// DefaultOptions 默认清洗配置
func DefaultOptions() Options {
	return Options{
		Schema:            schema.Default(),
		Required:          []schema.Field{schema.FieldRespondent},
		Latency:           DefaultLatencyPolicy(),
		WASO:              DefaultWASOPolicy(),
		MergeSimilarNames: true,
	}
}

// Validate 校验清洗配置
func (o Options) Validate() error {
	if o.Schema == nil {
		return fmt.Errorf("schema is required")
	}
	for _, f := range o.Required {
		if err := f.Validate(); err != nil {
			return err
		}
	}
	if err := o.Latency.Validate(); err != nil {
		return err
	}
	return o.WASO.Validate()
}

// CleanResult 清洗结果
type CleanResult struct {
	Records  []models.NormalizedRecord // 与输入行一一对应（含姓名为空的行）
	Mapping  *schema.Mapping
	MergeMap map[string]string    // 姓名合并映射
	Unparsed map[schema.Field]int // 非空但无法解析的单元格数
	Dropped  int                  // 姓名为空、不进入分析的行数
}

// Identified 姓名不为空的记录（可进入分析）
func (r *CleanResult) Identified() []models.NormalizedRecord {
	out := make([]models.NormalizedRecord, 0, len(r.Records))
	for _, rec := range r.Records {
		if rec.RespondentID != nil {
			out = append(out, rec)
		}
	}
	return out
}

// Cleaner 数据清洗器
type Cleaner struct {
	opts    Options
	aliases map[string]string
	logger  *zap.Logger
}

// NewCleaner 创建数据清洗器
func NewCleaner(opts Options, logger *zap.Logger) (*Cleaner, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid normalizer options: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cleaner{
		opts:    opts,
		aliases: NormalizeAliases(opts.Aliases),
		logger:  logger,
	}, nil
}

// Clean 清洗整张表
//
// 单元格级别的问题不会中断处理（字段置空后继续）；
// 必需字段对应的列完全不存在时返回 schema.ErrMissingColumn。
func (c *Cleaner) Clean(ds *models.Dataset) (*CleanResult, error) {
	if ds == nil {
		return nil, fmt.Errorf("dataset is nil")
	}

	mapping, err := c.opts.Schema.Resolve(ds.Headers, c.opts.Required)
	if err != nil {
		c.logger.Error("upload does not match the diary schema",
			zap.Int("schema_version", c.opts.Schema.Version),
			zap.Strings("headers", ds.Headers),
			zap.Error(err),
		)
		return nil, err
	}
	for field, extra := range mapping.Duplicates {
		c.logger.Warn("duplicate columns for field, using the first one",
			zap.String("field", string(field)),
			zap.Strings("ignored", extra),
		)
	}

	result := &CleanResult{
		Records:  make([]models.NormalizedRecord, 0, len(ds.Rows)),
		Mapping:  mapping,
		Unparsed: make(map[schema.Field]int),
	}

	for i, row := range ds.Rows {
		rec := c.cleanRow(i, row, mapping, result.Unparsed)
		if rec.RespondentID == nil {
			result.Dropped++
		}
		result.Records = append(result.Records, rec)
	}

	if c.opts.MergeSimilarNames {
		names := make([]string, 0, len(result.Records))
		for _, rec := range result.Records {
			if rec.RespondentID != nil {
				names = append(names, *rec.RespondentID)
			}
		}
		result.MergeMap = MergeSimilarNames(names)
		for i := range result.Records {
			result.Records[i].RespondentID = ApplyMerge(result.Records[i].RespondentID, result.MergeMap)
		}
		for src, dst := range result.MergeMap {
			c.logger.Debug("merged similar respondent names",
				zap.String("from", src),
				zap.String("to", dst),
			)
		}
	} else {
		result.MergeMap = map[string]string{}
	}

	c.logger.Info("diary rows normalized",
		zap.Int("rows", len(result.Records)),
		zap.Int("schema_version", mapping.Version),
		zap.Int("dropped", result.Dropped),
		zap.Int("merged_names", len(result.MergeMap)),
		zap.Any("unparsed", result.Unparsed),
	)
	return result, nil
}

func (c *Cleaner) cleanRow(index int, row models.RawRecord, m *schema.Mapping, unparsed map[schema.Field]int) models.NormalizedRecord {
	get := func(f schema.Field) any {
		h, ok := m.Header(f)
		if !ok {
			return nil
		}
		return row[h]
	}

	rec := models.NormalizedRecord{RowIndex: index}

	if raw := get(schema.FieldRespondent); !isBlank(raw) {
		rec.RespondentOriginal = fmt.Sprint(raw)
		rec.RespondentID = CanonicalName(rec.RespondentOriginal, c.aliases)
	}

	rec.SubmittedAt = ParseTimestamp(get(schema.FieldSubmittedAt))
	c.track(index, schema.FieldSubmittedAt, get(schema.FieldSubmittedAt), rec.SubmittedAt == nil, unparsed)
	rec.CompletedAt = ParseTimestamp(get(schema.FieldCompletedAt))

	rec.WentToBed = c.timeField(index, schema.FieldWentToBed, get(schema.FieldWentToBed), unparsed)
	rec.LightsOff = c.timeField(index, schema.FieldLightsOff, get(schema.FieldLightsOff), unparsed)
	rec.WakeFinal = c.timeField(index, schema.FieldWakeFinal, get(schema.FieldWakeFinal), unparsed)
	rec.RoseFromBed = c.timeField(index, schema.FieldRoseFromBed, get(schema.FieldRoseFromBed), unparsed)

	rawLatency := get(schema.FieldLatency)
	rec.LatencyMinutes = ParseLatency(rawLatency, c.opts.Latency)
	c.track(index, schema.FieldLatency, rawLatency, rec.LatencyMinutes == nil, unparsed)

	rec.WASOMinutes = ParseWASO(get(schema.FieldWASO), c.opts.WASO)
	rec.AwakeningCount = ParseCount(get(schema.FieldAwakenings))

	rawEstimate := get(schema.FieldEstimatedSleep)
	rec.EstimatedSleepHours = ParseEstimatedHours(rawEstimate)
	c.track(index, schema.FieldEstimatedSleep, rawEstimate, rec.EstimatedSleepHours == nil, unparsed)

	return rec
}

func (c *Cleaner) timeField(index int, field schema.Field, raw any, unparsed map[schema.Field]int) *models.TimeOfDay {
	t := ParseTime(raw)
	c.track(index, field, raw, t == nil, unparsed)
	return t
}

// track 非空输入解析为空时计数（未作答与解析失败在结果中不区分）
func (c *Cleaner) track(index int, field schema.Field, raw any, failed bool, unparsed map[schema.Field]int) {
	if !failed || isBlank(raw) {
		return
	}
	unparsed[field]++
	c.logger.Debug("cell could not be normalized",
		zap.Int("row", index),
		zap.String("field", string(field)),
		zap.Any("raw", raw),
	)
}
