package config

import (
	"errors"
	"fmt"
	"strings"

	"wisefido-sleep-diary/internal/metrics"
	"wisefido-sleep-diary/internal/normalizer"
	"wisefido-sleep-diary/internal/schema"

	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，例如 SLEEP_DIARY_NORMALIZER_MAX_LATENCY_MINUTES
const EnvPrefix = "SLEEP_DIARY"

// Config 睡眠日记分析配置
type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	Schema     SchemaConfig     `mapstructure:"schema"`
	Normalizer NormalizerConfig `mapstructure:"normalizer"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// SchemaConfig 表头映射和姓名别名
type SchemaConfig struct {
	File        string `mapstructure:"file"`         // 为空时使用内置映射表
	AliasesFile string `mapstructure:"aliases_file"` // 为空时使用内置别名表
}

// NormalizerConfig 字段清洗配置
type NormalizerConfig struct {
	MaxLatencyMinutes   float64 `mapstructure:"max_latency_minutes"` // 120..240
	LatencyMissing      string  `mapstructure:"latency_missing"`     // zero, null
	RepairLatencyDigits bool    `mapstructure:"repair_latency_digits"`
	MaxWASOMinutes      float64 `mapstructure:"max_waso_minutes"` // 480..720
	MergeSimilarNames   bool    `mapstructure:"merge_similar_names"`
}

// MetricsConfig 指标计算配置
type MetricsConfig struct {
	TIBStart          string  `mapstructure:"tib_start"` // went_to_bed, lights_off
	TSTEnd            string  `mapstructure:"tst_end"`   // wake_final, rose_from_bed
	Bounds            string  `mapstructure:"bounds"`    // reject, pass
	MinTIBHours       float64 `mapstructure:"min_tib_hours"`
	MaxTIBHours       float64 `mapstructure:"max_tib_hours"`
	MinTSTHours       float64 `mapstructure:"min_tst_hours"`
	MaxTSTHours       float64 `mapstructure:"max_tst_hours"`
	TSTCeilingHours   float64 `mapstructure:"tst_ceiling_hours"`
	SubtractInertia   bool    `mapstructure:"subtract_inertia"`
	MaxInertiaMinutes float64 `mapstructure:"max_inertia_minutes"`
	RollingWindow     int     `mapstructure:"rolling_window"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("schema.file", "")
	v.SetDefault("schema.aliases_file", "")

	v.SetDefault("normalizer.max_latency_minutes", normalizer.DefaultMaxLatencyMinutes)
	v.SetDefault("normalizer.latency_missing", string(normalizer.MissingAsZero))
	v.SetDefault("normalizer.repair_latency_digits", true)
	v.SetDefault("normalizer.max_waso_minutes", normalizer.DefaultMaxWASOMinutes)
	v.SetDefault("normalizer.merge_similar_names", true)

	v.SetDefault("metrics.tib_start", string(metrics.StartWentToBed))
	v.SetDefault("metrics.tst_end", string(metrics.EndRoseFromBed))
	v.SetDefault("metrics.bounds", string(metrics.BoundsReject))
	v.SetDefault("metrics.min_tib_hours", metrics.DefaultMinTIBHours)
	v.SetDefault("metrics.max_tib_hours", metrics.DefaultMaxTIBHours)
	v.SetDefault("metrics.min_tst_hours", metrics.DefaultMinTSTHours)
	v.SetDefault("metrics.max_tst_hours", metrics.DefaultMaxTSTHours)
	v.SetDefault("metrics.tst_ceiling_hours", metrics.DefaultTSTCeilingHours)
	v.SetDefault("metrics.subtract_inertia", false)
	v.SetDefault("metrics.max_inertia_minutes", metrics.DefaultMaxInertiaMinutes)
	v.SetDefault("metrics.rolling_window", metrics.DefaultRollingWindow)
}

// Load 加载配置
// 优先级：环境变量 > 配置文件（path 非空时必须存在）> 默认值
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("sleep-diary")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置，错误信息包含出错的配置项
func (c *Config) Validate() error {
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format: unsupported format %q", c.Log.Format)
	}
	if err := c.LatencyPolicy().Validate(); err != nil {
		return fmt.Errorf("normalizer: %w", err)
	}
	if err := c.WASOPolicy().Validate(); err != nil {
		return fmt.Errorf("normalizer: %w", err)
	}
	if err := c.MetricsOptions().Validate(); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	return nil
}

// LatencyPolicy 潜伏期解析策略
func (c *Config) LatencyPolicy() normalizer.LatencyPolicy {
	return normalizer.LatencyPolicy{
		MaxMinutes:   c.Normalizer.MaxLatencyMinutes,
		Missing:      normalizer.MissingPolicy(c.Normalizer.LatencyMissing),
		RepairDigits: c.Normalizer.RepairLatencyDigits,
	}
}

// WASOPolicy WASO 解析策略
func (c *Config) WASOPolicy() normalizer.WASOPolicy {
	return normalizer.WASOPolicy{MaxMinutes: c.Normalizer.MaxWASOMinutes}
}

// MetricsOptions 指标计算配置
func (c *Config) MetricsOptions() metrics.Options {
	m := c.Metrics
	return metrics.Options{
		TIBStart:          metrics.StartEvent(m.TIBStart),
		TSTEnd:            metrics.EndEvent(m.TSTEnd),
		Bounds:            metrics.BoundsPolicy(m.Bounds),
		MinTIBHours:       m.MinTIBHours,
		MaxTIBHours:       m.MaxTIBHours,
		MinTSTHours:       m.MinTSTHours,
		MaxTSTHours:       m.MaxTSTHours,
		TSTCeilingHours:   m.TSTCeilingHours,
		SubtractInertia:   m.SubtractInertia,
		MaxInertiaMinutes: m.MaxInertiaMinutes,
		RollingWindow:     m.RollingWindow,
	}
}

// NormalizerOptions 组装清洗配置：加载映射表和别名表，必需字段由指标配置决定
func (c *Config) NormalizerOptions() (normalizer.Options, error) {
	sch, err := schema.LoadFile(c.Schema.File)
	if err != nil {
		return normalizer.Options{}, fmt.Errorf("schema.file: %w", err)
	}
	aliases, err := LoadAliases(c.Schema.AliasesFile)
	if err != nil {
		return normalizer.Options{}, fmt.Errorf("schema.aliases_file: %w", err)
	}
	return normalizer.Options{
		Schema:            sch,
		Required:          c.MetricsOptions().RequiredFields(),
		Aliases:           aliases,
		Latency:           c.LatencyPolicy(),
		WASO:              c.WASOPolicy(),
		MergeSimilarNames: c.Normalizer.MergeSimilarNames,
	}, nil
}
