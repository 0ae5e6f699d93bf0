// Package schema 维护问卷表头到规范字段的版本化映射
//
// 不同问卷工具版本的表头文本不同（意大利语 / 英语、标点差异），
// 这里用显式的 variants 表代替模糊匹配，加载时校验必需字段是否存在。
package schema

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Field 规范字段名
type Field string

const (
	FieldRespondent     Field = "respondent"
	FieldSubmittedAt    Field = "submitted_at"
	FieldCompletedAt    Field = "completed_at"
	FieldWentToBed      Field = "went_to_bed"
	FieldLightsOff      Field = "lights_off"
	FieldLatency        Field = "latency"
	FieldAwakenings     Field = "awakenings"
	FieldWASO           Field = "waso"
	FieldWakeFinal      Field = "wake_final"
	FieldRoseFromBed    Field = "rose_from_bed"
	FieldEstimatedSleep Field = "estimated_sleep"
)

// AllFields 所有已知字段
var AllFields = []Field{
	FieldRespondent,
	FieldSubmittedAt,
	FieldCompletedAt,
	FieldWentToBed,
	FieldLightsOff,
	FieldLatency,
	FieldAwakenings,
	FieldWASO,
	FieldWakeFinal,
	FieldRoseFromBed,
	FieldEstimatedSleep,
}

// Validate 校验字段名
func (f Field) Validate() error {
	for _, known := range AllFields {
		if f == known {
			return nil
		}
	}
	return fmt.Errorf("unknown schema field %q", string(f))
}

// ErrMissingColumn 必需字段在上传数据中完全不存在（结构性错误，整个分析终止）
var ErrMissingColumn = errors.New("required column missing")

// MissingColumnError 指明缺失的字段以及可接受的表头文本
type MissingColumnError struct {
	Field    Field
	Variants []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("required column %q not found in upload (expected one of: %s)",
		string(e.Field), strings.Join(e.Variants, " | "))
}

func (e *MissingColumnError) Unwrap() error {
	return ErrMissingColumn
}

// FieldSpec 一个规范字段及其所有已知表头文本
type FieldSpec struct {
	Field    Field    `yaml:"field"`
	Variants []string `yaml:"variants"`
}

// Schema 版本化的表头映射表
type Schema struct {
	Version int         `yaml:"version"`
	Fields  []FieldSpec `yaml:"fields"`
}

//go:embed default_schema.yaml
var defaultSchemaYAML []byte

// Default 返回内置映射表
func Default() *Schema {
	s, err := Parse(defaultSchemaYAML)
	if err != nil {
		// 内置文件随代码发布，解析失败属于编程错误
		panic(fmt.Sprintf("invalid embedded schema: %v", err))
	}
	return s
}

// Parse 解析 YAML 映射表
func Parse(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load 从 YAML 读取映射表
func Load(r io.Reader) (*Schema, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	return Parse(data)
}

// LoadFile 从文件读取映射表；path 为空时使用内置映射表
func LoadFile(path string) (*Schema, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open schema file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Validate 校验映射表：字段名合法、不重复、每个字段至少一个表头
func (s *Schema) Validate() error {
	if s.Version <= 0 {
		return fmt.Errorf("schema version must be positive, got %d", s.Version)
	}
	seen := make(map[Field]bool, len(s.Fields))
	owner := make(map[string]Field)
	for _, spec := range s.Fields {
		if err := spec.Field.Validate(); err != nil {
			return err
		}
		if seen[spec.Field] {
			return fmt.Errorf("schema field %q declared twice", string(spec.Field))
		}
		seen[spec.Field] = true
		if len(spec.Variants) == 0 {
			return fmt.Errorf("schema field %q has no header variants", string(spec.Field))
		}
		for _, v := range spec.Variants {
			key := NormalizeHeader(v)
			if key == "" {
				return fmt.Errorf("schema field %q has an empty header variant", string(spec.Field))
			}
			if other, ok := owner[key]; ok && other != spec.Field {
				return fmt.Errorf("header %q mapped to both %q and %q", v, string(other), string(spec.Field))
			}
			owner[key] = spec.Field
		}
	}
	return nil
}

// Variants 返回字段的表头文本
func (s *Schema) Variants(field Field) []string {
	for _, spec := range s.Fields {
		if spec.Field == field {
			return spec.Variants
		}
	}
	return nil
}

// NormalizeHeader 表头比较键：NFC、去首尾空白、合并空白、大小写折叠、统一撇号
func NormalizeHeader(h string) string {
	h = norm.NFC.String(h)
	h = strings.NewReplacer("\u2019", "'", "\u2018", "'", "`", "'", "\u00a0", " ").Replace(h)
	h = strings.Join(strings.Fields(h), " ")
	return cases.Fold().String(h)
}
