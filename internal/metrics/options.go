package metrics

import (
	"fmt"

	"wisefido-sleep-diary/internal/schema"
)

// StartEvent 卧床时间（TIB）的起点
type StartEvent string

const (
	StartWentToBed StartEvent = "went_to_bed" // 上床
	StartLightsOff StartEvent = "lights_off"  // 关灯
)

// EndEvent 睡眠时长（TST）基础跨度的终点
type EndEvent string

const (
	EndWakeFinal   EndEvent = "wake_final"    // 最后一次醒来
	EndRoseFromBed EndEvent = "rose_from_bed" // 起床
)

// BoundsPolicy TIB / TST 超出合理范围时的处理
type BoundsPolicy string

const (
	BoundsReject BoundsPolicy = "reject" // 置空
	BoundsPass   BoundsPolicy = "pass"   // 不校验，原值通过
)

// 默认合理范围（小时）
const (
	DefaultMinTIBHours       = 2
	DefaultMaxTIBHours       = 20
	DefaultMinTSTHours       = 1
	DefaultMaxTSTHours       = 16
	DefaultTSTCeilingHours   = 16
	DefaultMaxInertiaMinutes = 30
	DefaultRollingWindow     = 7
)

// Options 指标计算配置
type Options struct {
	TIBStart StartEvent
	TSTEnd   EndEvent
	Bounds   BoundsPolicy

	MinTIBHours float64
	MaxTIBHours float64
	MinTSTHours float64
	MaxTSTHours float64

	TSTCeilingHours float64 // TST 绝对上限，实际上限为 min(TIB, TSTCeilingHours)

	SubtractInertia   bool    // TST 是否减去晨起惰性时间
	MaxInertiaMinutes float64 // 减去前的封顶值

	RollingWindow int
}

// DefaultOptions 默认配置：上床 -> 起床 为 TIB，关灯 -> 起床 为 TST 跨度，超范围置空
func DefaultOptions() Options {
	return Options{
		TIBStart:          StartWentToBed,
		TSTEnd:            EndRoseFromBed,
		Bounds:            BoundsReject,
		MinTIBHours:       DefaultMinTIBHours,
		MaxTIBHours:       DefaultMaxTIBHours,
		MinTSTHours:       DefaultMinTSTHours,
		MaxTSTHours:       DefaultMaxTSTHours,
		TSTCeilingHours:   DefaultTSTCeilingHours,
		MaxInertiaMinutes: DefaultMaxInertiaMinutes,
		RollingWindow:     DefaultRollingWindow,
	}
}

// Validate 校验配置
func (o Options) Validate() error {
	switch o.TIBStart {
	case StartWentToBed, StartLightsOff:
	default:
		return fmt.Errorf("unsupported TIB start event %q", string(o.TIBStart))
	}
	switch o.TSTEnd {
	case EndWakeFinal, EndRoseFromBed:
	default:
		return fmt.Errorf("unsupported TST end event %q", string(o.TSTEnd))
	}
	switch o.Bounds {
	case BoundsReject, BoundsPass:
	default:
		return fmt.Errorf("unsupported bounds policy %q", string(o.Bounds))
	}
	if o.MinTIBHours < 0 || o.MinTIBHours >= o.MaxTIBHours || o.MaxTIBHours > 24 {
		return fmt.Errorf("invalid TIB bounds [%v, %v]", o.MinTIBHours, o.MaxTIBHours)
	}
	if o.MinTSTHours < 0 || o.MinTSTHours >= o.MaxTSTHours || o.MaxTSTHours > 24 {
		return fmt.Errorf("invalid TST bounds [%v, %v]", o.MinTSTHours, o.MaxTSTHours)
	}
	if o.TSTCeilingHours <= 0 || o.TSTCeilingHours > 24 {
		return fmt.Errorf("TST ceiling must be in (0, 24], got %v", o.TSTCeilingHours)
	}
	if o.MaxInertiaMinutes < 0 {
		return fmt.Errorf("max inertia minutes must be >= 0, got %v", o.MaxInertiaMinutes)
	}
	if o.RollingWindow < 1 {
		return fmt.Errorf("rolling window must be >= 1, got %d", o.RollingWindow)
	}
	return nil
}

// RequiredFields 计算指标所需的列：姓名、TIB 起点、起床、关灯、TST 终点
func (o Options) RequiredFields() []schema.Field {
	fields := []schema.Field{
		schema.FieldRespondent,
		schema.Field(o.TIBStart),
		schema.FieldRoseFromBed,
		schema.FieldLightsOff,
		schema.Field(o.TSTEnd),
	}
	seen := make(map[schema.Field]bool, len(fields))
	out := fields[:0]
	for _, f := range fields {
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}
