package normalizer

import "fmt"

// 异常值策略的默认值和允许范围（分钟）
const (
	DefaultMaxLatencyMinutes = 120
	MinMaxLatencyMinutes     = 120
	MaxMaxLatencyMinutes     = 240

	DefaultMaxWASOMinutes = 720
	MinMaxWASOMinutes     = 480
	MaxMaxWASOMinutes     = 720
)

// MissingPolicy 潜伏期缺失值（空、文字性否定回答、异常值）的处理方式
type MissingPolicy string

const (
	MissingAsZero MissingPolicy = "zero" // 记为 0
	MissingAsNull MissingPolicy = "null" // 记为空
)

// Validate 校验缺失值策略
func (p MissingPolicy) Validate() error {
	switch p {
	case MissingAsZero, MissingAsNull:
		return nil
	default:
		return fmt.Errorf("unsupported missing policy %q", string(p))
	}
}

// LatencyPolicy 入睡潜伏期解析策略
//
// 超出 [0, MaxMinutes] 的值视为填写错误（通常是误用 hh:mm 格式），按 Missing 处理。
type LatencyPolicy struct {
	MaxMinutes   float64
	Missing      MissingPolicy
	RepairDigits bool // 3 位数超限时尝试修复多输入的数字（"125" -> 15）
}

// DefaultLatencyPolicy 默认潜伏期策略
func DefaultLatencyPolicy() LatencyPolicy {
	return LatencyPolicy{
		MaxMinutes:   DefaultMaxLatencyMinutes,
		Missing:      MissingAsZero,
		RepairDigits: true,
	}
}

// Validate 校验潜伏期策略
func (p LatencyPolicy) Validate() error {
	if p.MaxMinutes < MinMaxLatencyMinutes || p.MaxMinutes > MaxMaxLatencyMinutes {
		return fmt.Errorf("max latency minutes must be in [%d, %d], got %v",
			MinMaxLatencyMinutes, MaxMaxLatencyMinutes, p.MaxMinutes)
	}
	return p.Missing.Validate()
}

// missing 按策略返回缺失值
func (p LatencyPolicy) missing() *float64 {
	if p.Missing == MissingAsNull {
		return nil
	}
	zero := 0.0
	return &zero
}

// WASOPolicy 入睡后觉醒时长解析策略
//
// 超过 MaxMinutes 的值封顶而不是丢弃。
type WASOPolicy struct {
	MaxMinutes float64
}

// DefaultWASOPolicy 默认 WASO 策略
func DefaultWASOPolicy() WASOPolicy {
	return WASOPolicy{MaxMinutes: DefaultMaxWASOMinutes}
}

// Validate 校验 WASO 策略
func (p WASOPolicy) Validate() error {
	if p.MaxMinutes < MinMaxWASOMinutes || p.MaxMinutes > MaxMaxWASOMinutes {
		return fmt.Errorf("max WASO minutes must be in [%d, %d], got %v",
			MinMaxWASOMinutes, MaxMaxWASOMinutes, p.MaxMinutes)
	}
	return nil
}

// clamp 封顶到 [0, MaxMinutes]
func (p WASOPolicy) clamp(minutes float64) float64 {
	if minutes < 0 {
		return 0
	}
	if minutes > p.MaxMinutes {
		return p.MaxMinutes
	}
	return minutes
}
