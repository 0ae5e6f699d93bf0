package normalizer

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// timestampLayouts 问卷导出中出现过的时间格式（月在前）
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/06 15:04:05",
	"1/2/06 15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"1/2/2006",
	"2006/01/02 15:04:05",
}

// ParseTimestamp 解析提交时间
// 支持 time.Time、Excel 序列号（数值或数字字符串）以及 timestampLayouts 中的文本格式
func ParseTimestamp(v any) *time.Time {
	switch val := v.(type) {
	case nil:
		return nil
	case time.Time:
		if val.IsZero() {
			return nil
		}
		return &val
	case *time.Time:
		if val == nil || val.IsZero() {
			return nil
		}
		t := *val
		return &t
	case string:
		return parseTimestampString(val)
	}
	if f, ok := toFloat(v); ok {
		return excelSerial(f)
	}
	return nil
}

func parseTimestampString(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return excelSerial(f)
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// excelSerial Excel 日期序列号（1900 日期系统）
func excelSerial(f float64) *time.Time {
	if f <= 0 {
		return nil
	}
	t, err := excelize.ExcelDateToTime(f, false)
	if err != nil {
		return nil
	}
	return &t
}
