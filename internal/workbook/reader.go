// Package workbook 读写睡眠日记 Excel 文件（excelize）
package workbook

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"wisefido-sleep-diary/internal/models"

	"github.com/xuri/excelize/v2"
)

// Read 读取工作表为 Dataset
// sheet 为空时读取第一个工作表；第 1 行为表头，完全为空的数据行被跳过。
// 单元格按类型转换：数值 -> float64，文本 -> string，布尔 -> bool，空 -> nil。
// 日期/时间单元格以 Excel 序列号（float64）返回，由 normalizer 负责解释。
func Read(r io.Reader, sheet string) (*models.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
		if sheet == "" {
			return nil, fmt.Errorf("excel file has no sheets")
		}
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	ds := &models.Dataset{Headers: uniqueHeaders(rows[0])}
	for rowIdx := 1; rowIdx < len(rows); rowIdx++ {
		row := rows[rowIdx]
		record := make(models.RawRecord, len(ds.Headers))
		empty := true
		for colIdx, header := range ds.Headers {
			if colIdx >= len(row) || row[colIdx] == "" {
				record[header] = nil
				continue
			}
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return nil, fmt.Errorf("failed to convert coordinates: %w", err)
			}
			value, err := cellValue(f, sheet, cell, row[colIdx])
			if err != nil {
				return nil, err
			}
			record[header] = value
			if value != nil {
				empty = false
			}
		}
		if empty {
			continue
		}
		ds.Rows = append(ds.Rows, record)
	}
	return ds, nil
}

// uniqueHeaders 重复表头追加 ".1"、".2"，空表头命名为 "Column N"
func uniqueHeaders(raw []string) []string {
	seen := make(map[string]int, len(raw))
	out := make([]string, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Column %d", i+1)
		}
		if n, ok := seen[h]; ok {
			seen[h] = n + 1
			h = fmt.Sprintf("%s.%d", h, n+1)
		} else {
			seen[h] = 0
		}
		out[i] = h
	}
	return out
}

func cellValue(f *excelize.File, sheet, cell, raw string) (any, error) {
	typ, err := f.GetCellType(sheet, cell)
	if err != nil {
		return nil, fmt.Errorf("failed to get type of cell %s: %w", cell, err)
	}

	switch typ {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true"), nil
	case excelize.CellTypeUnset, excelize.CellTypeNumber, excelize.CellTypeFormula:
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v, nil
		}
		return raw, nil
	case excelize.CellTypeDate:
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t, nil
		}
		return raw, nil
	case excelize.CellTypeError:
		return nil, nil
	default:
		return raw, nil
	}
}
