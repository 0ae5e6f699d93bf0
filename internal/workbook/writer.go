package workbook

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"wisefido-sleep-diary/internal/metrics"
	"wisefido-sleep-diary/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	ResultsSheet = "Risultati"
	SummarySheet = "Riepilogo"
)

// AllRespondentsLabel 未筛选受访者时的显示名称
const AllRespondentsLabel = "Tutti i clienti"

// ResultFileName 结果文件名：risultati_<姓名>.xlsx，未筛选时 risultati_tutti_clienti.xlsx
func ResultFileName(respondent string) string {
	respondent = strings.TrimSpace(respondent)
	if respondent == "" || respondent == AllRespondentsLabel {
		return "risultati_tutti_clienti.xlsx"
	}
	return fmt.Sprintf("risultati_%s.xlsx", strings.ReplaceAll(respondent, " ", "_"))
}

// WriteResults 生成结果 Excel 文件
// Risultati：每晚一行，列为 models.Columns；Riepilogo：汇总（全部有效行 / 最近 N 晚 / 差值）
func WriteResults(results []models.NightResult, summary metrics.Summary, respondent string) ([]byte, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(ResultsSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := newHeaderStyle(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	decimalStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create number style: %w", err)
	}

	if err := writeResultsSheet(f, results, headerStyle, decimalStyle); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeSummarySheet(f, summary, respondent, headerStyle); err != nil {
		f.Close()
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	return buf.Bytes(), nil
}

// newHeaderStyle 表头样式：加粗、浅蓝底、细边框、居中
func newHeaderStyle(f *excelize.File) (int, error) {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
			WrapText:   true,
		},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create header style: %w", err)
	}
	return style, nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
	}
	return nil
}

func writeResultsSheet(f *excelize.File, results []models.NightResult, headerStyle, decimalStyle int) error {
	if err := writeHeader(f, ResultsSheet, models.Columns, headerStyle); err != nil {
		return err
	}

	for rowIdx, r := range results {
		row := rowIdx + 2 // 第 1 行是表头
		for colIdx, column := range models.Columns {
			value := r.Value(column)
			if value == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(colIdx+1, row)
			if err != nil {
				return fmt.Errorf("failed to convert coordinates: %w", err)
			}
			if err := f.SetCellValue(ResultsSheet, cell, value); err != nil {
				return fmt.Errorf("failed to set cell value at row %d, col %d: %w", row, colIdx+1, err)
			}
			if _, ok := value.(float64); ok {
				if err := f.SetCellStyle(ResultsSheet, cell, cell, decimalStyle); err != nil {
					return fmt.Errorf("failed to set number style: %w", err)
				}
			}
		}
	}

	for i, column := range models.Columns {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("failed to convert column number: %w", err)
		}
		width := float64(len(column)) + 2
		if width < 12 {
			width = 12
		}
		if err := f.SetColWidth(ResultsSheet, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	if err := f.SetPanes(ResultsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze panes: %w", err)
	}
	return nil
}

// summaryRows Riepilogo 的指标行
var summaryRows = []struct {
	label string
	get   func(a metrics.Averages) *float64
}{
	{"TIB (ore)", func(a metrics.Averages) *float64 { return a.TimeInBedHours }},
	{"TST (ore)", func(a metrics.Averages) *float64 { return a.SleepDurationHours }},
	{"Efficienza (%)", func(a metrics.Averages) *float64 { return a.SleepEfficiencyPct }},
	{"Latenza (min)", func(a metrics.Averages) *float64 { return a.LatencyMinutes }},
	{"WASO (min)", func(a metrics.Averages) *float64 { return a.WASOMinutes }},
}

func writeSummarySheet(f *excelize.File, s metrics.Summary, respondent string, headerStyle int) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	if respondent == "" {
		respondent = AllRespondentsLabel
	}

	recentLabel := fmt.Sprintf("Ultime %d notti", s.Window)
	if err := writeHeader(f, SummarySheet, []string{"Metrica", "Media globale", recentLabel, "Delta"}, headerStyle); err != nil {
		return err
	}

	rows := [][]any{}
	for _, m := range summaryRows {
		rows = append(rows, []any{m.label, round2(m.get(s.Overall)), round2(m.get(s.Recent)), round2(m.get(s.Delta))})
	}
	rows = append(rows,
		[]any{},
		[]any{"Cliente", respondent},
		[]any{"Notti totali", s.Nights},
		[]any{"Notti valide", s.ValidNights},
		[]any{"Dati parziali", s.Partial},
	)

	for i, values := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(SummarySheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write summary row %d: %w", i+2, err)
		}
	}
	if err := f.SetColWidth(SummarySheet, "A", "D", 18); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	return nil
}

// round2 保留两位小数；nil 写为空单元格
func round2(v *float64) any {
	if v == nil {
		return nil
	}
	return math.Round(*v*100) / 100
}
