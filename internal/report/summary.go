package report

import (
	"fmt"
	"io"

	"wisefido-sleep-diary/internal/metrics"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	noteStyle  = lipgloss.NewStyle().Italic(true)
)

// SummaryTable 汇总表的行：指标、全部有效行均值、最近 N 晚均值、差值
func SummaryTable(s metrics.Summary) [][]string {
	return [][]string{
		{"TIB", FormatHours(s.Overall.TimeInBedHours), FormatHours(s.Recent.TimeInBedHours), FormatDeltaHours(s.Delta.TimeInBedHours)},
		{"TST", FormatHours(s.Overall.SleepDurationHours), FormatHours(s.Recent.SleepDurationHours), FormatDeltaHours(s.Delta.SleepDurationHours)},
		{"Efficienza", FormatPercent(s.Overall.SleepEfficiencyPct), FormatPercent(s.Recent.SleepEfficiencyPct), FormatDeltaPercent(s.Delta.SleepEfficiencyPct)},
		{"Latenza", FormatMinutes(s.Overall.LatencyMinutes), FormatMinutes(s.Recent.LatencyMinutes), FormatDeltaMinutes(s.Delta.LatencyMinutes)},
		{"WASO", FormatMinutes(s.Overall.WASOMinutes), FormatMinutes(s.Recent.WASOMinutes), FormatDeltaMinutes(s.Delta.WASOMinutes)},
	}
}

// WriteSummary 输出文本汇总
func WriteSummary(w io.Writer, respondent string, s metrics.Summary) error {
	if respondent == "" {
		respondent = "Tutti i clienti"
	}
	title := fmt.Sprintf("%s: %d notti, %d valide", respondent, s.Nights, s.ValidNights)
	if _, err := fmt.Fprintln(w, titleStyle.Render(title)); err != nil {
		return err
	}

	if s.ValidNights == 0 {
		_, err := fmt.Fprintln(w, noteStyle.Render("Nessuna notte valida: impossibile calcolare le medie."))
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Metrica", "Media globale", fmt.Sprintf("Ultime %d notti", s.Window), "Delta").
		Rows(SummaryTable(s)...)
	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}

	if s.Partial {
		note := fmt.Sprintf("Solo %d notti valide: le medie recenti usano i dati disponibili.", s.ValidNights)
		if _, err := fmt.Fprintln(w, noteStyle.Render(note)); err != nil {
			return err
		}
	}
	return nil
}
