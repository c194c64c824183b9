package report

// csv.go — export de informes, comparaciones y trades a CSV.

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/TUTULEMAN/bond-arbitrage-project/internal/domain"
	"github.com/TUTULEMAN/bond-arbitrage-project/internal/rates"
)

// CSVExporter escribe los artefactos del pipeline como ficheros CSV.
type CSVExporter struct{}

// NewCSVExporter crea un exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// ExportReport escribe el informe como filas metric,value.
func (e *CSVExporter) ExportReport(path, label string, report domain.RiskReport) error {
	rows := [][]string{{"label", "metric", "value"}}
	for _, m := range report.Metrics() {
		rows = append(rows, []string{label, m.Name, formatFloat(m.Value)})
	}
	return writeCSV("report.ExportReport", path, rows)
}

// ExportComparison escribe una fila por escenario con las métricas en
// columnas. Los escenarios fallidos llevan el error y métricas vacías.
func (e *CSVExporter) ExportComparison(path string, cmp domain.ScenarioComparison) error {
	names := metricNames()

	header := append([]string{"scenario"}, names...)
	header = append(header, "error")
	rows := [][]string{header}

	for _, res := range cmp.Results() {
		row := make([]string, 0, len(header))
		row = append(row, res.Label)
		if res.Failed() {
			for range names {
				row = append(row, "")
			}
			row = append(row, res.Err.Error())
		} else {
			for _, m := range res.Report.Metrics() {
				row = append(row, formatFloat(m.Value))
			}
			row = append(row, "")
		}
		rows = append(rows, row)
	}
	return writeCSV("report.ExportComparison", path, rows)
}

// ExportForecast escribe la senda de tipos como filas t_years,p5,mean,p95.
func (e *CSVExporter) ExportForecast(path string, fc rates.Forecast) error {
	rows := [][]string{{"t_years", "p5", "mean", "p95"}}
	for i, tt := range fc.Times {
		rows = append(rows, []string{
			formatFloat(tt),
			formatFloat(fc.P5[i]),
			formatFloat(fc.Mean[i]),
			formatFloat(fc.P95[i]),
		})
	}
	return writeCSV("report.ExportForecast", path, rows)
}

// ExportTrades escribe el blotter completo.
func (e *CSVExporter) ExportTrades(path string, trades domain.TradeSequence) error {
	rows := [][]string{{
		"seq", "entry_time", "entry_spread", "direction", "size",
		"exit_time", "exit_spread", "pnl", "exit_reason",
	}}
	for i, tr := range trades {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			tr.EntryTime.UTC().Format("2006-01-02 15:04:05"),
			formatFloat(tr.EntrySpread),
			tr.Direction.String(),
			formatFloat(tr.Size),
			tr.ExitTime.UTC().Format("2006-01-02 15:04:05"),
			formatFloat(tr.ExitSpread),
			formatFloat(tr.PnL),
			tr.ExitReason.String(),
		})
	}
	return writeCSV("report.ExportTrades", path, rows)
}

// --- helpers ---

func writeCSV(op, path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%s: create %q: %w", op, path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("%s: write %q: %w", op, path, err)
	}
	return nil
}

// metricNames devuelve los nombres de métrica en el orden estable del
// informe.
func metricNames() []string {
	ms := domain.RiskReport{}.Metrics()
	names := make([]string, len(ms))
	for i, m := range ms {
		names[i] = m.Name
	}
	return names
}

// formatFloat serializa sin perder precisión ni arrastrar ceros.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
