package report

// excel.go — export a un workbook Excel, una hoja por artefacto.

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/TUTULEMAN/bond-arbitrage-project/internal/domain"
	"github.com/TUTULEMAN/bond-arbitrage-project/internal/rates"
)

// ExcelExporter acumula hojas en un workbook y lo guarda de una vez.
type ExcelExporter struct {
	f     *excelize.File
	first bool
}

// NewExcelExporter crea un workbook vacío.
func NewExcelExporter() *ExcelExporter {
	return &ExcelExporter{f: excelize.NewFile(), first: true}
}

// AddReport añade la hoja "Report" con filas metric/value.
func (e *ExcelExporter) AddReport(label string, report domain.RiskReport) error {
	sheet, err := e.sheet("Report")
	if err != nil {
		return fmt.Errorf("report.AddReport: %w", err)
	}

	if err := e.setRow(sheet, 1, "label", "metric", "value"); err != nil {
		return fmt.Errorf("report.AddReport: %w", err)
	}
	for i, m := range report.Metrics() {
		if err := e.setRow(sheet, i+2, label, m.Name, m.Value); err != nil {
			return fmt.Errorf("report.AddReport: %w", err)
		}
	}
	return nil
}

// AddTrades añade la hoja "Trades" con el blotter.
func (e *ExcelExporter) AddTrades(trades domain.TradeSequence) error {
	sheet, err := e.sheet("Trades")
	if err != nil {
		return fmt.Errorf("report.AddTrades: %w", err)
	}

	header := []any{
		"seq", "entry_time", "entry_spread", "direction", "size",
		"exit_time", "exit_spread", "pnl", "exit_reason",
	}
	if err := e.setRow(sheet, 1, header...); err != nil {
		return fmt.Errorf("report.AddTrades: %w", err)
	}
	for i, tr := range trades {
		row := []any{
			i + 1,
			tr.EntryTime.UTC().Format("2006-01-02 15:04:05"),
			tr.EntrySpread,
			tr.Direction.String(),
			tr.Size,
			tr.ExitTime.UTC().Format("2006-01-02 15:04:05"),
			tr.ExitSpread,
			tr.PnL,
			tr.ExitReason.String(),
		}
		if err := e.setRow(sheet, i+2, row...); err != nil {
			return fmt.Errorf("report.AddTrades: %w", err)
		}
	}
	return nil
}

// AddComparison añade la hoja "Scenarios": una fila por escenario, métricas
// en columnas y el error al final para los fallidos.
func (e *ExcelExporter) AddComparison(cmp domain.ScenarioComparison) error {
	sheet, err := e.sheet("Scenarios")
	if err != nil {
		return fmt.Errorf("report.AddComparison: %w", err)
	}

	names := metricNames()
	header := make([]any, 0, len(names)+2)
	header = append(header, "scenario")
	for _, n := range names {
		header = append(header, n)
	}
	header = append(header, "error")
	if err := e.setRow(sheet, 1, header...); err != nil {
		return fmt.Errorf("report.AddComparison: %w", err)
	}

	for i, res := range cmp.Results() {
		row := make([]any, 0, len(header))
		row = append(row, res.Label)
		if res.Failed() {
			for range names {
				row = append(row, "")
			}
			row = append(row, res.Err.Error())
		} else {
			for _, m := range res.Report.Metrics() {
				row = append(row, m.Value)
			}
			row = append(row, "")
		}
		if err := e.setRow(sheet, i+2, row...); err != nil {
			return fmt.Errorf("report.AddComparison: %w", err)
		}
	}
	return nil
}

// AddForecast añade la hoja "Forecast" con la senda completa.
func (e *ExcelExporter) AddForecast(fc rates.Forecast) error {
	sheet, err := e.sheet("Forecast")
	if err != nil {
		return fmt.Errorf("report.AddForecast: %w", err)
	}

	if err := e.setRow(sheet, 1, "t_years", "p5", "mean", "p95"); err != nil {
		return fmt.Errorf("report.AddForecast: %w", err)
	}
	for i := range fc.Times {
		if err := e.setRow(sheet, i+2, fc.Times[i], fc.P5[i], fc.Mean[i], fc.P95[i]); err != nil {
			return fmt.Errorf("report.AddForecast: %w", err)
		}
	}
	return nil
}

// Save escribe el workbook en disco.
func (e *ExcelExporter) Save(path string) error {
	if err := e.f.SaveAs(path); err != nil {
		return fmt.Errorf("report.Save: %q: %w", path, err)
	}
	return nil
}

// --- helpers ---

// sheet devuelve la hoja pedida: la primera renombra la hoja por defecto del
// workbook, las siguientes se crean.
func (e *ExcelExporter) sheet(name string) (string, error) {
	if e.first {
		e.first = false
		return name, e.f.SetSheetName(e.f.GetSheetName(0), name)
	}
	_, err := e.f.NewSheet(name)
	return name, err
}

// setRow escribe una fila de valores a partir de la columna A.
func (e *ExcelExporter) setRow(sheet string, row int, values ...any) error {
	for i, v := range values {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := e.f.SetCellValue(sheet, fmt.Sprintf("%s%d", col, row), v); err != nil {
			return err
		}
	}
	return nil
}
