package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/TUTULEMAN/bond-arbitrage-project/config"
	"github.com/TUTULEMAN/bond-arbitrage-project/internal/adapters/report"
	"github.com/TUTULEMAN/bond-arbitrage-project/internal/rates"
)

// runRates simula el tipo corto Hull-White y muestra la senda agregada. Con
// curve_csv en la config, θ(t) se calibra a la curva; sin ella usa la θ
// constante configurada.
func runRates(cfg *config.Config, export string) {
	model := cfg.RatesModel()
	if cfg.Rates.CurveCSV != "" {
		curve, err := rates.LoadCurveCSV(cfg.Rates.CurveCSV)
		if err != nil {
			slog.Error("failed to load yield curve", "err", err, "path", cfg.Rates.CurveCSV)
			os.Exit(1)
		}
		model.Curve = curve
		slog.Info("yield curve loaded", "path", cfg.Rates.CurveCSV, "tenors", len(curve.Tenors()))
	}

	simCfg := cfg.RatesSimConfig()
	slog.Info("=== RATES MODE ===",
		"horizon_years", simCfg.Horizon,
		"paths", simCfg.Paths,
		"calibrated", !model.Curve.Empty(),
	)

	fc, err := model.Simulate(simCfg)
	if err != nil {
		slog.Error("simulation failed", "err", err)
		os.Exit(1)
	}

	if err := report.NewConsole().ShowForecast(fc); err != nil {
		slog.Warn("console output failed", "err", err)
	}

	if export != "" {
		if err := exportForecast(export, fc); err != nil {
			slog.Error("export failed", "err", err, "path", export)
			return
		}
		slog.Info("forecast exported", "path", export)
	}
}

func exportForecast(path string, fc rates.Forecast) error {
	switch {
	case strings.HasSuffix(path, ".xlsx"):
		ex := report.NewExcelExporter()
		if err := ex.AddForecast(fc); err != nil {
			return err
		}
		return ex.Save(path)
	case strings.HasSuffix(path, ".csv"):
		return report.NewCSVExporter().ExportForecast(path, fc)
	default:
		return fmt.Errorf("unsupported extension in %q (want .csv or .xlsx)", path)
	}
}
