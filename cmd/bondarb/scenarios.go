package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/TUTULEMAN/bond-arbitrage-project/config"
	"github.com/TUTULEMAN/bond-arbitrage-project/internal/adapters/report"
	"github.com/TUTULEMAN/bond-arbitrage-project/internal/domain"
	"github.com/TUTULEMAN/bond-arbitrage-project/internal/scenario"
)

func runStress(ctx context.Context, cfg *config.Config, series domain.SpreadSeries, shocksFlag, output, export string) {
	shocks, err := parseShocks(shocksFlag)
	if err != nil {
		slog.Error("invalid -stress value", "err", err, "value", shocksFlag)
		os.Exit(1)
	}
	if len(shocks) == 0 {
		shocks = cfg.Scenario.Shocks
	}
	if len(shocks) == 0 {
		slog.Error("no shocks given and none configured")
		os.Exit(1)
	}

	orch := newOrchestrator(cfg)
	slog.Info("=== STRESS MODE ===", "scenarios", len(shocks), "workers", cfg.Scenario.Workers)

	cmp := orch.RunStressScenarios(ctx, series, shocks)
	presentComparison(cmp, output)
	exportComparison(export, cmp)
}

func runRegimes(ctx context.Context, cfg *config.Config, series domain.SpreadSeries, output, export string) {
	windows, err := cfg.RegimeWindows()
	if err != nil {
		slog.Error("invalid regime windows", "err", err)
		os.Exit(1)
	}
	if len(windows) == 0 {
		slog.Error("no regime windows configured, add scenario.regimes to the config file")
		os.Exit(1)
	}

	orch := newOrchestrator(cfg)
	slog.Info("=== REGIME MODE ===", "windows", len(windows), "workers", cfg.Scenario.Workers)

	cmp := orch.CompareRegimes(ctx, series, windows)
	presentComparison(cmp, output)
	exportComparison(export, cmp)
}

// --- helpers ---

func newOrchestrator(cfg *config.Config) *scenario.Orchestrator {
	orch, err := scenario.New(cfg.EngineConfig(), cfg.RiskOptions(), cfg.Scenario.Workers)
	if err != nil {
		slog.Error("failed to build pipeline", "err", err)
		os.Exit(1)
	}
	return orch
}

// parseShocks convierte "0.05,-0.05" en desplazamientos relativos.
func parseShocks(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	shocks := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("shock %q: %w", p, err)
		}
		shocks = append(shocks, v)
	}
	return shocks, nil
}

func presentComparison(cmp domain.ScenarioComparison, output string) {
	if output == "yaml" {
		if err := report.WriteComparisonYAML(os.Stdout, cmp); err != nil {
			slog.Warn("yaml output failed", "err", err)
		}
		return
	}
	if err := report.NewConsole().ShowComparison(cmp); err != nil {
		slog.Warn("console output failed", "err", err)
	}
}

func exportComparison(path string, cmp domain.ScenarioComparison) {
	if path == "" {
		return
	}
	var err error
	switch {
	case strings.HasSuffix(path, ".xlsx"):
		ex := report.NewExcelExporter()
		if err = ex.AddComparison(cmp); err == nil {
			err = ex.Save(path)
		}
	case strings.HasSuffix(path, ".csv"):
		err = report.NewCSVExporter().ExportComparison(path, cmp)
	default:
		err = fmt.Errorf("unsupported extension in %q (want .csv or .xlsx)", path)
	}
	if err != nil {
		slog.Error("export failed", "err", err, "path", path)
		return
	}
	slog.Info("comparison exported", "path", path)
}
