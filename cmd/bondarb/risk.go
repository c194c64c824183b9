package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/TUTULEMAN/bond-arbitrage-project/config"
	"github.com/TUTULEMAN/bond-arbitrage-project/internal/adapters/storage"
	"github.com/TUTULEMAN/bond-arbitrage-project/internal/risk"
)

// runRisk recalcula el informe de riesgo de un run persistido a partir de
// sus trades, con las opciones de riesgo actuales de la config.
func runRisk(ctx context.Context, cfg *config.Config, store *storage.SQLiteStorage, runID, output, export string) {
	if runID == "" {
		slog.Error("-risk requires -run <id>, use -list to see stored runs")
		os.Exit(1)
	}

	trades, err := store.LoadTrades(ctx, runID)
	if err != nil {
		slog.Error("failed to load trades", "err", err, "run", runID)
		os.Exit(1)
	}
	slog.Info("=== RISK MODE ===", "run", runID, "trades", len(trades))

	analyzer, err := risk.NewAnalyzer(trades, cfg.RiskOptions())
	if err != nil {
		slog.Error("failed to build analyzer", "err", err)
		os.Exit(1)
	}
	riskReport, err := analyzer.Report()
	if err != nil {
		slog.Error("risk analysis failed", "err", err, "run", runID)
		os.Exit(1)
	}

	label := runID
	if len(label) > 8 {
		label = label[:8]
	}
	presentReport(label, riskReport, output)

	if export != "" {
		if err := exportBacktest(export, label, riskReport, trades); err != nil {
			slog.Error("export failed", "err", err, "path", export)
			return
		}
		slog.Info("results exported", "path", export)
	}
}

// runList imprime los runs persistidos, el más reciente primero.
func runList(ctx context.Context, store *storage.SQLiteStorage) {
	runs, err := store.ListRuns(ctx)
	if err != nil {
		slog.Error("failed to list runs", "err", err)
		os.Exit(1)
	}
	if len(runs) == 0 {
		fmt.Println("No stored runs.")
		return
	}

	fmt.Printf("\n── STORED RUNS (%d) ──\n", len(runs))
	fmt.Printf("  %-36s %-19s %-16s %6s  %s\n", "ID", "CREATED", "SERIES", "TRADES", "LABEL")
	for _, r := range runs {
		fmt.Printf("  %-36s %-19s %-16s %6d  %s\n",
			r.ID,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.SeriesKey,
			r.TradeCount,
			r.Label,
		)
	}
	fmt.Println()
}
