package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/TUTULEMAN/bond-arbitrage-project/config"
	"github.com/TUTULEMAN/bond-arbitrage-project/internal/adapters/report"
	"github.com/TUTULEMAN/bond-arbitrage-project/internal/adapters/storage"
	"github.com/TUTULEMAN/bond-arbitrage-project/internal/domain"
	"github.com/TUTULEMAN/bond-arbitrage-project/internal/scenario"
)

// backtestOpts agrupa las opciones de salida del modo por defecto.
type backtestOpts struct {
	Label      string
	Save       bool
	Output     string
	ShowTrades bool
	Export     string
}

func runBacktest(ctx context.Context, cfg *config.Config, store *storage.SQLiteStorage, series domain.SpreadSeries, key string, opts backtestOpts) {
	orch, err := scenario.New(cfg.EngineConfig(), cfg.RiskOptions(), cfg.Scenario.Workers)
	if err != nil {
		slog.Error("failed to build pipeline", "err", err)
		os.Exit(1)
	}

	trades, riskReport, err := orch.RunPipeline(series)
	if err != nil {
		slog.Error("backtest failed", "err", err)
		os.Exit(1)
	}
	slog.Info("backtest complete", "trades", len(trades), "total_pnl", trades.TotalPnL())

	label := opts.Label
	if label == "" {
		label = key
	}
	presentReport(label, riskReport, opts.Output)

	if opts.ShowTrades {
		if err := report.NewConsole().ShowTrades(trades); err != nil {
			slog.Warn("trade blotter output failed", "err", err)
		}
	}

	if opts.Save {
		run := domain.RunRecord{
			SeriesKey:  key,
			Label:      opts.Label,
			ConfigYAML: cfg.YAML(),
			Trades:     trades,
			Report:     riskReport,
		}
		id, err := store.SaveRun(ctx, run)
		if err != nil {
			slog.Error("failed to persist run", "err", err)
			os.Exit(1)
		}
		fmt.Printf("\nRun saved: %s\n", id)
	}

	if opts.Export != "" {
		if err := exportBacktest(opts.Export, label, riskReport, trades); err != nil {
			slog.Error("export failed", "err", err, "path", opts.Export)
			return
		}
		slog.Info("results exported", "path", opts.Export)
	}
}

// presentReport imprime el informe en el formato pedido.
func presentReport(label string, riskReport domain.RiskReport, output string) {
	if output == "yaml" {
		if err := report.WriteReportYAML(os.Stdout, label, riskReport); err != nil {
			slog.Warn("yaml output failed", "err", err)
		}
		return
	}
	if err := report.NewConsole().ShowReport(label, riskReport); err != nil {
		slog.Warn("console output failed", "err", err)
	}
}

// exportBacktest escribe informe (y trades, en xlsx) según la extensión.
func exportBacktest(path, label string, riskReport domain.RiskReport, trades domain.TradeSequence) error {
	switch {
	case strings.HasSuffix(path, ".xlsx"):
		ex := report.NewExcelExporter()
		if err := ex.AddReport(label, riskReport); err != nil {
			return err
		}
		if err := ex.AddTrades(trades); err != nil {
			return err
		}
		return ex.Save(path)
	case strings.HasSuffix(path, ".csv"):
		return report.NewCSVExporter().ExportReport(path, label, riskReport)
	default:
		return fmt.Errorf("unsupported extension in %q (want .csv or .xlsx)", path)
	}
}
