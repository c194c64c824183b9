package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/TUTULEMAN/bond-arbitrage-project/config"
	"github.com/TUTULEMAN/bond-arbitrage-project/internal/adapters/marketdata"
	"github.com/TUTULEMAN/bond-arbitrage-project/internal/domain"
	"github.com/TUTULEMAN/bond-arbitrage-project/internal/strategy"
)

// runReplay reproduce la serie a ritmo acotado y loggea cada señal como lo
// haría una sesión en vivo. Las señales se calculan sobre la serie completa
// antes de emitir; el modelo es causal, así que coinciden una a una con lo
// que vería un consumidor incremental.
func runReplay(ctx context.Context, cfg *config.Config, series domain.SpreadSeries, perSecond float64) {
	points, err := strategy.GenerateSignals(series, cfg.SignalConfig())
	if err != nil {
		slog.Error("signal generation failed", "err", err)
		os.Exit(1)
	}

	replayer, err := marketdata.NewReplayer(series, perSecond)
	if err != nil {
		slog.Error("invalid replay rate", "err", err)
		os.Exit(1)
	}

	slog.Info("=== REPLAY MODE ===", "observations", series.Len(), "per_second", perSecond)

	delivered := 0
	for obs := range replayer.Stream(ctx) {
		p := points[delivered]
		delivered++

		switch p.Signal {
		case strategy.SignalEnterLong, strategy.SignalEnterShort, strategy.SignalExit:
			slog.Info("signal",
				"time", obs.Time.Format("2006-01-02"),
				"spread", obs.Spread,
				"signal", p.Signal.String(),
				"z", p.Z,
			)
		default:
			slog.Debug("tick",
				"time", obs.Time.Format("2006-01-02"),
				"spread", obs.Spread,
				"z", p.Z,
			)
		}
	}

	if ctx.Err() != nil {
		slog.Info("replay interrupted", "delivered", delivered)
		return
	}
	slog.Info("replay complete", "delivered", delivered)
}
