package ports

import (
	"context"

	"github.com/TUTULEMAN/bond-arbitrage-project/internal/domain"
)

// Storage persiste series de spreads y ejecuciones completas del pipeline.
type Storage interface {
	// SaveSeries guarda la serie bajo la clave dada, reemplazando
	// cualquier versión anterior con la misma clave.
	SaveSeries(ctx context.Context, key string, series domain.SpreadSeries) error

	// LoadSeries recupera una serie guardada, ordenada por timestamp.
	LoadSeries(ctx context.Context, key string) (domain.SpreadSeries, error)

	// SaveRun persiste una ejecución (trades e informe incluidos) y
	// devuelve el ID acuñado para ella.
	SaveRun(ctx context.Context, run domain.RunRecord) (string, error)

	// LoadTrades devuelve los trades de una ejecución guardada.
	LoadTrades(ctx context.Context, runID string) (domain.TradeSequence, error)

	// LoadReport devuelve el informe de riesgo de una ejecución guardada.
	LoadReport(ctx context.Context, runID string) (domain.RiskReport, error)

	// ListRuns devuelve los resúmenes de todas las ejecuciones, la más
	// reciente primero.
	ListRuns(ctx context.Context) ([]domain.RunSummary, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
