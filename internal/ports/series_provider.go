package ports

import (
	"context"

	"github.com/TUTULEMAN/bond-arbitrage-project/internal/domain"
)

// SeriesProvider obtiene una serie de spreads lista para el backtester.
type SeriesProvider interface {
	// FetchSeries devuelve la serie identificada por key, ordenada por
	// timestamp ascendente. Qué significa key depende del adaptador:
	// ruta de fichero para CSV, nombre de perfil para el simulador,
	// clave de serie para la base de datos.
	FetchSeries(ctx context.Context, key string) (domain.SpreadSeries, error)
}
