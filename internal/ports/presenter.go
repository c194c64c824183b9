package ports

import (
	"github.com/TUTULEMAN/bond-arbitrage-project/internal/domain"
	"github.com/TUTULEMAN/bond-arbitrage-project/internal/rates"
)

// Presenter muestra los resultados del pipeline al usuario.
type Presenter interface {
	// ShowReport muestra las métricas de un informe de riesgo.
	// En la implementación de consola, imprime una tabla formateada.
	ShowReport(label string, report domain.RiskReport) error

	// ShowComparison muestra varios escenarios lado a lado, con los
	// que fallaron listados aparte.
	ShowComparison(cmp domain.ScenarioComparison) error

	// ShowTrades muestra el blotter de trades en orden de entrada.
	ShowTrades(trades domain.TradeSequence) error

	// ShowForecast muestra la senda media y la banda P5-P95 de la
	// simulación de tipos.
	ShowForecast(fc rates.Forecast) error
}
