package domain

import "time"

// RunRecord es todo lo que persiste de una ejecución del pipeline: la serie
// usada, la configuración serializada, los trades y el informe. El ID lo
// acuña la capa de almacenamiento al guardar.
type RunRecord struct {
	SeriesKey  string
	Label      string
	CreatedAt  time.Time
	ConfigYAML string
	Trades     TradeSequence
	Report     RiskReport
}

// RunSummary es la fila de listado de una ejecución guardada.
type RunSummary struct {
	ID         string
	SeriesKey  string
	Label      string
	CreatedAt  time.Time
	TradeCount int
}
