package domain

import "fmt"

// Errores tipados del núcleo. Todos son recuperables: el orquestador los
// registra por escenario y sigue; ninguna llamada tumba el proceso.

// InsufficientDataError indica que una serie u observaciones de trades no
// alcanzan el mínimo para calcular lo pedido.
type InsufficientDataError struct {
	Op   string // operación que falló ("strategy.GenerateSignals", "risk.VaR", ...)
	Need int    // mínimo requerido
	Got  int    // elementos disponibles
}

func (e InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: insufficient data: need %d, got %d", e.Op, e.Need, e.Got)
}

// InvalidConfigError indica parámetros de estrategia mal formados.
type InvalidConfigError struct {
	Field  string
	Reason string
}

func (e InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s: %s", e.Field, e.Reason)
}

// InvalidParameterError indica un parámetro de análisis fuera de rango
// (haircut, confidence, valores no finitos...).
type InvalidParameterError struct {
	Name   string
	Value  float64
	Reason string
}

func (e InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%g: %s", e.Name, e.Value, e.Reason)
}

// EmptyWindowError indica que una ventana de régimen no contiene observaciones.
type EmptyWindowError struct {
	Label string
}

func (e EmptyWindowError) Error() string {
	return fmt.Sprintf("regime window %q: no observations in range", e.Label)
}
