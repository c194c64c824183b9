package domain

import "sort"

// Nombres estables de métricas del informe de riesgo. Son las claves del
// formato plano clave→valor que consumen tablas, export y almacenamiento.
const (
	MetricVaRHistorical    = "var_historical"
	MetricVaRGaussian      = "var_gaussian"
	MetricVaRCornishFisher = "var_cornish_fisher"
	MetricCVaR             = "cvar"
	MetricMaxDrawdown      = "max_drawdown"
	MetricDrawdownDuration = "drawdown_duration"
	MetricTimeInDrawdown   = "time_in_drawdown"
	MetricLiquidityVaR     = "liquidity_adjusted_var"
	MetricVaRPctCapital    = "var_pct_capital"
	MetricProfitFactor     = "profit_factor"
	MetricWinRate          = "win_rate"
	MetricSharpe           = "sharpe"
	MetricTotalPnL         = "total_pnl"
	MetricTradeCount       = "trade_count"
	MetricConfidence       = "confidence"
	MetricInitialCapital   = "initial_capital"
)

// RiskReport es el informe de riesgo de una secuencia de trades.
// Todos los VaR siguen la convención de magnitud de pérdida: valores
// positivos = pérdida esperada en la cola; mayor = peor.
type RiskReport struct {
	VaRHistorical    float64 `yaml:"var_historical" json:"var_historical"`
	VaRGaussian      float64 `yaml:"var_gaussian" json:"var_gaussian"`
	VaRCornishFisher float64 `yaml:"var_cornish_fisher" json:"var_cornish_fisher"`
	CVaR             float64 `yaml:"cvar" json:"cvar"`
	MaxDrawdown      float64 `yaml:"max_drawdown" json:"max_drawdown"`
	DrawdownDuration float64 `yaml:"drawdown_duration" json:"drawdown_duration"`
	TimeInDrawdown   float64 `yaml:"time_in_drawdown" json:"time_in_drawdown"`
	LiquidityVaR     float64 `yaml:"liquidity_adjusted_var" json:"liquidity_adjusted_var"`
	VaRPctCapital    float64 `yaml:"var_pct_capital" json:"var_pct_capital"`
	ProfitFactor     float64 `yaml:"profit_factor" json:"profit_factor"`
	WinRate          float64 `yaml:"win_rate" json:"win_rate"`
	Sharpe           float64 `yaml:"sharpe" json:"sharpe"`
	TotalPnL         float64 `yaml:"total_pnl" json:"total_pnl"`
	TradeCount       int     `yaml:"trade_count" json:"trade_count"`
	Confidence       float64 `yaml:"confidence" json:"confidence"`
	InitialCapital   float64 `yaml:"initial_capital" json:"initial_capital"`
}

// Metric es una entrada nombre→valor del informe.
type Metric struct {
	Name  string
	Value float64
}

// Metrics devuelve las métricas en orden estable para render y export.
func (r RiskReport) Metrics() []Metric {
	return []Metric{
		{MetricVaRHistorical, r.VaRHistorical},
		{MetricVaRGaussian, r.VaRGaussian},
		{MetricVaRCornishFisher, r.VaRCornishFisher},
		{MetricCVaR, r.CVaR},
		{MetricMaxDrawdown, r.MaxDrawdown},
		{MetricDrawdownDuration, r.DrawdownDuration},
		{MetricTimeInDrawdown, r.TimeInDrawdown},
		{MetricLiquidityVaR, r.LiquidityVaR},
		{MetricVaRPctCapital, r.VaRPctCapital},
		{MetricProfitFactor, r.ProfitFactor},
		{MetricWinRate, r.WinRate},
		{MetricSharpe, r.Sharpe},
		{MetricTotalPnL, r.TotalPnL},
		{MetricTradeCount, float64(r.TradeCount)},
		{MetricConfidence, r.Confidence},
		{MetricInitialCapital, r.InitialCapital},
	}
}

// Metric devuelve el valor de una métrica por nombre.
func (r RiskReport) Metric(name string) (float64, bool) {
	for _, m := range r.Metrics() {
		if m.Name == name {
			return m.Value, true
		}
	}
	return 0, false
}

// SetMetric fija una métrica por nombre, la inversa de Metrics. Devuelve
// false si el nombre no corresponde a ninguna métrica.
func (r *RiskReport) SetMetric(name string, value float64) bool {
	switch name {
	case MetricVaRHistorical:
		r.VaRHistorical = value
	case MetricVaRGaussian:
		r.VaRGaussian = value
	case MetricVaRCornishFisher:
		r.VaRCornishFisher = value
	case MetricCVaR:
		r.CVaR = value
	case MetricMaxDrawdown:
		r.MaxDrawdown = value
	case MetricDrawdownDuration:
		r.DrawdownDuration = value
	case MetricTimeInDrawdown:
		r.TimeInDrawdown = value
	case MetricLiquidityVaR:
		r.LiquidityVaR = value
	case MetricVaRPctCapital:
		r.VaRPctCapital = value
	case MetricProfitFactor:
		r.ProfitFactor = value
	case MetricWinRate:
		r.WinRate = value
	case MetricSharpe:
		r.Sharpe = value
	case MetricTotalPnL:
		r.TotalPnL = value
	case MetricTradeCount:
		r.TradeCount = int(value)
	case MetricConfidence:
		r.Confidence = value
	case MetricInitialCapital:
		r.InitialCapital = value
	default:
		return false
	}
	return true
}

// ScenarioResult es el resultado de un escenario etiquetado. Un escenario
// fallido conserva su etiqueta y lleva el error en Err.
type ScenarioResult struct {
	Label  string
	Report RiskReport
	Err    error
}

// Failed devuelve true si el escenario terminó en error.
func (r ScenarioResult) Failed() bool { return r.Err != nil }

// ScenarioComparison es una colección ordenada de resultados etiquetados.
// El orden de inserción (= orden de envío de escenarios) se preserva para
// que el layout del informe sea reproducible.
type ScenarioComparison struct {
	results []ScenarioResult
}

// Add añade un resultado al final.
func (c *ScenarioComparison) Add(res ScenarioResult) {
	c.results = append(c.results, res)
}

// Len devuelve el número de escenarios (fallidos incluidos).
func (c ScenarioComparison) Len() int { return len(c.results) }

// Labels devuelve las etiquetas en orden de inserción.
func (c ScenarioComparison) Labels() []string {
	out := make([]string, len(c.results))
	for i, r := range c.results {
		out[i] = r.Label
	}
	return out
}

// Results devuelve una copia de los resultados en orden de inserción.
func (c ScenarioComparison) Results() []ScenarioResult {
	out := make([]ScenarioResult, len(c.results))
	copy(out, c.results)
	return out
}

// Get devuelve el resultado de una etiqueta.
func (c ScenarioComparison) Get(label string) (ScenarioResult, bool) {
	for _, r := range c.results {
		if r.Label == label {
			return r, true
		}
	}
	return ScenarioResult{}, false
}

// OK devuelve los escenarios que terminaron sin error, en orden de inserción.
func (c ScenarioComparison) OK() []ScenarioResult {
	out := make([]ScenarioResult, 0, len(c.results))
	for _, r := range c.results {
		if !r.Failed() {
			out = append(out, r)
		}
	}
	return out
}

// Failed devuelve los escenarios que terminaron en error.
func (c ScenarioComparison) Failed() []ScenarioResult {
	out := make([]ScenarioResult, 0)
	for _, r := range c.results {
		if r.Failed() {
			out = append(out, r)
		}
	}
	return out
}

// RankBy devuelve los escenarios sin error ordenados ascendentemente por la
// métrica dada (orden estable). Escenarios sin esa métrica van al final.
func (c ScenarioComparison) RankBy(metric string) []ScenarioResult {
	ranked := c.OK()
	sort.SliceStable(ranked, func(i, j int) bool {
		vi, oki := ranked[i].Report.Metric(metric)
		vj, okj := ranked[j].Report.Metric(metric)
		if oki != okj {
			return oki
		}
		return vi < vj
	})
	return ranked
}
