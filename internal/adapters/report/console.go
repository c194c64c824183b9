package report

// console.go — render de informes, comparaciones, blotter y forecast a
// tablas de texto.

import (
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"

	"github.com/TUTULEMAN/bond-arbitrage-project/internal/domain"
	"github.com/TUTULEMAN/bond-arbitrage-project/internal/rates"
)

// Console implementa ports.Presenter.
type Console struct {
	out io.Writer
}

// NewConsole crea un presenter que escribe a stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWriter crea un presenter para tests.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// ShowReport imprime las métricas del informe como tabla metric/value.
func (c *Console) ShowReport(label string, report domain.RiskReport) error {
	fmt.Fprintf(c.out, "\n=== RISK REPORT — %s (VaR %.0f%%) ===\n", label, report.Confidence*100)

	table := tablewriter.NewWriter(c.out)
	table.Header("Metric", "Value")
	for _, m := range report.Metrics() {
		table.Append(m.Name, metricValue(m.Name, m.Value))
	}
	table.Render()

	fmt.Fprintln(c.out, "  VaR/CVaR = magnitud de pérdida sobre retornos por trade | mayor = peor")
	fmt.Fprintln(c.out, "  drawdown_duration en trades | time_in_drawdown y win_rate en fracción")
	return nil
}

// ShowComparison imprime los escenarios lado a lado. Los fallidos no entran
// en la tabla: se listan debajo con su error.
func (c *Console) ShowComparison(cmp domain.ScenarioComparison) error {
	failed := cmp.Failed()
	fmt.Fprintf(c.out, "\n=== SCENARIOS — %d total, %d fallidos ===\n", cmp.Len(), len(failed))

	ok := cmp.OK()
	if len(ok) > 0 {
		table := tablewriter.NewWriter(c.out)
		table.Header("Scenario", "VaR hist", "VaR gauss", "VaR CF", "CVaR", "MaxDD", "Sharpe", "PF", "Win", "PnL")
		for _, res := range ok {
			r := res.Report
			table.Append(
				res.Label,
				fmt.Sprintf("%.4f", r.VaRHistorical),
				fmt.Sprintf("%.4f", r.VaRGaussian),
				fmt.Sprintf("%.4f", r.VaRCornishFisher),
				fmt.Sprintf("%.4f", r.CVaR),
				fmt.Sprintf("%.4f", r.MaxDrawdown),
				fmt.Sprintf("%.4f", r.Sharpe),
				fmt.Sprintf("%.2f", r.ProfitFactor),
				fmt.Sprintf("%.0f%%", r.WinRate*100),
				fmt.Sprintf("%.4f", r.TotalPnL),
			)
		}
		table.Render()
	}

	for _, res := range failed {
		fmt.Fprintf(c.out, "  !! %s: %v\n", res.Label, res.Err)
	}
	return nil
}

// ShowTrades imprime el blotter en orden de entrada.
func (c *Console) ShowTrades(trades domain.TradeSequence) error {
	if len(trades) == 0 {
		fmt.Fprintln(c.out, "\n  No trades.")
		return nil
	}

	fmt.Fprintf(c.out, "\n=== TRADES — %d ===\n", len(trades))

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Entry", "Exit", "Dir", "Size", "Entry@", "Exit@", "PnL", "Reason")
	for i, tr := range trades {
		table.Append(
			fmt.Sprintf("%d", i+1),
			tr.EntryTime.Format("2006-01-02 15:04"),
			tr.ExitTime.Format("2006-01-02 15:04"),
			tr.Direction.String(),
			fmt.Sprintf("%.2f", tr.Size),
			fmt.Sprintf("%.4f", tr.EntrySpread),
			fmt.Sprintf("%.4f", tr.ExitSpread),
			fmt.Sprintf("%.4f", tr.PnL),
			tr.ExitReason.String(),
		)
	}
	table.Render()

	fmt.Fprintf(c.out, "  PnL total: %.4f | ganadores: %d/%d\n",
		trades.TotalPnL(), len(trades.Wins()), len(trades))
	return nil
}

// ShowForecast imprime la senda media con la banda P5-P95, muestreada para
// que quepa en pantalla.
func (c *Console) ShowForecast(fc rates.Forecast) error {
	if len(fc.Times) == 0 {
		fmt.Fprintln(c.out, "\n  No forecast data.")
		return nil
	}

	fmt.Fprintf(c.out, "\n=== HULL-WHITE FORECAST — %d pasos ===\n", fc.Steps())

	table := tablewriter.NewWriter(c.out)
	table.Header("T (años)", "P5", "Media", "P95")
	for _, i := range sampleIndices(len(fc.Times), 13) {
		table.Append(
			fmt.Sprintf("%.2f", fc.Times[i]),
			fmt.Sprintf("%.4f", fc.P5[i]),
			fmt.Sprintf("%.4f", fc.Mean[i]),
			fmt.Sprintf("%.4f", fc.P95[i]),
		)
	}
	table.Render()

	fmt.Fprintf(c.out, "  Tipo terminal medio: %.4f (%.2f%%)\n", fc.Terminal, fc.Terminal*100)
	return nil
}

// --- helpers ---

// metricValue formatea el valor de una métrica según su nombre.
func metricValue(name string, value float64) string {
	if name == domain.MetricTradeCount {
		return fmt.Sprintf("%d", int(value))
	}
	return fmt.Sprintf("%.4f", value)
}

// sampleIndices devuelve hasta k índices equiespaciados de [0, n), siempre
// con el primero y el último.
func sampleIndices(n, k int) []int {
	if n <= k {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}
	out := make([]int, k)
	for i := 0; i < k; i++ {
		out[i] = i * (n - 1) / (k - 1)
	}
	return out
}
