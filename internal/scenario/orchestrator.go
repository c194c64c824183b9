package scenario

// orchestrator.go — fan-out de escenarios sobre el pipeline backtest+riesgo.
//
// Cada escenario (shock de estrés o ventana de régimen) es una tarea
// independiente: comparte solo la serie base de lectura y produce su propio
// ScenarioResult. Un worker pool de tamaño fijo ejecuta las tareas y escribe
// cada resultado en el slot de su orden de envío, así el orden del
// ScenarioComparison final no depende del orden de terminación.
//
// Un escenario fallido no aborta la comparación: su error queda registrado
// bajo la etiqueta y el resto de escenarios continúa.

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/TUTULEMAN/bond-arbitrage-project/internal/backtest"
	"github.com/TUTULEMAN/bond-arbitrage-project/internal/domain"
	"github.com/TUTULEMAN/bond-arbitrage-project/internal/risk"
)

// RegimeWindow es una ventana temporal etiquetada [From, To) sobre la serie
// histórica. Las ventanas pueden solaparse o dejar huecos entre sí.
type RegimeWindow struct {
	Label string
	From  time.Time
	To    time.Time
}

// Orchestrator ejecuta el pipeline completo bajo variantes de la serie base.
type Orchestrator struct {
	engine  backtest.Config
	opts    risk.Options
	workers int
}

// New construye el orquestador validando ambas configuraciones una sola vez.
// Si workers <= 0 usa runtime.NumCPU().
func New(engineCfg backtest.Config, riskOpts risk.Options, workers int) (*Orchestrator, error) {
	if err := engineCfg.Validate(); err != nil {
		return nil, fmt.Errorf("scenario.New: engine config: %w", err)
	}
	if err := riskOpts.Validate(); err != nil {
		return nil, fmt.Errorf("scenario.New: risk options: %w", err)
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Orchestrator{engine: engineCfg, opts: riskOpts, workers: workers}, nil
}

// RunPipeline ejecuta backtest + análisis de riesgo sobre una serie y
// devuelve los trades y el informe. Es el cuerpo de cada escenario y también
// la vía de un backtest suelto.
func (o *Orchestrator) RunPipeline(series domain.SpreadSeries) (domain.TradeSequence, domain.RiskReport, error) {
	trades, err := backtest.Run(series, o.engine)
	if err != nil {
		return nil, domain.RiskReport{}, fmt.Errorf("scenario.RunPipeline: backtest: %w", err)
	}
	analyzer, err := risk.NewAnalyzer(trades, o.opts)
	if err != nil {
		return nil, domain.RiskReport{}, fmt.Errorf("scenario.RunPipeline: analyzer: %w", err)
	}
	report, err := analyzer.Report()
	if err != nil {
		return nil, domain.RiskReport{}, fmt.Errorf("scenario.RunPipeline: report: %w", err)
	}
	return trades, report, nil
}

// RunStressScenarios re-ejecuta el pipeline con la serie escalada por
// (1+shock) para cada shock, etiquetando cada resultado con el shock en
// porcentaje ("+5%", "-10%"). El orden de los resultados es el de shocks.
func (o *Orchestrator) RunStressScenarios(ctx context.Context, series domain.SpreadSeries, shocks []float64) domain.ScenarioComparison {
	tasks := make([]scenarioTask, len(shocks))
	for i, shock := range shocks {
		factor := 1 + shock
		tasks[i] = scenarioTask{
			label: shockLabel(shock),
			build: func() (domain.SpreadSeries, error) {
				return series.Scale(factor), nil
			},
		}
	}
	return o.runScenarios(ctx, tasks)
}

// CompareRegimes ejecuta el pipeline sobre cada ventana etiquetada de la
// serie histórica. Una ventana sin observaciones registra EmptyWindowError
// bajo su etiqueta; las demás ventanas no se ven afectadas.
func (o *Orchestrator) CompareRegimes(ctx context.Context, series domain.SpreadSeries, windows []RegimeWindow) domain.ScenarioComparison {
	tasks := make([]scenarioTask, len(windows))
	for i, w := range windows {
		tasks[i] = scenarioTask{
			label: w.Label,
			build: func() (domain.SpreadSeries, error) {
				sliced := series.Window(w.From, w.To)
				if sliced.Len() == 0 {
					return domain.SpreadSeries{}, domain.EmptyWindowError{Label: w.Label}
				}
				return sliced, nil
			},
		}
	}
	return o.runScenarios(ctx, tasks)
}

// scenarioTask es una unidad de fan-out: etiqueta + constructor de su serie.
type scenarioTask struct {
	label string
	build func() (domain.SpreadSeries, error)
}

// runScenarios ejecuta las tareas en un worker pool y ensambla la comparación
// en orden de envío. Cada worker escribe en el slot indexado de su tarea, sin
// estado mutable compartido entre escenarios.
func (o *Orchestrator) runScenarios(ctx context.Context, tasks []scenarioTask) domain.ScenarioComparison {
	type work struct {
		idx  int
		task scenarioTask
	}

	workCh := make(chan work, len(tasks))
	results := make([]domain.ScenarioResult, len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < o.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for w := range workCh {
				results[w.idx] = o.runOne(ctx, w.task)
			}
		}()
	}

	for i, task := range tasks {
		workCh <- work{idx: i, task: task}
	}
	close(workCh)
	wg.Wait()

	var cmp domain.ScenarioComparison
	for _, res := range results {
		if res.Failed() {
			slog.Warn("scenario failed", "label", res.Label, "err", res.Err)
		}
		cmp.Add(res)
	}

	slog.Debug("scenario fan-out complete",
		"scenarios", len(tasks),
		"failed", len(cmp.Failed()),
		"workers", o.workers,
	)
	return cmp
}

// runOne ejecuta un escenario. Si el contexto ya está cancelado el escenario
// no arranca y queda registrado con ctx.Err().
func (o *Orchestrator) runOne(ctx context.Context, t scenarioTask) domain.ScenarioResult {
	if err := ctx.Err(); err != nil {
		return domain.ScenarioResult{Label: t.label, Err: err}
	}
	series, err := t.build()
	if err != nil {
		return domain.ScenarioResult{Label: t.label, Err: err}
	}
	_, report, err := o.RunPipeline(series)
	if err != nil {
		return domain.ScenarioResult{Label: t.label, Err: err}
	}
	return domain.ScenarioResult{Label: t.label, Report: report}
}

// shockLabel formatea un shock fraccional como etiqueta en porcentaje.
func shockLabel(shock float64) string {
	pct := strconv.FormatFloat(shock*100, 'f', -1, 64)
	if shock >= 0 {
		return "+" + pct + "%"
	}
	return pct + "%"
}
