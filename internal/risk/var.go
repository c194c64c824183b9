package risk

// var.go — Value at Risk con tres estimadores intercambiables.
//
// Convención de signo: el VaR es magnitud de pérdida no negativa. Valor
// positivo = pérdida esperada en la cola al nivel de confianza dado; mayor =
// peor. Una cola rentable (nivel de cola positivo) reporta 0: no hay pérdida
// que cubrir. Los tres métodos y el CVaR comparten la convención para que
// sean directamente comparables y para que un shock adverso nunca pueda
// "mejorar" el VaR medido.

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/TUTULEMAN/bond-arbitrage-project/internal/domain"
)

// Method selecciona el estimador de VaR. El dispatch es por variante
// etiquetada a una función pura por método: añadir un cuarto estimador
// (p.ej. Monte Carlo) es aditivo, no invasivo.
type Method int

const (
	Historical    Method = iota // cuantil empírico, sin supuesto distribucional
	Gaussian                    // ajuste normal: mu + sigma×z
	CornishFisher               // z ajustado por asimetría y curtosis
)

func (m Method) String() string {
	switch m {
	case Historical:
		return "historical"
	case Gaussian:
		return "gaussian"
	case CornishFisher:
		return "cornish_fisher"
	default:
		return "unknown"
	}
}

// ParseMethod mapea el nombre de configuración al estimador.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "historical":
		return Historical, nil
	case "gaussian":
		return Gaussian, nil
	case "cornish_fisher", "cornish-fisher":
		return CornishFisher, nil
	default:
		return 0, domain.InvalidParameterError{Name: "method", Reason: fmt.Sprintf("unknown var method %q", s)}
	}
}

// minGaussian y minCornishFisher son los mínimos de muestras de cada
// estimador; el mínimo del histórico es configurable (Options.MinHistorical).
const (
	minGaussian      = 2
	minCornishFisher = 4
)

// VaR calcula el Value at Risk de los retornos por trade con el método y
// nivel de confianza dados.
func (a *Analyzer) VaR(method Method, confidence float64) (float64, error) {
	if confidence <= 0 || confidence >= 1 {
		return 0, domain.InvalidParameterError{Name: "confidence", Value: confidence, Reason: "must be in (0,1)"}
	}
	switch method {
	case Historical:
		return a.historicalVaR(confidence)
	case Gaussian:
		return a.gaussianVaR(confidence)
	case CornishFisher:
		v, fellBack, err := a.cornishFisherVaR(confidence)
		if err != nil {
			return 0, err
		}
		if fellBack {
			slog.Warn("cornish-fisher var fell back to gaussian",
				"trades", len(a.returns),
				"min", minCornishFisher,
			)
		}
		return v, nil
	default:
		return 0, domain.InvalidParameterError{Name: "method", Value: float64(method), Reason: "unknown var method"}
	}
}

// historicalVaR es el cuantil empírico de los retornos en la cola
// (1-confianza). Sensible al tamaño de muestra: exige MinHistorical trades.
func (a *Analyzer) historicalVaR(confidence float64) (float64, error) {
	if len(a.returns) < a.opts.MinHistorical {
		return 0, domain.InsufficientDataError{
			Op:   "risk.VaR(historical)",
			Need: a.opts.MinHistorical,
			Got:  len(a.returns),
		}
	}
	return lossMagnitude(quantile(a.returns, 1-confidence)), nil
}

// gaussianVaR ajusta una normal a los retornos: mu + sigma×z(1-confianza),
// negado a magnitud de pérdida. Sesgado bajo colas pesadas.
func (a *Analyzer) gaussianVaR(confidence float64) (float64, error) {
	if len(a.returns) < minGaussian {
		return 0, domain.InsufficientDataError{
			Op:   "risk.VaR(gaussian)",
			Need: minGaussian,
			Got:  len(a.returns),
		}
	}
	mu := mean(a.returns)
	sigma := popStd(a.returns)
	return lossMagnitude(mu + sigma*normalQuantile(1-confidence)), nil
}

// cornishFisherVaR corrige el z gaussiano con la asimetría s y el exceso de
// curtosis k muestrales:
//
//	z_cf = z + (z²-1)s/6 + (z³-3z)k/24 - (2z³-5z)s²/36
//
// Con menos de minCornishFisher trades la curtosis no es estimable y cae a
// gaussiano (señal de aviso, no error duro; el mínimo gaussiano sí aplica).
func (a *Analyzer) cornishFisherVaR(confidence float64) (value float64, fellBack bool, err error) {
	if len(a.returns) < minCornishFisher {
		v, err := a.gaussianVaR(confidence)
		return v, true, err
	}
	s := skewness(a.returns)
	k := excessKurtosis(a.returns)
	z := normalQuantile(1 - confidence)
	zcf := z + (z*z-1)*s/6 + (z*z*z-3*z)*k/24 - (2*z*z*z-5*z)*s*s/36

	mu := mean(a.returns)
	sigma := popStd(a.returns)
	return lossMagnitude(mu + sigma*zcf), false, nil
}

// CVaR (expected shortfall): media de los retornos en la cola por debajo del
// cuantil histórico, negada a magnitud de pérdida.
func (a *Analyzer) CVaR(confidence float64) (float64, error) {
	if confidence <= 0 || confidence >= 1 {
		return 0, domain.InvalidParameterError{Name: "confidence", Value: confidence, Reason: "must be in (0,1)"}
	}
	if len(a.returns) < a.opts.MinHistorical {
		return 0, domain.InsufficientDataError{
			Op:   "risk.CVaR",
			Need: a.opts.MinHistorical,
			Got:  len(a.returns),
		}
	}
	q := quantile(a.returns, 1-confidence)
	var sum float64
	var n int
	for _, r := range a.returns {
		if r <= q {
			sum += r
			n++
		}
	}
	return lossMagnitude(sum / float64(n)), nil
}

// lossMagnitude convierte un nivel de cola con signo (retorno) en magnitud
// de pérdida no negativa: una cola rentable no deja pérdida que cubrir.
func lossMagnitude(tail float64) float64 {
	if tail > 0 {
		return 0
	}
	return -tail
}

// --- estadística ---

// quantile devuelve el cuantil q (en [0,1]) con interpolación lineal entre
// observaciones ordenadas.
func quantile(xs []float64, q float64) float64 {
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// normalQuantile es la inversa de la CDF normal estándar.
func normalQuantile(p float64) float64 {
	return math.Sqrt2 * math.Erfinv(2*p-1)
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// popStd es la desviación típica poblacional (divide por n).
func popStd(xs []float64) float64 {
	return math.Sqrt(moment(xs, 2))
}

// sampleStd es la desviación típica muestral (divide por n-1).
func sampleStd(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	mu := mean(xs)
	var sum float64
	for _, x := range xs {
		d := x - mu
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)-1))
}

// skewness es la asimetría muestral m3/m2^1.5. 0 si la varianza es nula.
func skewness(xs []float64) float64 {
	m2 := moment(xs, 2)
	if m2 == 0 {
		return 0
	}
	return moment(xs, 3) / math.Pow(m2, 1.5)
}

// excessKurtosis es la curtosis m4/m2² menos la normal (3). 0 si la
// varianza es nula.
func excessKurtosis(xs []float64) float64 {
	m2 := moment(xs, 2)
	if m2 == 0 {
		return 0
	}
	return moment(xs, 4)/(m2*m2) - 3
}

// moment es el momento central poblacional de orden k.
func moment(xs []float64, k int) float64 {
	if len(xs) == 0 {
		return 0
	}
	mu := mean(xs)
	var sum float64
	for _, x := range xs {
		sum += math.Pow(x-mu, float64(k))
	}
	return sum / float64(len(xs))
}
