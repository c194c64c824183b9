package risk

// drawdown.go — análisis de drawdowns sobre la curva de equity por trade.
//
// La curva arranca en el capital inicial y añade un punto por trade cerrado.
// Un episodio de drawdown es una racha de puntos por debajo del pico previo;
// se completa cuando el equity recupera el pico. Los episodios aún abiertos
// al final de la curva quedan fuera de la duración media.

// DrawdownStats son las métricas de drawdown de la curva de equity.
type DrawdownStats struct {
	MaxDrawdown    float64 // mayor caída pico-valle relativa; 0 si la curva no decrece
	AvgDuration    float64 // periodos medios bajo el pico por episodio completado
	Episodes       int     // episodios completados
	TimeInDrawdown float64 // fracción de periodos bajo el pico previo
}

// Drawdowns recorre la curva de equity con máximo móvil y devuelve las
// métricas de drawdown. Determinista y sin efectos.
func (a *Analyzer) Drawdowns() DrawdownStats {
	peak := a.equity[0]
	var (
		maxDD       float64
		running     int // longitud del episodio en curso
		belowTotal  int
		completed   int
		durationSum int
	)
	for _, v := range a.equity[1:] {
		if v >= peak {
			if running > 0 {
				completed++
				durationSum += running
				running = 0
			}
			peak = v
			continue
		}
		running++
		belowTotal++
		if peak > 0 {
			if dd := (peak - v) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}

	stats := DrawdownStats{MaxDrawdown: maxDD, Episodes: completed}
	if completed > 0 {
		stats.AvgDuration = float64(durationSum) / float64(completed)
	}
	if periods := len(a.equity) - 1; periods > 0 {
		stats.TimeInDrawdown = float64(belowTotal) / float64(periods)
	}
	return stats
}
