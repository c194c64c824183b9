package marketdata

// replay.go — re-emisión de una serie histórica a ritmo controlado, para
// alimentar el loop de señales como si llegara en vivo.

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/TUTULEMAN/bond-arbitrage-project/internal/domain"
)

// Replayer emite las observaciones de una serie por un canal, espaciadas por
// un rate limiter en observaciones por segundo.
type Replayer struct {
	series  domain.SpreadSeries
	limiter *rate.Limiter
}

// NewReplayer crea un replayer a perSecond observaciones por segundo.
func NewReplayer(series domain.SpreadSeries, perSecond float64) (*Replayer, error) {
	if perSecond <= 0 {
		return nil, domain.InvalidParameterError{
			Name:   "per_second",
			Value:  perSecond,
			Reason: "replay rate must be > 0",
		}
	}
	return &Replayer{
		series:  series,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
	}, nil
}

// Stream lanza la emisión y devuelve el canal de observaciones. El canal se
// cierra al agotar la serie o al cancelar el contexto.
func (r *Replayer) Stream(ctx context.Context) <-chan domain.SpreadObservation {
	out := make(chan domain.SpreadObservation)
	go func() {
		defer close(out)
		for i := 0; i < r.series.Len(); i++ {
			if err := r.limiter.Wait(ctx); err != nil {
				return
			}
			select {
			case out <- r.series.At(i):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
