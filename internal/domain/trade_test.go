package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func mkTrade(pnl float64, reason ExitReason) Trade {
	return Trade{
		EntryTime:  t0,
		ExitTime:   t0.Add(2 * time.Hour),
		Direction:  Long,
		Size:       1,
		PnL:        pnl,
		ExitReason: reason,
	}
}

func TestTradeSequence_PnLsAndTotal(t *testing.T) {
	ts := TradeSequence{mkTrade(1.5, ExitSignal), mkTrade(-0.5, ExitSignal)}

	assert.Equal(t, []float64{1.5, -0.5}, ts.PnLs())
	assert.InDelta(t, 1.0, ts.TotalPnL(), 1e-12)
}

func TestTradeSequence_ExcludingForced(t *testing.T) {
	ts := TradeSequence{
		mkTrade(1.0, ExitSignal),
		mkTrade(2.0, ExitEndOfData),
	}

	kept := ts.ExcludingForced()
	assert.Len(t, kept, 1)
	assert.Equal(t, 1.0, kept[0].PnL)
}

func TestTradeSequence_WinsLosses(t *testing.T) {
	ts := TradeSequence{mkTrade(1.0, ExitSignal), mkTrade(-1.0, ExitSignal), mkTrade(0.0, ExitSignal)}

	assert.Len(t, ts.Wins(), 1)
	assert.Len(t, ts.Losses(), 2) // PnL 0 cuenta como pérdida
}

func TestTrade_Duration(t *testing.T) {
	tr := mkTrade(0, ExitSignal)
	assert.Equal(t, 2*time.Hour, tr.Duration())
}

func TestDirectionString(t *testing.T) {
	assert.Equal(t, "long", Long.String())
	assert.Equal(t, "short", Short.String())
	assert.Equal(t, "signal", ExitSignal.String())
	assert.Equal(t, "end_of_data", ExitEndOfData.String())
}

func TestParseDirection(t *testing.T) {
	for _, d := range []Direction{Long, Short} {
		got, err := ParseDirection(d.String())
		assert.NoError(t, err)
		assert.Equal(t, d, got)
	}
	_, err := ParseDirection("sideways")
	assert.Error(t, err)
}

func TestParseExitReason(t *testing.T) {
	for _, r := range []ExitReason{ExitSignal, ExitEndOfData} {
		got, err := ParseExitReason(r.String())
		assert.NoError(t, err)
		assert.Equal(t, r, got)
	}
	_, err := ParseExitReason("margin_call")
	assert.Error(t, err)
}
