package risk

// liquidity.go — ajuste de liquidez del VaR.
//
// Un libro poco profundo convierte drawdown en coste de salida: el VaR base
// se empeora con haircut × max_drawdown. Con la convención de magnitud de
// pérdida, empeorar suma:
//
//	lvar = var_base + haircut × max_drawdown
//
// haircut 0 deja el VaR base; haircut 1 lo carga con todo el drawdown.

import "github.com/TUTULEMAN/bond-arbitrage-project/internal/domain"

// LiquidityAdjust aplica el haircut de liquidez a un VaR base.
func LiquidityAdjust(baseVaR, maxDrawdown, haircut float64) (float64, error) {
	if haircut < 0 || haircut > 1 {
		return 0, domain.InvalidParameterError{Name: "haircut", Value: haircut, Reason: "must be in [0,1]"}
	}
	if maxDrawdown < 0 {
		return 0, domain.InvalidParameterError{Name: "max_drawdown", Value: maxDrawdown, Reason: "must be >= 0"}
	}
	return baseVaR + haircut*maxDrawdown, nil
}

// LiquidityAdjustedVaR ajusta el VaR histórico del analizador con el haircut
// dado, sobre el max_drawdown de su curva de equity.
func (a *Analyzer) LiquidityAdjustedVaR(haircut float64) (float64, error) {
	base, err := a.VaR(Historical, a.opts.Confidence)
	if err != nil {
		return 0, err
	}
	return LiquidityAdjust(base, a.Drawdowns().MaxDrawdown, haircut)
}
