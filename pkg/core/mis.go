package core

// BalanceHeuristic returns the MIS weight of strategy A against strategy B.
// A delta strategy always wins against a continuous one and never mixes its
// probability mass with a density.
func BalanceHeuristic(pdfA float64, deltaA bool, pdfB float64, deltaB bool) float64 {
	switch {
	case deltaA && !deltaB:
		return 1
	case deltaB && !deltaA:
		return 0
	}
	if pdfA <= 0 {
		return 0
	}
	return pdfA / (pdfA + pdfB)
}
