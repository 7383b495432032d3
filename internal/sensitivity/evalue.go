package sensitivity

import (
	"fmt"
	"math"
)

// EValueResult carries E-value output for reports: the point E-value and,
// when a confidence interval was supplied, the E-value for the limit closest
// to the null.
type EValueResult struct {
	RiskRatio float64 `json:"risk_ratio"`
	Point     float64 `json:"point"`
	CI        float64 `json:"ci,omitempty"`
}

// EValue returns the minimum strength of association, on the risk-ratio
// scale, that an unmeasured confounder would need with both treatment and
// outcome to fully explain away an observed risk ratio. Closed form:
// RR + sqrt(RR·(RR−1)). Protective ratios (RR < 1) are inverted first, so
// EValue(0.5) == EValue(2.0). A null ratio of 1 needs no confounding and
// yields 1.
func EValue(riskRatio float64) (float64, error) {
	if riskRatio <= 0 || math.IsNaN(riskRatio) || math.IsInf(riskRatio, 0) {
		return 0, fmt.Errorf("sensitivity: risk ratio must be a positive finite number, got %v", riskRatio)
	}
	rr := riskRatio
	if rr < 1 {
		rr = 1 / rr
	}
	return rr + math.Sqrt(rr*(rr-1)), nil
}

// EValueForCI also bounds the confounding needed to move the confidence
// limit closest to the null to 1. If the interval already covers the null
// the CI E-value is 1.
func EValueForCI(riskRatio, ciLower, ciUpper float64) (point, ci float64, err error) {
	point, err = EValue(riskRatio)
	if err != nil {
		return 0, 0, err
	}
	limit := ciLower
	if riskRatio < 1 {
		limit = ciUpper
	}
	if (riskRatio >= 1 && limit <= 1) || (riskRatio < 1 && limit >= 1) {
		return point, 1, nil
	}
	ci, err = EValue(limit)
	if err != nil {
		return 0, 0, err
	}
	return point, ci, nil
}
