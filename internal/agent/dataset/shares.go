package dataset

import "math"

// Fixed funding split of the total budget.
const (
	EnterprisePercent = 76.9
	GovernmentPercent = 23.1
)

// Shares is the derived split of a total budget. Never stored.
type Shares struct {
	Enterprise float64 `json:"enterprise"`
	Government float64 `json:"government"`
}

// DeriveShares rounds the first share half-up and assigns the remainder to the
// second, so the two always add up to total exactly. pctB documents the
// intended split only.
func DeriveShares(total, pctA, pctB float64) (shareA, shareB float64) {
	shareA = math.Floor(total*(pctA/100) + 0.5)
	shareB = total - shareA
	return shareA, shareB
}

// SharesOf applies the fixed funding split to total.
func SharesOf(total float64) Shares {
	a, b := DeriveShares(total, EnterprisePercent, GovernmentPercent)
	return Shares{Enterprise: a, Government: b}
}
