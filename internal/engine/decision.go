package engine

// Decision is one player input for a turn. Action is required; everything
// else is scenario-specific and optional. Unknown action strings are
// accepted and become no-op turns, never errors.
type Decision struct {
	Action     string   `json:"action"`
	Amount     float64  `json:"amount,omitempty"`
	Sources    []string `json:"sources,omitempty"`    // investment: information-source tags
	Estimation *float64 `json:"estimation,omitempty"` // investment: player's compound-growth guess
	Confidence string   `json:"confidence,omitempty"` // optional self-declared confidence
}

// amount returns the decision amount floored at zero. Negative amounts
// are treated as zero rather than rejected.
func (d Decision) amount() float64 {
	if d.Amount < 0 {
		return 0
	}
	return d.Amount
}

// HighConfidence reports whether the player declared high confidence on
// this decision.
func (d Decision) HighConfidence() bool {
	switch d.Confidence {
	case "high", "very_high", "certain":
		return true
	}
	return false
}
