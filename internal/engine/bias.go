package engine

// Bias tags are the closed set of cognitive patterns the detector can
// name. Each carries a canonical explanation and counter-strategy in the
// feedback template table.
type Bias string

const (
	BiasLinearThinking   Bias = "linear_thinking"
	BiasExponential      Bias = "exponential_misconception"
	BiasCompoundInterest Bias = "compound_interest_underestimation"
	BiasConfirmation     Bias = "confirmation_bias"
	BiasAnchoring        Bias = "anchoring"
	BiasShortTerm        Bias = "short_term_bias"
	BiasOverconfidence   Bias = "overconfidence"
)

// Detection is one newly spotted bias with the history turns that
// demonstrate it. Evidence is never empty and every entry is a real turn.
type Detection struct {
	Bias     Bias  `json:"bias"`
	Evidence []int `json:"evidence_turns"`
}

// Detect scans the history plus the just-completed turn and returns the
// biases that are newly visible. Tags already attached to an earlier
// record are excluded: detection is cumulative, the reveal happens once.
// Fully deterministic — same history, same answer.
func Detect(rs RuleSet, hist History, cur Record, p RuleParams) []Detection {
	flagged := hist.Flagged()
	var out []Detection
	add := func(b Bias, evidence []int) {
		if flagged[b] || len(evidence) == 0 {
			return
		}
		out = append(out, Detection{Bias: b, Evidence: evidence})
		flagged[b] = true
	}

	switch rs {
	case RuleCoffeeShop:
		if ev := risingStreak(hist, cur, "hire_staff", p.StreakLen); ev != nil {
			add(BiasLinearThinking, ev)
		} else if cur.Decision.Action == "hire_staff" && cur.Decision.amount() > p.LinearThreshold {
			add(BiasLinearThinking, []int{cur.Turn})
		}

	case RuleRelationship:
		turns := len(hist) + 1
		if turns >= p.MinTurns {
			gifts := hist.actionCount("gift")
			comms := hist.actionCount("communication")
			if cur.Decision.Action == "gift" {
				gifts++
			}
			if cur.Decision.Action == "communication" {
				comms++
			}
			if comms == 0 && gifts > 0 || comms > 0 && float64(gifts)/float64(comms) > p.GiftRatioLimit {
				add(BiasShortTerm, lastActionTurns(hist, cur, "gift", 3))
			}
		}

	case RuleInvestment:
		if ev := narrowSourceWindow(hist, cur, p.SourceWindow); ev != nil {
			add(BiasConfirmation, ev)
		}
		if cur.Turn == p.EstimationTurn && cur.Decision.Estimation != nil {
			actual := cur.After.Portfolio
			if actual > 0 && *cur.Decision.Estimation < p.EstimationRatio*actual {
				add(BiasCompoundInterest, []int{cur.Turn})
			}
		}
	}

	// Scenario-independent patterns.
	if cur.Decision.HighConfidence() {
		primary := PrimaryVar(rs)
		before, _ := cur.Before.Var(primary)
		after, _ := cur.After.Var(primary)
		if after < before {
			add(BiasOverconfidence, []int{cur.Turn})
		}
	}
	if ev := anchoredAmounts(hist, cur, p.AnchorStreak); ev != nil {
		add(BiasAnchoring, ev)
	}

	return out
}

// risingStreak finds n consecutive turns (ending with cur) of the same
// action with strictly increasing amounts. Returns the evidence turns, or
// nil.
func risingStreak(hist History, cur Record, action string, n int) []int {
	if n < 2 || cur.Decision.Action != action || len(hist) < n-1 {
		return nil
	}
	turns := []int{cur.Turn}
	last := cur.Decision.amount()
	for i := len(hist) - 1; i >= 0 && len(turns) < n; i-- {
		r := hist[i]
		if r.Decision.Action != action || r.Decision.amount() >= last {
			return nil
		}
		last = r.Decision.amount()
		turns = append([]int{r.Turn}, turns...)
	}
	if len(turns) < n {
		return nil
	}
	return turns
}

// narrowSourceWindow checks whether the last `window` turns (ending with
// cur) all consulted sources and their union has at most one element.
func narrowSourceWindow(hist History, cur Record, window int) []int {
	if len(hist) < window-1 || len(cur.Decision.Sources) == 0 {
		return nil
	}
	seen := make(map[string]struct{})
	turns := []int{cur.Turn}
	for _, s := range cur.Decision.Sources {
		seen[s] = struct{}{}
	}
	for i := len(hist) - 1; i >= len(hist)-(window-1); i-- {
		r := hist[i]
		if len(r.Decision.Sources) == 0 {
			return nil
		}
		for _, s := range r.Decision.Sources {
			seen[s] = struct{}{}
		}
		turns = append([]int{r.Turn}, turns...)
	}
	if len(seen) > 1 {
		return nil
	}
	return turns
}

// anchoredAmounts finds n consecutive turns (ending with cur) that reused
// the exact same non-zero amount.
func anchoredAmounts(hist History, cur Record, n int) []int {
	amt := cur.Decision.amount()
	if amt == 0 || len(hist) < n-1 {
		return nil
	}
	turns := []int{cur.Turn}
	for i := len(hist) - 1; i >= 0 && len(turns) < n; i-- {
		if hist[i].Decision.amount() != amt {
			return nil
		}
		turns = append([]int{hist[i].Turn}, turns...)
	}
	if len(turns) < n {
		return nil
	}
	return turns
}

// lastActionTurns collects up to max turns that used the given action,
// newest first in scan but returned in turn order.
func lastActionTurns(hist History, cur Record, action string, max int) []int {
	var turns []int
	if cur.Decision.Action == action {
		turns = append(turns, cur.Turn)
	}
	for i := len(hist) - 1; i >= 0 && len(turns) < max; i-- {
		if hist[i].Decision.Action == action {
			turns = append([]int{hist[i].Turn}, turns...)
		}
	}
	return turns
}
