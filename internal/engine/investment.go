package engine

import (
	"fmt"
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Investment rule set: the confirmation-bias scenario. The portfolio
// compounds every turn — slowly enough that players anchored on linear
// growth keep underestimating it — and research funneled through a single
// source quietly schedules the loss that reveals the bias.

func applyInvestment(st State, d Decision, p RuleParams, recent []Decision) TurnResult {
	res := TurnResult{State: st, Recognized: true}
	amt := d.amount()

	switch d.Action {
	case "research":
		res.State.Knowledge += p.ResearchGain * math.Sqrt(amt)
		res.State.Resources -= p.ResearchCost * amt

		distinct := sourceUnion(d, recent, p.SourceWindow)
		switch {
		case distinct <= 1 && researchStreak(d, recent) >= p.SourceWindow:
			// A full window of single-source research: the position is
			// built on one narrative. Schedule the correction, damped by
			// whatever diversification the player has bought.
			damp := 1 - st.Diversification/200
			res.Scheduled = append(res.Scheduled, DelayedEffect{
				ApplyOn:     st.Turn + p.EffectDelay,
				Variable:    "portfolio",
				Delta:       -p.NarrowLossRate * st.Portfolio * damp,
				Description: fmt.Sprintf("The narrative you have been reading since turn %d breaks; positions built on it sell off.", st.Turn-p.SourceWindow+1),
			})
		case distinct >= 2:
			res.Scheduled = append(res.Scheduled, DelayedEffect{
				ApplyOn:     st.Turn + p.EffectDelay,
				Variable:    "portfolio",
				Delta:       p.DiverseGainRate * st.Portfolio,
				Description: fmt.Sprintf("Cross-checked research from turn %d pays off as the market confirms the broader view.", st.Turn),
			})
		}

	case "diversify":
		res.State.Diversification += p.DiversifyGain * math.Sqrt(amt)
		res.State.Resources -= amt

	case "hold":
		// Let the market move.

	default:
		return TurnResult{State: st}
	}

	// Compound growth plus deterministic drift. The drift looks like
	// market noise but is a pure function of turn number and knowledge,
	// so replays are exact.
	res.State.Portfolio *= 1 + p.BaseReturn + marketDrift(st, p)

	res.Saturated = res.State.normalize()
	return res
}

// marketDrift maps (turn, knowledge) onto [-Volatility, +Volatility]
// through a fixed-seed simplex noise field.
func marketDrift(st State, p RuleParams) float64 {
	n := opensimplex.NewNormalized(p.NoiseSeed)
	centered := n.Eval2(float64(st.Turn)*0.7, st.Knowledge/100)*2 - 1
	return centered * p.Volatility
}

// sourceUnion counts distinct source tags across the current decision and
// the most recent window-1 prior decisions.
func sourceUnion(d Decision, recent []Decision, window int) int {
	seen := make(map[string]struct{})
	for _, s := range d.Sources {
		seen[s] = struct{}{}
	}
	for i := len(recent) - 1; i >= 0 && len(recent)-i < window; i-- {
		for _, s := range recent[i].Sources {
			seen[s] = struct{}{}
		}
	}
	return len(seen)
}

// researchStreak counts how many consecutive decisions ending with the
// current one are research actions.
func researchStreak(d Decision, recent []Decision) int {
	if d.Action != "research" {
		return 0
	}
	streak := 1
	for i := len(recent) - 1; i >= 0; i-- {
		if recent[i].Action != "research" {
			break
		}
		streak++
	}
	return streak
}
