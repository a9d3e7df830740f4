package engine

import (
	"fmt"
	"math"
)

// Coffee shop rule set: the anti-linear-extrapolation scenario.
// Staff hires pay off on a concave curve that turns negative past the
// sweet spot — doubling the input never doubles the output, and
// over-hiring actively hurts service.

func applyCoffeeShop(st State, d Decision, p RuleParams) TurnResult {
	res := TurnResult{State: st, Recognized: true}
	amt := d.amount()

	switch d.Action {
	case "hire_staff":
		// Concave gain: amt*(1 - amt/sweetSpot) peaks at half the sweet
		// spot and goes negative beyond it. Cost stays stubbornly linear.
		res.State.Satisfaction += p.HireGain * amt * (1 - amt/p.HireSweetSpot)
		res.State.Resources -= p.HireCost * amt

	case "marketing":
		// Diminishing returns on reputation now; the satisfaction payoff
		// arrives only after the campaign has had time to spread.
		res.State.Reputation += p.MarketingGain * math.Sqrt(amt)
		res.State.Resources -= amt
		if amt > 0 {
			res.Scheduled = append(res.Scheduled, DelayedEffect{
				ApplyOn:     st.Turn + p.MarketingDelay,
				Variable:    "satisfaction",
				Delta:       p.MarketingSat * math.Sqrt(amt),
				Description: fmt.Sprintf("Word of mouth from the turn %d marketing push brings in happier regulars.", st.Turn),
			})
		}

	case "supply_chain":
		// Pay now, save later. The savings exceed the outlay, but only
		// for players patient enough to wait for the contracts to bite.
		res.State.Resources -= amt
		if amt > 0 {
			res.Scheduled = append(res.Scheduled, DelayedEffect{
				ApplyOn:     st.Turn + p.SupplyDelay,
				Variable:    "resources",
				Delta:       p.SupplySavings * amt,
				Description: fmt.Sprintf("Supplier contracts renegotiated on turn %d start cutting costs.", st.Turn),
			})
		}

	default:
		return TurnResult{State: st}
	}

	res.Saturated = res.State.normalize()
	return res
}
