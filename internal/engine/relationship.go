package engine

import (
	"fmt"
	"math"
)

// Relationship rule set: the delayed-feedback scenario. Communication
// pays out mostly in trust, three turns later; gifts pay out immediately
// and leave nothing behind. The gap between the two is the lesson.

func applyRelationship(st State, d Decision, p RuleParams) TurnResult {
	res := TurnResult{State: st, Recognized: true}
	amt := d.amount()

	switch d.Action {
	case "communication":
		res.State.Satisfaction += p.CommGain * amt
		if amt > 0 {
			res.Scheduled = append(res.Scheduled, DelayedEffect{
				ApplyOn:     st.Turn + p.CommTrustDelay,
				Variable:    "trust",
				Delta:       p.CommTrustRate * amt,
				Description: fmt.Sprintf("The honest conversation from turn %d has settled into real trust.", st.Turn),
			})
		}
		// Dumping everything in one sitting overwhelms; the backlash
		// arrives a turn later, when it can no longer be linked to the
		// moment that caused it.
		if excess := amt - p.BacklashThreshold; excess > 0 {
			res.Scheduled = append(res.Scheduled, DelayedEffect{
				ApplyOn:     st.Turn + p.BacklashDelay,
				Variable:    "satisfaction",
				Delta:       -p.BacklashRate * excess,
				Description: fmt.Sprintf("The intensity of turn %d was too much at once; they pull back to breathe.", st.Turn),
			})
		}

	case "gift":
		res.State.Satisfaction += p.GiftGain * math.Sqrt(amt)
		res.State.Resources -= p.GiftCost * amt

	default:
		return TurnResult{State: st}
	}

	res.Saturated = res.State.normalize()
	return res
}
