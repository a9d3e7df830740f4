package engine

import "testing"

func coffeeState() State {
	return State{Turn: 1, Satisfaction: 50, Reputation: 50, Resources: 1000}
}

func TestHireStaffConcaveCurve(t *testing.T) {
	p := DefaultRuleParams(RuleCoffeeShop)
	st := coffeeState()

	small := Apply(RuleCoffeeShop, st, Decision{Action: "hire_staff", Amount: 2}, p, nil)
	big := Apply(RuleCoffeeShop, st, Decision{Action: "hire_staff", Amount: 4}, p, nil)

	gainSmall := small.State.Satisfaction - st.Satisfaction
	gainBig := big.State.Satisfaction - st.Satisfaction

	if gainSmall <= 0 || gainBig <= 0 {
		t.Fatalf("modest hires should help: %v, %v", gainSmall, gainBig)
	}
	// Doubling the hire must not double the payoff.
	if gainBig >= 2*gainSmall {
		t.Errorf("curve is not concave: f(2)=%v f(4)=%v", gainSmall, gainBig)
	}
}

func TestHireStaffPastSweetSpotHurts(t *testing.T) {
	p := DefaultRuleParams(RuleCoffeeShop)
	st := coffeeState()

	res := Apply(RuleCoffeeShop, st, Decision{Action: "hire_staff", Amount: 10}, p, nil)
	if res.State.Satisfaction >= st.Satisfaction {
		t.Errorf("over-hiring should reduce satisfaction: %v -> %v", st.Satisfaction, res.State.Satisfaction)
	}
}

func TestHireStaffLinearCost(t *testing.T) {
	p := DefaultRuleParams(RuleCoffeeShop)
	st := coffeeState()

	res := Apply(RuleCoffeeShop, st, Decision{Action: "hire_staff", Amount: 3}, p, nil)
	if !almostEqual(res.State.Resources, 1000-3*p.HireCost) {
		t.Errorf("resources = %v, want %v", res.State.Resources, 1000-3*p.HireCost)
	}
}

func TestMarketingSchedulesDelayedSatisfaction(t *testing.T) {
	p := DefaultRuleParams(RuleCoffeeShop)
	st := coffeeState()

	res := Apply(RuleCoffeeShop, st, Decision{Action: "marketing", Amount: 16}, p, nil)
	if res.State.Reputation <= st.Reputation {
		t.Error("marketing should raise reputation immediately")
	}
	if len(res.Scheduled) != 1 {
		t.Fatalf("expected one scheduled effect, got %d", len(res.Scheduled))
	}
	eff := res.Scheduled[0]
	if eff.ApplyOn != st.Turn+p.MarketingDelay {
		t.Errorf("effect targets turn %d, want %d", eff.ApplyOn, st.Turn+p.MarketingDelay)
	}
	if eff.Variable != "satisfaction" || eff.Delta <= 0 {
		t.Errorf("expected a positive satisfaction effect, got %+v", eff)
	}
	if eff.Description == "" {
		t.Error("scheduled effects carry a disclosure description")
	}
}

func TestMarketingDiminishingReturns(t *testing.T) {
	p := DefaultRuleParams(RuleCoffeeShop)
	st := coffeeState()

	one := Apply(RuleCoffeeShop, st, Decision{Action: "marketing", Amount: 25}, p, nil)
	four := Apply(RuleCoffeeShop, st, Decision{Action: "marketing", Amount: 100}, p, nil)

	gainOne := one.State.Reputation - st.Reputation
	gainFour := four.State.Reputation - st.Reputation
	if gainFour >= 4*gainOne {
		t.Errorf("4x spend should earn well under 4x reputation: %v vs %v", gainOne, gainFour)
	}
}

func TestSupplyChainDelayedSavings(t *testing.T) {
	p := DefaultRuleParams(RuleCoffeeShop)
	st := coffeeState()

	res := Apply(RuleCoffeeShop, st, Decision{Action: "supply_chain", Amount: 100}, p, nil)
	if !almostEqual(res.State.Resources, 900) {
		t.Errorf("upfront cost should land now, resources = %v", res.State.Resources)
	}
	if len(res.Scheduled) != 1 {
		t.Fatalf("expected one scheduled effect, got %d", len(res.Scheduled))
	}
	eff := res.Scheduled[0]
	if eff.Variable != "resources" || eff.ApplyOn != st.Turn+p.SupplyDelay {
		t.Errorf("unexpected effect %+v", eff)
	}
	if eff.Delta <= 100 {
		t.Errorf("savings should exceed the outlay, got %v", eff.Delta)
	}
}

func TestUnknownActionIsNoOp(t *testing.T) {
	p := DefaultRuleParams(RuleCoffeeShop)
	st := coffeeState()

	res := Apply(RuleCoffeeShop, st, Decision{Action: "fly_to_moon", Amount: 5}, p, nil)
	if res.Recognized {
		t.Error("unknown action must be flagged unrecognized")
	}
	if res.State != st {
		t.Errorf("unknown action must leave state unchanged: %+v vs %+v", res.State, st)
	}
	if len(res.Scheduled) != 0 {
		t.Error("unknown action must not schedule effects")
	}
}

func TestAmountZeroIsValid(t *testing.T) {
	for _, action := range []string{"hire_staff", "marketing", "supply_chain"} {
		p := DefaultRuleParams(RuleCoffeeShop)
		st := coffeeState()
		res := Apply(RuleCoffeeShop, st, Decision{Action: action}, p, nil)
		if !res.Recognized {
			t.Errorf("%s with zero amount should still be recognized", action)
		}
		if len(res.Scheduled) != 0 {
			t.Errorf("%s with zero amount should not schedule effects", action)
		}
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	p := DefaultRuleParams(RuleCoffeeShop)
	st := coffeeState()
	before := st
	Apply(RuleCoffeeShop, st, Decision{Action: "hire_staff", Amount: 5}, p, nil)
	if st != before {
		t.Error("Apply must not mutate its input state")
	}
}

func TestSatisfactionClampsAtHundred(t *testing.T) {
	p := DefaultRuleParams(RuleCoffeeShop)
	st := coffeeState()
	st.Satisfaction = 95

	res := Apply(RuleCoffeeShop, st, Decision{Action: "hire_staff", Amount: 3}, p, nil)
	if res.State.Satisfaction != 100 {
		t.Errorf("satisfaction should clamp at 100, got %v", res.State.Satisfaction)
	}
}
