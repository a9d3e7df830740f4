package engine

import "testing"

func investmentState() State {
	return State{Turn: 1, Difficulty: Intermediate, Portfolio: 10000, Knowledge: 30, Diversification: 10, Resources: 2000}
}

func TestMarketDriftDeterministic(t *testing.T) {
	p := DefaultRuleParams(RuleInvestment)
	st := investmentState()

	a := marketDrift(st, p)
	b := marketDrift(st, p)
	if a != b {
		t.Errorf("drift must be deterministic: %v vs %v", a, b)
	}
	if a < -p.Volatility || a > p.Volatility {
		t.Errorf("drift %v outside ±%v", a, p.Volatility)
	}

	st2 := st
	st2.Turn = 9
	if marketDrift(st2, p) == a {
		t.Log("drift identical across turns; suspicious but not impossible")
	}
}

func TestPortfolioCompounds(t *testing.T) {
	p := DefaultRuleParams(RuleInvestment)
	st := investmentState()

	res := Apply(RuleInvestment, st, Decision{Action: "hold"}, p, nil)
	growth := 1 + p.BaseReturn + marketDrift(st, p)
	if !almostEqual(res.State.Portfolio, 10000*growth) {
		t.Errorf("portfolio = %v, want %v", res.State.Portfolio, 10000*growth)
	}
}

func TestResearchRaisesKnowledge(t *testing.T) {
	p := DefaultRuleParams(RuleInvestment)
	st := investmentState()

	res := Apply(RuleInvestment, st, Decision{Action: "research", Amount: 10, Sources: []string{"news"}}, p, nil)
	if res.State.Knowledge <= st.Knowledge {
		t.Error("research should raise knowledge")
	}
	if res.State.Resources >= st.Resources {
		t.Error("research costs resources")
	}
}

func TestNarrowSourcesScheduleLoss(t *testing.T) {
	p := DefaultRuleParams(RuleInvestment)
	st := investmentState()
	st.Turn = 3

	recent := []Decision{
		{Action: "research", Amount: 10, Sources: []string{"news"}},
		{Action: "research", Amount: 10, Sources: []string{"news"}},
	}
	res := Apply(RuleInvestment, st, Decision{Action: "research", Amount: 10, Sources: []string{"news"}}, p, recent)

	if len(res.Scheduled) != 1 {
		t.Fatalf("expected a scheduled loss, got %d effects", len(res.Scheduled))
	}
	eff := res.Scheduled[0]
	if eff.Variable != "portfolio" || eff.Delta >= 0 {
		t.Errorf("expected a portfolio loss, got %+v", eff)
	}
	if eff.ApplyOn != 3+p.EffectDelay {
		t.Errorf("loss targets turn %d, want %d", eff.ApplyOn, 3+p.EffectDelay)
	}
}

func TestTwoNarrowTurnsNotEnough(t *testing.T) {
	p := DefaultRuleParams(RuleInvestment)
	st := investmentState()
	st.Turn = 2

	recent := []Decision{{Action: "research", Amount: 10, Sources: []string{"news"}}}
	res := Apply(RuleInvestment, st, Decision{Action: "research", Amount: 10, Sources: []string{"news"}}, p, recent)
	if len(res.Scheduled) != 0 {
		t.Errorf("a two-turn streak should not schedule anything, got %v", res.Scheduled)
	}
}

func TestDiverseSourcesScheduleGain(t *testing.T) {
	p := DefaultRuleParams(RuleInvestment)
	st := investmentState()

	res := Apply(RuleInvestment, st, Decision{Action: "research", Amount: 10, Sources: []string{"news", "filings"}}, p, nil)
	if len(res.Scheduled) != 1 {
		t.Fatalf("expected a scheduled gain, got %d effects", len(res.Scheduled))
	}
	if res.Scheduled[0].Delta <= 0 {
		t.Errorf("diverse research should schedule a gain, got %+v", res.Scheduled[0])
	}
}

func TestDiversificationDampsLoss(t *testing.T) {
	p := DefaultRuleParams(RuleInvestment)
	recent := []Decision{
		{Action: "research", Amount: 10, Sources: []string{"news"}},
		{Action: "research", Amount: 10, Sources: []string{"news"}},
	}
	d := Decision{Action: "research", Amount: 10, Sources: []string{"news"}}

	exposed := investmentState()
	exposed.Turn = 3
	exposed.Diversification = 0
	hedged := exposed
	hedged.Diversification = 80

	lossExposed := Apply(RuleInvestment, exposed, d, p, recent).Scheduled[0].Delta
	lossHedged := Apply(RuleInvestment, hedged, d, p, recent).Scheduled[0].Delta

	if lossHedged <= lossExposed {
		t.Errorf("diversification should shrink the loss: exposed %v, hedged %v", lossExposed, lossHedged)
	}
}

func TestDiversifyRaisesDiversification(t *testing.T) {
	p := DefaultRuleParams(RuleInvestment)
	st := investmentState()

	res := Apply(RuleInvestment, st, Decision{Action: "diversify", Amount: 4}, p, nil)
	if res.State.Diversification <= st.Diversification {
		t.Error("diversify should raise diversification")
	}
}

func TestSourceUnion(t *testing.T) {
	recent := []Decision{
		{Action: "research", Sources: []string{"news"}},
		{Action: "research", Sources: []string{"blogs"}},
	}
	cur := Decision{Action: "research", Sources: []string{"news"}}
	if got := sourceUnion(cur, recent, 3); got != 2 {
		t.Errorf("sourceUnion = %d, want 2", got)
	}
	// A window of 2 only sees the last prior decision.
	if got := sourceUnion(cur, recent, 2); got != 2 {
		t.Errorf("sourceUnion window 2 = %d, want 2", got)
	}
}
