package engine

// RuleParams carries every tunable number a rule set or detector reads.
// Defaults live in DefaultRuleParams; scenario files may override any of
// them by wire key so thresholds ship with the content, not the code.
type RuleParams struct {
	// Coffee shop.
	HireGain        float64 // satisfaction per staff at zero load
	HireSweetSpot   float64 // staff count past which hiring hurts service
	HireCost        float64 // resources per staff hired
	LinearThreshold float64 // single-turn amount that flags linear extrapolation
	MarketingGain   float64 // reputation per sqrt(spend)
	MarketingSat    float64 // delayed satisfaction per sqrt(spend)
	MarketingDelay  int     // turns until the campaign lands
	SupplySavings   float64 // delayed resource return per unit invested
	SupplyDelay     int     // turns until supply contracts pay off

	// Relationship.
	CommGain          float64 // immediate satisfaction per unit
	CommTrustRate     float64 // delayed trust per unit
	CommTrustDelay    int     // turns until trust materializes
	BacklashThreshold float64 // single-turn amount that overwhelms
	BacklashRate      float64 // delayed satisfaction loss per excess unit
	BacklashDelay     int
	GiftGain          float64 // satisfaction per sqrt(amount)
	GiftCost          float64 // resources per unit gifted
	GiftRatioLimit    float64 // gift:communication ratio that flags short-termism

	// Investment.
	ResearchGain    float64 // knowledge per sqrt(spend)
	ResearchCost    float64 // resources per unit researched
	SourceWindow    int     // turns scanned for source diversity
	NarrowLossRate  float64 // portfolio fraction lost to a narrow-source streak
	DiverseGainRate float64 // portfolio fraction gained from diverse research
	EffectDelay     int     // turns until scheduled returns land
	DiversifyGain   float64 // diversification per sqrt(amount)
	BaseReturn      float64 // per-turn compound growth rate
	Volatility      float64 // drift amplitude around the base return
	NoiseSeed       int64   // seed for the deterministic market drift
	EstimationTurn  int     // turn on which a compound estimate is solicited
	EstimationRatio float64 // estimate below this fraction of actual flags the bias

	// Shared detector thresholds.
	StreakLen    int // consecutive rising hires that flag linear thinking
	AnchorStreak int // consecutive identical amounts that flag anchoring
	MinTurns     int // turns before ratio-based detectors engage
}

// DefaultRuleParams returns the tuned parameterization for a rule set.
func DefaultRuleParams(rs RuleSet) RuleParams {
	p := RuleParams{
		StreakLen:    3,
		AnchorStreak: 4,
		MinTurns:     4,
	}
	switch rs {
	case RuleCoffeeShop:
		p.HireGain = 6
		p.HireSweetSpot = 7.5
		p.HireCost = 80
		p.LinearThreshold = 9
		p.MarketingGain = 8
		p.MarketingSat = 2.5
		p.MarketingDelay = 2
		p.SupplySavings = 1.4
		p.SupplyDelay = 3
	case RuleRelationship:
		p.CommGain = 3
		p.CommTrustRate = 2.5
		p.CommTrustDelay = 3
		p.BacklashThreshold = 8
		p.BacklashRate = 2
		p.BacklashDelay = 1
		p.GiftGain = 4
		p.GiftCost = 10
		p.GiftRatioLimit = 2
	case RuleInvestment:
		p.ResearchGain = 5
		p.ResearchCost = 20
		p.SourceWindow = 3
		p.NarrowLossRate = 0.12
		p.DiverseGainRate = 0.06
		p.EffectDelay = 2
		p.DiversifyGain = 12
		p.BaseReturn = 0.02
		p.Volatility = 0.03
		p.NoiseSeed = 7
		p.EstimationTurn = 5
		p.EstimationRatio = 0.3
	}
	return p
}

// Merge applies wire-key overrides from a scenario definition. Unknown
// keys are ignored for forward compatibility.
func (p RuleParams) Merge(overrides map[string]float64) RuleParams {
	for k, v := range overrides {
		switch k {
		case "hire_gain":
			p.HireGain = v
		case "hire_sweet_spot":
			p.HireSweetSpot = v
		case "hire_cost":
			p.HireCost = v
		case "linear_threshold":
			p.LinearThreshold = v
		case "marketing_gain":
			p.MarketingGain = v
		case "marketing_sat":
			p.MarketingSat = v
		case "marketing_delay":
			p.MarketingDelay = int(v)
		case "supply_savings":
			p.SupplySavings = v
		case "supply_delay":
			p.SupplyDelay = int(v)
		case "comm_gain":
			p.CommGain = v
		case "comm_trust_rate":
			p.CommTrustRate = v
		case "comm_trust_delay":
			p.CommTrustDelay = int(v)
		case "backlash_threshold":
			p.BacklashThreshold = v
		case "backlash_rate":
			p.BacklashRate = v
		case "backlash_delay":
			p.BacklashDelay = int(v)
		case "gift_gain":
			p.GiftGain = v
		case "gift_cost":
			p.GiftCost = v
		case "gift_ratio_limit":
			p.GiftRatioLimit = v
		case "research_gain":
			p.ResearchGain = v
		case "research_cost":
			p.ResearchCost = v
		case "source_window":
			p.SourceWindow = int(v)
		case "narrow_loss_rate":
			p.NarrowLossRate = v
		case "diverse_gain_rate":
			p.DiverseGainRate = v
		case "effect_delay":
			p.EffectDelay = int(v)
		case "diversify_gain":
			p.DiversifyGain = v
		case "base_return":
			p.BaseReturn = v
		case "volatility":
			p.Volatility = v
		case "noise_seed":
			p.NoiseSeed = int64(v)
		case "estimation_turn":
			p.EstimationTurn = int(v)
		case "estimation_ratio":
			p.EstimationRatio = v
		case "streak_len":
			p.StreakLen = int(v)
		case "anchor_streak":
			p.AnchorStreak = int(v)
		case "min_turns":
			p.MinTurns = int(v)
		}
	}
	return p
}

// TurnResult is the outcome of one rule application.
type TurnResult struct {
	State      State           // post-decision state (turn not yet advanced)
	Scheduled  []DelayedEffect // effects the decision queued for later turns
	Recognized bool            // false means no-op: unknown action
	Saturated  bool            // a monetary variable hit the saturation sentinel
}

// Apply runs a rule set's transition for one decision. Pure: the input
// state is copied, never mutated, and the output depends only on the
// arguments — any stochastic-looking motion is noise keyed on the turn
// number. recent holds the session's prior decisions, newest last, for
// rules that react to short-horizon patterns (source diversity).
func Apply(rs RuleSet, st State, d Decision, p RuleParams, recent []Decision) TurnResult {
	switch rs {
	case RuleCoffeeShop:
		return applyCoffeeShop(st, d, p)
	case RuleRelationship:
		return applyRelationship(st, d, p)
	case RuleInvestment:
		return applyInvestment(st, d, p, recent)
	default:
		return TurnResult{State: st}
	}
}
