// Package engine implements the scenario simulation core: typed game
// state, transition rule sets, the delayed-effect queue, decision history,
// bias detection, and the staged feedback composer.
package engine

import "math"

// Difficulty tiers. Beginner is always available; the other tiers exist
// only where a scenario declares a variant for them.
type Difficulty uint8

const (
	Beginner Difficulty = iota
	Intermediate
	Advanced
)

// DifficultyName returns the wire spelling of a difficulty tier.
func DifficultyName(d Difficulty) string {
	switch d {
	case Beginner:
		return "beginner"
	case Intermediate:
		return "intermediate"
	case Advanced:
		return "advanced"
	default:
		return "unknown"
	}
}

// DifficultyFromString parses a wire difficulty. "auto" is resolved by the
// catalog to the scenario's declared tier before it reaches this point.
func DifficultyFromString(s string) (Difficulty, bool) {
	switch s {
	case "beginner":
		return Beginner, true
	case "intermediate":
		return Intermediate, true
	case "advanced":
		return Advanced, true
	}
	return Beginner, false
}

// RuleSet selects which transition function drives a scenario.
// The set is closed: adding a scenario family means adding a tag here and
// a case to every exhaustive switch.
type RuleSet uint8

const (
	RuleCoffeeShop   RuleSet = iota // linear-thinking-coffeeshop
	RuleRelationship                // time-delay-relationship
	RuleInvestment                  // confirmation-bias-investment
)

// RuleSetName returns the wire id of a rule set.
func RuleSetName(rs RuleSet) string {
	switch rs {
	case RuleCoffeeShop:
		return "linear-thinking-coffeeshop"
	case RuleRelationship:
		return "time-delay-relationship"
	case RuleInvestment:
		return "confirmation-bias-investment"
	default:
		return "unknown"
	}
}

// RuleSetFromString parses a rule set id from a scenario definition.
func RuleSetFromString(s string) (RuleSet, bool) {
	switch s {
	case "linear-thinking-coffeeshop":
		return RuleCoffeeShop, true
	case "time-delay-relationship":
		return RuleRelationship, true
	case "confirmation-bias-investment":
		return RuleInvestment, true
	}
	return RuleCoffeeShop, false
}

// State is the full per-session game state. It carries the union of all
// scenario variables; each rule set reads and writes only its own subset,
// and Vars reports the subset that exists for a given rule set.
//
// State is a plain value type: copying it is a deep snapshot.
type State struct {
	Turn       int
	Difficulty Difficulty

	// Bounded variables, clamped to [0,100] after every transition.
	Satisfaction    float64
	Reputation      float64
	Trust           float64
	Knowledge       float64
	Diversification float64

	// Monetary variables. May go negative; the feedback composer warns
	// but the engine never refuses a turn over a negative balance.
	Resources float64
	Portfolio float64
}

// SaturationLimit is the sentinel magnitude for runaway arithmetic.
// Values beyond it (or non-finite values) are pinned here and the turn is
// annotated rather than failed.
const SaturationLimit = 1e12

// Bounded variable range.
const (
	varMin = 0
	varMax = 100
)

// clamp pins v to [0,100]. The clamped-away amount is discarded.
func clamp(v float64) float64 {
	if v < varMin {
		return varMin
	}
	if v > varMax {
		return varMax
	}
	return v
}

// saturate pins non-finite or out-of-range values to the sentinel.
// Returns the pinned value and whether pinning happened.
func saturate(v float64) (float64, bool) {
	if math.IsNaN(v) {
		return 0, true
	}
	if v > SaturationLimit {
		return SaturationLimit, true
	}
	if v < -SaturationLimit {
		return -SaturationLimit, true
	}
	return v, false
}

// normalize clamps all bounded variables and saturates the monetary ones.
// Returns true if any monetary variable hit the saturation sentinel.
func (st *State) normalize() bool {
	st.Satisfaction = clamp(st.Satisfaction)
	st.Reputation = clamp(st.Reputation)
	st.Trust = clamp(st.Trust)
	st.Knowledge = clamp(st.Knowledge)
	st.Diversification = clamp(st.Diversification)

	var sat bool
	st.Resources, sat = saturate(st.Resources)
	p, ps := saturate(st.Portfolio)
	st.Portfolio = p
	return sat || ps
}

// Var looks up a state variable by its wire name. Returns false for names
// this engine does not track.
func (st *State) Var(name string) (float64, bool) {
	switch name {
	case "satisfaction":
		return st.Satisfaction, true
	case "reputation":
		return st.Reputation, true
	case "trust":
		return st.Trust, true
	case "knowledge":
		return st.Knowledge, true
	case "diversification":
		return st.Diversification, true
	case "resources":
		return st.Resources, true
	case "portfolio":
		return st.Portfolio, true
	}
	return 0, false
}

// SetVar assigns a state variable by its wire name. Returns false for
// unknown names (the caller decides whether that is fatal).
func (st *State) SetVar(name string, v float64) bool {
	switch name {
	case "satisfaction":
		st.Satisfaction = v
	case "reputation":
		st.Reputation = v
	case "trust":
		st.Trust = v
	case "knowledge":
		st.Knowledge = v
	case "diversification":
		st.Diversification = v
	case "resources":
		st.Resources = v
	case "portfolio":
		st.Portfolio = v
	default:
		return false
	}
	return true
}

// addVar applies a delta to a named variable, clamping bounded targets.
// Unknown names are dropped silently (delayed effects may outlive a
// variable in future schema revisions).
func (st *State) addVar(name string, delta float64) {
	cur, ok := st.Var(name)
	if !ok {
		return
	}
	st.SetVar(name, cur+delta)
	st.normalize()
}

// scenarioVars lists the variables that exist for each rule set, in the
// order they are reported over the wire.
func scenarioVars(rs RuleSet) []string {
	switch rs {
	case RuleCoffeeShop:
		return []string{"satisfaction", "reputation", "resources"}
	case RuleRelationship:
		return []string{"satisfaction", "trust", "resources"}
	case RuleInvestment:
		return []string{"portfolio", "knowledge", "diversification", "resources"}
	default:
		return nil
	}
}

// Vars returns the wire representation of the state for a rule set:
// the scenario's variables plus turn_number and difficulty.
func (st *State) Vars(rs RuleSet) map[string]any {
	out := make(map[string]any, 6)
	out["turn_number"] = st.Turn
	out["difficulty"] = DifficultyName(st.Difficulty)
	for _, name := range scenarioVars(rs) {
		v, _ := st.Var(name)
		out[name] = v
	}
	return out
}

// PrimaryVar names the variable whose decline marks a bad outcome for a
// rule set. Used by the overconfidence detector.
func PrimaryVar(rs RuleSet) string {
	switch rs {
	case RuleInvestment:
		return "portfolio"
	default:
		return "satisfaction"
	}
}
