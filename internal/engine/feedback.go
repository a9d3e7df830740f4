package engine

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// Stage is the pedagogical phase of a turn's feedback.
type Stage string

const (
	StageConfusion  Stage = "confusion"   // turns 1-2: show the gap, don't name it
	StageBiasReveal Stage = "bias_reveal" // turn 3+: name the bias, cite the moments
	StageAdvanced   Stage = "advanced"    // later turns: pattern continuity and cost
)

// Feedback is the composed payload returned with every turn.
type Feedback struct {
	Stage           Stage    `json:"stage"`
	Summary         string   `json:"summary"`
	CitedMoments    []int    `json:"cited_moments"`
	CalledOutBiases []Bias   `json:"called_out_biases"`
	DelayedRevealed []string `json:"delayed_effects_revealed"`
	NextTurnHint    string   `json:"next_turn_hint,omitempty"`
}

// biasTemplate is the canonical wording for one bias tag. Templates are
// data: the composer fills slots, rule code never concatenates prose.
type biasTemplate struct {
	Name        string
	Explanation string
	Counter     string
}

var biasTemplates = map[Bias]biasTemplate{
	BiasLinearThinking: {
		Name:        "linear thinking",
		Explanation: "you scaled the input as if the output would scale with it, but this system answers on a curve — past the sweet spot, more input made things worse",
		Counter:     "before repeating a move at a bigger size, check whether the last increase paid off proportionally; if it didn't, the curve has already bent",
	},
	BiasExponential: {
		Name:        "exponential misconception",
		Explanation: "you projected growth as a straight line, but the process compounds — each step builds on the last, and the gap widens every turn",
		Counter:     "estimate by doubling periods, not by adding fixed increments",
	},
	BiasCompoundInterest: {
		Name:        "compound interest underestimation",
		Explanation: "your estimate came in far below the actual compounded result — intuition adds, but the portfolio multiplies",
		Counter:     "work from the growth rate and the number of periods, not from the sum of the per-turn gains you remember",
	},
	BiasConfirmation: {
		Name:        "confirmation bias",
		Explanation: "every turn of research drew on the same source, so each round could only confirm what the previous one told you",
		Counter:     "before acting, find one credible source that disagrees with your position and read it first",
	},
	BiasAnchoring: {
		Name:        "anchoring",
		Explanation: "you kept reusing the same figure turn after turn — the first number you picked became the reference point for every later decision",
		Counter:     "re-derive the amount from the current state each turn instead of adjusting from last turn's figure",
	},
	BiasShortTerm: {
		Name:        "short-term bias",
		Explanation: "quick-payoff moves crowded out the slower ones whose returns arrive turns later — the immediate bump kept winning over the lasting gain",
		Counter:     "budget at least every other turn for the action whose payoff you will not see this turn",
	},
	BiasOverconfidence: {
		Name:        "overconfidence",
		Explanation: "you declared high confidence on a move that set the key metric back — certainty ran ahead of the evidence",
		Counter:     "state what would have to be true for the move to fail, and check it before committing",
	},
}

// ComposeInput gathers everything the feedback composer may cite.
// Every cited moment must exist in History; the composer never invents.
type ComposeInput struct {
	RuleSet    RuleSet
	Turn       int // the turn just played
	Decision   Decision
	Before     State
	After      State
	History    History // prior records, not including this turn
	Detections []Detection
	Fired      []string // delayed-effect descriptions that landed this turn
	Recognized bool
	Saturated  bool
}

// Compose selects the stage and fills the matching template. Deterministic
// and purely textual: same input, same feedback.
func Compose(in ComposeInput) Feedback {
	fb := Feedback{
		Stage:           stageFor(in.Turn, in.Detections),
		DelayedRevealed: in.Fired,
		CitedMoments:    []int{},
	}

	var parts []string

	if !in.Recognized {
		parts = append(parts, fmt.Sprintf("No recognizable action in %q — the turn passed with nothing changed.", in.Decision.Action))
	}

	if len(in.Fired) > 0 {
		parts = append(parts, fmt.Sprintf("Effects now materializing from earlier decisions: %s", strings.Join(in.Fired, " ")))
	}

	switch fb.Stage {
	case StageConfusion:
		if in.Recognized {
			parts = append(parts, confusionLine(in))
		}
		fb.NextTurnHint = "Watch how the result moves relative to what you put in."

	case StageBiasReveal:
		for _, det := range in.Detections {
			tpl := biasTemplates[det.Bias]
			fb.CalledOutBiases = append(fb.CalledOutBiases, det.Bias)
			fb.CitedMoments = append(fb.CitedMoments, det.Evidence...)
			parts = append(parts, fmt.Sprintf("This is %s: %s. Look at %s.",
				tpl.Name, tpl.Explanation, citeTurns(det.Evidence)))
			parts = append(parts, fmt.Sprintf("Counter-strategy: %s.", tpl.Counter))
		}

	case StageAdvanced:
		parts = append(parts, advancedLine(in))
		if len(in.History) > 0 {
			fb.CitedMoments = append(fb.CitedMoments, in.History[0].Turn)
		}
		fb.NextTurnHint = "The pattern is set; the question now is whether you change it."
	}

	if warn := monetaryWarning(in.RuleSet, in.After); warn != "" {
		parts = append(parts, warn)
	}
	if in.Saturated {
		parts = append(parts, "A balance grew past what the simulation can represent and has been pinned at its limit.")
	}

	fb.Summary = strings.Join(parts, " ")
	if fb.CalledOutBiases == nil {
		fb.CalledOutBiases = []Bias{}
	}
	if fb.DelayedRevealed == nil {
		fb.DelayedRevealed = []string{}
	}
	return fb
}

// stageFor applies the stage selection rules: early turns stay in
// confusion, a newly detected bias from turn 3 on triggers the reveal,
// everything else is advanced.
func stageFor(turn int, detections []Detection) Stage {
	if turn <= 2 {
		return StageConfusion
	}
	if len(detections) > 0 {
		return StageBiasReveal
	}
	return StageAdvanced
}

// confusionLine points at the expectation-vs-observation gap without
// naming the bias.
func confusionLine(in ComposeInput) string {
	primary := PrimaryVar(in.RuleSet)
	before, _ := in.Before.Var(primary)
	after, _ := in.After.Var(primary)
	delta := after - before

	switch {
	case in.Decision.amount() > 0 && delta < 0:
		return fmt.Sprintf("You committed %s and %s still fell by %s. The input went in; where did it go?",
			humanize.Commaf(in.Decision.amount()), primary, humanize.CommafWithDigits(-delta, 1))
	case in.Decision.amount() > 0:
		return fmt.Sprintf("You committed %s; %s moved by %s. Is that the return you penciled in?",
			humanize.Commaf(in.Decision.amount()), primary, humanize.CommafWithDigits(delta, 1))
	default:
		return fmt.Sprintf("%s moved by %s this turn. Not everything that changes here was caused this turn.",
			primary, humanize.CommafWithDigits(delta, 1))
	}
}

// advancedLine emphasizes the running pattern and its cumulative cost.
func advancedLine(in ComposeInput) string {
	primary := PrimaryVar(in.RuleSet)
	after, _ := in.After.Var(primary)
	if len(in.History) == 0 {
		return fmt.Sprintf("%s now stands at %s.", primary, humanize.CommafWithDigits(after, 1))
	}
	start, _ := in.History[0].Before.Var(primary)
	return fmt.Sprintf("Since turn %d, %s has gone from %s to %s across %d decisions. The trajectory is the sum of the pattern, not of any single turn.",
		in.History[0].Turn, primary,
		humanize.CommafWithDigits(start, 1), humanize.CommafWithDigits(after, 1),
		len(in.History)+1)
}

// monetaryWarning flags negative balances. The engine never refuses the
// turn over them; it just says so.
func monetaryWarning(rs RuleSet, st State) string {
	if st.Resources < 0 {
		return fmt.Sprintf("Warning: resources are %s in the red.", humanize.Commaf(-st.Resources))
	}
	if rs == RuleInvestment && st.Portfolio < 0 {
		return fmt.Sprintf("Warning: the portfolio is %s underwater.", humanize.Commaf(-st.Portfolio))
	}
	return ""
}

// citeTurns renders evidence turns as prose ("turns 1, 2 and 3").
func citeTurns(turns []int) string {
	if len(turns) == 1 {
		return fmt.Sprintf("turn %d", turns[0])
	}
	strs := make([]string, len(turns))
	for i, t := range turns {
		strs[i] = fmt.Sprint(t)
	}
	return fmt.Sprintf("turns %s and %s", strings.Join(strs[:len(strs)-1], ", "), strs[len(strs)-1])
}
