package engine

import "sort"

// DelayedEffect is a state change scheduled by one turn to land on a
// later one. Description is disclosed to the player when it fires.
type DelayedEffect struct {
	ApplyOn     int     `json:"apply_on_turn"`
	Variable    string  `json:"variable"`
	Delta       float64 `json:"delta"`
	Description string  `json:"description"`
}

// EffectQueue holds a session's pending delayed effects, ordered by
// target turn with insertion order preserved within a turn.
type EffectQueue []DelayedEffect

// Schedule appends effects and restores target-turn ordering. The stable
// sort keeps same-turn effects in the order they were scheduled.
func (q EffectQueue) Schedule(effects ...DelayedEffect) EffectQueue {
	q = append(q, effects...)
	sort.SliceStable(q, func(i, j int) bool { return q[i].ApplyOn < q[j].ApplyOn })
	return q
}

// PopDue splits off every effect due on or before the given turn.
// The engine calls this at the start of each turn, before the decision is
// applied, so consequences of past choices land first.
func (q EffectQueue) PopDue(turn int) (due []DelayedEffect, remaining EffectQueue) {
	idx := sort.Search(len(q), func(i int) bool { return q[i].ApplyOn > turn })
	if idx == 0 {
		return nil, q
	}
	due = make([]DelayedEffect, idx)
	copy(due, q[:idx])
	remaining = append(EffectQueue(nil), q[idx:]...)
	return due, remaining
}

// ApplyEffects lands a batch of due effects on the state in insertion
// order and returns their descriptions for feedback disclosure. Clamp
// overflow on bounded variables is discarded, never re-scheduled.
func ApplyEffects(st *State, due []DelayedEffect) []string {
	if len(due) == 0 {
		return nil
	}
	descs := make([]string, 0, len(due))
	for _, e := range due {
		st.addVar(e.Variable, e.Delta)
		descs = append(descs, e.Description)
	}
	return descs
}
