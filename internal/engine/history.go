package engine

// Record is one completed turn in a session's decision history.
// Before and After are value snapshots: State has no reference fields, so
// copies stay frozen no matter what later turns do.
type Record struct {
	Turn     int      `json:"turn"`
	Decision Decision `json:"decision"`
	Before   State    `json:"-"`
	After    State    `json:"-"`
	Biases   []Bias   `json:"detected_biases,omitempty"`
	Stage    Stage    `json:"feedback_stage"`
}

// History is the append-only decision log for a session.
type History []Record

// Decisions returns the logged decisions in turn order.
func (h History) Decisions() []Decision {
	out := make([]Decision, len(h))
	for i, r := range h {
		out[i] = r.Decision
	}
	return out
}

// Flagged returns the set of bias tags attached to any prior record.
// Detection is cumulative: a tag already here is never "newly detected"
// again.
func (h History) Flagged() map[Bias]bool {
	out := make(map[Bias]bool)
	for _, r := range h {
		for _, b := range r.Biases {
			out[b] = true
		}
	}
	return out
}

// actionCount counts records whose decision used the given action.
func (h History) actionCount(action string) int {
	n := 0
	for _, r := range h {
		if r.Decision.Action == action {
			n++
		}
	}
	return n
}
