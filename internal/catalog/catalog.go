// Package catalog owns the read-only scenario registry: definitions are
// loaded once at startup, validated strictly, and shared for the process
// lifetime. It also builds initial game states for (scenario, difficulty)
// pairs.
package catalog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/mindfold/biaslab/internal/engine"
)

// Scenario is one loaded, validated scenario definition. Immutable after
// load; Get returns the same pointer on every call.
type Scenario struct {
	ID           string
	Name         string
	Description  string
	RuleSet      engine.RuleSet
	TargetBiases []engine.Bias
	DeclaredTier engine.Difficulty

	baseState  map[string]float64
	baseParams map[string]float64
	variants   map[engine.Difficulty]variant
}

type variant struct {
	state  map[string]float64
	params map[string]float64
}

// Catalog is the registry of scenarios, keyed by id.
type Catalog struct {
	ids  []string // load order, for stable listing
	byID map[string]*Scenario
}

// Wire format for the scenario file. Unknown keys are ignored for forward
// compatibility; missing required keys are fatal.
type scenarioFile struct {
	Scenarios []fileScenario `json:"scenarios"`
}

type fileScenario struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	Description      string                 `json:"description"`
	RuleSetID        string                 `json:"rule_set_id"`
	TargetBiases     []string               `json:"target_biases"`
	DifficultyTier   string                 `json:"difficulty_tier"`
	InitialState     map[string]float64     `json:"initial_state"`
	RuleParams       map[string]float64     `json:"rule_params"`
	AdvancedVariants map[string]fileVariant `json:"advanced_variants"`
}

type fileVariant struct {
	InitialState map[string]float64 `json:"initial_state"`
	RuleParams   map[string]float64 `json:"rule_params"`
}

// LoadFile reads and validates a scenario file. Any malformed definition
// fails the whole load: the process refuses to serve rather than degrade.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	return Parse(data)
}

// Parse validates raw scenario JSON into a Catalog.
func Parse(data []byte) (*Catalog, error) {
	var f scenarioFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrMalformedScenario, err)
	}
	if len(f.Scenarios) == 0 {
		return nil, fmt.Errorf("%w: no scenarios defined", engine.ErrMalformedScenario)
	}

	c := &Catalog{byID: make(map[string]*Scenario, len(f.Scenarios))}
	for _, fs := range f.Scenarios {
		s, err := buildScenario(fs)
		if err != nil {
			return nil, err
		}
		if _, dup := c.byID[s.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate scenario id %q", engine.ErrMalformedScenario, s.ID)
		}
		c.byID[s.ID] = s
		c.ids = append(c.ids, s.ID)
	}
	return c, nil
}

func buildScenario(fs fileScenario) (*Scenario, error) {
	if fs.ID == "" {
		return nil, fmt.Errorf("%w: scenario missing id", engine.ErrMalformedScenario)
	}
	if fs.RuleSetID == "" {
		return nil, fmt.Errorf("%w: scenario %q missing rule_set_id", engine.ErrMalformedScenario, fs.ID)
	}
	rs, ok := engine.RuleSetFromString(fs.RuleSetID)
	if !ok {
		return nil, fmt.Errorf("%w: scenario %q has unknown rule_set_id %q", engine.ErrMalformedScenario, fs.ID, fs.RuleSetID)
	}
	if len(fs.InitialState) == 0 {
		return nil, fmt.Errorf("%w: scenario %q missing initial_state", engine.ErrMalformedScenario, fs.ID)
	}

	tier := engine.Beginner
	if fs.DifficultyTier != "" {
		var ok bool
		if tier, ok = engine.DifficultyFromString(fs.DifficultyTier); !ok {
			return nil, fmt.Errorf("%w: scenario %q has unknown difficulty_tier %q", engine.ErrMalformedScenario, fs.ID, fs.DifficultyTier)
		}
	}

	s := &Scenario{
		ID:           fs.ID,
		Name:         fs.Name,
		Description:  fs.Description,
		RuleSet:      rs,
		DeclaredTier: tier,
		baseState:    fs.InitialState,
		baseParams:   fs.RuleParams,
		variants:     make(map[engine.Difficulty]variant, len(fs.AdvancedVariants)),
	}
	for _, b := range fs.TargetBiases {
		s.TargetBiases = append(s.TargetBiases, engine.Bias(b))
	}
	for name, fv := range fs.AdvancedVariants {
		d, ok := engine.DifficultyFromString(name)
		if !ok {
			return nil, fmt.Errorf("%w: scenario %q has variant for unknown tier %q", engine.ErrMalformedScenario, fs.ID, name)
		}
		s.variants[d] = variant{state: fv.InitialState, params: fv.RuleParams}
	}

	// Probe the template once so bad variable names surface at load, not
	// mid-session. Unknown variables are tolerated with a warning.
	var probe engine.State
	for name := range fs.InitialState {
		if !probe.SetVar(name, 0) {
			slog.Warn("scenario template references unknown state variable",
				"scenario", fs.ID, "variable", name)
		}
	}
	return s, nil
}

// List returns scenarios in file order.
func (c *Catalog) List() []*Scenario {
	out := make([]*Scenario, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.byID[id])
	}
	return out
}

// Get looks up a scenario by id.
func (c *Catalog) Get(id string) (*Scenario, error) {
	s, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", engine.ErrUnknownScenario, id)
	}
	return s, nil
}

// ResolveDifficulty parses a requested tier against this scenario.
// "auto" (or empty) resolves to the scenario's declared tier. A tier the
// scenario carries no template for is rejected.
func (s *Scenario) ResolveDifficulty(requested string) (engine.Difficulty, error) {
	if requested == "" || requested == "auto" {
		return s.DeclaredTier, nil
	}
	d, ok := engine.DifficultyFromString(requested)
	if !ok {
		return 0, fmt.Errorf("%w: %q", engine.ErrUnknownDifficulty, requested)
	}
	if !s.supports(d) {
		return 0, fmt.Errorf("%w: scenario %q has no %s tier", engine.ErrUnknownDifficulty, s.ID, engine.DifficultyName(d))
	}
	return d, nil
}

// supports reports whether the scenario has a template for the tier: the
// base template covers beginner and the declared tier, variants add the
// rest.
func (s *Scenario) supports(d engine.Difficulty) bool {
	if d == engine.Beginner || d == s.DeclaredTier {
		return true
	}
	_, ok := s.variants[d]
	return ok
}

// InitialState builds a fresh game state for a resolved tier: the base
// template, overlaid with the tier variant's overrides, turn set to 1.
func (s *Scenario) InitialState(d engine.Difficulty) (engine.State, error) {
	if !s.supports(d) {
		return engine.State{}, fmt.Errorf("%w: scenario %q has no %s tier", engine.ErrUnknownDifficulty, s.ID, engine.DifficultyName(d))
	}
	var st engine.State
	for name, v := range s.baseState {
		st.SetVar(name, v)
	}
	if variant, ok := s.variants[d]; ok {
		for name, v := range variant.state {
			st.SetVar(name, v)
		}
	}
	st.Turn = 1
	st.Difficulty = d
	return st, nil
}

// Params resolves the rule parameterization for a tier: code defaults,
// then the scenario's overrides, then the tier variant's.
func (s *Scenario) Params(d engine.Difficulty) engine.RuleParams {
	p := engine.DefaultRuleParams(s.RuleSet).Merge(s.baseParams)
	if variant, ok := s.variants[d]; ok {
		p = p.Merge(variant.params)
	}
	return p
}
