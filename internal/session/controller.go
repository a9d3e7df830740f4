package session

import (
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/mindfold/biaslab/internal/catalog"
	"github.com/mindfold/biaslab/internal/engine"
)

// Controller orchestrates the public engine operations: create a session,
// execute a turn. It is the only writer of session records.
type Controller struct {
	catalog *catalog.Catalog
	store   *Store
	seq     atomic.Uint64
}

// NewController wires a controller over a catalog and a session store.
func NewController(cat *catalog.Catalog, store *Store) *Controller {
	return &Controller{catalog: cat, store: store}
}

// TurnOutput is the result of one executed turn.
type TurnOutput struct {
	TurnNumber int             `json:"turn_number"`
	State      map[string]any  `json:"game_state"`
	Feedback   engine.Feedback `json:"feedback"`
}

// CreateSession builds a fresh session for (scenario, difficulty) and
// registers it. difficulty accepts the tier names plus "auto", which
// resolves to the scenario's declared tier.
func (c *Controller) CreateSession(scenarioID, difficulty string) (*Session, error) {
	scen, err := c.catalog.Get(scenarioID)
	if err != nil {
		return nil, err
	}
	tier, err := scen.ResolveDifficulty(difficulty)
	if err != nil {
		return nil, err
	}
	st, err := scen.InitialState(tier)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sess := &Session{
		ID:           c.newID(),
		ScenarioID:   scen.ID,
		RuleSet:      scen.RuleSet,
		Difficulty:   tier,
		Params:       scen.Params(tier),
		State:        st,
		CreatedAt:    now,
		LastActivity: now,
	}
	c.store.Put(sess)

	slog.Info("session created",
		"session_id", sess.ID,
		"scenario", scen.ID,
		"difficulty", engine.DifficultyName(tier),
	)
	return sess, nil
}

// ExecuteTurn runs one decision against a session. The turn is atomic:
// due delayed effects land first, then the rule, then history append,
// bias detection, and feedback. Any error leaves the session record
// exactly as it was.
func (c *Controller) ExecuteTurn(sessionID string, d engine.Decision) (*TurnOutput, error) {
	sess := c.store.Get(sessionID)
	if sess == nil {
		return nil, fmt.Errorf("%w: %q", engine.ErrUnknownSession, sessionID)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if strings.TrimSpace(d.Action) == "" {
		return nil, fmt.Errorf("%w: decision has no action", engine.ErrMalformedDecision)
	}

	// Work on copies; the session is written only once everything below
	// has succeeded.
	st := sess.State
	due, remaining := sess.Queue.PopDue(st.Turn)
	fired := engine.ApplyEffects(&st, due)

	res := engine.Apply(sess.RuleSet, st, d, sess.Params, sess.History.Decisions())

	rec := engine.Record{
		Turn:     st.Turn,
		Decision: d,
		Before:   st,
		After:    res.State,
	}
	detections := engine.Detect(sess.RuleSet, sess.History, rec, sess.Params)
	for _, det := range detections {
		rec.Biases = append(rec.Biases, det.Bias)
	}

	fb := engine.Compose(engine.ComposeInput{
		RuleSet:    sess.RuleSet,
		Turn:       st.Turn,
		Decision:   d,
		Before:     st,
		After:      res.State,
		History:    sess.History,
		Detections: detections,
		Fired:      fired,
		Recognized: res.Recognized,
		Saturated:  res.Saturated,
	})
	rec.Stage = fb.Stage

	newState := res.State
	newState.Turn = st.Turn + 1

	// Commit.
	sess.State = newState
	sess.History = append(sess.History, rec)
	sess.Queue = remaining.Schedule(res.Scheduled...)
	sess.LastActivity = time.Now()

	slog.Info("turn executed",
		"session_id", sess.ID,
		"turn", rec.Turn,
		"action", d.Action,
		"stage", fb.Stage,
		"new_biases", len(detections),
		"effects_fired", len(fired),
	)

	return &TurnOutput{
		TurnNumber: newState.Turn,
		State:      newState.Vars(sess.RuleSet),
		Feedback:   fb,
	}, nil
}

// Snapshot returns a read-consistent copy of a session's replayable
// contents, for inspection and archiving.
func (c *Controller) Snapshot(sessionID string) (*Session, error) {
	sess := c.store.Get(sessionID)
	if sess == nil {
		return nil, fmt.Errorf("%w: %q", engine.ErrUnknownSession, sessionID)
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	cp := &Session{
		ID:           sess.ID,
		ScenarioID:   sess.ScenarioID,
		RuleSet:      sess.RuleSet,
		Difficulty:   sess.Difficulty,
		Params:       sess.Params,
		State:        sess.State,
		History:      append(engine.History(nil), sess.History...),
		Queue:        append(engine.EffectQueue(nil), sess.Queue...),
		CreatedAt:    sess.CreatedAt,
		LastActivity: sess.LastActivity,
	}
	return cp, nil
}

// newID produces a process-unique session id: monotonic counter plus a
// random suffix so ids are not guessable across restarts.
func (c *Controller) newID() string {
	return fmt.Sprintf("s%06d-%s", c.seq.Add(1), uuid.NewString()[:8])
}
