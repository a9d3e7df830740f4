// Command replay runs a scripted decision sequence against an in-process
// engine and prints the state and feedback of every turn. Running the
// same script twice prints identical output — the engine is fully
// deterministic, which this tool doubles as a demonstration of.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/mindfold/biaslab/internal/catalog"
	"github.com/mindfold/biaslab/internal/engine"
	"github.com/mindfold/biaslab/internal/session"
)

// script is the wire format of a replay file.
type script struct {
	ScenarioID string            `json:"scenario_id"`
	Difficulty string            `json:"difficulty"`
	Decisions  []engine.Decision `json:"decisions"`
}

// demoScript is used when no file is given: the canonical linear-thinking
// playthrough, hiring harder every turn.
var demoScript = script{
	ScenarioID: "linear-thinking-coffeeshop",
	Difficulty: "beginner",
	Decisions: []engine.Decision{
		{Action: "hire_staff", Amount: 2},
		{Action: "hire_staff", Amount: 4},
		{Action: "hire_staff", Amount: 6},
		{Action: "hire_staff", Amount: 8},
		{Action: "hire_staff", Amount: 10},
	},
}

func main() {
	scenarioFile := flag.String("scenarios", "", "scenario catalog file (default: bundled)")
	scriptFile := flag.String("script", "", "replay script file (default: built-in demo)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	cat := catalog.Default()
	if *scenarioFile != "" {
		var err error
		cat, err = catalog.LoadFile(*scenarioFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load scenarios: %v\n", err)
			os.Exit(1)
		}
	}

	sc := demoScript
	if *scriptFile != "" {
		data, err := os.ReadFile(*scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read script: %v\n", err)
			os.Exit(1)
		}
		if err := json.Unmarshal(data, &sc); err != nil {
			fmt.Fprintf(os.Stderr, "parse script: %v\n", err)
			os.Exit(1)
		}
	}

	ctrl := session.NewController(cat, session.NewStore(0))
	sess, err := ctrl.CreateSession(sc.ScenarioID, sc.Difficulty)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create session: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("scenario %s (%s), session %s\n\n",
		sess.ScenarioID, engine.DifficultyName(sess.Difficulty), sess.ID)
	printState(sess.State.Vars(sess.RuleSet))

	for i, d := range sc.Decisions {
		out, err := ctrl.ExecuteTurn(sess.ID, d)
		if err != nil {
			fmt.Fprintf(os.Stderr, "turn %d: %v\n", i+1, err)
			os.Exit(1)
		}
		fmt.Printf("\n── turn %d: %s", i+1, d.Action)
		if d.Amount != 0 {
			fmt.Printf(" (amount %g)", d.Amount)
		}
		fmt.Println()
		printState(out.State)
		fmt.Printf("  stage: %s\n", out.Feedback.Stage)
		fmt.Printf("  %s\n", out.Feedback.Summary)
		for _, b := range out.Feedback.CalledOutBiases {
			fmt.Printf("  bias: %s\n", b)
		}
	}
}

// printState prints state variables in a stable order.
func printState(vars map[string]any) {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		if k == "turn_number" || k == "difficulty" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-16s %v\n", k, vars[k])
	}
}
