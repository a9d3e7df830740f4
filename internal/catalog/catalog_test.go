package catalog

import (
	"errors"
	"testing"

	"github.com/mindfold/biaslab/internal/engine"
)

const testBundle = `{
  "scenarios": [
    {
      "id": "cafe",
      "name": "Cafe",
      "rule_set_id": "linear-thinking-coffeeshop",
      "target_biases": ["linear_thinking"],
      "difficulty_tier": "beginner",
      "initial_state": {"satisfaction": 50, "reputation": 50, "resources": 1000},
      "rule_params": {"hire_gain": 7},
      "advanced_variants": {
        "advanced": {
          "initial_state": {"resources": 400},
          "rule_params": {"hire_sweet_spot": 5}
        }
      }
    },
    {
      "id": "fund",
      "name": "Fund",
      "rule_set_id": "confirmation-bias-investment",
      "difficulty_tier": "intermediate",
      "initial_state": {"portfolio": 10000, "knowledge": 30, "diversification": 10, "resources": 2000}
    }
  ]
}`

func mustParse(t *testing.T, data string) *Catalog {
	t.Helper()
	c, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return c
}

func TestParseAndList(t *testing.T) {
	c := mustParse(t, testBundle)
	list := c.List()
	if len(list) != 2 {
		t.Fatalf("got %d scenarios", len(list))
	}
	if list[0].ID != "cafe" || list[1].ID != "fund" {
		t.Errorf("listing must keep file order, got %s, %s", list[0].ID, list[1].ID)
	}
	if list[0].RuleSet != engine.RuleCoffeeShop {
		t.Errorf("rule set = %v", list[0].RuleSet)
	}
	if list[1].DeclaredTier != engine.Intermediate {
		t.Errorf("declared tier = %v", list[1].DeclaredTier)
	}
}

func TestGetUnknownScenario(t *testing.T) {
	c := mustParse(t, testBundle)
	if _, err := c.Get("nope"); !errors.Is(err, engine.ErrUnknownScenario) {
		t.Errorf("err = %v, want ErrUnknownScenario", err)
	}
	if s, err := c.Get("cafe"); err != nil || s.ID != "cafe" {
		t.Errorf("Get(cafe) = %v, %v", s, err)
	}
}

func TestParseRejections(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"not json", `{{{`},
		{"empty bundle", `{"scenarios": []}`},
		{"missing id", `{"scenarios": [{"rule_set_id": "linear-thinking-coffeeshop", "initial_state": {"satisfaction": 1}}]}`},
		{"missing rule set", `{"scenarios": [{"id": "x", "initial_state": {"satisfaction": 1}}]}`},
		{"unknown rule set", `{"scenarios": [{"id": "x", "rule_set_id": "poker", "initial_state": {"satisfaction": 1}}]}`},
		{"missing initial state", `{"scenarios": [{"id": "x", "rule_set_id": "linear-thinking-coffeeshop"}]}`},
		{"unknown tier", `{"scenarios": [{"id": "x", "rule_set_id": "linear-thinking-coffeeshop", "difficulty_tier": "brutal", "initial_state": {"satisfaction": 1}}]}`},
		{"unknown variant tier", `{"scenarios": [{"id": "x", "rule_set_id": "linear-thinking-coffeeshop", "initial_state": {"satisfaction": 1}, "advanced_variants": {"brutal": {}}}]}`},
		{"duplicate id", `{"scenarios": [
			{"id": "x", "rule_set_id": "linear-thinking-coffeeshop", "initial_state": {"satisfaction": 1}},
			{"id": "x", "rule_set_id": "linear-thinking-coffeeshop", "initial_state": {"satisfaction": 1}}
		]}`},
	}
	for _, c := range cases {
		if _, err := Parse([]byte(c.data)); !errors.Is(err, engine.ErrMalformedScenario) {
			t.Errorf("%s: err = %v, want ErrMalformedScenario", c.name, err)
		}
	}
}

func TestResolveDifficulty(t *testing.T) {
	c := mustParse(t, testBundle)
	cafe, _ := c.Get("cafe")
	fund, _ := c.Get("fund")

	if d, err := cafe.ResolveDifficulty("auto"); err != nil || d != engine.Beginner {
		t.Errorf("cafe auto = %v, %v", d, err)
	}
	if d, err := fund.ResolveDifficulty(""); err != nil || d != engine.Intermediate {
		t.Errorf("fund empty = %v, %v", d, err)
	}
	if d, err := cafe.ResolveDifficulty("advanced"); err != nil || d != engine.Advanced {
		t.Errorf("cafe advanced = %v, %v", d, err)
	}
	// fund declares intermediate and carries no variants, so beginner and
	// intermediate work and advanced does not.
	if _, err := fund.ResolveDifficulty("advanced"); !errors.Is(err, engine.ErrUnknownDifficulty) {
		t.Errorf("fund advanced err = %v, want ErrUnknownDifficulty", err)
	}
	if _, err := fund.ResolveDifficulty("beginner"); err != nil {
		t.Errorf("beginner always resolves against the base template: %v", err)
	}
	if _, err := cafe.ResolveDifficulty("nightmare"); !errors.Is(err, engine.ErrUnknownDifficulty) {
		t.Errorf("misspelled tier err = %v, want ErrUnknownDifficulty", err)
	}
}

func TestInitialStateOverlay(t *testing.T) {
	c := mustParse(t, testBundle)
	cafe, _ := c.Get("cafe")

	base, err := cafe.InitialState(engine.Beginner)
	if err != nil {
		t.Fatal(err)
	}
	if base.Turn != 1 {
		t.Errorf("fresh state starts at turn 1, got %d", base.Turn)
	}
	if base.Satisfaction != 50 || base.Resources != 1000 {
		t.Errorf("base template not applied: %+v", base)
	}

	adv, err := cafe.InitialState(engine.Advanced)
	if err != nil {
		t.Fatal(err)
	}
	if adv.Resources != 400 {
		t.Errorf("variant override lost: resources = %v", adv.Resources)
	}
	if adv.Satisfaction != 50 {
		t.Errorf("non-overridden base value lost: satisfaction = %v", adv.Satisfaction)
	}
	if adv.Difficulty != engine.Advanced {
		t.Errorf("difficulty = %v", adv.Difficulty)
	}

	// Two calls never share state.
	a, _ := cafe.InitialState(engine.Beginner)
	a.Satisfaction = 0
	b, _ := cafe.InitialState(engine.Beginner)
	if b.Satisfaction != 50 {
		t.Error("InitialState must build a fresh value each call")
	}
}

func TestParamsLayering(t *testing.T) {
	c := mustParse(t, testBundle)
	cafe, _ := c.Get("cafe")

	base := cafe.Params(engine.Beginner)
	if base.HireGain != 7 {
		t.Errorf("scenario override lost: hire_gain = %v", base.HireGain)
	}
	defaults := engine.DefaultRuleParams(engine.RuleCoffeeShop)
	if base.MarketingGain != defaults.MarketingGain {
		t.Errorf("untouched param should keep its default, got %v", base.MarketingGain)
	}

	adv := cafe.Params(engine.Advanced)
	if adv.HireSweetSpot != 5 {
		t.Errorf("variant param override lost: sweet spot = %v", adv.HireSweetSpot)
	}
	if adv.HireGain != 7 {
		t.Errorf("variant must layer over the scenario override, got %v", adv.HireGain)
	}
}

func TestDefaultBundleLoads(t *testing.T) {
	c := Default()
	list := c.List()
	if len(list) < 3 {
		t.Fatalf("built-in catalog has %d scenarios, want at least 3", len(list))
	}
	for _, s := range list {
		st, err := s.InitialState(s.DeclaredTier)
		if err != nil {
			t.Errorf("%s: %v", s.ID, err)
			continue
		}
		if st.Turn != 1 {
			t.Errorf("%s: turn = %d", s.ID, st.Turn)
		}
	}
}
