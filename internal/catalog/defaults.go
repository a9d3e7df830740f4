package catalog

import "fmt"

// defaultScenarios is the bundled catalog, in the canonical schema. The
// same content ships in data/scenarios.json for deployments that want to
// tune parameters without rebuilding.
const defaultScenarios = `{
  "scenarios": [
    {
      "id": "linear-thinking-coffeeshop",
      "name": "The Coffee Shop",
      "description": "Run a neighborhood coffee shop. Staff, marketing, and supply decisions all pay off on curves, not lines.",
      "rule_set_id": "linear-thinking-coffeeshop",
      "target_biases": ["linear_thinking", "anchoring", "overconfidence"],
      "difficulty_tier": "beginner",
      "initial_state": {"satisfaction": 50, "reputation": 50, "resources": 1000},
      "advanced_variants": {
        "intermediate": {
          "initial_state": {"resources": 800},
          "rule_params": {"hire_sweet_spot": 6.5}
        },
        "advanced": {
          "initial_state": {"satisfaction": 40, "resources": 600},
          "rule_params": {"hire_sweet_spot": 6, "linear_threshold": 7}
        }
      }
    },
    {
      "id": "time-delay-relationship",
      "name": "The Long Conversation",
      "description": "Tend a relationship where the moves that matter most pay off turns after you make them.",
      "rule_set_id": "time-delay-relationship",
      "target_biases": ["short_term_bias", "overconfidence"],
      "difficulty_tier": "beginner",
      "initial_state": {"satisfaction": 50, "trust": 40, "resources": 500},
      "advanced_variants": {
        "intermediate": {
          "initial_state": {"trust": 30},
          "rule_params": {"backlash_threshold": 6}
        },
        "advanced": {
          "initial_state": {"satisfaction": 40, "trust": 20},
          "rule_params": {"backlash_threshold": 5, "gift_ratio_limit": 1.5}
        }
      }
    },
    {
      "id": "confirmation-bias-investment",
      "name": "The Portfolio",
      "description": "Grow a portfolio that compounds quietly while your research habits decide whether the market surprises you.",
      "rule_set_id": "confirmation-bias-investment",
      "target_biases": ["confirmation_bias", "compound_interest_underestimation", "anchoring"],
      "difficulty_tier": "intermediate",
      "initial_state": {"portfolio": 10000, "knowledge": 30, "diversification": 10, "resources": 2000},
      "advanced_variants": {
        "advanced": {
          "initial_state": {"portfolio": 8000, "diversification": 0},
          "rule_params": {"narrow_loss_rate": 0.18, "volatility": 0.05}
        }
      }
    }
  ]
}`

// Default returns the bundled catalog. The bundled content is validated
// by the same strict path as external files; failure here is a build
// defect, hence the panic.
func Default() *Catalog {
	c, err := Parse([]byte(defaultScenarios))
	if err != nil {
		panic(fmt.Sprintf("catalog: bundled scenarios invalid: %v", err))
	}
	return c
}
