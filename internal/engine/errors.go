package engine

import "errors"

// Sentinel errors for the engine's public failure modes. Callers match
// with errors.Is; the API layer maps them to wire kinds via ErrorKind.
var (
	ErrUnknownScenario   = errors.New("unknown scenario")
	ErrUnknownDifficulty = errors.New("unknown difficulty")
	ErrUnknownSession    = errors.New("unknown session")
	ErrMalformedDecision = errors.New("malformed decision")
	ErrMalformedScenario = errors.New("malformed scenario")
)

// ErrorKind returns the wire kind for a surfaced error, or "Internal" for
// anything outside the taxonomy.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrUnknownScenario):
		return "UnknownScenario"
	case errors.Is(err, ErrUnknownDifficulty):
		return "UnknownDifficulty"
	case errors.Is(err, ErrUnknownSession):
		return "UnknownSession"
	case errors.Is(err, ErrMalformedDecision):
		return "MalformedDecision"
	case errors.Is(err, ErrMalformedScenario):
		return "MalformedScenario"
	default:
		return "Internal"
	}
}
