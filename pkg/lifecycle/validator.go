package lifecycle

import "fmt"

// TransitionDecision is the outcome of validating a proposed transition.
// Disallowed moves are ordinary data, not errors: Valid is false and Error
// holds a human-readable explanation. When Valid is true, Rule points at the
// matched table entry so callers can read RequiresApproval and Description
// without a second lookup. Rule is nil for same-state no-op decisions.
type TransitionDecision struct {
	Valid bool
	Error string
	Rule  *TransitionRule
}

// Validate decides whether the acting role may move a project from its
// current state to the target state. It never mutates anything and is safe
// for concurrent use.
func Validate(current, target ProjectState, actor Role) TransitionDecision {
	// Duplicate submits of the current state are a no-op, not an error.
	if current == target {
		return TransitionDecision{Valid: true}
	}

	rule := lookupRule(current, target)
	if rule == nil {
		return TransitionDecision{
			Error: fmt.Sprintf("transition from %s to %s not allowed", current, target),
		}
	}

	if !rule.AllowedRoles.Contains(actor) {
		return TransitionDecision{
			Error: fmt.Sprintf("role '%s' cannot perform this transition; required one of: %s",
				actor, rule.AllowedRoles),
		}
	}

	return TransitionDecision{Valid: true, Rule: rule}
}
