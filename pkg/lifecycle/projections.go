package lifecycle

import "fmt"

// ValidNextStates returns every state the given role may move a project to
// from the current state. An empty result is normal: the role simply has no
// permitted moves from there.
func ValidNextStates(current ProjectState, actor Role) []ProjectState {
	var next []ProjectState
	for i := range transitionRules {
		rule := &transitionRules[i]
		if rule.From == current && rule.AllowedRoles.Contains(actor) {
			next = append(next, rule.To)
		}
	}
	return next
}

// TransitionInfo returns the rule for a (from, to) pair regardless of role,
// for UI hints. The second return is false when no such edge exists.
func TransitionInfo(from, to ProjectState) (TransitionRule, bool) {
	rule := lookupRule(from, to)
	if rule == nil {
		return TransitionRule{}, false
	}
	return *rule, true
}

// RequiresApproval reports whether the transition needs explicit sign-off.
// An edge that does not exist cannot require approval.
func RequiresApproval(from, to ProjectState) bool {
	rule := lookupRule(from, to)
	return rule != nil && rule.RequiresApproval
}

// Description returns advisory text for a transition. When no rule matches
// it falls back to generic wording rather than failing.
func Description(from, to ProjectState) string {
	if rule := lookupRule(from, to); rule != nil {
		return rule.Description
	}
	return fmt.Sprintf("move from %s to %s", from, to)
}

// HappyPath returns the canonical forward-only progression of states, for
// progress-bar style UI. Not used for validation.
func HappyPath() []ProjectState {
	return AllStates()
}

// TerminalStates returns the states a project does not move forward from.
func TerminalStates() []ProjectState {
	return []ProjectState{StateApproved, StateArchived}
}

// PayoutEligibleStates returns the states at which downstream payout logic
// is permitted to trigger.
func PayoutEligibleStates() []ProjectState {
	return []ProjectState{StateApproved}
}
