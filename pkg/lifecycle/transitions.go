package lifecycle

import (
	"fmt"
	"strings"
)

// RoleSet is the set of roles permitted to perform a transition.
type RoleSet map[Role]struct{}

// NewRoleSet builds a RoleSet from the given roles.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Contains reports whether the role is a member of the set.
func (rs RoleSet) Contains(r Role) bool {
	_, ok := rs[r]
	return ok
}

// String renders the members in canonical role order.
func (rs RoleSet) String() string {
	names := make([]string, 0, len(rs))
	for _, r := range AllRoles() {
		if rs.Contains(r) {
			names = append(names, string(r))
		}
	}
	return strings.Join(names, ", ")
}

// TransitionRule describes one admissible edge in the lifecycle graph.
type TransitionRule struct {
	From             ProjectState
	To               ProjectState
	AllowedRoles     RoleSet
	RequiresApproval bool
	Description      string
}

type transitionKey struct {
	from ProjectState
	to   ProjectState
}

// transitionRules is the complete catalogue of legal lifecycle moves. It is
// built once at package init and never mutated afterward. The archive rows
// are enumerated explicitly, one per originating state, so the table stays
// the single source of truth and the validator needs no state-specific
// branches.
var transitionRules = []TransitionRule{
	{
		From:         StateRequested,
		To:           StateAssigned,
		AllowedRoles: NewRoleSet(RoleAdmin, RoleSalesLead),
		Description:  "assign technician to capture request",
	},
	{
		From:         StateAssigned,
		To:           StateCaptured,
		AllowedRoles: NewRoleSet(RoleTechnician),
		Description:  "raw capture uploaded",
	},
	{
		From:         StateCaptured,
		To:           StateProcessing,
		AllowedRoles: NewRoleSet(RoleTechnician, RoleAdmin),
		Description:  "begin processing captured data",
	},
	{
		From:         StateProcessing,
		To:           StateQA,
		AllowedRoles: NewRoleSet(RoleTechnician, RoleAdmin),
		Description:  "submit processed model for review",
	},
	{
		From:             StateQA,
		To:               StateDelivered,
		AllowedRoles:     NewRoleSet(RoleApprover),
		RequiresApproval: true,
		Description:      "quality approved, deliver to customer",
	},
	{
		From:         StateQA,
		To:           StateCaptured,
		AllowedRoles: NewRoleSet(RoleApprover),
		Description:  "quality rejected, request retake",
	},
	{
		From:             StateDelivered,
		To:               StateApproved,
		AllowedRoles:     NewRoleSet(RoleCustomerOwner),
		RequiresApproval: true,
		Description:      "customer accepted delivery, payout eligible",
	},
	{
		From:         StateDelivered,
		To:           StateCaptured,
		AllowedRoles: NewRoleSet(RoleCustomerOwner),
		Description:  "customer rejected delivery, request retake",
	},
	{
		From:         StateApproved,
		To:           StateArchived,
		AllowedRoles: NewRoleSet(RoleAdmin, RoleApprover),
		Description:  "close out completed project",
	},

	// Cancellation: every non-terminal state can be archived, with the
	// permitted role set narrowing as the project moves downstream.
	{
		From:         StateRequested,
		To:           StateArchived,
		AllowedRoles: NewRoleSet(RoleAdmin, RoleSalesLead, RoleCustomerOwner),
		Description:  "cancel capture request",
	},
	{
		From:         StateAssigned,
		To:           StateArchived,
		AllowedRoles: NewRoleSet(RoleAdmin, RoleSalesLead, RoleCustomerOwner),
		Description:  "cancel assigned project",
	},
	{
		From:         StateCaptured,
		To:           StateArchived,
		AllowedRoles: NewRoleSet(RoleAdmin, RoleSalesLead),
		Description:  "abandon project after capture",
	},
	{
		From:         StateProcessing,
		To:           StateArchived,
		AllowedRoles: NewRoleSet(RoleAdmin),
		Description:  "abandon project during processing",
	},
	{
		From:         StateQA,
		To:           StateArchived,
		AllowedRoles: NewRoleSet(RoleAdmin, RoleApprover),
		Description:  "abandon project during review",
	},
	{
		From:         StateDelivered,
		To:           StateArchived,
		AllowedRoles: NewRoleSet(RoleAdmin, RoleCustomerOwner),
		Description:  "abandon project after delivery",
	},
}

// transitionIndex provides O(1) rule lookup by (from, to).
var transitionIndex = buildIndex()

func buildIndex() map[transitionKey]*TransitionRule {
	index := make(map[transitionKey]*TransitionRule, len(transitionRules))
	for i := range transitionRules {
		rule := &transitionRules[i]
		key := transitionKey{from: rule.From, to: rule.To}
		if _, dup := index[key]; dup {
			panic(fmt.Sprintf("duplicate transition rule %s -> %s", rule.From, rule.To))
		}
		index[key] = rule
	}
	return index
}

// Rules returns a copy of the full transition table.
func Rules() []TransitionRule {
	out := make([]TransitionRule, len(transitionRules))
	copy(out, transitionRules)
	return out
}

func lookupRule(from, to ProjectState) *TransitionRule {
	return transitionIndex[transitionKey{from: from, to: to}]
}
