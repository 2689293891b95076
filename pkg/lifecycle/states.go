package lifecycle

import "fmt"

// ProjectState represents where a capture project sits in its lifecycle
type ProjectState string

const (
	StateRequested  ProjectState = "requested"
	StateAssigned   ProjectState = "assigned"
	StateCaptured   ProjectState = "captured"
	StateProcessing ProjectState = "processing"
	StateQA         ProjectState = "qa"
	StateDelivered  ProjectState = "delivered"
	StateApproved   ProjectState = "approved"
	StateArchived   ProjectState = "archived"
)

// Role identifies the capability class of the acting user
type Role string

const (
	RoleAdmin         Role = "admin"
	RoleSalesLead     Role = "sales_lead"
	RoleTechnician    Role = "technician"
	RoleApprover      Role = "approver"
	RoleCustomerOwner Role = "customer_owner"
)

// AllStates returns every project state in canonical happy-path order.
func AllStates() []ProjectState {
	return []ProjectState{
		StateRequested,
		StateAssigned,
		StateCaptured,
		StateProcessing,
		StateQA,
		StateDelivered,
		StateApproved,
		StateArchived,
	}
}

// AllRoles returns every defined role.
func AllRoles() []Role {
	return []Role{
		RoleAdmin,
		RoleSalesLead,
		RoleTechnician,
		RoleApprover,
		RoleCustomerOwner,
	}
}

// ParseState converts a raw string into a ProjectState. Unrecognized values
// are a caller contract violation and returned as an error.
func ParseState(s string) (ProjectState, error) {
	state := ProjectState(s)
	if !state.Valid() {
		return "", fmt.Errorf("unknown project state %q", s)
	}
	return state, nil
}

// ParseRole converts a raw string into a Role.
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return role, nil
}

// Valid reports whether the state is one of the eight defined values.
func (s ProjectState) Valid() bool {
	switch s {
	case StateRequested, StateAssigned, StateCaptured, StateProcessing,
		StateQA, StateDelivered, StateApproved, StateArchived:
		return true
	}
	return false
}

// Valid reports whether the role is one of the five defined values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSalesLead, RoleTechnician, RoleApprover, RoleCustomerOwner:
		return true
	}
	return false
}

func (s ProjectState) String() string { return string(s) }

func (r Role) String() string { return string(r) }
