package domain

// Role is a reviewer role as seen by the access control gate.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleVerifier Role = "verifier"
)

// Action is a requested state transition.
type Action string

const (
	ActionVerify  Action = "verify"
	ActionReject  Action = "reject"
	ActionApprove Action = "approve"
)

// capabilities maps role -> action -> statuses the action may start from.
// Adding a role or action is a single table edit; nothing else consults
// role names directly.
var capabilities = map[Role]map[Action][]LoanStatus{
	RoleVerifier: {
		ActionVerify: {StatusPending},
		ActionReject: {StatusPending},
	},
	RoleAdmin: {
		ActionVerify:  {StatusPending},
		ActionReject:  {StatusPending, StatusVerified},
		ActionApprove: {StatusVerified},
	},
}

// CanPerform reports whether role may perform action on an application
// currently in status. Pure and side-effect free.
func CanPerform(role Role, action Action, status LoanStatus) bool {
	for _, s := range capabilities[role][action] {
		if s == status {
			return true
		}
	}
	return false
}

// HasCapability reports whether role may ever perform action, in any status.
// The lifecycle engine uses this to tell an authorization failure apart from
// a state conflict.
func HasCapability(role Role, action Action) bool {
	_, ok := capabilities[role][action]
	return ok
}

// DefaultListStatuses is the listing scope applied when no explicit status
// filter is given: verifiers work the intake queue, admins the processed set.
func DefaultListStatuses(role Role) []LoanStatus {
	switch role {
	case RoleVerifier:
		return []LoanStatus{StatusPending}
	case RoleAdmin:
		return []LoanStatus{StatusVerified, StatusApproved, StatusRejected}
	}
	return nil
}
