package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanPerform(t *testing.T) {
	cases := []struct {
		name    string
		role    Role
		action  Action
		status  LoanStatus
		allowed bool
	}{
		{"verifier verifies pending", RoleVerifier, ActionVerify, StatusPending, true},
		{"verifier rejects pending", RoleVerifier, ActionReject, StatusPending, true},
		{"verifier cannot approve verified", RoleVerifier, ActionApprove, StatusVerified, false},
		{"verifier cannot reject verified", RoleVerifier, ActionReject, StatusVerified, false},
		{"admin verifies pending", RoleAdmin, ActionVerify, StatusPending, true},
		{"admin approves verified", RoleAdmin, ActionApprove, StatusVerified, true},
		{"admin rejects pending", RoleAdmin, ActionReject, StatusPending, true},
		{"admin rejects verified", RoleAdmin, ActionReject, StatusVerified, true},
		{"admin cannot approve pending", RoleAdmin, ActionApprove, StatusPending, false},
		{"nobody acts on approved", RoleAdmin, ActionReject, StatusApproved, false},
		{"nobody acts on rejected", RoleAdmin, ActionVerify, StatusRejected, false},
		{"unknown role denied", Role("auditor"), ActionVerify, StatusPending, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, CanPerform(tc.role, tc.action, tc.status))
		})
	}
}

func TestHasCapability(t *testing.T) {
	assert.True(t, HasCapability(RoleVerifier, ActionVerify))
	assert.True(t, HasCapability(RoleVerifier, ActionReject))
	assert.False(t, HasCapability(RoleVerifier, ActionApprove))
	assert.True(t, HasCapability(RoleAdmin, ActionApprove))
	assert.False(t, HasCapability(Role("auditor"), ActionVerify))
}

func TestDefaultListStatuses(t *testing.T) {
	assert.Equal(t, []LoanStatus{StatusPending}, DefaultListStatuses(RoleVerifier))
	assert.Equal(t,
		[]LoanStatus{StatusVerified, StatusApproved, StatusRejected},
		DefaultListStatuses(RoleAdmin))
	assert.Empty(t, DefaultListStatuses(Role("auditor")))
}
