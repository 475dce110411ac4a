package request

import (
	internal_errors "github.com/payflowhq/payflow/internal"
	"github.com/payflowhq/payflow/internal/core/datamodel/user"
)

type Action string

const (
	ActionSupplierSubmit Action = "supplier_submit"
	ActionConfirmData    Action = "confirm_data"
	ActionRejectData     Action = "reject_data"
	ActionApprove        Action = "approve"
	ActionReject         Action = "reject"
	ActionMarkPaid       Action = "mark_paid"
)

// ActorSupplier is the pseudo-role of an unauthenticated external supplier
// acting through a token-scoped link.
const ActorSupplier = "supplier"

// Audience identifies who gets notified when a transition lands.
type Audience string

const (
	AudienceRequester   Audience = "requester"
	AudienceAllManagers Audience = "all_managers"
	AudienceAllFinance  Audience = "all_finance"
)

// Transition is one row of the lifecycle table: which actor may move a
// request from one status to the next, and what the transition demands.
type Transition struct {
	From           string
	Action         Action
	ActorRoles     []string
	OwnerOnly      bool
	To             string
	RequiresReason bool
	RequiresProof  bool
	Audiences      []Audience
}

// transitions is the complete lifecycle. Anything not listed here is
// unreachable through the exposed actions.
var transitions = []Transition{
	{
		From:       StatusWaitingSupplier,
		Action:     ActionSupplierSubmit,
		ActorRoles: []string{ActorSupplier},
		To:         StatusWaitingRequesterApproval,
	},
	{
		From:       StatusWaitingRequesterApproval,
		Action:     ActionConfirmData,
		ActorRoles: []string{user.RoleRequester, user.RoleManager, user.RoleFinance},
		OwnerOnly:  true,
		To:         StatusAwaitingApproval,
	},
	{
		From:           StatusWaitingRequesterApproval,
		Action:         ActionRejectData,
		ActorRoles:     []string{user.RoleRequester, user.RoleManager, user.RoleFinance},
		OwnerOnly:      true,
		To:             StatusRejected,
		RequiresReason: true,
		Audiences:      []Audience{AudienceRequester},
	},
	{
		From:       StatusAwaitingApproval,
		Action:     ActionApprove,
		ActorRoles: []string{user.RoleManager},
		To:         StatusPending,
		Audiences:  []Audience{AudienceRequester, AudienceAllFinance},
	},
	{
		From:           StatusAwaitingApproval,
		Action:         ActionReject,
		ActorRoles:     []string{user.RoleManager},
		To:             StatusRejected,
		RequiresReason: true,
		Audiences:      []Audience{AudienceRequester},
	},
	{
		From:          StatusPending,
		Action:        ActionMarkPaid,
		ActorRoles:    []string{user.RoleFinance},
		To:            StatusPaid,
		RequiresProof: true,
		Audiences:     []Audience{AudienceRequester},
	},
	{
		From:           StatusPending,
		Action:         ActionReject,
		ActorRoles:     []string{user.RoleFinance},
		To:             StatusRejected,
		RequiresReason: true,
		Audiences:      []Audience{AudienceRequester},
	},
}

// Resolve finds the transition for (current status, action, actor role).
// It returns ErrInvalidTransition when the action does not apply to the
// status, and ErrUnauthorizedAccess when the status accepts the action but
// not from this actor.
func Resolve(currentStatus string, action Action, actorRole string) (*Transition, error) {
	var statusMatch bool
	for i := range transitions {
		t := &transitions[i]
		if t.From != currentStatus || t.Action != action {
			continue
		}
		statusMatch = true
		for _, role := range t.ActorRoles {
			if role == actorRole {
				return t, nil
			}
		}
	}
	if statusMatch {
		return nil, internal_errors.ErrUnauthorizedAccess
	}
	return nil, internal_errors.ErrInvalidTransition
}

// AllowedActions lists the actions an actor can take on a request in the
// given status. isOwner matters only for owner-gated transitions.
func AllowedActions(currentStatus, actorRole string, isOwner bool) []Action {
	var actions []Action
	for i := range transitions {
		t := &transitions[i]
		if t.From != currentStatus {
			continue
		}
		if t.OwnerOnly && !isOwner {
			continue
		}
		for _, role := range t.ActorRoles {
			if role == actorRole {
				actions = append(actions, t.Action)
				break
			}
		}
	}
	return actions
}

// ValidStatus reports whether s is one of the lifecycle statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusWaitingSupplier, StatusWaitingRequesterApproval,
		StatusAwaitingApproval, StatusPending, StatusPaid, StatusRejected:
		return true
	}
	return false
}
