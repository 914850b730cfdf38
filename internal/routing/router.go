package routing

import (
	"evdms/internal/domain"
	apperrors "evdms/internal/errors"
)

// EntityKind distinguishes the two routed entity types.
type EntityKind string

const (
	KindQuote EntityKind = "quote"
	KindOrder EntityKind = "order"
)

// Decision is the routing outcome for one entity: which track owns it and
// which role must sign off on its next transition.
type Decision struct {
	Track                domain.WorkflowTrack
	RequiredApproverRole domain.Role
}

// Capabilities is the action set a role holds against routed entities.
type Capabilities struct {
	SubmitQuote    bool
	ApproveQuote   bool
	ApproveOrder   bool
	CheckInventory bool
	CreateOrder    bool
}

var roleCapabilities = map[domain.Role]Capabilities{
	domain.RoleDealerStaff: {
		SubmitQuote: true,
		CreateOrder: true,
	},
	domain.RoleDealerManager: {
		SubmitQuote:    true,
		ApproveQuote:   true,
		ApproveOrder:   true,
		CheckInventory: true,
		CreateOrder:    true,
	},
	domain.RoleEVMManager: {
		ApproveQuote:   true,
		ApproveOrder:   true,
		CheckInventory: true,
	},
	domain.RoleAdmin: {
		ApproveQuote:   true,
		ApproveOrder:   true,
		CheckInventory: true,
	},
}

// CapabilitiesFor returns the capability set of a role. Unknown roles hold
// nothing.
func CapabilitiesFor(role domain.Role) Capabilities {
	return roleCapabilities[role]
}

// Route decides which workflow track owns an entity created by
// creatorRole and which role must approve it next. Pure; a missing
// creator role deterministically falls back to the dealer-staff track,
// which matches how legacy rows behave.
func Route(creatorRole domain.Role, kind EntityKind) Decision {
	if creatorRole == "" {
		creatorRole = domain.RoleDealerStaff
	}

	if creatorRole == domain.RoleDealerManager {
		return Decision{
			Track:                domain.TrackManufacturer,
			RequiredApproverRole: domain.RoleEVMManager,
		}
	}

	return Decision{
		Track:                domain.TrackDealer,
		RequiredApproverRole: domain.RoleDealerManager,
	}
}

// ApproverMatches reports whether an actor role satisfies the required
// approver role of a decision. Admin stands in for the EVM manager on the
// manufacturer track.
func ApproverMatches(required, actual domain.Role) bool {
	if required == actual {
		return true
	}
	return required == domain.RoleEVMManager && actual == domain.RoleAdmin
}

// AuthorizeDecision checks that the actor may decide (approve or reject)
// an entity owned by the given creator role, combining the capability set
// with the routed approver requirement.
func AuthorizeDecision(creatorRole domain.Role, actor domain.Actor, kind EntityKind, entityID uint, transition string) (Decision, error) {
	decision := Route(creatorRole, kind)

	caps := CapabilitiesFor(actor.Role)
	canApprove := caps.ApproveQuote
	if kind == KindOrder {
		canApprove = caps.ApproveOrder
	}

	if !canApprove || !ApproverMatches(decision.RequiredApproverRole, actor.Role) {
		return Decision{}, apperrors.NewRoleNotPermittedError(string(kind), entityID, transition, string(actor.Role))
	}

	return decision, nil
}
