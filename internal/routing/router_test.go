package routing

import (
	"testing"

	"evdms/internal/domain"
	apperrors "evdms/internal/errors"

	"github.com/stretchr/testify/assert"
)

func TestRoute_StaffCreatedGoesToDealerTrack(t *testing.T) {
	decision := Route(domain.RoleDealerStaff, KindQuote)

	assert.Equal(t, domain.TrackDealer, decision.Track)
	assert.Equal(t, domain.RoleDealerManager, decision.RequiredApproverRole)
}

func TestRoute_ManagerCreatedGoesToManufacturerTrack(t *testing.T) {
	decision := Route(domain.RoleDealerManager, KindQuote)

	assert.Equal(t, domain.TrackManufacturer, decision.Track)
	assert.Equal(t, domain.RoleEVMManager, decision.RequiredApproverRole)
}

func TestRoute_MissingCreatorRoleDefaultsToDealerTrack(t *testing.T) {
	decision := Route("", KindOrder)

	assert.Equal(t, domain.TrackDealer, decision.Track)
	assert.Equal(t, domain.RoleDealerManager, decision.RequiredApproverRole)
}

func TestRoute_IsDeterministic(t *testing.T) {
	first := Route(domain.RoleDealerManager, KindOrder)
	second := Route(domain.RoleDealerManager, KindOrder)

	assert.Equal(t, first, second)
}

func TestApproverMatches_AdminStandsInForEVMManager(t *testing.T) {
	assert.True(t, ApproverMatches(domain.RoleEVMManager, domain.RoleEVMManager))
	assert.True(t, ApproverMatches(domain.RoleEVMManager, domain.RoleAdmin))
	assert.True(t, ApproverMatches(domain.RoleDealerManager, domain.RoleDealerManager))
	assert.False(t, ApproverMatches(domain.RoleDealerManager, domain.RoleAdmin))
	assert.False(t, ApproverMatches(domain.RoleDealerManager, domain.RoleEVMManager))
}

func TestAuthorizeDecision_DealerManagerOnStaffQuote(t *testing.T) {
	actor := domain.Actor{ID: 1, Role: domain.RoleDealerManager}

	decision, err := AuthorizeDecision(domain.RoleDealerStaff, actor, KindQuote, 42, "approve")

	assert.NoError(t, err)
	assert.Equal(t, domain.TrackDealer, decision.Track)
}

func TestAuthorizeDecision_EVMManagerOnManagerQuote(t *testing.T) {
	actor := domain.Actor{ID: 2, Role: domain.RoleEVMManager}

	decision, err := AuthorizeDecision(domain.RoleDealerManager, actor, KindQuote, 42, "approve")

	assert.NoError(t, err)
	assert.Equal(t, domain.TrackManufacturer, decision.Track)
}

func TestAuthorizeDecision_CrossTrackRejected(t *testing.T) {
	evm := domain.Actor{ID: 2, Role: domain.RoleEVMManager}
	_, err := AuthorizeDecision(domain.RoleDealerStaff, evm, KindQuote, 42, "approve")

	_, ok := apperrors.IsRoleNotPermittedError(err)
	assert.True(t, ok)

	dealer := domain.Actor{ID: 3, Role: domain.RoleDealerManager}
	_, err = AuthorizeDecision(domain.RoleDealerManager, dealer, KindOrder, 42, "reject")

	_, ok = apperrors.IsRoleNotPermittedError(err)
	assert.True(t, ok)
}

func TestAuthorizeDecision_StaffNeverApproves(t *testing.T) {
	staff := domain.Actor{ID: 4, Role: domain.RoleDealerStaff}

	_, err := AuthorizeDecision(domain.RoleDealerStaff, staff, KindQuote, 42, "approve")

	_, ok := apperrors.IsRoleNotPermittedError(err)
	assert.True(t, ok)
}

func TestCapabilitiesFor_EVMRolesCannotCreateOrders(t *testing.T) {
	assert.False(t, CapabilitiesFor(domain.RoleEVMManager).CreateOrder)
	assert.False(t, CapabilitiesFor(domain.RoleAdmin).CreateOrder)
	assert.True(t, CapabilitiesFor(domain.RoleDealerStaff).CreateOrder)
	assert.True(t, CapabilitiesFor(domain.RoleDealerManager).CreateOrder)
}

func TestCapabilitiesFor_UnknownRoleHoldsNothing(t *testing.T) {
	caps := CapabilitiesFor(domain.Role("INTERN"))
	assert.Equal(t, Capabilities{}, caps)
}
