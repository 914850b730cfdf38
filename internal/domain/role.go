package domain

// Role identifies the position of an acting user inside the dealer or
// manufacturer organization.
type Role string

const (
	RoleDealerStaff   Role = "DEALER_STAFF"
	RoleDealerManager Role = "DEALER_MANAGER"
	RoleEVMManager    Role = "EVM_MANAGER"
	RoleAdmin         Role = "ADMIN"
)

// WorkflowTrack tells which approval path owns an entity.
type WorkflowTrack string

const (
	TrackDealer       WorkflowTrack = "DEALER"
	TrackManufacturer WorkflowTrack = "MANUFACTURER"
)

// StockLocation is where an inventory sufficiency check runs.
type StockLocation string

const (
	LocationDealer  StockLocation = "DEALER"
	LocationFactory StockLocation = "FACTORY"
)

// Actor is the resolved identity of the user performing a transition.
type Actor struct {
	ID   uint
	Role Role
}

// IsManufacturerSide reports whether the role belongs to the EVM
// (manufacturer) organization rather than a dealership.
func (r Role) IsManufacturerSide() bool {
	return r == RoleEVMManager || r == RoleAdmin
}

// CheckLocation returns the stock location an approver with this role
// verifies: dealer managers check dealer stock, EVM roles check the factory.
func (r Role) CheckLocation() StockLocation {
	if r.IsManufacturerSide() {
		return LocationFactory
	}
	return LocationDealer
}
