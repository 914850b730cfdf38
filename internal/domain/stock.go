package domain

// VehicleStock is one vehicle's stock position at a location (dealer
// warehouse or factory). Reserved counts units held by approved quotes
// that have not yet been committed by an order approval.
type VehicleStock struct {
	VehicleID int
	Location  StockLocation
	Quantity  int
	Reserved  int
}

// Available is the unreserved stock usable for new commitments.
func (s VehicleStock) Available() int {
	available := s.Quantity - s.Reserved
	if available < 0 {
		return 0
	}
	return available
}
