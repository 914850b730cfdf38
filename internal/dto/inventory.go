package dto

// StockLine is one vehicle/quantity pair checked or reserved against a
// stock location.
type StockLine struct {
	VehicleID int
	Quantity  int
}

// StockShortage describes one line that a location cannot cover.
type StockShortage struct {
	VehicleID int
	Required  int
	Available int
}
