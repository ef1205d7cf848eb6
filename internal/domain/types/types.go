package types

// ServiceName identifies this service in logs and metric labels.
const ServiceName = "fleet-ops"

// Document store collections
const (
	CollectionTrips    = "trips"
	CollectionVehicles = "vehicles"
	CollectionDrivers  = "drivers"
)

// TripStatus describes where a trip is in its lifecycle.
type TripStatus string

func (s TripStatus) String() string {
	return string(s)
}

const (
	TripScheduled  TripStatus = "SCHEDULED"
	TripAssigned   TripStatus = "ASSIGNED"
	TripInProgress TripStatus = "IN_PROGRESS"
	TripCompleted  TripStatus = "COMPLETED"
	TripCancelled  TripStatus = "CANCELLED"
)

// IsTerminal reports whether no further transition is permitted.
func (s TripStatus) IsTerminal() bool {
	return s == TripCompleted || s == TripCancelled
}

// VehicleType enum
type VehicleType string

const (
	VehicleSedan VehicleType = "SEDAN"
	VehicleVan   VehicleType = "VAN"
	VehicleBus   VehicleType = "BUS"
	VehicleTruck VehicleType = "TRUCK"
)

// UserRole enum for caller identities
type UserRole string

func (r UserRole) String() string {
	return string(r)
}

const (
	RoleAdmin      UserRole = "ADMIN"
	RoleDispatcher UserRole = "DISPATCHER"
	RoleDriver     UserRole = "DRIVER"
)
