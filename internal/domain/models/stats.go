package models

// CompanyStatistics is derived from the latest change-feed snapshots and
// never persisted. Owned by the listener set for the duration of a session;
// observers always receive a copy.
type CompanyStatistics struct {
	TotalVehicles  int `json:"total_vehicles"`
	ActiveDrivers  int `json:"active_drivers"`
	TodaysTrips    int `json:"todays_trips"`
	CompletedTrips int `json:"completed_trips"`
}
