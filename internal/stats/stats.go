// Package stats folds change-feed snapshots into derived counters. Every
// function here is pure given its inputs; nothing is persisted.
package stats

import (
	"encoding/json"
	"time"

	"github.com/Temutjin2k/fleet-ops-system/internal/docstore"
	"github.com/Temutjin2k/fleet-ops-system/internal/domain/models"
	"github.com/Temutjin2k/fleet-ops-system/internal/domain/types"
)

// DecodeVehicles converts raw documents to vehicles. Documents that fail to
// decode are skipped, not fatal; skipped reports how many were dropped.
func DecodeVehicles(docs []docstore.Document) (vehicles []models.Vehicle, skipped int) {
	for _, doc := range docs {
		var v models.Vehicle
		if err := json.Unmarshal(doc.Data, &v); err != nil {
			skipped++
			continue
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, skipped
}

func DecodeDrivers(docs []docstore.Document) (drivers []models.Driver, skipped int) {
	for _, doc := range docs {
		var d models.Driver
		if err := json.Unmarshal(doc.Data, &d); err != nil {
			skipped++
			continue
		}
		drivers = append(drivers, d)
	}
	return drivers, skipped
}

func DecodeTrips(docs []docstore.Document) (trips []models.Trip, skipped int) {
	for _, doc := range docs {
		var t models.Trip
		if err := json.Unmarshal(doc.Data, &t); err != nil {
			skipped++
			continue
		}
		trips = append(trips, t)
	}
	return trips, skipped
}

// CountVehicles counts every vehicle in the snapshot, active or not.
func CountVehicles(vehicles []models.Vehicle) int {
	return len(vehicles)
}

// CountActiveDrivers counts only drivers marked active.
func CountActiveDrivers(drivers []models.Driver) int {
	n := 0
	for _, d := range drivers {
		if d.IsActive {
			n++
		}
	}
	return n
}

// CountTodaysTrips counts trips whose scheduled pickup falls within
// [startOfToday, startOfTomorrow) relative to now, in now's location.
func CountTodaysTrips(trips []models.Trip, now time.Time) int {
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfTomorrow := startOfToday.AddDate(0, 0, 1)

	n := 0
	for _, t := range trips {
		pickup := t.ScheduledPickupTime
		if !pickup.Before(startOfToday) && pickup.Before(startOfTomorrow) {
			n++
		}
	}
	return n
}

func CountCompletedTrips(trips []models.Trip) int {
	n := 0
	for _, t := range trips {
		if t.Status == types.TripCompleted {
			n++
		}
	}
	return n
}
