package query

import (
	"math"

	"github.com/sm8ta/ridewise/internal/core/domain"
)

type Stats struct {
	BikeID          string   `json:"bikeId"`
	EntryCount      int      `json:"entryCount"`
	TotalCost       float64  `json:"totalCost"`
	LastServiceDate string   `json:"lastServiceDate,omitempty"`
	LastOdometer    *float64 `json:"lastOdometer,omitempty"`
}

type FleetStats struct {
	BikeCount       int     `json:"bikeCount"`
	ServiceCount    int     `json:"serviceCount"`
	TotalCost       float64 `json:"totalCost"`
	LastServiceDate string  `json:"lastServiceDate,omitempty"`
}

// StatsForBike aggregates the given entries. Costs are summed in whole cents.
func StatsForBike(bike domain.Bike, entries []domain.ServiceEntry) Stats {
	stats := Stats{
		BikeID:     bike.ID,
		EntryCount: len(entries),
		TotalCost:  sumCost(entries),
	}
	if latest, ok := mostRecent(entries); ok {
		stats.LastServiceDate = latest.Date
		if latest.Odometer != nil {
			v := *latest.Odometer
			stats.LastOdometer = &v
		}
	}
	return stats
}

func StatsForFleet(bikes []domain.Bike, services []domain.ServiceEntry) FleetStats {
	stats := FleetStats{
		BikeCount:    len(bikes),
		ServiceCount: len(services),
		TotalCost:    sumCost(services),
	}
	if latest, ok := mostRecent(services); ok {
		stats.LastServiceDate = latest.Date
	}
	return stats
}

func sumCost(entries []domain.ServiceEntry) float64 {
	var cents int64
	for _, e := range entries {
		if e.Cost == nil {
			continue
		}
		cents += int64(math.Round(*e.Cost * 100))
	}
	return float64(cents) / 100
}

// mostRecent picks the latest dated entry; among equal dates the earliest
// inserted wins. Entries without a parseable date never qualify.
func mostRecent(entries []domain.ServiceEntry) (domain.ServiceEntry, bool) {
	var best domain.ServiceEntry
	bestKey := int64(math.MinInt64)
	for _, e := range entries {
		if k := dateKey(e.Date); k > bestKey {
			best, bestKey = e, k
		}
	}
	return best, bestKey != math.MinInt64
}
