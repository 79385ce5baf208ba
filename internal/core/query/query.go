package query

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/sm8ta/ridewise/internal/core/domain"
)

type SortMode string

const (
	SortDateDesc     SortMode = "date-desc"
	SortDateAsc      SortMode = "date-asc"
	SortOdometerDesc SortMode = "odo-desc"
	SortOdometerAsc  SortMode = "odo-asc"
)

// ParseSortMode maps user input to a sort mode, defaulting to newest first.
func ParseSortMode(s string) SortMode {
	switch mode := SortMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case SortDateAsc, SortOdometerDesc, SortOdometerAsc:
		return mode
	default:
		return SortDateDesc
	}
}

// ParseDate accepts calendar dates and RFC 3339 timestamps.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// dateKey orders unparsable dates before every real one.
func dateKey(s string) int64 {
	t, ok := ParseDate(s)
	if !ok {
		return math.MinInt64
	}
	return t.Unix()
}

func odometerKey(e domain.ServiceEntry) float64 {
	if e.Odometer == nil {
		return 0
	}
	return *e.Odometer
}

// ServicesForBike returns the bike's entries, newest first.
func ServicesForBike(services []domain.ServiceEntry, bikeID string) []domain.ServiceEntry {
	out := make([]domain.ServiceEntry, 0)
	for _, s := range services {
		if s.BikeID == bikeID {
			out = append(out, s)
		}
	}
	return SortServices(out, SortDateDesc)
}

// SortServices returns a sorted copy. Equal keys keep their input order.
func SortServices(entries []domain.ServiceEntry, mode SortMode) []domain.ServiceEntry {
	out := make([]domain.ServiceEntry, len(entries))
	copy(out, entries)

	var less func(a, b domain.ServiceEntry) bool
	switch mode {
	case SortDateAsc:
		less = func(a, b domain.ServiceEntry) bool { return dateKey(a.Date) < dateKey(b.Date) }
	case SortOdometerDesc:
		less = func(a, b domain.ServiceEntry) bool { return odometerKey(a) > odometerKey(b) }
	case SortOdometerAsc:
		less = func(a, b domain.ServiceEntry) bool { return odometerKey(a) < odometerKey(b) }
	default:
		less = func(a, b domain.ServiceEntry) bool { return dateKey(a.Date) > dateKey(b.Date) }
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

type Filter struct {
	ServiceTypeID string
	Query         string
	BikeID        string
}

// FilterEntries keeps entries matching every non-empty criterion, in order.
// Query matches vendor or notes, case-insensitively.
func FilterEntries(entries []domain.ServiceEntry, f Filter) []domain.ServiceEntry {
	q := strings.ToLower(strings.TrimSpace(f.Query))

	out := make([]domain.ServiceEntry, 0, len(entries))
	for _, e := range entries {
		if f.ServiceTypeID != "" && e.ServiceTypeID != f.ServiceTypeID {
			continue
		}
		if f.BikeID != "" && e.BikeID != f.BikeID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(e.Vendor+"\n"+e.Notes), q) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// BikesWithServiceType returns the bikes that have at least one entry of typeID.
func BikesWithServiceType(bikes []domain.Bike, services []domain.ServiceEntry, typeID string) []domain.Bike {
	if typeID == "" {
		return append([]domain.Bike(nil), bikes...)
	}
	has := make(map[string]bool)
	for _, s := range services {
		if s.ServiceTypeID == typeID {
			has[s.BikeID] = true
		}
	}
	out := make([]domain.Bike, 0, len(bikes))
	for _, b := range bikes {
		if has[b.ID] {
			out = append(out, b)
		}
	}
	return out
}
