package query

import (
	"testing"

	"github.com/go-openapi/swag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sm8ta/ridewise/internal/core/domain"
)

func ids(entries []domain.ServiceEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestServicesForBike_DateDescendingStable(t *testing.T) {
	services := []domain.ServiceEntry{
		{ID: "a", BikeID: "b1", Date: "2024-04-05"},
		{ID: "x", BikeID: "b2", Date: "2025-01-01"},
		{ID: "b", BikeID: "b1", Date: "garbage"},
		{ID: "c", BikeID: "b1", Date: "2024-06-01"},
		{ID: "d", BikeID: "b1", Date: "2024-04-05"},
	}

	got := ServicesForBike(services, "b1")

	assert.Equal(t, []string{"c", "a", "d", "b"}, ids(got))
}

func TestServicesForBike_UnknownBike(t *testing.T) {
	got := ServicesForBike([]domain.ServiceEntry{{ID: "a", BikeID: "b1"}}, "nope")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSortServices_Modes(t *testing.T) {
	entries := []domain.ServiceEntry{
		{ID: "a", Date: "2024-01-01", Odometer: swag.Float64(500)},
		{ID: "b", Date: "2023-01-01"},
		{ID: "c", Date: "2024-01-01T10:00:00Z", Odometer: swag.Float64(100)},
	}

	assert.Equal(t, []string{"b", "a", "c"}, ids(SortServices(entries, SortDateAsc)))
	assert.Equal(t, []string{"c", "a", "b"}, ids(SortServices(entries, SortDateDesc)))
	assert.Equal(t, []string{"a", "c", "b"}, ids(SortServices(entries, SortOdometerDesc)))
	assert.Equal(t, []string{"b", "c", "a"}, ids(SortServices(entries, SortOdometerAsc)))
	assert.Equal(t, "a", entries[0].ID)
}

func TestParseSortMode(t *testing.T) {
	assert.Equal(t, SortOdometerAsc, ParseSortMode("ODO-ASC"))
	assert.Equal(t, SortDateDesc, ParseSortMode(""))
	assert.Equal(t, SortDateDesc, ParseSortMode("random"))
}

func TestParseDate(t *testing.T) {
	_, ok := ParseDate("2024-04-05")
	assert.True(t, ok)
	_, ok = ParseDate("2024-04-05T08:00:00+02:00")
	assert.True(t, ok)
	_, ok = ParseDate("04/05/2024")
	assert.False(t, ok)
}

func TestFilterEntries(t *testing.T) {
	entries := []domain.ServiceEntry{
		{ID: "a", BikeID: "b1", ServiceTypeID: "oil_change", Vendor: "DIY", Notes: "Full synthetic"},
		{ID: "b", BikeID: "b1", ServiceTypeID: "chain_lube", Vendor: "Moto Shop", Notes: ""},
		{ID: "c", BikeID: "b2", ServiceTypeID: "oil_change", Vendor: "Dealer", Notes: "synthetic blend"},
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{name: "empty filter", filter: Filter{}, want: []string{"a", "b", "c"}},
		{name: "by type", filter: Filter{ServiceTypeID: "oil_change"}, want: []string{"a", "c"}},
		{name: "query in notes", filter: Filter{Query: "SYNTH"}, want: []string{"a", "c"}},
		{name: "query in vendor", filter: Filter{Query: "shop"}, want: []string{"b"}},
		{name: "type and bike", filter: Filter{ServiceTypeID: "oil_change", BikeID: "b2"}, want: []string{"c"}},
		{name: "no match", filter: Filter{Query: "brake"}, want: []string{}},
		{name: "query does not span fields", filter: Filter{Query: "diyfull"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterEntries(entries, tt.filter)))
		})
	}
}

func TestStatsForBike(t *testing.T) {
	bike := domain.Bike{ID: "bike_01"}
	entries := []domain.ServiceEntry{
		{ID: "seed", Date: "2024-04-05", Odometer: swag.Float64(8200), Cost: swag.Float64(64.99)},
		{ID: "new", Date: "2024-04-05", Odometer: swag.Float64(8300), Cost: swag.Float64(35.00)},
		{ID: "free", Date: "2023-12-01", Odometer: swag.Float64(7000)},
	}

	stats := StatsForBike(bike, entries)

	assert.Equal(t, "bike_01", stats.BikeID)
	assert.Equal(t, 3, stats.EntryCount)
	assert.Equal(t, 99.99, stats.TotalCost)
	assert.Equal(t, "2024-04-05", stats.LastServiceDate)
	require.NotNil(t, stats.LastOdometer)
	assert.Equal(t, 8200.0, *stats.LastOdometer)
}

func TestStatsForBike_Empty(t *testing.T) {
	stats := StatsForBike(domain.Bike{ID: "b"}, nil)

	assert.Zero(t, stats.EntryCount)
	assert.Zero(t, stats.TotalCost)
	assert.Empty(t, stats.LastServiceDate)
	assert.Nil(t, stats.LastOdometer)
}

func TestStatsForBike_UndatedEntries(t *testing.T) {
	entries := []domain.ServiceEntry{
		{ID: "a", Date: "someday", Odometer: swag.Float64(100)},
		{ID: "b", Date: "", Cost: swag.Float64(20)},
	}

	stats := StatsForBike(domain.Bike{ID: "b"}, entries)

	assert.Equal(t, 2, stats.EntryCount)
	assert.Equal(t, 20.0, stats.TotalCost)
	assert.Empty(t, stats.LastServiceDate)
	assert.Nil(t, stats.LastOdometer)

	mixed := append(entries, domain.ServiceEntry{ID: "c", Date: "2024-01-02"})
	assert.Equal(t, "2024-01-02", StatsForBike(domain.Bike{}, mixed).LastServiceDate)
	assert.Empty(t, StatsForFleet(nil, entries).LastServiceDate)
}

func TestStatsForBike_CentsDoNotDrift(t *testing.T) {
	entries := make([]domain.ServiceEntry, 10)
	for i := range entries {
		entries[i] = domain.ServiceEntry{Cost: swag.Float64(0.1)}
	}

	assert.Equal(t, 1.0, StatsForBike(domain.Bike{}, entries).TotalCost)
}

func TestStatsForFleet(t *testing.T) {
	bikes := []domain.Bike{{ID: "b1"}, {ID: "b2"}}
	services := []domain.ServiceEntry{
		{BikeID: "b1", Date: "2024-04-05", Cost: swag.Float64(64.99)},
		{BikeID: "b2", Date: "2024-07-01", Cost: swag.Float64(120)},
		{BikeID: "gone", Date: "2022-01-01"},
	}

	stats := StatsForFleet(bikes, services)

	assert.Equal(t, 2, stats.BikeCount)
	assert.Equal(t, 3, stats.ServiceCount)
	assert.Equal(t, 184.99, stats.TotalCost)
	assert.Equal(t, "2024-07-01", stats.LastServiceDate)
}

func TestBikesWithServiceType(t *testing.T) {
	bikes := []domain.Bike{{ID: "b1"}, {ID: "b2"}, {ID: "b3"}}
	services := []domain.ServiceEntry{
		{BikeID: "b3", ServiceTypeID: "oil_change"},
		{BikeID: "b1", ServiceTypeID: "oil_change"},
		{BikeID: "b2", ServiceTypeID: "chain_lube"},
	}

	got := BikesWithServiceType(bikes, services, "oil_change")
	require.Len(t, got, 2)
	assert.Equal(t, "b1", got[0].ID)
	assert.Equal(t, "b3", got[1].ID)

	assert.Len(t, BikesWithServiceType(bikes, services, ""), 3)
}
