package storage

import (
	"github.com/go-openapi/swag"

	"github.com/sm8ta/ridewise/internal/core/domain"
)

// Seed returns the document a fresh install starts with.
func Seed() domain.Document {
	return domain.Document{
		SchemaVersion: CurrentSchemaVersion,
		Preferences:   domain.DefaultPreferences(),
		Bikes: []domain.Bike{
			{
				ID:       "bike_01",
				Name:     "Adventure Twin",
				Nickname: "Adventure Twin",
				Make:     "Honda",
				Model:    "CB500X",
				Year:     2021,
				Odometer: swag.Int64(8200),
			},
			{
				ID:       "bike_02",
				Name:     "Midnight Torque",
				Nickname: "Midnight Torque",
				Make:     "Yamaha",
				Model:    "MT-07",
				Year:     2019,
			},
		},
		Services: []domain.ServiceEntry{
			{
				ID:            "svc_seed_1",
				BikeID:        "bike_01",
				Date:          "2024-04-05",
				Odometer:      swag.Float64(8200),
				ServiceTypeID: "oil_change",
				TypeLabel:     "Oil change",
				Cost:          swag.Float64(64.99),
				Vendor:        "DIY",
				Notes:         "Swapped to full synthetic, torqued drain plug to 31 ft-lb.",
			},
		},
	}
}
