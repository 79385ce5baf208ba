package domain

import (
	"encoding/json"
	"strings"

	"github.com/go-openapi/swag"
)

// ServiceEntry is one logged maintenance event for a bike.
type ServiceEntry struct {
	ID            string   `json:"id" validate:"required"`
	BikeID        string   `json:"bikeId" validate:"required"`
	Date          string   `json:"date" validate:"required,datetime=2006-01-02"`
	Odometer      *float64 `json:"odometer" validate:"omitempty,min=0"`
	Hours         *float64 `json:"hours" validate:"omitempty,min=0"`
	ServiceTypeID string   `json:"serviceTypeId" validate:"required,max=64"`
	TypeLabel     string   `json:"typeLabel,omitempty" validate:"max=100"`
	Cost          *float64 `json:"cost" validate:"omitempty,min=0,cents"`
	Vendor        string   `json:"vendor" validate:"max=200"`
	Notes         string   `json:"notes" validate:"max=5000"`
	Extra         Extra    `json:"-"`
}

var serviceKeys = []string{
	"id", "bikeId", "date", "odometer", "hours", "serviceTypeId",
	"typeLabel", "cost", "vendor", "notes",
}

// ServicePatch carries a partial service entry. Nil fields are left alone on merge.
type ServicePatch struct {
	ID            *string `json:"id,omitempty"`
	BikeID        *string `json:"bikeId,omitempty"`
	Date          *string `json:"date,omitempty"`
	Odometer      Numeric `json:"odometer"`
	Hours         Numeric `json:"hours"`
	ServiceTypeID *string `json:"serviceTypeId,omitempty"`
	TypeLabel     *string `json:"typeLabel,omitempty"`
	Cost          Numeric `json:"cost"`
	Vendor        *string `json:"vendor,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

func (s ServiceEntry) MarshalJSON() ([]byte, error) {
	type plain ServiceEntry
	data, err := json.Marshal(plain(s))
	if err != nil {
		return nil, err
	}
	return s.Extra.merge(data)
}

func (s *ServiceEntry) UnmarshalJSON(data []byte) error {
	type plain ServiceEntry
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := splitExtra(data, serviceKeys)
	if err != nil {
		return err
	}
	*s = ServiceEntry(p)
	s.Extra = extra
	return nil
}

func (s ServiceEntry) Clone() ServiceEntry {
	out := s
	out.Odometer = cloneFloat(s.Odometer)
	out.Hours = cloneFloat(s.Hours)
	out.Cost = cloneFloat(s.Cost)
	out.Extra = s.Extra.clone()
	return out
}

// NormalizeNewService builds a complete entry from a partial one, filling defaults.
func NormalizeNewService(p ServicePatch) ServiceEntry {
	s := ServiceEntry{
		ID:            strings.TrimSpace(swag.StringValue(p.ID)),
		BikeID:        strings.TrimSpace(swag.StringValue(p.BikeID)),
		Date:          strings.TrimSpace(swag.StringValue(p.Date)),
		Odometer:      p.Odometer.Float(),
		Hours:         p.Hours.Float(),
		ServiceTypeID: strings.TrimSpace(swag.StringValue(p.ServiceTypeID)),
		TypeLabel:     strings.TrimSpace(swag.StringValue(p.TypeLabel)),
		Cost:          p.Cost.Float(),
		Vendor:        strings.TrimSpace(swag.StringValue(p.Vendor)),
		Notes:         strings.TrimSpace(swag.StringValue(p.Notes)),
	}
	if s.ID == "" {
		s.ID = NewID()
	}
	return s
}

// MergeService overwrites the fields present in p. The id never changes.
func MergeService(existing ServiceEntry, p ServicePatch) ServiceEntry {
	out := existing.Clone()
	if p.BikeID != nil {
		out.BikeID = *p.BikeID
	}
	if p.Date != nil {
		out.Date = *p.Date
	}
	if p.Odometer.Set {
		out.Odometer = p.Odometer.Float()
	}
	if p.Hours.Set {
		out.Hours = p.Hours.Float()
	}
	if p.ServiceTypeID != nil {
		out.ServiceTypeID = *p.ServiceTypeID
	}
	if p.TypeLabel != nil {
		out.TypeLabel = *p.TypeLabel
	}
	if p.Cost.Set {
		out.Cost = p.Cost.Float()
	}
	if p.Vendor != nil {
		out.Vendor = *p.Vendor
	}
	if p.Notes != nil {
		out.Notes = *p.Notes
	}
	return out
}
