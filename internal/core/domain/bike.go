package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/go-openapi/swag"
)

const DefaultBikeName = "New Bike"

type Bike struct {
	ID       string `json:"id" validate:"required"`
	Name     string `json:"name,omitempty" validate:"max=100"`
	Nickname string `json:"nickname,omitempty" validate:"max=100"`
	Make     string `json:"make" validate:"max=100"`
	Model    string `json:"model" validate:"max=100"`
	Year     int    `json:"year" validate:"min=1885,maxyear"`
	Odometer *int64 `json:"odometer,omitempty" validate:"omitempty,min=0"`
	VIN      string `json:"vin,omitempty" validate:"omitempty,min=5,max=17,alphanum"`
	Extra    Extra  `json:"-"`
}

var bikeKeys = []string{"id", "name", "nickname", "make", "model", "year", "odometer", "vin"}

// BikePatch carries a partial bike. Nil fields are left alone on merge.
type BikePatch struct {
	ID       *string `json:"id,omitempty"`
	Name     *string `json:"name,omitempty"`
	Nickname *string `json:"nickname,omitempty"`
	Make     *string `json:"make,omitempty"`
	Model    *string `json:"model,omitempty"`
	Year     Numeric `json:"year"`
	Odometer Numeric `json:"odometer"`
	VIN      *string `json:"vin,omitempty"`
}

func (b Bike) MarshalJSON() ([]byte, error) {
	type plain Bike
	data, err := json.Marshal(plain(b))
	if err != nil {
		return nil, err
	}
	return b.Extra.merge(data)
}

func (b *Bike) UnmarshalJSON(data []byte) error {
	type plain Bike
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := splitExtra(data, bikeKeys)
	if err != nil {
		return err
	}
	*b = Bike(p)
	b.Extra = extra
	return nil
}

// DisplayName prefers the nickname, then the name, then make and model.
func (b Bike) DisplayName() string {
	if b.Nickname != "" {
		return b.Nickname
	}
	if b.Name != "" {
		return b.Name
	}
	if label := strings.TrimSpace(b.Make + " " + b.Model); label != "" {
		return label
	}
	return b.ID
}

func (b Bike) Clone() Bike {
	out := b
	out.Odometer = cloneInt(b.Odometer)
	out.Extra = b.Extra.clone()
	return out
}

// NormalizeNewBike builds a complete bike from a partial one, filling defaults.
func NormalizeNewBike(p BikePatch, now time.Time) Bike {
	b := Bike{
		ID:       strings.TrimSpace(swag.StringValue(p.ID)),
		Name:     strings.TrimSpace(swag.StringValue(p.Name)),
		Nickname: strings.TrimSpace(swag.StringValue(p.Nickname)),
		Make:     strings.TrimSpace(swag.StringValue(p.Make)),
		Model:    strings.TrimSpace(swag.StringValue(p.Model)),
		Year:     now.Year(),
		Odometer: p.Odometer.Int(),
		VIN:      strings.ToUpper(strings.TrimSpace(swag.StringValue(p.VIN))),
	}
	if b.ID == "" {
		b.ID = NewID()
	}
	if b.Name == "" {
		b.Name = DefaultBikeName
	}
	if year := p.Year.Int(); year != nil && *year > 0 {
		b.Year = int(*year)
	}
	return b
}

// MergeBike overwrites the fields present in p. The id never changes.
func MergeBike(existing Bike, p BikePatch) Bike {
	out := existing.Clone()
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Nickname != nil {
		out.Nickname = *p.Nickname
	}
	if p.Make != nil {
		out.Make = *p.Make
	}
	if p.Model != nil {
		out.Model = *p.Model
	}
	if year := p.Year.Int(); p.Year.Set && year != nil && *year > 0 {
		out.Year = int(*year)
	}
	if p.Odometer.Set {
		out.Odometer = p.Odometer.Int()
	}
	if p.VIN != nil {
		out.VIN = strings.ToUpper(strings.TrimSpace(*p.VIN))
	}
	return out
}
