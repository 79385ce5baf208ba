package domain

import "encoding/json"

type DistanceUnit string

const (
	Miles      DistanceUnit = "miles"
	Kilometers DistanceUnit = "kilometers"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
	ThemeAuto  Theme = "auto"
)

type TemperatureUnit string

const (
	Fahrenheit TemperatureUnit = "fahrenheit"
	Celsius    TemperatureUnit = "celsius"
)

type Preferences struct {
	Distance    DistanceUnit    `json:"distance" validate:"required,oneof=miles kilometers"`
	Temperature TemperatureUnit `json:"temperature" validate:"required,oneof=fahrenheit celsius"`
	Currency    string          `json:"currency" validate:"required,iso4217"`
	Theme       Theme           `json:"theme" validate:"required,oneof=light dark auto"`
	Extra       Extra           `json:"-"`
}

var preferenceKeys = []string{"distance", "temperature", "currency", "theme"}

type PreferencesPatch struct {
	Distance    *DistanceUnit    `json:"distance,omitempty"`
	Temperature *TemperatureUnit `json:"temperature,omitempty"`
	Currency    *string          `json:"currency,omitempty"`
	Theme       *Theme           `json:"theme,omitempty"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		Distance:    Miles,
		Temperature: Fahrenheit,
		Currency:    "USD",
		Theme:       ThemeLight,
	}
}

func (p Preferences) MarshalJSON() ([]byte, error) {
	type plain Preferences
	data, err := json.Marshal(plain(p))
	if err != nil {
		return nil, err
	}
	return p.Extra.merge(data)
}

func (p *Preferences) UnmarshalJSON(data []byte) error {
	type plain Preferences
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	extra, err := splitExtra(data, preferenceKeys)
	if err != nil {
		return err
	}
	*p = Preferences(v)
	p.Extra = extra
	return nil
}

func (p Preferences) Clone() Preferences {
	out := p
	out.Extra = p.Extra.clone()
	return out
}

func MergePreferences(existing Preferences, patch PreferencesPatch) Preferences {
	out := existing.Clone()
	if patch.Distance != nil {
		out.Distance = *patch.Distance
	}
	if patch.Temperature != nil {
		out.Temperature = *patch.Temperature
	}
	if patch.Currency != nil {
		out.Currency = *patch.Currency
	}
	if patch.Theme != nil {
		out.Theme = *patch.Theme
	}
	return out
}
