package domain

import "encoding/json"

// Document is the whole persisted state of the application.
type Document struct {
	SchemaVersion int            `json:"schemaVersion"`
	Preferences   Preferences    `json:"preferences"`
	Bikes         []Bike         `json:"bikes"`
	Services      []ServiceEntry `json:"services"`
	Extra         Extra          `json:"-"`
}

var documentKeys = []string{"schemaVersion", "preferences", "bikes", "services"}

func (d Document) MarshalJSON() ([]byte, error) {
	type plain Document
	p := plain(d)
	if p.Bikes == nil {
		p.Bikes = []Bike{}
	}
	if p.Services == nil {
		p.Services = []ServiceEntry{}
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return d.Extra.merge(data)
}

func (d *Document) UnmarshalJSON(data []byte) error {
	type plain Document
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := splitExtra(data, documentKeys)
	if err != nil {
		return err
	}
	*d = Document(p)
	if d.Bikes == nil {
		d.Bikes = []Bike{}
	}
	if d.Services == nil {
		d.Services = []ServiceEntry{}
	}
	d.Extra = extra
	return nil
}

// Clone returns a deep copy that shares no memory with d.
func (d Document) Clone() Document {
	out := Document{
		SchemaVersion: d.SchemaVersion,
		Preferences:   d.Preferences.Clone(),
		Bikes:         make([]Bike, len(d.Bikes)),
		Services:      make([]ServiceEntry, len(d.Services)),
		Extra:         d.Extra.clone(),
	}
	for i, b := range d.Bikes {
		out.Bikes[i] = b.Clone()
	}
	for i, s := range d.Services {
		out.Services[i] = s.Clone()
	}
	return out
}

func (d Document) FindBike(id string) (Bike, int, bool) {
	for i, b := range d.Bikes {
		if b.ID == id {
			return b, i, true
		}
	}
	return Bike{}, -1, false
}

func (d Document) FindService(id string) (ServiceEntry, int, bool) {
	for i, s := range d.Services {
		if s.ID == id {
			return s, i, true
		}
	}
	return ServiceEntry{}, -1, false
}
