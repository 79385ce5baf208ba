package domain

import (
	"encoding/json"
)

// Extra holds JSON members a record carried that this version does not model.
// They are written back untouched so older and newer clients can share a document.
type Extra map[string]json.RawMessage

func splitExtra(data []byte, known []string) (Extra, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

func (e Extra) merge(data []byte) ([]byte, error) {
	if len(e) == 0 {
		return data, nil
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	for k, v := range e {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return json.Marshal(out)
}

func (e Extra) clone() Extra {
	if e == nil {
		return nil
	}
	out := make(Extra, len(e))
	for k, v := range e {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}
