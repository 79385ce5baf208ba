package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sm8ta/ridewise/internal/core/domain"
)

// CurrentSchemaVersion is stamped on every document written by this build.
const CurrentSchemaVersion = 2

// fixups[v] upgrades a raw document from version v to v+1.
var fixups = []func(doc map[string]any){
	addServiceDefaults,
	normalizeLegacyFields,
}

// Migrate parses a raw document and upgrades it to CurrentSchemaVersion.
// Fields it does not know about are carried through untouched. Documents
// written by a newer build skip the fixups.
func Migrate(raw []byte) (domain.Document, error) {
	return migrate(raw, time.Now())
}

// migrate is Migrate with the clock used to default missing bike years.
func migrate(raw []byte, now time.Time) (domain.Document, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var generic any
	if err := dec.Decode(&generic); err != nil {
		return domain.Document{}, fmt.Errorf("parse document: %w", err)
	}
	if dec.More() {
		return domain.Document{}, fmt.Errorf("parse document: trailing data")
	}
	obj, ok := generic.(map[string]any)
	if !ok {
		return domain.Document{}, fmt.Errorf("parse document: expected object, got %T", generic)
	}

	migrateRaw(obj, now)

	data, err := json.Marshal(obj)
	if err != nil {
		return domain.Document{}, fmt.Errorf("encode migrated document: %w", err)
	}
	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.Document{}, fmt.Errorf("decode migrated document: %w", err)
	}
	return doc, nil
}

func migrateRaw(doc map[string]any, now time.Time) {
	version := schemaVersionOf(doc)
	for v := version; v >= 0 && v < len(fixups); v++ {
		fixups[v](doc)
	}
	ensureShape(doc)
	coerceNumbers(doc, now)
	if version < CurrentSchemaVersion {
		doc["schemaVersion"] = CurrentSchemaVersion
	}
}

func schemaVersionOf(doc map[string]any) int {
	switch v := doc["schemaVersion"].(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil || n < 0 {
			return 0
		}
		return int(n)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// v0 -> v1: service entries gained hours and notes.
func addServiceDefaults(doc map[string]any) {
	for _, svc := range objects(doc["services"]) {
		if _, ok := svc["hours"]; !ok {
			svc["hours"] = nil
		}
		if _, ok := svc["notes"]; !ok {
			svc["notes"] = ""
		}
	}
}

// v1 -> v2: one field name per concept, numbers stored as numbers.
func normalizeLegacyFields(doc map[string]any) {
	if prefs, ok := doc["prefs"]; ok {
		if _, exists := doc["preferences"]; !exists {
			doc["preferences"] = prefs
		}
		delete(doc, "prefs")
	}

	if prefs, ok := doc["preferences"].(map[string]any); ok {
		switch units := prefs["units"].(type) {
		case string:
			if _, exists := prefs["distance"]; !exists {
				prefs["distance"] = units
			}
			delete(prefs, "units")
		case map[string]any:
			for _, field := range []string{"distance", "temperature"} {
				if v, ok := units[field]; ok {
					if _, exists := prefs[field]; !exists {
						prefs[field] = v
					}
					delete(units, field)
				}
			}
			if len(units) == 0 {
				delete(prefs, "units")
			}
		}
		if d, ok := prefs["distance"].(string); ok {
			prefs["distance"] = normalizeDistance(d)
		}
		if t, ok := prefs["temperature"].(string); ok {
			prefs["temperature"] = normalizeTemperature(t)
		}
	}

	for _, svc := range objects(doc["services"]) {
		rename(svc, "odo", "odometer")
		rename(svc, "type", "serviceTypeId")
	}
}

// ensureShape fills collections and preferences a partial document left out.
func ensureShape(doc map[string]any) {
	if _, ok := doc["bikes"].([]any); !ok {
		doc["bikes"] = []any{}
	}
	if _, ok := doc["services"].([]any); !ok {
		doc["services"] = []any{}
	}

	prefs, ok := doc["preferences"].(map[string]any)
	if !ok {
		prefs = map[string]any{}
		doc["preferences"] = prefs
	}
	defaults := domain.DefaultPreferences()
	if _, ok := prefs["distance"]; !ok {
		prefs["distance"] = string(defaults.Distance)
	}
	if _, ok := prefs["temperature"]; !ok {
		prefs["temperature"] = string(defaults.Temperature)
	}
	if _, ok := prefs["currency"]; !ok {
		prefs["currency"] = defaults.Currency
	}
	if _, ok := prefs["theme"]; !ok {
		prefs["theme"] = string(defaults.Theme)
	}
}

// coerceNumbers runs on every version: numeric fields may arrive as strings
// or garbage regardless of who wrote the document.
func coerceNumbers(doc map[string]any, now time.Time) {
	for _, bike := range objects(doc["bikes"]) {
		year := coerceNumber(bike["year"])
		if year == nil || math.Round(*year) <= 0 {
			bike["year"] = json.Number(strconv.Itoa(now.Year()))
		} else {
			bike["year"] = json.Number(strconv.FormatInt(int64(math.Round(*year)), 10))
		}
		if o, ok := bike["odometer"]; ok {
			if n := coerceNumber(o); n != nil {
				bike["odometer"] = json.Number(strconv.FormatInt(int64(math.Round(*n)), 10))
			} else {
				delete(bike, "odometer")
			}
		}
	}

	for _, svc := range objects(doc["services"]) {
		for _, field := range []string{"odometer", "hours", "cost"} {
			if v, ok := svc[field]; ok {
				svc[field] = numberOrNull(v)
			}
		}
	}
}

func objects(v any) []map[string]any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

func rename(obj map[string]any, from, to string) {
	v, ok := obj[from]
	if !ok {
		return
	}
	if _, exists := obj[to]; !exists {
		obj[to] = v
	}
	delete(obj, from)
}

func normalizeDistance(unit string) string {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "km", "kms", "kilometer", "kilometers", "kilometres", "metric":
		return string(domain.Kilometers)
	case "mi", "mile", "miles", "imperial":
		return string(domain.Miles)
	default:
		return unit
	}
}

func normalizeTemperature(unit string) string {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "c", "celsius", "metric":
		return string(domain.Celsius)
	case "f", "fahrenheit", "imperial":
		return string(domain.Fahrenheit)
	default:
		return unit
	}
}

func numberOrNull(v any) any {
	n := coerceNumber(v)
	if n == nil {
		return nil
	}
	if num, ok := v.(json.Number); ok {
		return num
	}
	return json.Number(strconv.FormatFloat(*n, 'f', -1, 64))
}

func coerceNumber(v any) *float64 {
	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case string:
		s = t
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return nil
	}
	n := domain.ParseNumeric(s)
	return n.Value
}
