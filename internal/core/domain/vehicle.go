package domain

import (
	"strconv"
	"strings"
)

// VINField is one decoded variable returned by the vehicle registry.
type VINField struct {
	Variable   string `json:"variable"`
	VariableID int    `json:"variableId"`
	Value      string `json:"value"`
}

type VehicleMake struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// VehicleSummary is the subset of a decoded VIN used to prefill a new bike.
type VehicleSummary struct {
	VIN    string     `json:"vin"`
	Make   string     `json:"make"`
	Model  string     `json:"model"`
	Year   int        `json:"year,omitempty"`
	Fields []VINField `json:"fields"`
}

func SummarizeVIN(vin string, fields []VINField) VehicleSummary {
	out := VehicleSummary{VIN: strings.ToUpper(vin), Fields: fields}
	for _, f := range fields {
		value := strings.TrimSpace(f.Value)
		if value == "" {
			continue
		}
		switch f.Variable {
		case "Make":
			out.Make = value
		case "Model":
			out.Model = value
		case "Model Year":
			if y, err := strconv.Atoi(value); err == nil {
				out.Year = y
			}
		}
	}
	return out
}
