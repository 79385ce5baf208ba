package domain

// ServiceType is an entry of the maintenance catalog, e.g. "oil_change".
type ServiceType struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}
