package models

// Health represents the health status of the service.
type Health struct {
	Status  HealthStatus           `json:"status"`
	Time    Timestamp              `json:"time"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ProviderStatus reports the configuration and health of an external provider.
type ProviderStatus struct {
	Provider   string       `json:"provider"`
	Status     HealthStatus `json:"status"`
	Configured bool         `json:"configured"`
	Message    string       `json:"message,omitempty"`
}
