package models

// Provider is one completion-service endpoint (OpenAI-compatible chat API)
type Provider struct {
	Name              string            `json:"name"`
	BaseURL           string            `json:"baseUrl"`
	APIKeyEnv         string            `json:"apiKeyEnv"` // Env var holding the key; never stored in the file
	DefaultModel      string            `json:"defaultModel"`
	Aliases           map[string]string `json:"aliases,omitempty"` // alias -> concrete model ID
	RequestsPerMinute int               `json:"requestsPerMinute,omitempty"`
}

// ProvidersConfig is the providers.json layout
type ProvidersConfig struct {
	Default   string     `json:"default"` // Name of the default provider
	Providers []Provider `json:"providers"`
}
