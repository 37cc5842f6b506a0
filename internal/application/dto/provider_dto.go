package dto

// CreateProviderRequest is the admin body for registering an AI provider.
type CreateProviderRequest struct {
	Name              string   `json:"name" binding:"required"`
	DisplayName       string   `json:"display_name"`
	Kind              string   `json:"provider_type" binding:"required"`
	BaseURL           string   `json:"base_url" binding:"required"`
	APIKey            string   `json:"api_key"`
	ModelName         string   `json:"model_name" binding:"required"`
	IsActive          bool     `json:"is_active"`
	Priority          *int     `json:"priority"`
	MaxTokens         *int     `json:"max_tokens"`
	Temperature       *float64 `json:"temperature"`
	SupportsStreaming bool     `json:"supports_streaming"`
}

// UpdateProviderRequest is the admin body for updating an AI provider. Nil
// fields are left unchanged.
type UpdateProviderRequest struct {
	DisplayName       *string  `json:"display_name"`
	Kind              *string  `json:"provider_type"`
	BaseURL           *string  `json:"base_url"`
	APIKey            *string  `json:"api_key"`
	ModelName         *string  `json:"model_name"`
	IsActive          *bool    `json:"is_active"`
	Priority          *int     `json:"priority"`
	MaxTokens         *int     `json:"max_tokens"`
	Temperature       *float64 `json:"temperature"`
	SupportsStreaming *bool    `json:"supports_streaming"`
}

// ProviderTestResponse reports the outcome of a provider connectivity check.
type ProviderTestResponse struct {
	Healthy        bool   `json:"healthy"`
	Model          string `json:"model,omitempty"`
	ResponseTimeMs int64  `json:"response_time_ms"`
	Error          string `json:"error,omitempty"`
}
