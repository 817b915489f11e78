package http

// APIResponse represents the standard API envelope.
type APIResponse struct {
	Status  int         `json:"status" example:"200"`
	Message string      `json:"message" example:"OK"`
	Data    interface{} `json:"data,omitempty"`
}

// ValidationError represents one validation error detail.
type ValidationError struct {
	Code    string                 `json:"code,omitempty" example:"ERR_REQUIRED"`
	Field   string                 `json:"field,omitempty" example:"subject"`
	Message string                 `json:"message,omitempty" example:"Subject is required"`
	Params  map[string]interface{} `json:"params,omitempty"`
}
