package models

// Envelope is the uniform JSON response shape. Every endpoint uses it,
// success and failure alike, except the identify-plant success path which
// passes the provider body through verbatim.
type Envelope struct {
	StatusCode int         `json:"status_code"`
	Data       interface{} `json:"data,omitempty"`
	Response   interface{} `json:"response,omitempty"`
	Message    string      `json:"message,omitempty"`
	ErrorType  string      `json:"error_type,omitempty"`
	Args       interface{} `json:"args,omitempty"`
}
