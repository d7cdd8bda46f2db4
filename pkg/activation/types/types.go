package types

// Activation binds a license to one installation.
type Activation struct {
	ID          string `json:"id"`
	License     string `json:"license"`
	Fingerprint string `json:"fingerprint"`
	Name        string `json:"name"`
	CreatedAt   int64  `json:"created_at,omitempty"`
	UpdatedAt   int64  `json:"updated_at,omitempty"`
}

// Payload is the writable part of an activation.
type Payload struct {
	Fingerprint string `json:"fingerprint"`
	Name        string `json:"name"`
	License     string `json:"license"`
}

// CreateRequest is the body of POST /v1/public/activations.
type CreateRequest struct {
	Activation Payload `json:"activation"`
}
