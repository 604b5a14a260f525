package api

// GenerateResponse is the body returned by GET /api/generate.
type GenerateResponse struct {
	String string `json:"String"`
}

// StatusResponse is the body of the health and drain endpoints.
type StatusResponse struct {
	Status string `json:"status"`
}
