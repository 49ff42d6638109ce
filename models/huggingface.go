package models

// HFEmbedRequest is the body sent to the Hugging Face Inference API
// feature-extraction pipeline.
type HFEmbedRequest struct {
	Inputs []string `json:"inputs"`
}

// HFErrorResponse is the error envelope the Inference API returns on
// non-200 responses (e.g. model loading, bad token).
type HFErrorResponse struct {
	Error string `json:"error"`
}
