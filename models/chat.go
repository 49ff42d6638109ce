package models

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse carries the assistant's answer back to the frontend. The same
// shape is reused for error replies so the chat widget can always render
// the "response" field.
type ChatResponse struct {
	Response string `json:"response"`
}
