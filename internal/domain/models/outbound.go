package models

// OutboundMessageRequest is a manual notification pushed through the API.
type OutboundMessageRequest struct {
	To         string `json:"to" binding:"required,numeric"`
	Message    string `json:"message" binding:"required,max=4096"`
	PreviewURL bool   `json:"preview_url"`
}
