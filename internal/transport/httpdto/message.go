package httpdto

// SendMessageRequest is used for the channel, thread-reply, and direct
// message send endpoints. Either Text or ImageURL must be present.
type SendMessageRequest struct {
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// SendMessageResponse is returned after a message is persisted. The content
// itself arrives through the live projection, not here.
type SendMessageResponse struct {
	MessageID string `json:"messageId"`
}

// EditMessageRequest is used for PATCH on a message path.
type EditMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// ToggleReactionRequest is used for POST .../reactions/toggle
type ToggleReactionRequest struct {
	Emoji string `json:"emoji" binding:"required"`
}
