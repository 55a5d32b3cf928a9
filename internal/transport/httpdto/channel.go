package httpdto

// CreateChannelRequest is used for POST /channels
type CreateChannelRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description,omitempty"`
	Members     []string `json:"members,omitempty"`
}

// CreateChannelResponse is returned after a channel is created.
type CreateChannelResponse struct {
	ChannelID string `json:"channelId"`
}

// ChannelNameCheckResponse is the proactive duplicate-name validation
// result for GET /channels/name-exists.
type ChannelNameCheckResponse struct {
	Exists   bool `json:"exists"`
	IsMember bool `json:"isMember"`
}

// AddMembersRequest is used for POST /channels/:id/members
type AddMembersRequest struct {
	UserIDs []string `json:"userIds" binding:"required"`
}
