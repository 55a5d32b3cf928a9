package chat

import (
	"encoding/json"

	"ripple-chat/internal/docstore"
)

// Typed records reconstructed from the untyped document payloads at the
// subscription boundary. Unknown or malformed fields decode to zero values;
// nothing past this file touches raw payload maps.

// User mirrors users/{userId}.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	ImgURL   string `json:"imgUrl"`
	IsOnline bool   `json:"isOnline"`
}

// Channel mirrors channels/{channelId}.
type Channel struct {
	ID           string   `json:"id"`
	Type         string   `json:"type"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	CreationDate int64    `json:"creationDate"`
	CreatedBy    string   `json:"createdBy"`
	Members      []string `json:"members"`
}

// Message mirrors a thread root, a thread reply, or a direct message. The
// CreationDate is epoch milliseconds; YourMessage is only meaningful for
// direct messages.
type Message struct {
	ID           string `json:"messageId"`
	CreatedBy    string `json:"createdBy"`
	CreationDate int64  `json:"creationDate"`
	Text         string `json:"message"`
	ImageURL     string `json:"imageUrl,omitempty"`
	YourMessage  bool   `json:"yourMessage,omitempty"`
}

// Reactor couples a reacting user id with the display name resolved for it,
// so the two can never desync.
type Reactor struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

// Reaction mirrors .../reactions/{reactionId}. Invariant: Count always
// equals len(ReactedBy), and a reaction with no reactors does not exist.
type Reaction struct {
	ID        string    `json:"id"`
	Emoji     string    `json:"reaction"`
	Count     int       `json:"count"`
	ReactedBy []Reactor `json:"reactedBy"`
}

// UserFromDoc decodes a users/{userId} document.
func UserFromDoc(doc docstore.Document) User {
	return userFromDoc(doc)
}

func userFromDoc(doc docstore.Document) User {
	return User{
		ID:       doc.ID,
		Name:     docString(doc.Data, "name"),
		Email:    docString(doc.Data, "email"),
		ImgURL:   docString(doc.Data, "imgUrl"),
		IsOnline: docBool(doc.Data, "isOnline"),
	}
}

func channelFromDoc(doc docstore.Document) Channel {
	return Channel{
		ID:           doc.ID,
		Type:         docString(doc.Data, "type"),
		Name:         docString(doc.Data, "name"),
		Description:  docString(doc.Data, "description"),
		CreationDate: docInt64(doc.Data, "creationDate"),
		CreatedBy:    docString(doc.Data, "createdBy"),
		Members:      docStrings(doc.Data, "members"),
	}
}

func messageFromDoc(doc docstore.Document) Message {
	id := docString(doc.Data, "messageId")
	if id == "" {
		id = doc.ID
	}
	return Message{
		ID:           id,
		CreatedBy:    docString(doc.Data, "createdBy"),
		CreationDate: docInt64(doc.Data, "creationDate"),
		Text:         docString(doc.Data, "message"),
		ImageURL:     docString(doc.Data, "imageUrl"),
		YourMessage:  docBool(doc.Data, "yourMessage"),
	}
}

func reactionFromDoc(doc docstore.Document, resolveName func(userID string) string) Reaction {
	ids := docStrings(doc.Data, "reactedBy")
	reactors := make([]Reactor, 0, len(ids))
	for _, id := range ids {
		reactors = append(reactors, Reactor{UserID: id, DisplayName: resolveName(id)})
	}
	return Reaction{
		ID:        doc.ID,
		Emoji:     docString(doc.Data, "reaction"),
		Count:     int(docInt64(doc.Data, "count")),
		ReactedBy: reactors,
	}
}

func docString(data map[string]any, key string) string {
	if s, ok := data[key].(string); ok {
		return s
	}
	return ""
}

func docBool(data map[string]any, key string) bool {
	if b, ok := data[key].(bool); ok {
		return b
	}
	return false
}

func docInt64(data map[string]any, key string) int64 {
	switch n := data[key].(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case json.Number:
		if v, err := n.Int64(); err == nil {
			return v
		}
	}
	return 0
}

func docStrings(data map[string]any, key string) []string {
	switch list := data[key].(type) {
	case []string:
		out := make([]string, len(list))
		copy(out, list)
		return out
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
