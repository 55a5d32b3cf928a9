package chat

import (
	"context"
	"strings"

	"ripple-chat/internal/docstore"
)

// Search performs case-insensitive substring lookups over the user and
// channel directories.
type Search struct {
	store docstore.Store
}

func NewSearch(store docstore.Store) *Search {
	return &Search{store: store}
}

// Users returns every user whose name contains input.
func (s *Search) Users(ctx context.Context, input string) ([]User, error) {
	docs, err := s.store.List(ctx, docstore.UsersCollection, docstore.Query{})
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(input)
	var result []User
	for _, doc := range docs {
		u := userFromDoc(doc)
		if strings.Contains(strings.ToLower(u.Name), needle) {
			result = append(result, u)
		}
	}
	return result, nil
}

// UsersAt handles the @mention form: the leading '@' is stripped before the
// name match.
func (s *Search) UsersAt(ctx context.Context, input string) ([]User, error) {
	return s.Users(ctx, strings.TrimPrefix(input, "@"))
}

// Channels returns every channel whose name contains input.
func (s *Search) Channels(ctx context.Context, input string) ([]Channel, error) {
	docs, err := s.store.List(ctx, docstore.ChannelsCollection, docstore.Query{})
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(input)
	var result []Channel
	for _, doc := range docs {
		ch := channelFromDoc(doc)
		if strings.Contains(strings.ToLower(ch.Name), needle) {
			result = append(result, ch)
		}
	}
	return result, nil
}
