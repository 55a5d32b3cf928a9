package chat

import (
	"context"
	"strings"
	"time"

	"ripple-chat/internal/docstore"
	ripple_errors "ripple-chat/pkg/errors"
	"ripple-chat/pkg/logger"
)

// ChannelService covers the channel directory: creation with duplicate-name
// validation, membership changes, and lookups.
type ChannelService struct {
	store docstore.Store
	log   *logger.Logger
}

func NewChannelService(store docstore.Store, log *logger.Logger) *ChannelService {
	return &ChannelService{store: store, log: log}
}

// NameCheck is the proactive duplicate-name validation result, reported to
// the caller as data rather than an error.
type NameCheck struct {
	Exists   bool `json:"exists"`
	IsMember bool `json:"isMember"`
}

// NameExists reports whether a channel with the given name exists and, if
// so, whether userID is already one of its members.
func (s *ChannelService) NameExists(ctx context.Context, name, userID string) (NameCheck, error) {
	docs, err := s.store.List(ctx, docstore.ChannelsCollection, docstore.Query{})
	if err != nil {
		return NameCheck{}, err
	}

	var result NameCheck
	for _, doc := range docs {
		ch := channelFromDoc(doc)
		if ch.Name == name {
			result.Exists = true
			result.IsMember = contains(ch.Members, userID)
		}
	}
	return result, nil
}

// CreateInput carries the fields of a new channel. Members should include
// the creator.
type CreateInput struct {
	Name        string
	Description string
	CreatedBy   string
	Members     []string
	Type        string
}

// Create validates and persists a new channel, returning its id. A name
// collision yields ErrAlreadyExists.
func (s *ChannelService) Create(ctx context.Context, in CreateInput) (string, error) {
	if strings.TrimSpace(in.Name) == "" {
		return "", ripple_errors.ErrInvalidInput
	}

	check, err := s.NameExists(ctx, in.Name, in.CreatedBy)
	if err != nil {
		return "", err
	}
	if check.Exists {
		return "", ripple_errors.ErrAlreadyExists
	}

	channelType := in.Type
	if channelType == "" {
		channelType = "channel"
	}
	members := in.Members
	if !contains(members, in.CreatedBy) && in.CreatedBy != "" {
		members = append(append([]string(nil), members...), in.CreatedBy)
	}

	id, err := s.store.Add(ctx, docstore.ChannelsCollection, map[string]any{
		"type":         channelType,
		"name":         in.Name,
		"description":  in.Description,
		"creationDate": time.Now().UnixMilli(),
		"createdBy":    in.CreatedBy,
		"members":      toAnySlice(members),
	})
	if err != nil {
		return "", err
	}
	s.log.Infof("channel %q created (%s)", in.Name, id)
	return id, nil
}

// Get reads a channel once.
func (s *ChannelService) Get(ctx context.Context, channelID string) (Channel, error) {
	doc, err := s.store.Get(ctx, docstore.ChannelPath(channelID))
	if err != nil {
		return Channel{}, err
	}
	return channelFromDoc(doc), nil
}

// List reads the whole channel directory once.
func (s *ChannelService) List(ctx context.Context) ([]Channel, error) {
	docs, err := s.store.List(ctx, docstore.ChannelsCollection, docstore.Query{})
	if err != nil {
		return nil, err
	}
	channels := make([]Channel, 0, len(docs))
	for _, doc := range docs {
		channels = append(channels, channelFromDoc(doc))
	}
	return channels, nil
}

// AddMembers appends the given users to the channel's member list, skipping
// ids that are already members.
func (s *ChannelService) AddMembers(ctx context.Context, channelID string, userIDs []string) error {
	ch, err := s.Get(ctx, channelID)
	if err != nil {
		return err
	}

	members := ch.Members
	for _, id := range userIDs {
		if !contains(members, id) {
			members = append(members, id)
		}
	}
	return s.store.Update(ctx, docstore.ChannelPath(channelID), map[string]any{
		"members": toAnySlice(members),
	})
}

// Subscribe follows the channel directory live.
func (s *ChannelService) Subscribe(ctx context.Context, fn func([]Channel)) (docstore.Subscription, error) {
	return s.store.Subscribe(ctx, docstore.ChannelsCollection, docstore.Query{}, func(docs []docstore.Document) {
		channels := make([]Channel, 0, len(docs))
		for _, doc := range docs {
			channels = append(channels, channelFromDoc(doc))
		}
		fn(channels)
	})
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func toAnySlice(list []string) []any {
	out := make([]any, len(list))
	for i, v := range list {
		out[i] = v
	}
	return out
}
