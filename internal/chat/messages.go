package chat

import (
	"context"
	"strings"
	"time"

	"ripple-chat/internal/docstore"
	ripple_errors "ripple-chat/pkg/errors"
	"ripple-chat/pkg/logger"

	"github.com/google/uuid"
)

// MessageService performs the compose/edit/delete round-trips against the
// external store. All reads flow back through the live projections, never
// through return values here.
type MessageService struct {
	store docstore.Store
	log   *logger.Logger
	now   func() time.Time
}

func NewMessageService(store docstore.Store, log *logger.Logger) *MessageService {
	return &MessageService{store: store, log: log, now: time.Now}
}

// Outgoing is a message being composed. A zero CreationDate is stamped with
// the current time.
type Outgoing struct {
	CreatedBy    string
	Text         string
	ImageURL     string
	CreationDate int64
}

func (m *MessageService) payload(id string, out Outgoing) map[string]any {
	created := out.CreationDate
	if created == 0 {
		created = m.now().UnixMilli()
	}
	data := map[string]any{
		"messageId":    id,
		"createdBy":    out.CreatedBy,
		"creationDate": created,
		"message":      out.Text,
	}
	if out.ImageURL != "" {
		data["imageUrl"] = out.ImageURL
	}
	return data
}

func validateOutgoing(out Outgoing) error {
	if out.CreatedBy == "" {
		return ripple_errors.ErrInvalidInput
	}
	if strings.TrimSpace(out.Text) == "" && out.ImageURL == "" {
		return ripple_errors.ErrInvalidInput
	}
	return nil
}

// SendChannelMessage writes a new thread root into a channel and returns its
// message id.
func (m *MessageService) SendChannelMessage(ctx context.Context, channelID string, out Outgoing) (string, error) {
	if err := validateOutgoing(out); err != nil {
		return "", err
	}
	id := uuid.NewString()
	path := docstore.Join(docstore.ChannelThreads(channelID), id)
	return id, m.store.Set(ctx, path, m.payload(id, out))
}

// SendThreadReply writes a reply into a thread's message sub-collection.
func (m *MessageService) SendThreadReply(ctx context.Context, channelID, threadID string, out Outgoing) (string, error) {
	if err := validateOutgoing(out); err != nil {
		return "", err
	}
	id := uuid.NewString()
	path := docstore.Join(docstore.ThreadMessages(channelID, threadID), id)
	return id, m.store.Set(ctx, path, m.payload(id, out))
}

// SendDirectMessage writes the message into both participants' DM
// collections under the same message id: the sender's copy carries
// yourMessage=true, the recipient's copy yourMessage=false.
func (m *MessageService) SendDirectMessage(ctx context.Context, fromID, toID string, out Outgoing) (string, error) {
	if err := validateOutgoing(out); err != nil {
		return "", err
	}
	if fromID == toID {
		return "", ripple_errors.ErrInvalidInput
	}

	id := uuid.NewString()
	senderCopy := m.payload(id, out)
	senderCopy["yourMessage"] = true
	recipientCopy := m.payload(id, out)
	recipientCopy["creationDate"] = senderCopy["creationDate"]
	recipientCopy["yourMessage"] = false

	// The conversation documents make the counterpart discoverable in each
	// side's DM list before the first snapshot of messages arrives.
	if err := m.store.Set(ctx, docstore.Join(docstore.DirectMessagePartners(fromID), toID), map[string]any{"userId": toID}); err != nil {
		return "", err
	}
	if err := m.store.Set(ctx, docstore.Join(docstore.DirectMessagePartners(toID), fromID), map[string]any{"userId": fromID}); err != nil {
		return "", err
	}

	if err := m.store.Set(ctx, docstore.Join(docstore.DirectMessages(fromID, toID), id), senderCopy); err != nil {
		return "", err
	}
	if err := m.store.Set(ctx, docstore.Join(docstore.DirectMessages(toID, fromID), id), recipientCopy); err != nil {
		return "", err
	}
	return id, nil
}

// Edit replaces the text of an existing message at path.
func (m *MessageService) Edit(ctx context.Context, path, newText string) error {
	if strings.TrimSpace(newText) == "" {
		return ripple_errors.ErrInvalidInput
	}
	return m.store.Update(ctx, path, map[string]any{"message": newText})
}

// Delete removes a message document at path.
func (m *MessageService) Delete(ctx context.Context, path string) error {
	return m.store.Delete(ctx, path)
}
