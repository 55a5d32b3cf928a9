package presence

import (
	"context"
	"encoding/json"
	"time"

	"ripple-chat/internal/docstore"
	"ripple-chat/pkg/logger"

	goredis "github.com/redis/go-redis/v9"
)

// Status is a user's published online state.
type Status struct {
	UserID   string    `json:"user_id"`
	IsOnline bool      `json:"is_online"`
	LastSeen time.Time `json:"last_seen"`
}

// Redis key layout for presence
const (
	presenceKeyPrefix = "presence:"       // per-user status JSON
	presenceOnlineSet = "presence:online" // set of online user ids
	presenceEventChan = "presence:events" // pub/sub channel for status changes
)

// Store tracks who is online. Redis carries the hot state and the pub/sub
// fanout; the users collection's isOnline flag is mirrored alongside so the
// user directory sees the change through its normal live subscription.
type Store struct {
	client *goredis.Client
	docs   docstore.Store
	log    *logger.Logger
	ttl    time.Duration
}

func NewStore(client *goredis.Client, docs docstore.Store, log *logger.Logger, ttl time.Duration) *Store {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &Store{client: client, docs: docs, log: log, ttl: ttl}
}

// SetOnline marks a user online and mirrors the flag to the user document.
func (p *Store) SetOnline(ctx context.Context, userID string) error {
	now := time.Now()
	status := Status{UserID: userID, IsOnline: true, LastSeen: now}

	pipe := p.client.Pipeline()
	data, _ := json.Marshal(status)
	pipe.Set(ctx, presenceKeyPrefix+userID, data, p.ttl)
	pipe.SAdd(ctx, presenceOnlineSet, userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	p.mirrorToUserDoc(ctx, userID, true)
	return p.publish(ctx, status)
}

// SetOffline marks a user offline. The offline status is kept longer than
// the online TTL so last-seen queries still resolve.
func (p *Store) SetOffline(ctx context.Context, userID string) error {
	now := time.Now()
	status := Status{UserID: userID, IsOnline: false, LastSeen: now}

	pipe := p.client.Pipeline()
	data, _ := json.Marshal(status)
	pipe.Set(ctx, presenceKeyPrefix+userID, data, 24*time.Hour)
	pipe.SRem(ctx, presenceOnlineSet, userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	p.mirrorToUserDoc(ctx, userID, false)
	return p.publish(ctx, status)
}

// Heartbeat refreshes the online TTL.
func (p *Store) Heartbeat(ctx context.Context, userID string) error {
	return p.client.Expire(ctx, presenceKeyPrefix+userID, p.ttl).Err()
}

// IsOnline checks membership in the online set.
func (p *Store) IsOnline(ctx context.Context, userID string) (bool, error) {
	return p.client.SIsMember(ctx, presenceOnlineSet, userID).Result()
}

// OnlineUsers returns all online user ids.
func (p *Store) OnlineUsers(ctx context.Context) ([]string, error) {
	return p.client.SMembers(ctx, presenceOnlineSet).Result()
}

// GetStatus reads a user's status; unknown users report offline.
func (p *Store) GetStatus(ctx context.Context, userID string) (Status, error) {
	data, err := p.client.Get(ctx, presenceKeyPrefix+userID).Result()
	if err == goredis.Nil {
		return Status{UserID: userID}, nil
	}
	if err != nil {
		return Status{}, err
	}

	var status Status
	if err := json.Unmarshal([]byte(data), &status); err != nil {
		return Status{}, err
	}
	return status, nil
}

func (p *Store) mirrorToUserDoc(ctx context.Context, userID string, online bool) {
	err := p.docs.Update(ctx, docstore.UserPath(userID), map[string]any{"isOnline": online})
	if err != nil {
		p.log.Warnf("presence: mirroring isOnline=%t for %s failed: %v", online, userID, err)
	}
}

func (p *Store) publish(ctx context.Context, status Status) error {
	data, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, presenceEventChan, data).Err()
}
