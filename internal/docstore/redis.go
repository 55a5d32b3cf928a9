package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	ripple_errors "ripple-chat/pkg/errors"
	"ripple-chat/pkg/logger"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// Redis key layout:
// - doc:{path}  - JSON payload of a single document
// - col:{collection} - set of document ids in the collection
// - watch:{collection} - pub/sub channel notified after every write
const (
	docKeyPrefix   = "doc:"
	colKeyPrefix   = "col:"
	watchKeyPrefix = "watch:"
)

// RedisStore implements Store on a Redis instance. Documents are JSON blobs,
// collection membership is an id set, and live queries are driven by a
// pub/sub notification per collection: on every notification the subscriber
// re-reads the whole collection and delivers it as a full snapshot, which
// matches the full-replacement contract of Subscribe.
type RedisStore struct {
	client *goredis.Client
	log    *logger.Logger
}

func NewRedisStore(client *goredis.Client, log *logger.Logger) *RedisStore {
	return &RedisStore{client: client, log: log}
}

func (r *RedisStore) Get(ctx context.Context, path string) (Document, error) {
	data, err := r.client.Get(ctx, docKeyPrefix+path).Result()
	if err == goredis.Nil {
		return Document{}, ripple_errors.ErrNotFound
	}
	if err != nil {
		return Document{}, err
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return Document{}, err
	}
	_, id := splitPath(path)
	return Document{ID: id, Data: payload}, nil
}

func (r *RedisStore) List(ctx context.Context, collection string, q Query) ([]Document, error) {
	ids, err := r.client.SMembers(ctx, colKeyPrefix+collection).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	pipe := r.client.Pipeline()
	cmds := make(map[string]*goredis.StringCmd, len(ids))
	for _, id := range ids {
		cmds[id] = pipe.Get(ctx, docKeyPrefix+Join(collection, id))
	}
	_, _ = pipe.Exec(ctx)

	var docs []Document
	for id, cmd := range cmds {
		data, err := cmd.Result()
		if err == goredis.Nil {
			// Index entry without a document; drop it lazily.
			r.client.SRem(ctx, colKeyPrefix+collection, id)
			continue
		}
		if err != nil {
			continue
		}
		var payload map[string]any
		if err := json.Unmarshal([]byte(data), &payload); err != nil {
			r.log.Warnf("docstore: skipping malformed document %s/%s: %v", collection, id, err)
			continue
		}
		docs = append(docs, Document{ID: id, Data: payload})
	}

	return sortDocs(docs, q), nil
}

func (r *RedisStore) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	id := uuid.NewString()
	return id, r.Set(ctx, Join(collection, id), data)
}

func (r *RedisStore) Set(ctx context.Context, path string, data map[string]any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	collection, id := splitPath(path)
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, docKeyPrefix+path, payload, 0)
	pipe.SAdd(ctx, colKeyPrefix+collection, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	return r.notify(ctx, collection)
}

func (r *RedisStore) Update(ctx context.Context, path string, fields map[string]any) error {
	existing, err := r.Get(ctx, path)
	if err != nil {
		return err
	}
	for k, v := range fields {
		existing.Data[k] = v
	}
	return r.Set(ctx, path, existing.Data)
}

func (r *RedisStore) Delete(ctx context.Context, path string) error {
	collection, id := splitPath(path)
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, docKeyPrefix+path)
	pipe.SRem(ctx, colKeyPrefix+collection, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	return r.notify(ctx, collection)
}

func (r *RedisStore) notify(ctx context.Context, collection string) error {
	return r.client.Publish(ctx, watchKeyPrefix+collection, "changed").Err()
}

type redisSub struct {
	cancel context.CancelFunc
	pubsub *goredis.PubSub
	once   sync.Once
}

func (s *redisSub) Unsubscribe() {
	s.once.Do(func() {
		s.cancel()
		_ = s.pubsub.Close()
	})
}

func (r *RedisStore) Subscribe(ctx context.Context, collection string, q Query, fn SnapshotFunc) (Subscription, error) {
	subCtx, cancel := context.WithCancel(context.Background())
	pubsub := r.client.Subscribe(subCtx, watchKeyPrefix+collection)

	// Force the subscription onto the wire before the initial read so a
	// write between the two cannot be missed.
	if _, err := pubsub.Receive(subCtx); err != nil {
		cancel()
		_ = pubsub.Close()
		return nil, err
	}

	initial, err := r.List(ctx, collection, q)
	if err != nil {
		cancel()
		_ = pubsub.Close()
		return nil, err
	}
	fn(initial)

	go func() {
		ch := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if msg == nil {
					continue
				}
				docs, err := r.List(subCtx, collection, q)
				if err != nil {
					if !errors.Is(err, context.Canceled) {
						r.log.Errorf("docstore: snapshot read for %s failed: %v", collection, err)
					}
					continue
				}
				fn(docs)
			}
		}
	}()

	return &redisSub{cancel: cancel, pubsub: pubsub}, nil
}
