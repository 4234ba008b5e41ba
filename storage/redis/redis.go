// Package redis provides a core.ConversationStore backed by Redis. Each
// conversation is a hash holding its metadata plus a list of JSON encoded
// message pairs; an owner set indexes conversations per user.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/chatmesh/core"
	goredis "github.com/redis/go-redis/v9"
)

// Options configure the Redis conversation store.
type Options struct {
	Addr     string
	Password string
	DB       int
	// KeyPrefix namespaces all keys written by the store.
	KeyPrefix string
	// Client overrides Addr/Password/DB with an existing client.
	Client *goredis.Client
}

// Store is a ConversationStore persisting conversations in Redis.
type Store struct {
	client *goredis.Client
	prefix string
}

// NewStore constructs a Redis backed conversation store.
func NewStore(optFns ...func(o *Options)) *Store {
	opts := Options{Addr: "localhost:6379", KeyPrefix: "chatmesh:"}
	for _, fn := range optFns {
		fn(&opts)
	}

	client := opts.Client
	if client == nil {
		client = goredis.NewClient(&goredis.Options{
			Addr:     opts.Addr,
			Password: opts.Password,
			DB:       opts.DB,
		})
	}

	return &Store{client: client, prefix: opts.KeyPrefix}
}

func (s *Store) convKey(id string) string  { return s.prefix + "conv:" + id }
func (s *Store) pairsKey(id string) string { return s.prefix + "conv:" + id + ":pairs" }
func (s *Store) ownerKey(id string) string { return s.prefix + "owner:" + id }

// CreateConversation allocates a new conversation and returns its id.
func (s *Store) CreateConversation(ctx context.Context, ownerID, title string) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.convKey(id), map[string]any{
		"owner_id":   ownerID,
		"title":      title,
		"created_at": now,
		"updated_at": now,
	})
	pipe.SAdd(ctx, s.ownerKey(ownerID), id)

	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("redis: create conversation: %w", err)
	}

	return id, nil
}

// SaveMessage appends a message pair to an existing conversation. A missing
// conversation yields (false, nil); it is not an error condition.
func (s *Store) SaveMessage(ctx context.Context, threadID string, pair core.MessagePair) (bool, error) {
	exists, err := s.client.Exists(ctx, s.convKey(threadID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis: check conversation: %w", err)
	}
	if exists == 0 {
		return false, nil
	}

	now := time.Now()
	if pair.CreatedAt.IsZero() {
		pair.CreatedAt = now
	}
	pair.UpdatedAt = now

	encoded, err := json.Marshal(pair)
	if err != nil {
		return false, fmt.Errorf("redis: encode message pair: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, s.pairsKey(threadID), encoded)
	pipe.HSet(ctx, s.convKey(threadID), "updated_at", now.UTC().Format(time.RFC3339Nano))

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis: save message pair: %w", err)
	}

	return true, nil
}

// LoadConversation returns message pairs in chronological order. A positive
// limit restricts the result to the newest limit pairs. Unknown threads yield
// an empty slice.
func (s *Store) LoadConversation(ctx context.Context, threadID string, limit int) ([]core.MessagePair, error) {
	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}

	raw, err := s.client.LRange(ctx, s.pairsKey(threadID), start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: load conversation: %w", err)
	}

	pairs := make([]core.MessagePair, 0, len(raw))
	for _, item := range raw {
		var pair core.MessagePair
		if err := json.Unmarshal([]byte(item), &pair); err != nil {
			return nil, fmt.Errorf("redis: decode message pair: %w", err)
		}
		pairs = append(pairs, pair)
	}

	return pairs, nil
}

// UserConversations lists the owner's conversations newest first by update
// time.
func (s *Store) UserConversations(ctx context.Context, ownerID string) ([]core.ConversationSummary, error) {
	ids, err := s.client.SMembers(ctx, s.ownerKey(ownerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: list conversations: %w", err)
	}

	summaries := make([]core.ConversationSummary, 0, len(ids))
	for _, id := range ids {
		meta, err := s.client.HGetAll(ctx, s.convKey(id)).Result()
		if err != nil {
			return nil, fmt.Errorf("redis: read conversation %s: %w", id, err)
		}
		if len(meta) == 0 {
			continue // conversation expired or deleted out of band
		}

		count, err := s.client.LLen(ctx, s.pairsKey(id)).Result()
		if err != nil {
			return nil, fmt.Errorf("redis: count message pairs %s: %w", id, err)
		}

		created, _ := time.Parse(time.RFC3339Nano, meta["created_at"])
		updated, _ := time.Parse(time.RFC3339Nano, meta["updated_at"])

		summaries = append(summaries, core.ConversationSummary{
			ID:           id,
			Title:        meta["title"],
			CreatedAt:    created,
			UpdatedAt:    updated,
			MessageCount: int(count),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})

	return summaries, nil
}
