package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/storyline/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key the journal writes.
const DefaultPrefix = "storyline:journal:"

// noExpiry is the index score of launches without a TTL (2100-01-01).
const noExpiry = 4102444800

// forgetScript removes the most recent occurrence of an item and unlists the
// launch once its list is empty. LPUSH keeps the newest item at the head, so
// LREM with count 1 removes the most recent one.
var forgetScript = backend.NewScript(`
redis.call("LREM", KEYS[1], 1, ARGV[1])
if redis.call("LLEN", KEYS[1]) == 0 then
	redis.call("DEL", KEYS[1])
	redis.call("ZREM", KEYS[2], ARGV[2])
end
return 0
`)

// Journal implements ports.ItemJournal using Redis.
//
// Each launch is a list of open item ids, newest first. A sorted set indexes
// the launches, scored by their expiry time so List can prune lazily.
type Journal struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures the Journal.
type Option func(*Journal)

// WithTTL expires a launch's entries ttl after its last record.
func WithTTL(ttl time.Duration) Option {
	return func(j *Journal) {
		j.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(j *Journal) {
		j.prefix = prefix
	}
}

// New creates a journal connected to the given Redis server.
func New(address, password string, db int, opts ...Option) *Journal {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a journal from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Journal {
	j := &Journal{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

func (j *Journal) key(launchID domain.ItemID) string {
	return j.prefix + "launch:" + string(launchID)
}

func (j *Journal) indexKey() string {
	return j.prefix + "index"
}

// Record pushes the item onto the launch's list and refreshes the launch expiry.
func (j *Journal) Record(ctx context.Context, launchID, itemID domain.ItemID) error {
	score := float64(noExpiry)
	if j.ttl > 0 {
		score = float64(time.Now().Add(j.ttl).Unix())
	}

	pipe := j.client.TxPipeline()
	pipe.LPush(ctx, j.key(launchID), string(itemID))
	if j.ttl > 0 {
		pipe.Expire(ctx, j.key(launchID), j.ttl)
	}
	pipe.ZAdd(ctx, j.indexKey(), backend.Z{Score: score, Member: string(launchID)})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record item %s: %w", itemID, err)
	}
	return nil
}

// Forget removes the item. Unknown items are ignored.
func (j *Journal) Forget(ctx context.Context, launchID, itemID domain.ItemID) error {
	keys := []string{j.key(launchID), j.indexKey()}
	if err := forgetScript.Run(ctx, j.client, keys, string(itemID), string(launchID)).Err(); err != nil && err != backend.Nil {
		return fmt.Errorf("failed to forget item %s: %w", itemID, err)
	}
	return nil
}

// Pending returns the launch's open items, most recent first.
func (j *Journal) Pending(ctx context.Context, launchID domain.ItemID) ([]domain.ItemID, error) {
	vals, err := j.client.LRange(ctx, j.key(launchID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read journal for %s: %w", launchID, err)
	}
	out := make([]domain.ItemID, 0, len(vals))
	for _, v := range vals {
		out = append(out, domain.ItemID(v))
	}
	return out, nil
}

// Launches returns the launches that still have pending items.
// Expired launches are pruned from the index first.
func (j *Journal) Launches(ctx context.Context) ([]domain.ItemID, error) {
	now := float64(time.Now().Unix())
	if err := j.client.ZRemRangeByScore(ctx, j.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired launches: %w", err)
	}

	vals, err := j.client.ZRange(ctx, j.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list launches: %w", err)
	}
	out := make([]domain.ItemID, 0, len(vals))
	for _, v := range vals {
		out = append(out, domain.ItemID(v))
	}
	return out, nil
}

// Clear drops every entry of the launch.
func (j *Journal) Clear(ctx context.Context, launchID domain.ItemID) error {
	pipe := j.client.TxPipeline()
	pipe.Del(ctx, j.key(launchID))
	pipe.ZRem(ctx, j.indexKey(), string(launchID))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear launch %s: %w", launchID, err)
	}
	return nil
}

// Ping checks connectivity.
func (j *Journal) Ping(ctx context.Context) error {
	return j.client.Ping(ctx).Err()
}

// Close closes the redis client.
func (j *Journal) Close() error {
	return j.client.Close()
}
