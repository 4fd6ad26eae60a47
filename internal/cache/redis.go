package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Domenick1991/carestaff/config"
	"github.com/Domenick1991/carestaff/internal/domain"
	"github.com/redis/go-redis/v9"
)

const defaultInboxSize = 100

type RedisCache struct {
	client      *redis.Client
	missionsTTL time.Duration
	inboxSize   int64
	inboxTTL    time.Duration
}

func NewRedisCache(cfg config.RedisConfig, missionsTTL time.Duration, opts ...Option) *RedisCache {
	c := &RedisCache{
		client:      redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		missionsTTL: missionsTTL,
		inboxSize:   defaultInboxSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type Option func(*RedisCache)

// WithInbox bounds each user's notification list to size entries kept for ttl.
func WithInbox(size int, ttl time.Duration) Option {
	return func(c *RedisCache) {
		if size > 0 {
			c.inboxSize = int64(size)
		}
		c.inboxTTL = ttl
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetOpenMissions returns the cached list, or nil on a miss, together with the
// cache version the caller must hand back to SetOpenMissions.
func (c *RedisCache) GetOpenMissions(ctx context.Context) ([]domain.Mission, int64, error) {
	vals, err := c.client.MGet(ctx, openMissionsVersionKey(), openMissionsKey()).Result()
	if err != nil {
		return nil, 0, err
	}
	version, err := parseVersion(vals[0])
	if err != nil {
		return nil, 0, err
	}

	raw, ok := vals[1].(string)
	if !ok {
		return nil, version, nil
	}
	var missions []domain.Mission
	if err := json.Unmarshal([]byte(raw), &missions); err != nil {
		return nil, version, err
	}
	return missions, version, nil
}

// SetOpenMissions stores missions only while the cache is still at version.
// An invalidation that landed after the caller's read makes this a no-op.
func (c *RedisCache) SetOpenMissions(ctx context.Context, version int64, missions []domain.Mission) error {
	payload, err := json.Marshal(missions)
	if err != nil {
		return err
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, openMissionsVersionKey()).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return errStaleVersion
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, openMissionsKey(), payload, c.missionsTTL)
			return nil
		})
		return err
	}, openMissionsVersionKey())
	if errors.Is(err, errStaleVersion) || errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

// InvalidateOpenMissions bumps the version and drops the list in one transaction.
func (c *RedisCache) InvalidateOpenMissions(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, openMissionsVersionKey())
		pipe.Del(ctx, openMissionsKey())
		return nil
	})
	return err
}

var errStaleVersion = errors.New("open missions cache version moved")

func parseVersion(v interface{}) (int64, error) {
	switch raw := v.(type) {
	case nil:
		return 0, nil
	case string:
		version, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse open missions version %q: %w", raw, err)
		}
		return version, nil
	default:
		return 0, fmt.Errorf("unexpected open missions version %T", v)
	}
}

type inboxEntry struct {
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
	CreatedAt time.Time `json:"created_at"`
}

// PushNotification prepends n to its user's inbox and trims the oldest entries.
func (c *RedisCache) PushNotification(ctx context.Context, n domain.Notification) error {
	payload, err := json.Marshal(inboxEntry{Message: n.Message, Severity: string(n.Severity), CreatedAt: n.CreatedAt})
	if err != nil {
		return err
	}

	key := inboxKey(n.UserID)
	pipe := c.client.TxPipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, c.inboxSize-1)
	if c.inboxTTL > 0 {
		pipe.Expire(ctx, key, c.inboxTTL)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// Notifications returns up to limit entries, newest first.
func (c *RedisCache) Notifications(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	if limit <= 0 || int64(limit) > c.inboxSize {
		limit = int(c.inboxSize)
	}
	raw, err := c.client.LRange(ctx, inboxKey(userID), 0, int64(limit)-1).Result()
	if err != nil {
		return nil, err
	}

	out := make([]domain.Notification, 0, len(raw))
	for _, item := range raw {
		var e inboxEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			continue
		}
		out = append(out, domain.Notification{UserID: userID, Message: e.Message, Severity: domain.Severity(e.Severity), CreatedAt: e.CreatedAt})
	}
	return out, nil
}

func openMissionsKey() string {
	return "cache:missions:open"
}

func openMissionsVersionKey() string {
	return "cache:missions:open:version"
}

func inboxKey(userID string) string {
	return fmt.Sprintf("inbox:user:%s", userID)
}
