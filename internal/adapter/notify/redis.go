package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"agri-credit-engine/internal/domain/notify"

	"github.com/redis/go-redis/v9"
)

var _ notify.Sink = (*RedisSink)(nil)

// RedisSink publishes events as JSON on a pub/sub channel.
type RedisSink struct {
	rdb     *redis.Client
	channel string
}

func NewRedisSink(rdb *redis.Client, channel string) *RedisSink {
	return &RedisSink{rdb: rdb, channel: channel}
}

func (s *RedisSink) Notify(ctx context.Context, e notify.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", e.Type, err)
	}
	if err := s.rdb.Publish(ctx, s.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", s.channel, err)
	}
	return nil
}
