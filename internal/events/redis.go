// Package events publishes trust-and-safety domain events on Redis pub/sub
// for the Gateway and other services to consume.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"jobmate/trust-service/internal/scam"
)

// RedisPublisher implements scam.Publisher.
type RedisPublisher struct {
	rdb redis.UniversalClient
}

var _ scam.Publisher = (*RedisPublisher)(nil)

// NewRedisPublisher wraps a connected Redis client.
func NewRedisPublisher(rdb redis.UniversalClient) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

// Publish sends payload, plus a "type" field naming the channel, as JSON.
func (p *RedisPublisher) Publish(ctx context.Context, channel string, payload map[string]string) error {
	event, err := Encode(channel, payload)
	if err != nil {
		return err
	}
	if err := p.rdb.Publish(ctx, channel, event).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}
	return nil
}

// Encode renders an event body. The payload map is not modified.
func Encode(channel string, payload map[string]string) ([]byte, error) {
	msg := make(map[string]string, len(payload)+1)
	for k, v := range payload {
		msg[k] = v
	}
	msg["type"] = channel
	b, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", channel, err)
	}
	return b, nil
}
