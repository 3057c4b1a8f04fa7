package sink

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"slapred/bonusscraper/internal/bonus"
	"slapred/bonusscraper/internal/downline"
)

// RedisSink publishes row copies to Redis streams for downstream
// consumers. Rows are JSON encoded then base64 wrapped before XAdd.
type RedisSink struct {
	client       *redis.Client
	ctx          context.Context
	streamPrefix string
	maxLength    int
}

// NewRedisSink creates a Redis stream publisher.
func NewRedisSink(ctx context.Context, addr string, db int, streamPrefix string, maxLength int) *RedisSink {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisSink{
		client:       client,
		ctx:          ctx,
		streamPrefix: streamPrefix,
		maxLength:    maxLength,
	}
}

// PublishBonuses publishes bonus rows to the bonuses stream.
func (s *RedisSink) PublishBonuses(rows []bonus.Bonus) error {
	for i := range rows {
		if err := s.publish(s.streamPrefix+":bonuses", "bonus", rows[i]); err != nil {
			return err
		}
	}
	return nil
}

// PublishDownlines publishes downline rows to the downlines stream.
func (s *RedisSink) PublishDownlines(rows []downline.Downline) error {
	for i := range rows {
		if err := s.publish(s.streamPrefix+":downlines", "downline", rows[i]); err != nil {
			return err
		}
	}
	return nil
}

// publish encodes one row and appends it to a stream.
func (s *RedisSink) publish(stream, key string, row interface{}) error {
	data, err := json.Marshal(row)
	if err != nil {
		return err
	}
	encoded := base64.StdEncoding.EncodeToString(data)

	return s.client.XAdd(s.ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			key: encoded,
		},
	}).Err()
}

// TrimStreams trims both streams to the configured maximum length.
func (s *RedisSink) TrimStreams() error {
	for _, stream := range []string{s.streamPrefix + ":bonuses", s.streamPrefix + ":downlines"} {
		if err := s.client.XTrimMaxLen(s.ctx, stream, int64(s.maxLength)).Err(); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisSink) Close() error {
	return s.client.Close()
}
