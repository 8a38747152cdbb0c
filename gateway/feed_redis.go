package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// RedisFeed implements Feed over redis pub/sub with one channel per owner
type RedisFeed struct {
	client *redis.Client
}

func NewRedisFeed() (*RedisFeed, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     viper.GetString("redis.addr"),
		Password: viper.GetString("redis.password"),
		DB:       viper.GetInt("redis.db"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis, %w", err)
	}

	return &RedisFeed{client: client}, nil
}

func feedKey(ownerID string) string {
	return "drive:events:" + ownerID
}

// Publish fans the event out to the owner, everyone on the sharing list
// and any extra Notify recipients, deduplicated
func (f *RedisFeed) Publish(ctx context.Context, ev Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event, %w", err)
	}

	seen := map[string]bool{}
	recipients := make([]string, 0, 1+len(ev.File.SharedWith)+len(ev.Notify))

	for _, id := range append(append([]string{ev.File.OwnerID}, ev.File.SharedWith...), ev.Notify...) {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		recipients = append(recipients, id)
	}

	pipe := f.client.Pipeline()
	for _, id := range recipients {
		pipe.Publish(ctx, feedKey(id), b)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish event, %w", err)
	}

	return nil
}

// Subscribe delivers events for ownerID to h on a dedicated goroutine
// until the returned channel is closed. Malformed payloads are logged and
// dropped, never handed to h.
func (f *RedisFeed) Subscribe(ctx context.Context, ownerID string, h func(Event)) (Channel, error) {
	sub := f.client.Subscribe(ctx, feedKey(ownerID))

	// Forces the server round-trip so a broken subscription fails here
	// instead of silently delivering nothing
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("failed to subscribe to feed, %w", err)
	}

	go func() {
		for msg := range sub.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				zap.L().Warn("Dropping malformed feed event",
					zap.String("owner_id", ownerID),
					zap.Error(err))
				continue
			}

			h(ev)
		}
	}()

	return &redisChannel{sub: sub}, nil
}

type redisChannel struct {
	sub  *redis.PubSub
	once sync.Once
}

func (c *redisChannel) Close() error {
	var err error
	c.once.Do(func() {
		err = c.sub.Close()
	})
	return err
}
