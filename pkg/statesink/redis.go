package statesink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisTTL is how long match state is kept after its last update
const DefaultRedisTTL = 24 * time.Hour

// Redis stores match state in a hash per match and publishes events on a channel per match
type Redis struct {
	cli redis.Cmdable
	ttl time.Duration

	closer func() error
}

// NewRedis connects to the redis server at addr
func NewRedis(ctx context.Context, addr, password string) (*Redis, error) {
	cli := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := cli.Ping(ctx).Err(); err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("could not connect to redis: %w", err)
	}

	return &Redis{cli: cli, ttl: DefaultRedisTTL, closer: cli.Close}, nil
}

// NewRedisWithClient returns a sink for an existing client
func NewRedisWithClient(cli redis.Cmdable, ttl time.Duration) *Redis {
	return &Redis{cli: cli, ttl: ttl}
}

// StateKey is the hash holding the match's state
func StateKey(matchID string) string {
	return "recall:match:" + matchID
}

// EventChannel is the channel match events are published on
func EventChannel(matchID string) string {
	return "recall:events:" + matchID
}

// Merge writes every update as a JSON encoded hash field
func (r *Redis) Merge(ctx context.Context, matchID string, updates map[string]interface{}) error {
	encoded, err := Encode(updates)
	if err != nil {
		return err
	}

	if len(encoded) == 0 {
		return nil
	}

	values := make(map[string]interface{}, len(encoded))
	for key, val := range encoded {
		values[key] = string(val)
	}

	key := StateKey(matchID)
	_, err = r.cli.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, values)
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}

		return nil
	})

	return err
}

// Get returns every field of the match's hash
func (r *Redis) Get(ctx context.Context, matchID string) (State, error) {
	fields, err := r.cli.HGetAll(ctx, StateKey(matchID)).Result()
	if err != nil {
		return nil, err
	}

	st := make(State, len(fields))
	for key, val := range fields {
		st[key] = json.RawMessage(val)
	}

	return st, nil
}

// Publish publishes the JSON encoded event
func (r *Redis) Publish(ctx context.Context, matchID string, event Event) error {
	b, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return r.cli.Publish(ctx, EventChannel(matchID), b).Err()
}

// Delete removes the match's hash
func (r *Redis) Delete(ctx context.Context, matchID string) error {
	return r.cli.Del(ctx, StateKey(matchID)).Err()
}

// Close closes the client if the sink created it
func (r *Redis) Close() error {
	if r.closer == nil {
		return nil
	}

	return r.closer()
}
