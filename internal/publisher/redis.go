// Package publisher pushes the latest readings into a Redis hash.
package publisher

import (
	"context"
	"fmt"
	"sync"

	"elmpid/internal/models"
	"elmpid/internal/obd/pid"

	"github.com/go-redis/redis/v8"
)

const DefaultKey = "obd"

type Redis struct {
	client *redis.Client
	key    string
	mu     sync.Mutex
	last   map[string]string
}

// NewRedis connects to addr. Readings are written to the hash key.
func NewRedis(addr, key string) *Redis {
	if key == "" {
		key = DefaultKey
	}
	return &Redis{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		key:    key,
		last:   map[string]string{},
	}
}

// Ping checks the server is reachable.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}

// Publish writes every reading in one pipeline. Fields whose value changed
// are announced on the "<key> <field>" channel.
func (r *Redis) Publish(ctx context.Context, readings []pid.Reading) error {
	if len(readings) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	values := Fields(readings)
	changed := r.changed(values)

	pipe := r.client.Pipeline()
	pipe.HSet(ctx, r.key, toArgs(values))
	for _, field := range changed {
		pipe.Publish(ctx, r.key+" "+field, values[field])
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish readings: %v", err)
	}

	for field, v := range values {
		r.last[field] = v
	}
	return nil
}

// PublishDTCs replaces the "<key>:dtc" set with the given codes.
func (r *Redis) PublishDTCs(ctx context.Context, entries []models.DTCEntry) error {
	setKey := r.key + ":dtc"

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, setKey)
	if len(entries) > 0 {
		codes := make([]interface{}, 0, len(entries))
		for _, e := range entries {
			codes = append(codes, e.Code)
		}
		pipe.SAdd(ctx, setKey, codes...)
	}
	pipe.Publish(ctx, r.key+" dtc", len(entries))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish DTCs: %v", err)
	}
	return nil
}

// changed returns the fields of values that differ from the last publish.
func (r *Redis) changed(values map[string]string) []string {
	var fields []string
	for field, v := range values {
		if prev, ok := r.last[field]; !ok || prev != v {
			fields = append(fields, field)
		}
	}
	return fields
}

// Fields maps readings to hash fields "<mode>:<pid>" holding the value with its unit.
func Fields(readings []pid.Reading) map[string]string {
	values := make(map[string]string, len(readings))
	for _, rd := range readings {
		values[Field(rd)] = rd.FormatValue()
	}
	return values
}

func Field(rd pid.Reading) string {
	return fmt.Sprintf("%02x:%02x", rd.Mode, rd.PID)
}

func toArgs(values map[string]string) map[string]interface{} {
	args := make(map[string]interface{}, len(values))
	for k, v := range values {
		args[k] = v
	}
	return args
}
