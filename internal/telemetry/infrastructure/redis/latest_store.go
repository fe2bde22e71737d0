package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	telemetry "temperature-monitor/internal/telemetry/domain"
)

const defaultLatestKey = "thermo:reading:latest"

// putNewest writes KEYS[1] and its order key KEYS[2] unless the stored order is newer.
var putNewest = goredis.NewScript(`
local current = redis.call('GET', KEYS[2])
if current and current > ARGV[2] then
  return 0
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

// LatestStore keeps the last accepted reading in Redis with a TTL.
type LatestStore struct {
	client *goredis.Client
	key    string
	ttl    time.Duration
}

type latestRecord struct {
	ID              string          `json:"id"`
	ServerTimestamp time.Time       `json:"server_ts"`
	ClientTimestamp string          `json:"client_ts,omitempty"`
	Sensors         json.RawMessage `json:"sensors"`
}

// NewLatestStore constructs a Redis-backed latest store.
func NewLatestStore(client *goredis.Client, ttl time.Duration) (*LatestStore, error) {
	if client == nil {
		return nil, errors.New("redis latest store: nil client")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &LatestStore{client: client, key: defaultLatestKey, ttl: ttl}, nil
}

// Put stores the reading unless a reading with a later server timestamp is already cached.
func (s *LatestStore) Put(ctx context.Context, reading telemetry.Reading) error {
	sensors, err := telemetry.EncodeSensors(reading.Sensors)
	if err != nil {
		return err
	}
	body, err := json.Marshal(latestRecord{
		ID:              reading.ID,
		ServerTimestamp: reading.ServerTimestamp,
		ClientTimestamp: reading.ClientTimestamp,
		Sensors:         sensors,
	})
	if err != nil {
		return err
	}
	keys := []string{s.key, s.key + ":ts"}
	return putNewest.Run(ctx, s.client, keys, body, orderKey(reading.ServerTimestamp), s.ttl.Milliseconds()).Err()
}

// orderKey is a fixed-width string so Lua string comparison follows time order.
func orderKey(at time.Time) string {
	return fmt.Sprintf("%020d", at.UTC().UnixNano())
}

// Get returns the cached reading or nil when the key is absent or expired.
func (s *LatestStore) Get(ctx context.Context) (*telemetry.Reading, error) {
	body, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var record latestRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, err
	}
	sensors, err := telemetry.DecodeSensors(record.Sensors)
	if err != nil {
		return nil, err
	}
	return &telemetry.Reading{
		ID:              record.ID,
		Sensors:         sensors,
		ClientTimestamp: record.ClientTimestamp,
		ServerTimestamp: record.ServerTimestamp,
	}, nil
}
