package gateway

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/theapemachine/qgate/quantumpb"
)

const keyPrefix = "qgate:runquil:"

// Cache stores the readout bits of finished requests.
type Cache interface {
	Get(ctx context.Context, key string) ([]int32, bool, error)
	Set(ctx context.Context, key string, ro []int32, ttl time.Duration) error
}

// RedisCache keeps readouts in redis as strings of '0' and '1'.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// DialRedis connects to addr and checks the server answers.
func DialRedis(ctx context.Context, addr string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "redis %s", addr)
	}

	return NewRedisCache(client), nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]int32, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, errors.Wrap(err, "cache get")
	}

	ro := make([]int32, len(val))
	for i, ch := range val {
		switch ch {
		case '0':
		case '1':
			ro[i] = 1
		default:
			return nil, false, errors.Errorf("cache entry %s holds %q", key, ch)
		}
	}

	return ro, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, ro []int32, ttl time.Duration) error {
	var sb strings.Builder
	sb.Grow(len(ro))
	for _, bit := range ro {
		sb.WriteByte(byte('0' + bit))
	}

	return errors.Wrap(c.client.Set(ctx, key, sb.String(), ttl).Err(), "cache set")
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// cacheKey is stable across map iteration order.
func cacheKey(req *quantumpb.RunQuilRequest) string {
	h := sha256.New()
	h.Write([]byte(req.GetProgram()))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(int(req.GetShots()))))

	params := req.GetParams()
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		h.Write([]byte{0})
		h.Write([]byte(name))
		h.Write([]byte{'='})
		h.Write([]byte(strconv.FormatFloat(params[name], 'g', -1, 64)))
	}

	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}
