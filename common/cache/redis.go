package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache implements Cache with JSON-encoded values under a key prefix.
type RedisCache[T any] struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

// NewRedisCache connects to redis://[:password@]host:port[/db] and pings it.
func NewRedisCache[T any](connectionString string, prefix string) (*RedisCache[T], error) {
	u, err := url.Parse(connectionString)
	if err != nil {
		return nil, err
	}

	password, _ := u.User.Password()
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		db, err = strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redis db %q: %w", p, err)
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     u.Host,
		Password: password,
		DB:       db,
	})

	c := NewRedisCacheFromClient[T](client, prefix)

	ctx, cancel := c.context()
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return c, nil
}

func NewRedisCacheFromClient[T any](client *redis.Client, prefix string) *RedisCache[T] {
	return &RedisCache[T]{
		client:  client,
		prefix:  prefix,
		timeout: 3 * time.Second,
	}
}

func (c *RedisCache[T]) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.timeout)
}

func (c *RedisCache[T]) key(key string) string {
	return c.prefix + key
}

func (c *RedisCache[T]) Set(key string, value T) error {
	if key == "" {
		return ErrInvalidKey
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	ctx, cancel := c.context()
	defer cancel()
	return c.client.Set(ctx, c.key(key), data, 0).Err()
}

func (c *RedisCache[T]) Get(key string) (T, error) {
	var value T

	ctx, cancel := c.context()
	defer cancel()

	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return value, ErrKeyNotFound
		}
		return value, err
	}

	err = json.Unmarshal(data, &value)
	return value, err
}

func (c *RedisCache[T]) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	prefixed := make([]string, 0, len(keys))
	for _, key := range keys {
		prefixed = append(prefixed, c.key(key))
	}

	ctx, cancel := c.context()
	defer cancel()
	return c.client.Del(ctx, prefixed...).Err()
}

func (c *RedisCache[T]) Close() error {
	return c.client.Close()
}
