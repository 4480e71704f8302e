package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cleanview/pkg/state"

	"github.com/redis/go-redis/v9"
)

// RedisStore 把状态记录存进 Redis，适合多台机器共享同一个 workspace 的场景
type RedisStore struct {
	client *redis.Client
	key    string
}

type Config struct {
	RedisURL string // 标准连接字符串: redis://<user>:<password>@<host>:<port>/<db>
}

// NewRedisStore 连接 Redis，root 决定记录的作用域
func NewRedisStore(ctx context.Context, root string, cfg Config) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	// Fail-fast 连接检查
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{
		client: client,
		key:    cacheKey(root),
	}, nil
}

// cacheKey 生成 Redis Key，添加前缀防止冲突
func cacheKey(root string) string {
	return "cleanview:state:" + state.ScopeID(root)
}

func (s *RedisStore) Load(ctx context.Context) (state.Record, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return state.Record{}, nil
	}
	if err != nil {
		return state.Record{}, fmt.Errorf("redis get failed: %w", err)
	}
	return state.Decode(data)
}

func (s *RedisStore) Save(ctx context.Context, r state.Record) error {
	data, err := state.Encode(r)
	if err != nil {
		return err
	}
	// 记录不能过期：hide 期间丢失 OwnedKeys 会让 show 无法撤销
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

// Close 释放连接
func (s *RedisStore) Close() error {
	return s.client.Close()
}
