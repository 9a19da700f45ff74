package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrTokenNotFound 令牌不存在或已过期
var ErrTokenNotFound = errors.New("export token not found")

const exportKeyPrefix = "chapterflux:export:"

// ExportTokenStore 带过期时间的导出令牌存储，Take 读取后即删除
type ExportTokenStore interface {
	Put(ctx context.Context, token string, payload []byte, ttl time.Duration) error
	Take(ctx context.Context, token string) ([]byte, error)
}

// RedisExportTokenStore 多实例部署时使用
type RedisExportTokenStore struct {
	Redis *redis.Client
}

func NewRedisExportTokenStore(rdb *redis.Client) *RedisExportTokenStore {
	return &RedisExportTokenStore{Redis: rdb}
}

func (s *RedisExportTokenStore) Put(ctx context.Context, token string, payload []byte, ttl time.Duration) error {
	return s.Redis.Set(ctx, exportKeyPrefix+token, payload, ttl).Err()
}

func (s *RedisExportTokenStore) Take(ctx context.Context, token string) ([]byte, error) {
	data, err := s.Redis.GetDel(ctx, exportKeyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryExportTokenStore 单实例或未启用 Redis 时使用。
// 读取时检查过期，后台定期清理。
type MemoryExportTokenStore struct {
	mu       sync.Mutex
	entries  map[string]memoryEntry
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

func NewMemoryExportTokenStore(sweepInterval time.Duration) *MemoryExportTokenStore {
	s := &MemoryExportTokenStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	if sweepInterval > 0 {
		go s.sweepLoop(sweepInterval)
	}
	return s
}

func (s *MemoryExportTokenStore) Put(ctx context.Context, token string, payload []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[token] = memoryEntry{payload: payload, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryExportTokenStore) Take(ctx context.Context, token string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[token]
	if !ok {
		return nil, ErrTokenNotFound
	}
	delete(s.entries, token)
	if !s.now().Before(entry.expiresAt) {
		return nil, ErrTokenNotFound
	}
	return entry.payload, nil
}

// Len 当前保存的条目数（含未清理的过期条目）
func (s *MemoryExportTokenStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryExportTokenStore) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for token, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, token)
		}
	}
}

func (s *MemoryExportTokenStore) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *MemoryExportTokenStore) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
