package ledger

import (
	"encoding/json"
	"time"

	"chain-chat-relay/backend/internal/models"
	"chain-chat-relay/backend/pkg/cache"
	"chain-chat-relay/backend/shared/redis"
)

// MemoryCache adapts the in-process TTL cache to the ResultCache
// contract. Suitable default; mined transactions never change, the TTL
// only bounds memory.
type MemoryCache struct {
	cache *cache.Cache
}

func NewMemoryCache(c *cache.Cache) *MemoryCache {
	return &MemoryCache{cache: c}
}

func (m *MemoryCache) Get(txID string) (models.Transaction, bool) {
	v, ok := m.cache.Get(txID)
	if !ok {
		return models.Transaction{}, false
	}
	tx, ok := v.(models.Transaction)
	return tx, ok
}

func (m *MemoryCache) Set(txID string, tx models.Transaction) {
	m.cache.Set(txID, tx)
}

// RedisCache stores resolved transactions in redis as JSON so multiple
// relay instances share one enrichment cache.
type RedisCache struct {
	client *redis.RedisClient
	ttl    time.Duration
}

func NewRedisCache(client *redis.RedisClient, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (r *RedisCache) Get(txID string) (models.Transaction, bool) {
	raw, err := r.client.Get(r.key(txID))
	if err != nil {
		return models.Transaction{}, false
	}
	var tx models.Transaction
	if err := json.Unmarshal([]byte(raw), &tx); err != nil {
		return models.Transaction{}, false
	}
	return tx, true
}

func (r *RedisCache) Set(txID string, tx models.Transaction) {
	raw, err := json.Marshal(tx)
	if err != nil {
		return
	}
	_ = r.client.Set(r.key(txID), string(raw), r.ttl)
}

func (r *RedisCache) key(txID string) string {
	return "tx:" + txID
}
