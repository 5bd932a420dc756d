package service

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CacheService: in-memory кэш с TTL для дорогих чтений (статистика, витрина заказов, подборки).
type CacheService struct {
	mu    sync.RWMutex
	cache map[string]*cacheEntry
	now   func() time.Time
}

type cacheEntry struct {
	data      interface{}
	expiresAt time.Time
}

func NewCacheService() *CacheService {
	return &CacheService{
		cache: make(map[string]*cacheEntry),
		now:   time.Now,
	}
}

// Run периодически удаляет просроченные записи до отмены ctx.
func (cs *CacheService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cs.evictExpired()
		}
	}
}

func (cs *CacheService) Get(key string) (interface{}, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	entry, ok := cs.cache[key]
	if !ok || cs.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.data, true
}

func (cs *CacheService) Set(key string, value interface{}, ttl time.Duration) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.cache[key] = &cacheEntry{data: value, expiresAt: cs.now().Add(ttl)}
}

// InvalidateByPrefix удаляет все ключи с префиксом.
func (cs *CacheService) InvalidateByPrefix(prefix string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	for key := range cs.cache {
		if strings.HasPrefix(key, prefix) {
			delete(cs.cache, key)
		}
	}
}

// InvalidateJobs сбрасывает всё, что зависит от заказов клиента: его статистику,
// общую статистику, витрину и подборки исполнителей (они считаются по навыкам заказа).
func (cs *CacheService) InvalidateJobs(clientID uuid.UUID) {
	cs.InvalidateByPrefix("stats:" + clientID.String())
	cs.InvalidateByPrefix("stats:all")
	cs.InvalidateByPrefix("featured:")
	cs.InvalidateByPrefix("suggestions:")
}

// GetOrSet возвращает значение из кэша или вычисляет и сохраняет его. Ошибки не кэшируются.
func (cs *CacheService) GetOrSet(ctx context.Context, key string, ttl time.Duration, fn func() (interface{}, error)) (interface{}, error) {
	if value, ok := cs.Get(key); ok {
		return value, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	value, err := fn()
	if err != nil {
		return nil, err
	}
	cs.Set(key, value, ttl)
	return value, nil
}

func (cs *CacheService) evictExpired() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	now := cs.now()
	for key, entry := range cs.cache {
		if now.After(entry.expiresAt) {
			delete(cs.cache, key)
		}
	}
}

func StatsCacheKey(clientID *uuid.UUID) string {
	if clientID == nil {
		return "stats:all"
	}
	return "stats:" + clientID.String()
}

func FeaturedJobsCacheKey(limit int) string {
	return "featured:" + strconv.Itoa(limit)
}

func SuggestionsCacheKey(jobID uuid.UUID, limit int) string {
	return "suggestions:" + jobID.String() + ":" + strconv.Itoa(limit)
}
