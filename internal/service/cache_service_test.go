package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheService_GetOrSet(t *testing.T) {
	cs := NewCacheService()
	calls := 0
	fn := func() (interface{}, error) {
		calls++
		return calls, nil
	}

	v1, err := cs.GetOrSet(context.Background(), "k", time.Minute, fn)
	require.NoError(t, err)
	v2, err := cs.GetOrSet(context.Background(), "k", time.Minute, fn)
	require.NoError(t, err)

	assert.Equal(t, 1, v1)
	assert.Equal(t, 1, v2)
	assert.Equal(t, 1, calls)
}

func TestCacheService_ErrorsAreNotCached(t *testing.T) {
	cs := NewCacheService()
	_, err := cs.GetOrSet(context.Background(), "k", time.Minute, func() (interface{}, error) {
		return nil, errors.New("boom")
	})
	require.Error(t, err)

	_, ok := cs.Get("k")
	assert.False(t, ok)
}

func TestCacheService_Expiry(t *testing.T) {
	cs := NewCacheService()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cs.now = func() time.Time { return now }

	cs.Set("k", "v", time.Second)
	_, ok := cs.Get("k")
	assert.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok = cs.Get("k")
	assert.False(t, ok)

	cs.evictExpired()
	assert.Empty(t, cs.cache)
}

func TestCacheService_InvalidateJobs(t *testing.T) {
	cs := NewCacheService()
	clientID := uuid.New()
	other := uuid.New()

	cs.Set(StatsCacheKey(&clientID), 1, time.Minute)
	cs.Set(StatsCacheKey(&other), 2, time.Minute)
	cs.Set(StatsCacheKey(nil), 3, time.Minute)
	cs.Set(FeaturedJobsCacheKey(10), 4, time.Minute)
	cs.Set(SuggestionsCacheKey(uuid.New(), 5), 5, time.Minute)

	cs.InvalidateJobs(clientID)

	_, ok := cs.Get(StatsCacheKey(&clientID))
	assert.False(t, ok)
	_, ok = cs.Get(StatsCacheKey(nil))
	assert.False(t, ok)
	_, ok = cs.Get(FeaturedJobsCacheKey(10))
	assert.False(t, ok)
	assert.Empty(t, keysWithPrefix(cs, "suggestions:"))
	_, ok = cs.Get(StatsCacheKey(&other))
	assert.True(t, ok)
}

func keysWithPrefix(cs *CacheService, prefix string) []string {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	var keys []string
	for key := range cs.cache {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys
}
