package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/xavierspacelix/jamming/pkg/log"
)

var errCacheMiss = errors.New("cache miss")

// CachedSearcher wraps a MediaSearcher with a redis result cache.
// Singleflight collapses concurrent identical queries into one upstream
// call, so a popular query does not stampede the provider.
type CachedSearcher struct {
	inner  MediaSearcher
	client *redis.Client
	prefix string
	ttl    time.Duration
	sf     singleflight.Group
}

// NewCachedSearcher creates a caching wrapper around inner.
func NewCachedSearcher(inner MediaSearcher, client *redis.Client, prefix string, ttl time.Duration) *CachedSearcher {
	return &CachedSearcher{
		inner:  inner,
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Search returns cached results when available.
func (s *CachedSearcher) Search(ctx context.Context, query, pageToken string) (*SearchResult, error) {
	key := s.buildKey(query, pageToken)

	result, err, _ := s.sf.Do(key, func() (interface{}, error) {
		cached, err := s.get(ctx, key)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, errCacheMiss) {
			l := log.Ctx(ctx)
			l.Warn().Err(err).Msg("search cache get error")
		}

		fresh, err := s.inner.Search(ctx, query, pageToken)
		if err != nil {
			return nil, err
		}

		s.asyncSet(key, fresh)
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*SearchResult), nil
}

func (s *CachedSearcher) buildKey(query, pageToken string) string {
	return fmt.Sprintf("%s:q:%s:p:%s", s.prefix, query, pageToken)
}

func (s *CachedSearcher) get(ctx context.Context, key string) (*SearchResult, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errCacheMiss
		}
		return nil, err
	}

	var result SearchResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// asyncSet writes the cache entry off the request path.
func (s *CachedSearcher) asyncSet(key string, result *SearchResult) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		data, err := json.Marshal(result)
		if err != nil {
			return
		}
		if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
			l := log.L()
			l.Warn().Err(err).Msg("search cache set error")
		}
	}()
}
