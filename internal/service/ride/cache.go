package ride

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"ridetrace/internal/model"
)

// CachePrefix namespaces route cache keys.
const CachePrefix = "ridetrace:route:"

// Cache stores finished rides by content key. *redis.Client satisfies it.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, expiration time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

// cacheKey hashes the image bytes together with both station strings.
func cacheKey(img []byte, start, end string) string {
	h := sha256.New()
	h.Write(img)
	h.Write([]byte{0})
	h.Write([]byte(start))
	h.Write([]byte{0})
	h.Write([]byte(end))
	return CachePrefix + hex.EncodeToString(h.Sum(nil))
}

func (s *Service) cached(ctx context.Context, key string) *model.Ride {
	if s.cache == nil {
		return nil
	}
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("route cache read failed")
		return nil
	}
	if !ok {
		return nil
	}
	var ride model.Ride
	if err := json.Unmarshal(data, &ride); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("dropping unreadable cache entry")
		return nil
	}
	s.log.Debug().Str("key", key).Str("ride", ride.ID).Msg("route cache hit")
	return &ride
}

func (s *Service) remember(ctx context.Context, key string, ride *model.Ride) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(ride)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to encode ride for cache")
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("route cache write failed")
	}
}

// PurgeCache removes every cached route and returns the number of keys deleted.
func (s *Service) PurgeCache(ctx context.Context) (int, error) {
	if s.cache == nil {
		return 0, nil
	}
	return s.cache.DeletePrefix(ctx, CachePrefix)
}
