package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"madrid_barmap/internal/domain"
)

// PlacesService proxies the external place catalogue with a read-through cache.
type PlacesService struct {
	client   domain.PlacesClient
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewPlacesService(c domain.PlacesClient, cache domain.Cache, ttl time.Duration) *PlacesService {
	return &PlacesService{client: c, cache: cache, cacheTTL: ttl}
}

func (s *PlacesService) Search(ctx context.Context, query string) ([]domain.PlacePrediction, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &domain.ValidationError{Fields: map[string]string{"query": "is required"}}
	}
	key := "places:search:" + strings.ToLower(query)
	var out []domain.PlacePrediction
	if s.cached(ctx, key, &out) {
		return out, nil
	}
	out, err := s.client.Autocomplete(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("autocomplete %q: %w", query, err)
	}
	if out == nil {
		out = []domain.PlacePrediction{}
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	}
	return out, nil
}

func (s *PlacesService) Details(ctx context.Context, placeID string) (domain.PlaceDetails, error) {
	key := "places:details:" + placeID
	var d domain.PlaceDetails
	if s.cached(ctx, key, &d) {
		return d, nil
	}
	d, err := s.client.Details(ctx, placeID)
	if err != nil {
		return domain.PlaceDetails{}, fmt.Errorf("details %s: %w", placeID, err)
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, d, int(s.cacheTTL.Seconds()))
	}
	return d, nil
}

// cached loads key into dst. An entry that no longer decodes counts as a
// miss and is evicted so the caller's reload replaces it.
func (s *PlacesService) cached(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	ok, err := s.cache.Get(ctx, key, dst)
	if err == nil {
		return ok
	}
	if ok {
		log.Warn().Err(err).Str("key", key).Msg("dropping undecodable cache entry")
		if err := s.cache.Del(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache delete failed")
		}
	}
	return false
}
