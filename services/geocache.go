package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const geocodeCacheTTL = 300 * time.Second

// CachedGeocoder memoizes search results in Redis. Reverse lookups pass
// through uncached since map clicks rarely repeat exactly.
type CachedGeocoder struct {
	next   Geocoder
	client *redis.Client
	ttl    time.Duration
}

func NewCachedGeocoder(next Geocoder, client *redis.Client) *CachedGeocoder {
	return &CachedGeocoder{next: next, client: client, ttl: geocodeCacheTTL}
}

func (g *CachedGeocoder) Search(ctx context.Context, query string) ([]Place, error) {
	key := "civictrack:geocode:" + strings.ToLower(strings.TrimSpace(query))

	if cached, err := g.client.Get(ctx, key).Bytes(); err == nil {
		var places []Place
		if err := json.Unmarshal(cached, &places); err == nil {
			return places, nil
		}
	} else if err != redis.Nil {
		log.Warn().Err(err).Msg("Geocode cache read failed")
	}

	places, err := g.next.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(places); err == nil {
		if err := g.client.Set(ctx, key, payload, g.ttl).Err(); err != nil {
			log.Warn().Err(err).Msg("Geocode cache write failed")
		}
	}
	return places, nil
}

func (g *CachedGeocoder) Reverse(ctx context.Context, lat, lng float64) (*Place, error) {
	return g.next.Reverse(ctx, lat, lng)
}
