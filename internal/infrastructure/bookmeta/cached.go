package bookmeta

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"books-commons/internal/infrastructure/metrics"
	"books-commons/pkg/cache"
)

// CachedProvider cache kết quả Lookup (kể cả "không tìm thấy") trong Redis.
// Search không cache.
type CachedProvider struct {
	Provider
	cache       cache.Cache
	ttl         time.Duration
	negativeTTL time.Duration
}

func NewCachedProvider(p Provider, c cache.Cache, ttl, negativeTTL time.Duration) *CachedProvider {
	return &CachedProvider{Provider: p, cache: c, ttl: ttl, negativeTTL: negativeTTL}
}

type cachedLookup struct {
	Data     *Metadata `json:"data"`
	NotFound bool      `json:"not_found"`
}

func lookupKey(isbn string) string {
	return "lookup:" + isbn
}

func (p *CachedProvider) Lookup(ctx context.Context, isbn string) (*Metadata, error) {
	var entry cachedLookup
	found, err := p.cache.Get(ctx, lookupKey(isbn), &entry)
	if err != nil {
		// Redis lỗi thì gọi thẳng provider
		log.Warn().Err(err).Str("isbn", isbn).Msg("[BOOKMETA] Cache read failed")
	}
	if found {
		metrics.MetadataRequestsTotal.WithLabelValues(p.Name(), "lookup", "cached").Inc()
		if entry.NotFound || entry.Data == nil {
			return nil, ErrNotFound
		}
		return entry.Data, nil
	}

	md, err := p.Provider.Lookup(ctx, isbn)
	switch {
	case err == nil:
		p.store(ctx, isbn, cachedLookup{Data: md}, p.ttl)
	case errors.Is(err, ErrNotFound):
		p.store(ctx, isbn, cachedLookup{NotFound: true}, p.negativeTTL)
	}
	return md, err
}

func (p *CachedProvider) store(ctx context.Context, isbn string, entry cachedLookup, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if err := p.cache.Set(ctx, lookupKey(isbn), entry, ttl); err != nil {
		log.Warn().Err(err).Str("isbn", isbn).Msg("[BOOKMETA] Cache write failed")
	}
}
