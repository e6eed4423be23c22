package bookmeta

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name      string
	priority  int
	lookup    *Metadata
	lookupErr error
	search    []Metadata
	searchErr error

	mu    sync.Mutex
	calls int
}

func (p *stubProvider) Name() string  { return p.name }
func (p *stubProvider) Priority() int { return p.priority }

func (p *stubProvider) Lookup(ctx context.Context, isbn string) (*Metadata, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	return p.lookup, p.lookupErr
}

func (p *stubProvider) Search(ctx context.Context, query string, limit int) ([]Metadata, error) {
	return p.search, p.searchErr
}

func TestChainLookupMergesByPriority(t *testing.T) {
	low := &stubProvider{name: "low", priority: 3, lookup: &Metadata{
		Title: "Low title", Publisher: "Low pub", PageCount: 100, Genres: []string{"SF", "Novel"},
	}}
	high := &stubProvider{name: "high", priority: 1, lookup: &Metadata{
		Title: "High title", CoverURL: "https://img/c.jpg", Genres: []string{"SF"},
	}}

	md, err := NewChain(low, high).Lookup(context.Background(), "9784152098702")
	require.NoError(t, err)

	assert.Equal(t, "High title", md.Title)
	assert.Equal(t, "https://img/c.jpg", md.CoverURL)
	assert.Equal(t, "Low pub", md.Publisher)
	assert.Equal(t, 100, md.PageCount)
	assert.Equal(t, []string{"SF", "Novel"}, md.Genres)
}

func TestChainLookupIgnoresFailedProviderWhenAnotherHits(t *testing.T) {
	broken := &stubProvider{name: "broken", priority: 1, lookupErr: errors.New("connection refused")}
	ok := &stubProvider{name: "ok", priority: 2, lookup: &Metadata{Title: "三体"}}

	md, err := NewChain(broken, ok).Lookup(context.Background(), "9784152098702")
	require.NoError(t, err)
	assert.Equal(t, "三体", md.Title)
}

func TestChainLookupAllNotFound(t *testing.T) {
	a := &stubProvider{name: "a", priority: 1, lookupErr: ErrNotFound}
	b := &stubProvider{name: "b", priority: 2, lookupErr: ErrNotFound}

	_, err := NewChain(a, b).Lookup(context.Background(), "9784152098702")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestChainLookupFailureIsNotNotFound(t *testing.T) {
	a := &stubProvider{name: "a", priority: 1, lookupErr: ErrNotFound}
	b := &stubProvider{name: "b", priority: 2, lookupErr: errors.New("timeout")}

	_, err := NewChain(a, b).Lookup(context.Background(), "9784152098702")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestChainSearch(t *testing.T) {
	first := &stubProvider{name: "first", priority: 1, search: []Metadata{{Title: "A"}}}
	lookupOnly := &stubProvider{name: "lookup-only", priority: 2, searchErr: ErrUnsupported}
	broken := &stubProvider{name: "broken", priority: 3, searchErr: errors.New("503")}
	last := &stubProvider{name: "last", priority: 4, search: []Metadata{{Title: "B"}}}

	records, err := NewChain(last, broken, lookupOnly, first).Search(context.Background(), "q", 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "A", records[0].Title)
	assert.Equal(t, "B", records[1].Title)

	_, err = NewChain(broken, lookupOnly).Search(context.Background(), "q", 10)
	assert.Error(t, err)
}

// mapCache - cache.Cache in-memory cho test
type mapCache struct {
	mu   sync.Mutex
	data map[string]cachedLookup
}

func (c *mapCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if ok {
		*(dest.(*cachedLookup)) = v
	}
	return ok, nil
}

func (c *mapCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value.(cachedLookup)
	return nil
}

func (c *mapCache) Delete(ctx context.Context, keys ...string) error { return nil }
func (c *mapCache) Ping(ctx context.Context) error                   { return nil }

func TestCachedProvider(t *testing.T) {
	hit := &stubProvider{name: "p", priority: 1, lookup: &Metadata{Title: "三体"}}
	c := &mapCache{data: map[string]cachedLookup{}}
	cached := NewCachedProvider(hit, c, time.Hour, time.Minute)

	for i := 0; i < 3; i++ {
		md, err := cached.Lookup(context.Background(), "9784152098702")
		require.NoError(t, err)
		assert.Equal(t, "三体", md.Title)
	}
	assert.Equal(t, 1, hit.calls)

	miss := &stubProvider{name: "p", priority: 1, lookupErr: ErrNotFound}
	cachedMiss := NewCachedProvider(miss, c, time.Hour, time.Minute)
	for i := 0; i < 2; i++ {
		_, err := cachedMiss.Lookup(context.Background(), "9780306406157")
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, 1, miss.calls)
}

func TestCachedProviderDoesNotCacheFailures(t *testing.T) {
	broken := &stubProvider{name: "p", priority: 1, lookupErr: errors.New("boom")}
	cached := NewCachedProvider(broken, &mapCache{data: map[string]cachedLookup{}}, time.Hour, time.Minute)

	for i := 0; i < 2; i++ {
		_, err := cached.Lookup(context.Background(), "9784152098702")
		assert.Error(t, err)
	}
	assert.Equal(t, 2, broken.calls)
}
