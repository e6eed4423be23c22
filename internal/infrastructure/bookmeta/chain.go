package bookmeta

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"books-commons/internal/config"
)

// Chain gọi song song tất cả providers.
// Lookup: merge field theo Priority (giống PriorityMerger), genres lấy union.
// Search: nối kết quả theo thứ tự priority.
type Chain struct {
	providers []Provider
}

var _ Provider = (*Chain)(nil)

func NewChain(providers ...Provider) *Chain {
	sorted := make([]Provider, len(providers))
	copy(sorted, providers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() < sorted[j].Priority()
	})
	return &Chain{providers: sorted}
}

// NewDefaultChain - openBD, Google Books, Open Library theo config
func NewDefaultChain(cc config.CatalogConfig) *Chain {
	return NewChain(
		NewOpenBD(cc.OpenBDURL, cc.ProviderTimeout, cc.OpenBDRPS),
		NewGoogleBooks(cc.GoogleBooksURL, cc.GoogleBooksAPIKey, cc.ProviderTimeout, cc.GoogleBooksRPS),
		NewOpenLibrary(cc.OpenLibraryURL, cc.ProviderTimeout, cc.OpenLibraryRPS),
	)
}

func (c *Chain) Name() string  { return "chain" }
func (c *Chain) Priority() int { return 0 }

// Lookup trả ErrNotFound khi mọi provider đều trả lời "không biết";
// nếu không ai tìm thấy và ít nhất một provider lỗi thì trả lỗi.
func (c *Chain) Lookup(ctx context.Context, isbn string) (*Metadata, error) {
	results := make([]*Metadata, len(c.providers))
	errs := make([]error, len(c.providers))

	var g errgroup.Group
	for i, p := range c.providers {
		g.Go(func() error {
			results[i], errs[i] = p.Lookup(ctx, isbn)
			return nil
		})
	}
	_ = g.Wait()

	if merged := mergeByPriority(results); merged != nil {
		return merged, nil
	}

	var failures []error
	for i, err := range errs {
		if err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnsupported) {
			continue
		}
		log.Warn().Err(err).Str("provider", c.providers[i].Name()).Str("isbn", isbn).Msg("[BOOKMETA] Lookup failed")
		failures = append(failures, err)
	}
	if len(failures) > 0 {
		return nil, fmt.Errorf("lookup %s: %w", isbn, errors.Join(failures...))
	}
	return nil, ErrNotFound
}

// Search fail chỉ khi mọi provider hỗ trợ search đều lỗi
func (c *Chain) Search(ctx context.Context, query string, limit int) ([]Metadata, error) {
	results := make([][]Metadata, len(c.providers))
	errs := make([]error, len(c.providers))

	var g errgroup.Group
	for i, p := range c.providers {
		g.Go(func() error {
			results[i], errs[i] = p.Search(ctx, query, limit)
			return nil
		})
	}
	_ = g.Wait()

	records := make([]Metadata, 0)
	supported, failed := 0, 0
	var failures []error
	for i := range c.providers {
		if errors.Is(errs[i], ErrUnsupported) {
			continue
		}
		supported++
		if errs[i] != nil {
			failed++
			failures = append(failures, errs[i])
			log.Warn().Err(errs[i]).Str("provider", c.providers[i].Name()).Msg("[BOOKMETA] Search failed")
			continue
		}
		records = append(records, results[i]...)
	}

	if supported > 0 && failed == supported {
		return nil, fmt.Errorf("search %q: %w", query, errors.Join(failures...))
	}
	return records, nil
}

// mergeByPriority - results đã theo thứ tự priority, field lấy giá trị non-empty đầu tiên
func mergeByPriority(results []*Metadata) *Metadata {
	var merged *Metadata
	for _, r := range results {
		if r == nil || r.Title == "" {
			continue
		}
		if merged == nil {
			m := *r
			m.Genres = append([]string(nil), r.Genres...)
			merged = &m
			continue
		}
		if merged.ISBN == "" {
			merged.ISBN = r.ISBN
		}
		if merged.Author == "" {
			merged.Author = r.Author
		}
		if merged.Publisher == "" {
			merged.Publisher = r.Publisher
		}
		if merged.PublishedDate == "" {
			merged.PublishedDate = r.PublishedDate
		}
		if merged.Description == "" {
			merged.Description = r.Description
		}
		if merged.CoverURL == "" {
			merged.CoverURL = r.CoverURL
		}
		if merged.PageCount == 0 {
			merged.PageCount = r.PageCount
		}
		merged.Genres = unionStrings(merged.Genres, r.Genres)
	}
	return merged
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range append(append([]string(nil), a...), b...) {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
