package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"books-commons/internal/domains/catalog/model"
	"books-commons/internal/domains/catalog/repository"
	shelfModel "books-commons/internal/domains/shelf/model"
	"books-commons/internal/infrastructure/bookmeta"
	"books-commons/internal/infrastructure/metrics"
	"books-commons/internal/shared/apperror"
)

// Options - giá trị lấy từ config.CatalogConfig
type Options struct {
	ExternalTimeout time.Duration
	InternalLimit   int
	ResultLimit     int
	CollationLocale string
	SweepBatch      int
}

func (o Options) withDefaults() Options {
	if o.ExternalTimeout <= 0 {
		o.ExternalTimeout = 3 * time.Second
	}
	if o.InternalLimit <= 0 {
		o.InternalLimit = 30
	}
	if o.ResultLimit <= 0 {
		o.ResultLimit = 50
	}
	if o.CollationLocale == "" {
		o.CollationLocale = "ja"
	}
	if o.SweepBatch <= 0 {
		o.SweepBatch = 100
	}
	return o
}

type catalogService struct {
	books  repository.Repository
	copies CopyStats
	meta   MetadataSource
	queue  EnrichmentQueue
	covers CoverMirror
	opts   Options
	locale language.Tag
}

// NewCatalogService - covers có thể nil (MinIO tắt)
func NewCatalogService(
	books repository.Repository,
	copies CopyStats,
	meta MetadataSource,
	queue EnrichmentQueue,
	covers CoverMirror,
	opts Options,
) Service {
	opts = opts.withDefaults()
	return &catalogService{
		books:  books,
		copies: copies,
		meta:   meta,
		queue:  queue,
		covers: covers,
		opts:   opts,
		locale: language.Make(opts.CollationLocale),
	}
}

// =====================================================
// SEARCH
// =====================================================

// Search fan-out song song tới Catalog Store và external providers.
// Catalog Store lỗi là lỗi cứng, external lỗi/timeout chỉ làm kết quả ít đi.
func (s *catalogService) Search(ctx context.Context, query string) ([]model.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.SearchResult{}, nil
	}

	var (
		internal []model.Book
		external []bookmeta.Metadata
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		internal, err = s.books.SearchText(gctx, query, s.opts.InternalLimit)
		return err
	})
	g.Go(func() error {
		external = s.searchExternal(gctx, query)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	m := newMerger()
	for _, b := range internal {
		m.addInternal(b)
	}
	for _, md := range external {
		m.addExternal(md)
	}

	if err := s.attachAvailability(ctx, m.results); err != nil {
		return nil, err
	}

	rankResults(m.results, s.locale)
	if len(m.results) > s.opts.ResultLimit {
		m.results = m.results[:s.opts.ResultLimit]
	}

	out := make([]model.SearchResult, len(m.results))
	counts := map[model.Source]int{}
	for i, r := range m.results {
		out[i] = *r
		counts[r.Source]++
	}
	for _, src := range []model.Source{model.SourceInternal, model.SourceMixed, model.SourceExternal} {
		metrics.CatalogSearchResults.WithLabelValues(string(src)).Observe(float64(counts[src]))
	}
	return out, nil
}

// searchExternal chạy provider trong goroutine riêng: provider bỏ qua ctx
// cũng không giữ search lâu hơn ExternalTimeout.
func (s *catalogService) searchExternal(ctx context.Context, query string) []bookmeta.Metadata {
	ctx, cancel := context.WithTimeout(ctx, s.opts.ExternalTimeout)
	defer cancel()

	type result struct {
		records []bookmeta.Metadata
		err     error
	}
	ch := make(chan result, 1)
	go func() {
		records, err := s.meta.Search(ctx, query, s.opts.ResultLimit)
		ch <- result{records: records, err: err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			log.Warn().Err(res.err).Str("query", query).Msg("[CATALOG] External search failed, using internal results only")
			return nil
		}
		return res.records
	case <-ctx.Done():
		log.Warn().Err(ctx.Err()).Str("query", query).Msg("[CATALOG] External search timed out")
		return nil
	}
}

func (s *catalogService) attachAvailability(ctx context.Context, results []*model.SearchResult) error {
	isbns := make([]string, 0, len(results))
	for _, r := range results {
		if r.ISBN != nil {
			isbns = append(isbns, *r.ISBN)
		}
	}
	if len(isbns) == 0 {
		return nil
	}

	stats, err := s.copies.AvailabilityByISBN(ctx, isbns)
	if err != nil {
		return err
	}
	for _, r := range results {
		if r.ISBN == nil {
			continue
		}
		a := stats[*r.ISBN]
		r.TotalCount = a.Total
		r.AvailableCount = a.Available
	}
	return nil
}

// =====================================================
// LOOKUP / CREATE
// =====================================================

// LookupByISBN: store trước, rồi provider chain; entry mới được lưu và enqueue enrichment
func (s *catalogService) LookupByISBN(ctx context.Context, raw string) (*model.LookupResult, error) {
	isbn, err := model.NormalizeISBN(raw)
	if err != nil {
		return nil, err
	}

	existing, err := s.books.GetByISBN(ctx, isbn)
	if err == nil {
		return &model.LookupResult{Book: existing, Created: false}, nil
	}
	if !errors.Is(err, model.ErrBookNotFound) {
		return nil, err
	}

	md, err := s.meta.Lookup(ctx, isbn)
	if err != nil {
		if errors.Is(err, bookmeta.ErrNotFound) {
			return nil, model.ErrMetadataNotFound
		}
		log.Warn().Err(err).Str("isbn", isbn).Msg("[CATALOG] Metadata lookup failed")
		return nil, apperror.Wrap(model.ErrMetadataUnavailable, err)
	}
	if strings.TrimSpace(md.Title) == "" {
		return nil, model.ErrMetadataNotFound
	}

	book := bookFromMetadata(isbn, md)
	saved, created, err := s.books.Create(ctx, book)
	if err != nil {
		return nil, err
	}
	if created {
		log.Info().Str("book_id", saved.ID.String()).Str("isbn", isbn).Str("provider", md.Provider).Msg("Book catalogued from external metadata")
		s.enqueueEnrichment(ctx, saved)
	}
	return &model.LookupResult{Book: saved, Created: created}, nil
}

// CreateBook - ISBN đã tồn tại thì trả về entry cũ (Created = false)
func (s *catalogService) CreateBook(ctx context.Context, req model.CreateBookRequest) (*model.LookupResult, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation(err)
	}

	book := &model.Book{
		ID:            uuid.New(),
		Title:         strings.TrimSpace(req.Title),
		Author:        strings.TrimSpace(req.Author),
		Publisher:     req.Publisher,
		PublishedDate: req.PublishedDate,
		Description:   req.Description,
		CoverURL:      req.CoverURL,
		PageCount:     req.PageCount,
		Genres:        pq.StringArray(req.Genres),
	}
	if req.ISBN != nil && strings.TrimSpace(*req.ISBN) != "" {
		isbn, err := model.NormalizeISBN(*req.ISBN)
		if err != nil {
			return nil, err
		}
		book.ISBN = &isbn
	}

	saved, created, err := s.books.Create(ctx, book)
	if err != nil {
		return nil, err
	}
	if created {
		s.enqueueEnrichment(ctx, saved)
	}
	return &model.LookupResult{Book: saved, Created: created}, nil
}

// enqueueEnrichment lỗi chỉ log: book đã được lưu, sweep định kỳ sẽ bắt lại
func (s *catalogService) enqueueEnrichment(ctx context.Context, b *model.Book) {
	if s.queue == nil || !b.NeedsEnrichment() {
		return
	}
	if err := s.queue.EnqueueEnrichBook(ctx, b.ID); err != nil {
		log.Warn().Err(err).Str("book_id", b.ID.String()).Msg("[CATALOG] Failed to enqueue enrichment")
	}
}

func bookFromMetadata(isbn string, md *bookmeta.Metadata) *model.Book {
	b := &model.Book{
		ID:            uuid.New(),
		ISBN:          &isbn,
		Title:         strings.TrimSpace(md.Title),
		Author:        md.Author,
		Publisher:     md.Publisher,
		PublishedDate: md.PublishedDate,
		Description:   md.Description,
		CoverURL:      md.CoverURL,
		Genres:        pq.StringArray(append([]string{}, md.Genres...)),
	}
	if md.PageCount > 0 {
		pages := md.PageCount
		b.PageCount = &pages
	}
	return b
}

// =====================================================
// DETAIL
// =====================================================

// GetBook - copies private chỉ hiện với chính owner, không tính vào availability
func (s *catalogService) GetBook(ctx context.Context, viewerID, bookID uuid.UUID) (*model.BookDetail, error) {
	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	copies, err := s.copies.ListByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	detail := &model.BookDetail{Book: book, Copies: make([]shelfModel.Copy, 0, len(copies))}
	for _, c := range copies {
		if !c.VisibleTo(viewerID) {
			continue
		}
		detail.Copies = append(detail.Copies, c)
		if c.Status == shelfModel.StatusPrivate {
			continue
		}
		detail.Availability.Total++
		if c.Status == shelfModel.StatusAvailable {
			detail.Availability.Available++
		}
	}
	return detail, nil
}

// =====================================================
// ENRICHMENT (worker)
// =====================================================

// EnrichBook điền field còn thiếu từ providers và mirror ảnh bìa.
// Provider lỗi trả error để asynq retry; "không tìm thấy" thì bỏ qua.
func (s *catalogService) EnrichBook(ctx context.Context, bookID uuid.UUID) error {
	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return err
	}

	changed := false
	if book.NeedsEnrichment() {
		md, err := s.meta.Lookup(ctx, *book.ISBN)
		switch {
		case errors.Is(err, bookmeta.ErrNotFound):
			log.Info().Str("book_id", book.ID.String()).Msg("[CATALOG] No metadata available for enrichment")
		case err != nil:
			return apperror.Wrap(model.ErrMetadataUnavailable, err)
		default:
			changed = applyMetadata(book, md)
		}
	}

	if s.covers != nil && book.CoverURL != "" && !s.covers.Owns(book.CoverURL) {
		mirrored, err := s.covers.Mirror(ctx, book.ID, book.CoverURL)
		if err != nil {
			log.Warn().Err(err).Str("book_id", book.ID.String()).Msg("[CATALOG] Cover mirror failed, keeping provider URL")
		} else {
			book.CoverURL = mirrored
			changed = true
		}
	}

	if !changed {
		return nil
	}
	if err := s.books.UpdateMetadata(ctx, book); err != nil {
		return err
	}
	log.Info().Str("book_id", book.ID.String()).Msg("Book enriched")
	return nil
}

// applyMetadata chỉ điền field trống
func applyMetadata(b *model.Book, md *bookmeta.Metadata) bool {
	changed := false
	fill := func(dst *string, v string) {
		if *dst == "" && v != "" {
			*dst = v
			changed = true
		}
	}
	fill(&b.Author, md.Author)
	fill(&b.Publisher, md.Publisher)
	fill(&b.PublishedDate, md.PublishedDate)
	fill(&b.Description, md.Description)
	fill(&b.CoverURL, md.CoverURL)
	if b.PageCount == nil && md.PageCount > 0 {
		pages := md.PageCount
		b.PageCount = &pages
		changed = true
	}
	if len(b.Genres) == 0 && len(md.Genres) > 0 {
		b.Genres = pq.StringArray(append([]string{}, md.Genres...))
		changed = true
	}
	return changed
}

// SweepIncomplete enqueue enrichment cho một batch book còn thiếu metadata
func (s *catalogService) SweepIncomplete(ctx context.Context) (int, error) {
	if s.queue == nil {
		return 0, nil
	}
	books, err := s.books.ListIncomplete(ctx, s.opts.SweepBatch)
	if err != nil {
		return 0, err
	}

	enqueued := 0
	for _, b := range books {
		if err := s.queue.EnqueueEnrichBook(ctx, b.ID); err != nil {
			log.Warn().Err(err).Str("book_id", b.ID.String()).Msg("[CATALOG] Sweep enqueue failed")
			continue
		}
		enqueued++
	}
	return enqueued, nil
}
