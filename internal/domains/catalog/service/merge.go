package service

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"books-commons/internal/domains/catalog/model"
	"books-commons/internal/infrastructure/bookmeta"
)

// mergeKey: "isbn:<isbn13>" nếu có ISBN, ngược lại "ta:<title>|<author>" đã fold
func mergeKey(isbn *string, title, author string) string {
	if isbn != nil && *isbn != "" {
		return "isbn:" + *isbn
	}
	return "ta:" + fold(title) + "|" + fold(author)
}

// fold - NFKC (全角/半角 về cùng dạng), lower-case, gộp whitespace
func fold(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(norm.NFKC.String(s))), " ")
}

// merger giữ thứ tự insert, index theo merge key
type merger struct {
	index   map[string]*model.SearchResult
	results []*model.SearchResult
}

func newMerger() *merger {
	return &merger{index: make(map[string]*model.SearchResult)}
}

// addInternal - hai book nội bộ trùng key (không ISBN): book đầu tiên thắng
func (m *merger) addInternal(b model.Book) {
	isbn := b.ISBN
	if isbn != nil {
		if canonical, err := model.NormalizeISBN(*isbn); err == nil {
			isbn = &canonical
		}
	}
	key := mergeKey(isbn, b.Title, b.Author)
	if _, exists := m.index[key]; exists {
		return
	}

	id := b.ID
	r := &model.SearchResult{
		ID:          &id,
		ISBN:        isbn,
		Title:       b.Title,
		Author:      b.Author,
		Publisher:   b.Publisher,
		Description: b.Description,
		CoverURL:    b.CoverURL,
		PageCount:   b.PageCount,
		Genres:      append([]string{}, b.Genres...),
		Source:      model.SourceInternal,
		MergeKey:    key,
	}
	m.index[key] = r
	m.results = append(m.results, r)
}

// addExternal - record không có title bị bỏ. ISBN sai checksum thì dùng title/author làm key.
func (m *merger) addExternal(md bookmeta.Metadata) {
	title := strings.TrimSpace(md.Title)
	if title == "" {
		return
	}
	var isbn *string
	if canonical, err := model.NormalizeISBN(md.ISBN); err == nil {
		isbn = &canonical
	}
	key := mergeKey(isbn, title, md.Author)

	if existing, ok := m.index[key]; ok {
		enrich(existing, md)
		if existing.Source == model.SourceInternal {
			existing.Source = model.SourceMixed
		}
		return
	}

	r := &model.SearchResult{
		ISBN:     isbn,
		Title:    title,
		Author:   md.Author,
		Source:   model.SourceExternal,
		MergeKey: key,
		Genres:   []string{},
	}
	enrich(r, md)
	m.index[key] = r
	m.results = append(m.results, r)
}

// enrich chỉ điền field còn trống, không ghi đè dữ liệu nội bộ
func enrich(r *model.SearchResult, md bookmeta.Metadata) {
	if r.CoverURL == "" {
		r.CoverURL = md.CoverURL
	}
	if r.PageCount == nil && md.PageCount > 0 {
		pages := md.PageCount
		r.PageCount = &pages
	}
	if len(r.Genres) == 0 && len(md.Genres) > 0 {
		r.Genres = append([]string{}, md.Genres...)
	}
	if r.Publisher == "" {
		r.Publisher = md.Publisher
	}
	if r.Description == "" {
		r.Description = md.Description
	}
}

// rankResults: non-external trước, availableCount giảm dần, title theo collation của locale,
// cuối cùng merge key để thứ tự luôn xác định.
// collate.Collator không goroutine-safe nên mỗi lần rank tạo mới.
func rankResults(results []*model.SearchResult, locale language.Tag) {
	col := collate.New(locale)
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		aExt, bExt := a.Source == model.SourceExternal, b.Source == model.SourceExternal
		if aExt != bExt {
			return !aExt
		}
		if a.AvailableCount != b.AvailableCount {
			return a.AvailableCount > b.AvailableCount
		}
		if c := col.CompareString(a.Title, b.Title); c != 0 {
			return c < 0
		}
		return a.MergeKey < b.MergeKey
	})
}
