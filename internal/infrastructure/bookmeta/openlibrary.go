package bookmeta

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const openLibraryPriority = 3

// OpenLibrary - https://openlibrary.org/developers/api
type OpenLibrary struct {
	http *httpClient
}

var _ Provider = (*OpenLibrary)(nil)

func NewOpenLibrary(baseURL string, timeout time.Duration, rps float64) *OpenLibrary {
	return &OpenLibrary{http: newHTTPClient("open_library", strings.TrimRight(baseURL, "/"), timeout, rps)}
}

func (p *OpenLibrary) Name() string  { return "open_library" }
func (p *OpenLibrary) Priority() int { return openLibraryPriority }

type openLibraryBook struct {
	Title      string `json:"title"`
	Subtitle   string `json:"subtitle"`
	Publishers []struct {
		Name string `json:"name"`
	} `json:"publishers"`
	Authors []struct {
		Name string `json:"name"`
	} `json:"authors"`
	Cover struct {
		Large  string `json:"large"`
		Medium string `json:"medium"`
	} `json:"cover"`
	Subjects []struct {
		Name string `json:"name"`
	} `json:"subjects"`
	NumberOfPages int    `json:"number_of_pages"`
	PublishDate   string `json:"publish_date"`
}

func (p *OpenLibrary) Lookup(ctx context.Context, isbn string) (*Metadata, error) {
	v := url.Values{}
	v.Set("bibkeys", "ISBN:"+isbn)
	v.Set("format", "json")
	v.Set("jscmd", "data")

	var resp map[string]openLibraryBook
	if err := p.http.getJSON(ctx, "lookup", p.http.baseURL+"/api/books?"+v.Encode(), &resp); err != nil {
		return nil, err
	}
	b, ok := resp["ISBN:"+isbn]
	if !ok || b.Title == "" {
		return nil, ErrNotFound
	}

	md := &Metadata{
		ISBN:          isbn,
		Title:         b.Title,
		PublishedDate: b.PublishDate,
		PageCount:     b.NumberOfPages,
		Provider:      p.Name(),
	}
	if b.Subtitle != "" {
		md.Title = b.Title + " " + b.Subtitle
	}
	names := make([]string, 0, len(b.Authors))
	for _, a := range b.Authors {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	md.Author = strings.Join(names, ", ")
	if len(b.Publishers) > 0 {
		md.Publisher = b.Publishers[0].Name
	}
	md.CoverURL = b.Cover.Large
	if md.CoverURL == "" {
		md.CoverURL = b.Cover.Medium
	}
	for _, s := range b.Subjects {
		if s.Name != "" && len(md.Genres) < 5 {
			md.Genres = append(md.Genres, s.Name)
		}
	}
	return md, nil
}

type openLibrarySearchResponse struct {
	Docs []struct {
		Title      string   `json:"title"`
		AuthorName []string `json:"author_name"`
		ISBN       []string `json:"isbn"`
		Publisher  []string `json:"publisher"`
		CoverID    int      `json:"cover_i"`
		Pages      int      `json:"number_of_pages_median"`
		Subject    []string `json:"subject"`
	} `json:"docs"`
}

func (p *OpenLibrary) Search(ctx context.Context, query string, limit int) ([]Metadata, error) {
	v := url.Values{}
	v.Set("q", query)
	v.Set("fields", "title,author_name,isbn,publisher,cover_i,number_of_pages_median,subject")
	if limit > 0 {
		v.Set("limit", fmt.Sprint(limit))
	}

	var resp openLibrarySearchResponse
	if err := p.http.getJSON(ctx, "search", p.http.baseURL+"/search.json?"+v.Encode(), &resp); err != nil {
		if errors.Is(err, ErrNotFound) {
			return []Metadata{}, nil
		}
		return nil, err
	}

	records := make([]Metadata, 0, len(resp.Docs))
	for _, d := range resp.Docs {
		md := Metadata{
			Title:     d.Title,
			Author:    strings.Join(d.AuthorName, ", "),
			PageCount: d.Pages,
			Provider:  p.Name(),
		}
		if len(d.ISBN) > 0 {
			md.ISBN = d.ISBN[0]
		}
		if len(d.Publisher) > 0 {
			md.Publisher = d.Publisher[0]
		}
		if d.CoverID > 0 {
			md.CoverURL = fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-L.jpg", d.CoverID)
		}
		if len(d.Subject) > 5 {
			d.Subject = d.Subject[:5]
		}
		md.Genres = d.Subject
		records = append(records, md)
	}
	return records, nil
}
