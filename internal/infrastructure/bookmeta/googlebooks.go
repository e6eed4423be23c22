package bookmeta

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const googleBooksPriority = 1

// GoogleBooks - https://developers.google.com/books/docs/v1/using
type GoogleBooks struct {
	http   *httpClient
	apiKey string
}

var _ Provider = (*GoogleBooks)(nil)

func NewGoogleBooks(baseURL, apiKey string, timeout time.Duration, rps float64) *GoogleBooks {
	return &GoogleBooks{
		http:   newHTTPClient("google_books", strings.TrimRight(baseURL, "/"), timeout, rps),
		apiKey: apiKey,
	}
}

func (p *GoogleBooks) Name() string  { return "google_books" }
func (p *GoogleBooks) Priority() int { return googleBooksPriority }

type googleVolumeInfo struct {
	Title               string   `json:"title"`
	Subtitle            string   `json:"subtitle"`
	Authors             []string `json:"authors"`
	Publisher           string   `json:"publisher"`
	PublishedDate       string   `json:"publishedDate"`
	Description         string   `json:"description"`
	PageCount           int      `json:"pageCount"`
	Categories          []string `json:"categories"`
	IndustryIdentifiers []struct {
		Type       string `json:"type"`
		Identifier string `json:"identifier"`
	} `json:"industryIdentifiers"`
	ImageLinks struct {
		Thumbnail      string `json:"thumbnail"`
		SmallThumbnail string `json:"smallThumbnail"`
	} `json:"imageLinks"`
}

type googleVolumesResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo googleVolumeInfo `json:"volumeInfo"`
	} `json:"items"`
}

func (p *GoogleBooks) volumesURL(q string, limit int) string {
	v := url.Values{}
	v.Set("q", q)
	if limit > 0 {
		v.Set("maxResults", fmt.Sprint(limit))
	}
	if p.apiKey != "" {
		v.Set("key", p.apiKey)
	}
	return p.http.baseURL + "/volumes?" + v.Encode()
}

func (p *GoogleBooks) Lookup(ctx context.Context, isbn string) (*Metadata, error) {
	var resp googleVolumesResponse
	if err := p.http.getJSON(ctx, "lookup", p.volumesURL("isbn:"+isbn, 1), &resp); err != nil {
		return nil, err
	}
	if len(resp.Items) == 0 || resp.Items[0].VolumeInfo.Title == "" {
		return nil, ErrNotFound
	}

	md := p.toMetadata(resp.Items[0].VolumeInfo)
	if md.ISBN == "" {
		md.ISBN = isbn
	}
	return &md, nil
}

func (p *GoogleBooks) Search(ctx context.Context, query string, limit int) ([]Metadata, error) {
	var resp googleVolumesResponse
	if err := p.http.getJSON(ctx, "search", p.volumesURL(query, limit), &resp); err != nil {
		if errors.Is(err, ErrNotFound) {
			return []Metadata{}, nil
		}
		return nil, err
	}

	records := make([]Metadata, 0, len(resp.Items))
	for _, item := range resp.Items {
		records = append(records, p.toMetadata(item.VolumeInfo))
	}
	return records, nil
}

func (p *GoogleBooks) toMetadata(v googleVolumeInfo) Metadata {
	md := Metadata{
		Title:         v.Title,
		Author:        strings.Join(v.Authors, ", "),
		Publisher:     v.Publisher,
		PublishedDate: v.PublishedDate,
		Description:   v.Description,
		PageCount:     v.PageCount,
		Genres:        v.Categories,
		Provider:      p.Name(),
	}
	if v.Subtitle != "" && md.Title != "" {
		md.Title = md.Title + " " + v.Subtitle
	}

	for _, id := range v.IndustryIdentifiers {
		if id.Type == "ISBN_13" {
			md.ISBN = id.Identifier
			break
		}
		if id.Type == "ISBN_10" && md.ISBN == "" {
			md.ISBN = id.Identifier
		}
	}

	cover := v.ImageLinks.Thumbnail
	if cover == "" {
		cover = v.ImageLinks.SmallThumbnail
	}
	md.CoverURL = strings.Replace(cover, "http://", "https://", 1)
	return md
}
