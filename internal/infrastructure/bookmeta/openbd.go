package bookmeta

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const openBDPriority = 2

// OpenBD - https://openbd.jp, chỉ hỗ trợ lookup theo ISBN (sách Nhật)
type OpenBD struct {
	http *httpClient
}

var _ Provider = (*OpenBD)(nil)

func NewOpenBD(baseURL string, timeout time.Duration, rps float64) *OpenBD {
	return &OpenBD{http: newHTTPClient("openbd", strings.TrimRight(baseURL, "/"), timeout, rps)}
}

func (p *OpenBD) Name() string  { return "openbd" }
func (p *OpenBD) Priority() int { return openBDPriority }

// openBD trả về array cùng thứ tự với isbn query, phần tử null nếu không biết
type openBDRecord struct {
	Summary struct {
		ISBN      string `json:"isbn"`
		Title     string `json:"title"`
		Author    string `json:"author"`
		Publisher string `json:"publisher"`
		Pubdate   string `json:"pubdate"`
		Cover     string `json:"cover"`
	} `json:"summary"`
	Onix struct {
		DescriptiveDetail struct {
			Extent []struct {
				ExtentValue string `json:"ExtentValue"`
			} `json:"Extent"`
		} `json:"DescriptiveDetail"`
		CollateralDetail struct {
			TextContent []struct {
				Text string `json:"Text"`
			} `json:"TextContent"`
		} `json:"CollateralDetail"`
	} `json:"onix"`
}

func (p *OpenBD) Lookup(ctx context.Context, isbn string) (*Metadata, error) {
	var resp []*openBDRecord
	u := p.http.baseURL + "/get?" + url.Values{"isbn": {isbn}}.Encode()
	if err := p.http.getJSON(ctx, "lookup", u, &resp); err != nil {
		return nil, err
	}
	if len(resp) == 0 || resp[0] == nil || resp[0].Summary.Title == "" {
		return nil, ErrNotFound
	}

	rec := resp[0]
	md := &Metadata{
		ISBN:          rec.Summary.ISBN,
		Title:         rec.Summary.Title,
		Author:        rec.Summary.Author,
		Publisher:     rec.Summary.Publisher,
		PublishedDate: rec.Summary.Pubdate,
		CoverURL:      rec.Summary.Cover,
		Provider:      p.Name(),
	}
	if md.ISBN == "" {
		md.ISBN = isbn
	}
	if extents := rec.Onix.DescriptiveDetail.Extent; len(extents) > 0 {
		if pages, err := strconv.Atoi(extents[0].ExtentValue); err == nil {
			md.PageCount = pages
		}
	}
	if texts := rec.Onix.CollateralDetail.TextContent; len(texts) > 0 {
		md.Description = texts[0].Text
	}
	return md, nil
}

func (p *OpenBD) Search(ctx context.Context, query string, limit int) ([]Metadata, error) {
	return nil, ErrUnsupported
}
