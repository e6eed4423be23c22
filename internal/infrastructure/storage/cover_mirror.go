package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ObjectStore - phần của MinIOStorage mà CoverMirror cần
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Owns(url string) bool
}

// CoverMirror tải ảnh bìa từ provider, resize rồi lưu vào object storage.
// URL của provider (Google Books, openBD) hay đổi hoặc bị rate limit khi hotlink.
type CoverMirror struct {
	store     ObjectStore
	processor *ImageProcessor
	client    *http.Client
}

func NewCoverMirror(store ObjectStore, processor *ImageProcessor, timeout time.Duration) *CoverMirror {
	return &CoverMirror{
		store:     store,
		processor: processor,
		client:    &http.Client{Timeout: timeout},
	}
}

func (m *CoverMirror) Owns(url string) bool {
	return m.store.Owns(url)
}

// Mirror trả về URL của variant "cover"
func (m *CoverMirror) Mirror(ctx context.Context, bookID uuid.UUID, sourceURL string) (string, error) {
	data, err := m.download(ctx, sourceURL)
	if err != nil {
		return "", err
	}
	if err := m.processor.ValidateImage(data); err != nil {
		return "", err
	}

	variants, err := m.processor.ProcessCover(data)
	if err != nil {
		return "", err
	}

	var coverURL string
	for name, body := range variants {
		key := fmt.Sprintf("covers/%s/%s.jpg", bookID, name)
		url, err := m.store.Upload(ctx, key, body, "image/jpeg")
		if err != nil {
			return "", err
		}
		if name == "cover" {
			coverURL = url
		}
	}

	log.Info().Str("book_id", bookID.String()).Str("url", coverURL).Msg("[STORAGE] Cover mirrored")
	return coverURL, nil
}

func (m *CoverMirror) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create cover request: %w", err)
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download cover: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download cover: unexpected status %d", resp.StatusCode)
	}

	// đọc tối đa MaxSize+1 để ValidateImage phát hiện ảnh quá lớn
	data, err := io.ReadAll(io.LimitReader(resp.Body, m.processor.MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read cover: %w", err)
	}
	return data, nil
}
