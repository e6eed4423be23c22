package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (s *memObjectStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return "http://minio.local/covers/" + key, nil
}

func (s *memObjectStore) Owns(url string) bool {
	return strings.HasPrefix(url, "http://minio.local/covers/")
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func localServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := &httptest.Server{Listener: l, Config: &http.Server{Handler: handler}}
	srv.Start()
	t.Cleanup(srv.Close)
	return srv
}

func TestCoverMirror(t *testing.T) {
	body := pngBytes(t, 900, 1200)
	srv := localServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body)
	})

	store := &memObjectStore{objects: map[string][]byte{}}
	mirror := NewCoverMirror(store, NewImageProcessor(), time.Second)
	bookID := uuid.New()

	url, err := mirror.Mirror(context.Background(), bookID, srv.URL+"/cover.png")
	require.NoError(t, err)
	assert.Equal(t, "http://minio.local/covers/covers/"+bookID.String()+"/cover.jpg", url)
	assert.True(t, mirror.Owns(url))
	require.Len(t, store.objects, 2)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(store.objects["covers/"+bookID.String()+"/thumbnail.jpg"]))
	require.NoError(t, err)
	assert.LessOrEqual(t, cfg.Height, 200)
	assert.LessOrEqual(t, cfg.Width, 200)
}

func TestCoverMirrorRejectsNonImage(t *testing.T) {
	srv := localServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not found</html>"))
	})

	store := &memObjectStore{objects: map[string][]byte{}}
	_, err := NewCoverMirror(store, NewImageProcessor(), time.Second).Mirror(context.Background(), uuid.New(), srv.URL)
	assert.Error(t, err)
	assert.Empty(t, store.objects)
}

func TestCoverMirrorUpstreamError(t *testing.T) {
	srv := localServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := NewCoverMirror(&memObjectStore{objects: map[string][]byte{}}, NewImageProcessor(), time.Second).
		Mirror(context.Background(), uuid.New(), srv.URL)
	assert.ErrorContains(t, err, "403")
}
