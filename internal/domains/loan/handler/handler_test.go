package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogModel "books-commons/internal/domains/catalog/model"
	"books-commons/internal/domains/loan/service"
	shelfModel "books-commons/internal/domains/shelf/model"
	"books-commons/internal/shared/middleware"
	"books-commons/internal/testutil/memstore"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// asMember thay cho AuthMiddleware: member id lấy từ header X-Member
func asMember() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, err := uuid.Parse(c.GetHeader("X-Member")); err == nil {
			middleware.SetMemberID(c, id)
		}
		c.Next()
	}
}

func newLoanRouter(store *memstore.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewLoanHandler(service.NewLoanService(store, store.Loans(), store.Copies(), store.Notifications()))

	r := gin.New()
	loans := r.Group("/api/v1/loans", asMember())
	loans.POST("", h.RequestLoan)
	loans.GET("/mine", h.ListMine)
	loans.GET("/:id", h.GetLoan)
	loans.POST("/:id/approve", h.Approve)
	loans.POST("/:id/reject", h.Reject)
	loans.POST("/:id/handover", h.Handover)
	loans.POST("/:id/return", h.Return)
	return r
}

func do(t *testing.T, r *gin.Engine, method, path string, member uuid.UUID, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if member != uuid.Nil {
		req.Header.Set("X-Member", member.String())
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestLoanHandler_Flow(t *testing.T) {
	store := memstore.New()
	owner, borrower := store.AddMember("owner"), store.AddMember("borrower")
	book := store.AddBook(catalogModel.Book{Title: "Dune"})
	c := store.AddCopy(owner.ID, book.ID, shelfModel.StatusAvailable)
	r := newLoanRouter(store)

	w, env := do(t, r, http.MethodPost, "/api/v1/loans", borrower.ID, map[string]string{"userBookId": c.ID.String(), "message": "来週借りたいです"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var loan struct {
		ID     uuid.UUID `json:"id"`
		Status string    `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &loan))
	assert.Equal(t, "requested", loan.Status)

	// borrower không được approve
	w, env = do(t, r, http.MethodPost, fmt.Sprintf("/api/v1/loans/%s/approve", loan.ID), borrower.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "LOAN005", env.Error.Code)

	w, _ = do(t, r, http.MethodPost, fmt.Sprintf("/api/v1/loans/%s/approve", loan.ID), owner.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// approve lần hai: precondition sai -> 409
	w, env = do(t, r, http.MethodPost, fmt.Sprintf("/api/v1/loans/%s/approve", loan.ID), owner.ID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "LOAN002", env.Error.Code)

	w, env = do(t, r, http.MethodGet, "/api/v1/loans/mine?status=approved", borrower.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)

	w, _ = do(t, r, http.MethodGet, fmt.Sprintf("/api/v1/loans/%s", loan.ID), store.AddMember("stranger").ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLoanHandler_RequestErrors(t *testing.T) {
	store := memstore.New()
	member := store.AddMember("m")
	r := newLoanRouter(store)

	w, _ := do(t, r, http.MethodPost, "/api/v1/loans", uuid.Nil, map[string]string{"userBookId": uuid.NewString()})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = do(t, r, http.MethodPost, "/api/v1/loans", member.ID, map[string]string{"userBookId": "nope"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w, _ = do(t, r, http.MethodPost, "/api/v1/loans/not-a-uuid/approve", member.ID, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
