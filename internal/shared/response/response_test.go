package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"books-commons/internal/shared/apperror"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(err error) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	FromError(c, err)
	return w
}

func TestFromErrorMapsKinds(t *testing.T) {
	cases := []struct {
		kind   apperror.Kind
		status int
	}{
		{apperror.KindNotFound, http.StatusNotFound},
		{apperror.KindInvalidState, http.StatusConflict},
		{apperror.KindForbidden, http.StatusForbidden},
		{apperror.KindValidation, http.StatusUnprocessableEntity},
		{apperror.KindUpstreamUnavailable, http.StatusBadGateway},
		{apperror.KindUnauthorized, http.StatusUnauthorized},
		{apperror.KindPartialFailure, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", apperror.New(tc.kind, "X001", "boom"))
			w := serve(err)
			assert.Equal(t, tc.status, w.Code)

			var body Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, "X001", body.Error.Code)
		})
	}
}

func TestFromErrorPartialFailureExposesStep(t *testing.T) {
	w := serve(apperror.Partial("consume_invitation", errors.New("conflict"), map[string]interface{}{"identity_id": "abc"}))
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body struct {
		Error struct {
			Code    string                 `json:"code"`
			Details map[string]interface{} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "PARTIAL_FAILURE", body.Error.Code)
	assert.Equal(t, "consume_invitation", body.Error.Details["step"])
	assert.Equal(t, "abc", body.Error.Details["identity_id"])
}

func TestFromErrorHidesUnknownErrors(t *testing.T) {
	w := serve(errors.New("pq: password authentication failed"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
}
