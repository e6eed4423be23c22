package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errThingMissing = New(KindNotFound, "THING001", "thing not found")

func TestWrapKeepsSentinelAndCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("get thing: %w", Wrap(errThingMissing, cause))

	assert.True(t, errors.Is(err, errThingMissing))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestKindOfUnknownErrorIsInternal(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.False(t, IsKind(nil, KindInternal))
}

func TestPartialCarriesStep(t *testing.T) {
	err := Partial("create_profile", errors.New("insert failed"), map[string]interface{}{"identity_id": "abc"})

	appErr, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, KindPartialFailure, appErr.Kind)
	assert.Equal(t, "create_profile", appErr.Step)
	assert.Equal(t, "abc", appErr.Details["identity_id"])
	assert.Contains(t, err.Error(), "insert failed")
}

func TestValidationNil(t *testing.T) {
	assert.NoError(t, Validation(nil))
	assert.Equal(t, KindValidation, KindOf(Validation(errors.New("title: cannot be blank"))))
}
