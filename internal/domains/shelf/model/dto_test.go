package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestAddCopyRequestValidate(t *testing.T) {
	bookID := "6f1c2a8e-3b4d-4c5e-9f60-718293a4b5c6"

	assert.NoError(t, AddCopyRequest{BookID: bookID}.Validate())
	assert.NoError(t, AddCopyRequest{BookID: bookID, Status: "reading", Condition: "fair"}.Validate())

	err := AddCopyRequest{BookID: bookID, Status: "lent_out"}.Validate()
	assert.ErrorContains(t, err, "status: must be one of available, private, reading")

	err = AddCopyRequest{BookID: bookID, Condition: "mint"}.Validate()
	assert.ErrorContains(t, err, "condition: must be one of new, good, fair, poor")
}

func TestUpdateCopyRequestValidate(t *testing.T) {
	assert.NoError(t, UpdateCopyRequest{Note: strPtr("付箋あり")}.Validate())
	assert.NoError(t, UpdateCopyRequest{Status: strPtr("private"), Condition: strPtr("poor")}.Validate())

	assert.Error(t, UpdateCopyRequest{Status: strPtr("lent_out")}.Validate())
	assert.Error(t, UpdateCopyRequest{Status: strPtr("")}.Validate())
	assert.Error(t, UpdateCopyRequest{Condition: strPtr("mint")}.Validate())
}
