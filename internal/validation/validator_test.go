package validation_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/validation"
)

type appendRequest struct {
	StatusID  uint   `json:"status_id" validate:"required"`
	StartDate string `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	PagesRead *int   `json:"pages_read,omitempty" validate:"omitempty,gte=0"`
	Note      string `json:"note" validate:"max=5"`
}

func TestValidator_Valid(t *testing.T) {
	pages := 10
	err := validation.New().Validate(appendRequest{StatusID: 1, StartDate: "2024-02-29", PagesRead: &pages})
	assert.NoError(t, err)
}

func TestValidator_FieldErrorsUseJSONNames(t *testing.T) {
	pages := -1
	err := validation.New().Validate(appendRequest{StartDate: "29/02/2024", PagesRead: &pages, Note: "too long"})
	require.Error(t, err)

	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
	assert.Equal(t, "is required", appErr.Fields["status_id"])
	assert.Equal(t, "must be a date in 2006-01-02 format", appErr.Fields["start_date"])
	assert.Equal(t, "must be greater than or equal to 0", appErr.Fields["pages_read"])
	assert.Equal(t, "must not exceed 5 characters", appErr.Fields["note"])
}
