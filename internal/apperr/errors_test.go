package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindForStatus(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusBadRequest, ErrRejected},
		{http.StatusUnprocessableEntity, ErrRejected},
		{http.StatusBadGateway, ErrServer},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, KindForStatus(tt.status))
		})
	}
}

func TestAPIError_Unwrap(t *testing.T) {
	err := fmt.Errorf("create service: %w", &APIError{Status: 403, Message: "Only creators can create services", Kind: ErrForbidden})

	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, "Only creators can create services", UserMessage(err, "fallback"))
}

func TestUserMessage_Fallback(t *testing.T) {
	assert.Equal(t, "try again", UserMessage(errors.New("boom"), "try again"))
	assert.Equal(t, "try again", UserMessage(&APIError{Status: 500, Kind: ErrServer}, "try again"))
}

func TestValidationError(t *testing.T) {
	v := NewValidationError()
	assert.True(t, v.Empty())

	v.Add("title", "required")
	v.Add("base_price", "must be greater than 0")

	assert.False(t, v.Empty())
	assert.ErrorIs(t, v, ErrValidation)
	assert.Equal(t, "required", v.Field("title"))
	assert.Equal(t, "validation failed: base_price: must be greater than 0; title: required", v.Error())
}
