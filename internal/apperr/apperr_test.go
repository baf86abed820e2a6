package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: http.StatusOK},
		{name: "validation", err: Validation("bad"), want: http.StatusBadRequest},
		{name: "forbidden", err: Forbidden("no"), want: http.StatusForbidden},
		{name: "not found", err: NotFound("gone"), want: http.StatusNotFound},
		{name: "conflict", err: Conflict("twice"), want: http.StatusConflict},
		{name: "wrapped typed", err: fmt.Errorf("outer: %w", Forbidden("no")), want: http.StatusForbidden},
		{name: "untyped", err: errors.New("boom"), want: http.StatusInternalServerError},
		{name: "internal", err: Internal(errors.New("db down"), "failed"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestPublicMessageHidesCause(t *testing.T) {
	err := Internal(errors.New("connection refused"), "failed to process payment")

	assert.Equal(t, "failed to process payment", PublicMessage(err))
	assert.Contains(t, err.Error(), "connection refused")
	assert.ErrorContains(t, errors.Unwrap(err), "connection refused")
}

func TestPublicMessagePassesThroughClientErrors(t *testing.T) {
	assert.Equal(t, "payment amount does not match order total", PublicMessage(Validation("payment amount does not match order total")))
	assert.Equal(t, "internal server error", PublicMessage(errors.New("boom")))
	assert.Equal(t, "access denied", PublicMessage(New(CodeForbidden, "")))
}
