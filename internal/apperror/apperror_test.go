package apperror

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
		{"oversized", New(CodeOversizedInput, "too big"), http.StatusRequestEntityTooLarge},
		{"duplicate header", New(CodeDuplicateHeader, "dup"), http.StatusBadRequest},
		{"operator", New(CodeInvalidOperator, "op"), http.StatusBadRequest},
		{"not found", New(CodeNotFound, "missing"), http.StatusNotFound},
		{"no data", New(CodeNoMatchingData, "empty"), http.StatusNotFound},
		{"persistence", Wrap(CodePersistence, "tx", errors.New("boom")), http.StatusInternalServerError},
		{"auth", New(CodeAuthFailure, "nope"), http.StatusUnauthorized},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("outer: %w", New(CodeNotFound, "inner")), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestErrorMessageAndUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(CodePersistence, "failed to save dataset", cause)

	assert.Equal(t, "failed to save dataset: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, Is(err, CodePersistence))
	assert.False(t, Is(nil, CodePersistence))
	assert.Equal(t, Code(""), CodeOf(cause))
}
