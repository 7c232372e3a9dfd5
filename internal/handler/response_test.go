package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/verdanthq/verdant/internal/domain"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", domain.ErrNotFound, http.StatusNotFound, "not_found"},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"invalid input", domain.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
		{"conflict", domain.ErrConflict, http.StatusConflict, "conflict"},
		{"wrapped sentinel", errors.Join(errors.New("context"), domain.ErrNotFound), http.StatusNotFound, "not_found"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
		{"echo 404", echo.NewHTTPError(http.StatusNotFound), http.StatusNotFound, "Not Found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, apiErr := mapError(tc.err)
			assert.Equal(t, tc.wantStatus, status)
			assert.Equal(t, tc.wantCode, apiErr.Code)
		})
	}
}

func TestMapError_ValidationError(t *testing.T) {
	status, apiErr := mapError(&domain.ValidationError{Field: "email", Message: "failed on 'email' validation"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_error", apiErr.Code)
	assert.Equal(t, []FieldError{{Field: "email", Message: "failed on 'email' validation"}}, apiErr.Details)
}

func TestHTTPErrorHandler_WritesEnvelope(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	HTTPErrorHandler(domain.ErrForbidden, c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t,
		`{"error":{"code":"forbidden","message":"You do not have permission to perform this action"}}`,
		rec.Body.String())
}
