package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aada-api/internal/domain"
)

func TestHTTPError_StatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("bad: %w", domain.ErrBadRequest), http.StatusBadRequest},
		{fmt.Errorf("nope: %w", domain.ErrUnauthorized), http.StatusUnauthorized},
		{fmt.Errorf("nope: %w", domain.ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("doc: %w", domain.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("dup: %w", domain.ErrConflict), http.StatusConflict},
		{fmt.Errorf("big: %w", domain.ErrTooLarge), http.StatusRequestEntityTooLarge},
		{fmt.Errorf("s3: %w", domain.ErrUnavailable), http.StatusServiceUnavailable},
		{fmt.Errorf("square: %w", domain.ErrUpstream), http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		httpError(rr, tc.err)
		assert.Equal(t, tc.want, rr.Code, tc.err.Error())

		var body MessageEnvelope
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.NotEmpty(t, body.Error)
	}
}

func TestHTTPError_HidesInternalDetails(t *testing.T) {
	rr := httptest.NewRecorder()
	httpError(rr, errors.New("dial tcp 10.0.0.5:5432: connection refused"))
	assert.NotContains(t, rr.Body.String(), "10.0.0.5")
}

func TestNewList_NilBecomesEmptyArray(t *testing.T) {
	rr := httptest.NewRecorder()
	writeJSON(rr, http.StatusOK, newList[domain.Invoice](nil))
	assert.JSONEq(t, `{"data":[],"count":0}`, rr.Body.String())
}
