package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraud-scoring-engine/internal/domain/scoring"
)

func TestWriteScoringErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"unknown transaction", scoring.ErrNotFound, http.StatusNotFound},
		{"features not ready", scoring.ErrNotReady, http.StatusConflict},
		{"store down", scoring.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{"no model", scoring.ErrModelUnavailable, http.StatusServiceUnavailable},
		{"wrapped store error", errors.Join(errors.New("ctx"), scoring.ErrStoreUnavailable), http.StatusServiceUnavailable},
		{"anything else", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeScoringError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestNotReadyCarriesRetryAfter(t *testing.T) {
	rec := httptest.NewRecorder()
	writeScoringError(rec, scoring.ErrNotReady)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}
