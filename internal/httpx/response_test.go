package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/fekuna/omnipos-menu-service/internal/apperr"
	"github.com/fekuna/omnipos-menu-service/internal/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWriteAppError(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := logger.Wrap(zap.New(core))

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"validation", apperr.Validation("table_number is required"), http.StatusBadRequest, "table_number is required"},
		{"not found", apperr.NotFound("order"), http.StatusNotFound, "order not found"},
		{"persistence", apperr.Persistence(errors.New("disk full"), "insert"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/orders/1", nil)
			w := httptest.NewRecorder()

			WriteAppError(w, req, tt.err, log)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body map[string]string
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, tt.wantMsg, body["error"])
		})
	}

	assert.Equal(t, 1, logs.FilterMessage("request failed").Len())
}

func TestIDParam(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{"12", 12, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/orders/"+tt.raw, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.raw)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			id, err := IDParam(req, "id")
			if tt.wantErr {
				assert.True(t, apperr.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestDecodeJSON_RejectsUnknownFields(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/categories", strings.NewReader(`{"name":"x","extra":1}`))
	err := DecodeJSON(req, &dst)
	assert.True(t, apperr.IsValidation(err))
}
