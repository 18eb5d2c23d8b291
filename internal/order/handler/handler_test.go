package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	catrepo "github.com/fekuna/omnipos-menu-service/internal/category/repository"
	"github.com/fekuna/omnipos-menu-service/internal/model"
	"github.com/fekuna/omnipos-menu-service/internal/order/repository"
	"github.com/fekuna/omnipos-menu-service/internal/order/usecase"
	"github.com/fekuna/omnipos-menu-service/internal/pkg/logger"
	prodrepo "github.com/fekuna/omnipos-menu-service/internal/product/repository"
	"github.com/fekuna/omnipos-menu-service/internal/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newRouter serves /orders over a fresh database holding product 1
// (capuccino, 5.99).
func newRouter(t *testing.T) http.Handler {
	t.Helper()
	db := testutil.NewDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	cat := &model.Category{Name: "Cafés", BaseModel: model.BaseModel{CreatedAt: now, UpdatedAt: now}}
	require.NoError(t, catrepo.NewPGRepository(db).Create(ctx, cat))
	products := prodrepo.NewPGRepository(db)
	require.NoError(t, products.Create(ctx, &model.Product{
		BaseModel:  model.BaseModel{CreatedAt: now, UpdatedAt: now},
		CategoryID: cat.ID,
		Name:       "capuccino",
		Price:      decimal.RequireFromString("5.99"),
	}))

	log := logger.NewNop()
	h := NewOrderHandler(usecase.NewOrderUseCase(repository.NewPGRepository(db), products, nil, log), log)

	r := chi.NewRouter()
	r.Route("/orders", h.Routes)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestOrderHandler_Lifecycle(t *testing.T) {
	r := newRouter(t)

	w := do(r, http.MethodPost, "/orders", `{"table_number":5,"products":[{"product_id":1,"quantity":2}]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	require.NotZero(t, created.ID)
	path := fmt.Sprintf("/orders/%d", created.ID)

	w = do(r, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, w.Code)
	var view map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&view))
	assert.Equal(t, "11.98", view["total"])
	assert.Equal(t, "open", view["status"])
	assert.Equal(t, float64(5), view["table_number"])
	lines := view["products"].([]interface{})
	require.Len(t, lines, 1)
	line := lines[0].(map[string]interface{})
	assert.Equal(t, "capuccino", line["product_name"])
	assert.Equal(t, "5.99", line["unit_price"])
	assert.Equal(t, "11.98", line["line_total"])

	w = do(r, http.MethodPut, path, `{"status":"closed","products":[{"product_id":1}]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.NewDecoder(w.Body).Decode(&view))
	assert.Equal(t, "closed", view["status"])
	assert.Equal(t, "5.99", view["total"])

	w = do(r, http.MethodGet, "/orders", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	assert.Len(t, list, 1)

	w = do(r, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderHandler_EmptyList(t *testing.T) {
	r := newRouter(t)
	w := do(r, http.MethodGet, "/orders", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestOrderHandler_Errors(t *testing.T) {
	r := newRouter(t)
	w := do(r, http.MethodPost, "/orders", `{"table_number":1,"products":[{"product_id":1}]}`)
	require.Equal(t, http.StatusCreated, w.Code)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantError  string
	}{
		{"missing table", http.MethodPost, "/orders", `{"products":[{"product_id":1}]}`, http.StatusBadRequest, "table_number is required"},
		{"missing products", http.MethodPost, "/orders", `{"table_number":2}`, http.StatusBadRequest, "products must not be empty"},
		{"unknown product", http.MethodPost, "/orders", `{"table_number":2,"products":[{"product_id":77}]}`, http.StatusBadRequest, "product 77 not found"},
		{"bad quantity", http.MethodPost, "/orders", `{"table_number":2,"products":[{"product_id":1,"quantity":0}]}`, http.StatusBadRequest, ""},
		{"malformed body", http.MethodPost, "/orders", `{"table_number":`, http.StatusBadRequest, ""},
		{"unknown field", http.MethodPost, "/orders", `{"table":2}`, http.StatusBadRequest, ""},
		{"bad id", http.MethodGet, "/orders/x", "", http.StatusBadRequest, ""},
		{"missing order", http.MethodGet, "/orders/99", "", http.StatusNotFound, "order not found"},
		{"update missing", http.MethodPut, "/orders/99", `{"status":"closed"}`, http.StatusNotFound, "order not found"},
		{"bad status", http.MethodPut, "/orders/1", `{"status":"paid"}`, http.StatusBadRequest, ""},
		{"update unknown product", http.MethodPut, "/orders/1", `{"products":[{"product_id":77}]}`, http.StatusBadRequest, "product 77 not found"},
		{"delete missing", http.MethodDelete, "/orders/99", "", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantError != "" {
				var body map[string]string
				require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.Equal(t, tt.wantError, body["error"])
			}
		})
	}
}
