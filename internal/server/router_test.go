package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	catH "github.com/fekuna/omnipos-menu-service/internal/category/handler"
	catRepo "github.com/fekuna/omnipos-menu-service/internal/category/repository"
	catUC "github.com/fekuna/omnipos-menu-service/internal/category/usecase"
	orderH "github.com/fekuna/omnipos-menu-service/internal/order/handler"
	orderRepo "github.com/fekuna/omnipos-menu-service/internal/order/repository"
	orderUC "github.com/fekuna/omnipos-menu-service/internal/order/usecase"
	"github.com/fekuna/omnipos-menu-service/internal/pkg/logger"
	prodH "github.com/fekuna/omnipos-menu-service/internal/product/handler"
	prodRepo "github.com/fekuna/omnipos-menu-service/internal/product/repository"
	prodUC "github.com/fekuna/omnipos-menu-service/internal/product/usecase"
	"github.com/fekuna/omnipos-menu-service/internal/testutil"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type downPinger struct{}

func (downPinger) PingContext(ctx context.Context) error { return errors.New("connection refused") }

func newTestRouter(t *testing.T, db *sqlx.DB, pinger Pinger) http.Handler {
	t.Helper()
	log := logger.NewNop()
	categories := catRepo.NewPGRepository(db)
	products := prodRepo.NewPGRepository(db)

	h := Handlers{
		Categories: catH.NewCategoryHandler(catUC.NewCategoryUseCase(categories, log), log),
		Products:   prodH.NewProductHandler(prodUC.NewProductUseCase(products, categories, prodUC.Options{}, log), log),
		Orders:     orderH.NewOrderHandler(orderUC.NewOrderUseCase(orderRepo.NewPGRepository(db), products, nil, log), log),
	}
	return NewRouter(RouterConfig{AllowedOrigins: []string{"*"}}, h, pinger, log)
}

func send(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_EndToEndOrder(t *testing.T) {
	db := testutil.NewDB(t)
	r := newTestRouter(t, db, db)

	w := send(r, http.MethodPost, "/categories", `{"name":"Cafés"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = send(r, http.MethodPost, "/products", `{"name":"capuccino","price":"5.99","category_id":1}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = send(r, http.MethodPost, "/orders", `{"table_number":5,"products":[{"product_id":1,"quantity":2}]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.JSONEq(t, `{"id":1}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("Content-Type"))

	// The category still owns a product.
	w = send(r, http.MethodDelete, "/categories/1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = send(r, http.MethodDelete, "/products/1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = send(r, http.MethodGet, "/orders/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"unit_price":null`)
	assert.Contains(t, w.Body.String(), `"total":"11.98"`)
}

func TestRouter_Health(t *testing.T) {
	db := testutil.NewDB(t)

	w := send(newTestRouter(t, db, db), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = send(newTestRouter(t, db, downPinger{}), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRouter_UnknownRoute(t *testing.T) {
	db := testutil.NewDB(t)
	r := newTestRouter(t, db, db)

	w := send(r, http.MethodGet, "/menus", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"route not found"}`, w.Body.String())

	w = send(r, http.MethodPatch, "/orders", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	db := testutil.NewDB(t)
	r := newTestRouter(t, db, db)

	req := httptest.NewRequest(http.MethodOptions, "/orders", nil)
	req.Header.Set("Origin", "http://pos.local")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
