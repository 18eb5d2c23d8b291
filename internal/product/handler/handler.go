package handler

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/fekuna/omnipos-menu-service/internal/apperr"
	"github.com/fekuna/omnipos-menu-service/internal/httpx"
	"github.com/fekuna/omnipos-menu-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-menu-service/internal/pkg/storage"
	"github.com/fekuna/omnipos-menu-service/internal/product"
	"github.com/fekuna/omnipos-menu-service/internal/product/dto"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxUploadSize = 10 << 20

type ProductHandler struct {
	uc     product.UseCase
	logger logger.ZapLogger
}

func NewProductHandler(uc product.UseCase, log logger.ZapLogger) *ProductHandler {
	return &ProductHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *ProductHandler) Routes(r chi.Router) {
	r.Post("/", h.CreateProduct)
	r.Get("/", h.ListProducts)
	r.Get("/{id}", h.GetProduct)
	r.Put("/{id}", h.UpdateProduct)
	r.Delete("/{id}", h.DeleteProduct)
}

// CreateProduct handles POST /products. The body is either JSON or a
// multipart form carrying an optional "image" file.
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var input dto.CreateProductInput

	if isMultipart(r) {
		form, cleanup, err := parseForm(r)
		if err != nil {
			httpx.WriteAppError(w, r, err, h.logger)
			return
		}
		defer cleanup()

		input.Name = form.value("name")
		if input.Price, err = form.decimalValue("price"); err != nil {
			httpx.WriteAppError(w, r, err, h.logger)
			return
		}
		if id, err := form.int64Value("category_id"); err != nil {
			httpx.WriteAppError(w, r, err, h.logger)
			return
		} else if id != nil {
			input.CategoryID = *id
		}
		input.Description = form.optional("description")
		input.ImageLink = form.optional("image_link")
		input.Image = form.image
	} else if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.WriteAppError(w, r, err, h.logger)
		return
	}

	p, err := h.uc.CreateProduct(r.Context(), &input)
	if err != nil {
		httpx.WriteAppError(w, r, err, h.logger)
		return
	}

	h.logger.Info("product created", zap.Int64("product_id", p.ID))
	httpx.WriteJSON(w, http.StatusCreated, p, h.logger)
}

// ListProducts handles GET /products?page=&limit=&category_id=&search=
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := &dto.ProductFilters{SearchQuery: strings.TrimSpace(q.Get("search"))}

	var err error
	if filters.Page, err = queryInt(q.Get("page")); err != nil {
		httpx.WriteAppError(w, r, apperr.Validation("invalid page: %q", q.Get("page")), h.logger)
		return
	}
	if filters.PageSize, err = queryInt(q.Get("limit")); err != nil {
		httpx.WriteAppError(w, r, apperr.Validation("invalid limit: %q", q.Get("limit")), h.logger)
		return
	}
	if raw := q.Get("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			httpx.WriteAppError(w, r, apperr.Validation("invalid category_id: %q", raw), h.logger)
			return
		}
		filters.CategoryID = id
	}

	page, err := h.uc.ListProducts(r.Context(), filters)
	if err != nil {
		httpx.WriteAppError(w, r, err, h.logger)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, page, h.logger)
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteAppError(w, r, err, h.logger)
		return
	}

	p, err := h.uc.GetProduct(r.Context(), id)
	if err != nil {
		httpx.WriteAppError(w, r, err, h.logger)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p, h.logger)
}

// UpdateProduct handles PUT /products/{id}. Fields left out of the body keep
// their stored value.
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteAppError(w, r, err, h.logger)
		return
	}

	var input dto.UpdateProductInput
	if isMultipart(r) {
		form, cleanup, err := parseForm(r)
		if err != nil {
			httpx.WriteAppError(w, r, err, h.logger)
			return
		}
		defer cleanup()

		input.Name = form.optional("name")
		if input.Price, err = form.decimalValue("price"); err != nil {
			httpx.WriteAppError(w, r, err, h.logger)
			return
		}
		if input.CategoryID, err = form.int64Value("category_id"); err != nil {
			httpx.WriteAppError(w, r, err, h.logger)
			return
		}
		input.Description = form.optional("description")
		input.ImageLink = form.optional("image_link")
		input.Image = form.image
	} else if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.WriteAppError(w, r, err, h.logger)
		return
	}
	input.ID = id

	p, err := h.uc.UpdateProduct(r.Context(), &input)
	if err != nil {
		httpx.WriteAppError(w, r, err, h.logger)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p, h.logger)
}

func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteAppError(w, r, err, h.logger)
		return
	}

	if err := h.uc.DeleteProduct(r.Context(), id); err != nil {
		httpx.WriteAppError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

type productForm struct {
	values map[string][]string
	image  *storage.File
}

// parseForm reads a multipart product form. The returned cleanup closes the
// uploaded file and must run after the use case has consumed it.
func parseForm(r *http.Request) (*productForm, func(), error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, nil, apperr.Validation("invalid multipart form: %v", err)
	}

	form := &productForm{values: r.MultipartForm.Value}
	cleanup := func() { _ = r.MultipartForm.RemoveAll() }

	file, header, err := r.FormFile("image")
	if err == http.ErrMissingFile {
		return form, cleanup, nil
	}
	if err != nil {
		cleanup()
		return nil, nil, apperr.Validation("invalid image: %v", err)
	}

	form.image = fileFromHeader(file, header)
	return form, func() {
		_ = file.Close()
		cleanup()
	}, nil
}

func fileFromHeader(file multipart.File, header *multipart.FileHeader) *storage.File {
	return &storage.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}
}

func (f *productForm) value(key string) string {
	if v, ok := f.values[key]; ok && len(v) > 0 {
		return v[0]
	}
	return ""
}

func (f *productForm) optional(key string) *string {
	if v, ok := f.values[key]; ok && len(v) > 0 {
		s := v[0]
		return &s
	}
	return nil
}

func (f *productForm) decimalValue(key string) (*decimal.Decimal, error) {
	raw := f.optional(key)
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(*raw))
	if err != nil {
		return nil, apperr.Validation("invalid %s: %q", key, *raw)
	}
	return &d, nil
}

func (f *productForm) int64Value(key string) (*int64, error) {
	raw := f.optional(key)
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(*raw), 10, 64)
	if err != nil {
		return nil, apperr.Validation("invalid %s: %q", key, *raw)
	}
	return &n, nil
}

func queryInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
