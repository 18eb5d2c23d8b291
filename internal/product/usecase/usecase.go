package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fekuna/omnipos-menu-service/internal/apperr"
	"github.com/fekuna/omnipos-menu-service/internal/category"
	"github.com/fekuna/omnipos-menu-service/internal/model"
	"github.com/fekuna/omnipos-menu-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-menu-service/internal/pkg/search"
	"github.com/fekuna/omnipos-menu-service/internal/pkg/storage"
	"github.com/fekuna/omnipos-menu-service/internal/product"
	"github.com/fekuna/omnipos-menu-service/internal/product/dto"
	"go.uber.org/zap"
)

const (
	indexName       = "products"
	cacheKeyPrefix  = "products:list:"
	maxNameLength   = 100
	sideEffectLimit = 5 * time.Second
)

const indexMapping = `{
	"mappings": {
		"properties": {
			"name": { "type": "text" },
			"description": { "type": "text" },
			"category_id": { "type": "long" },
			"price": { "type": "scaled_float", "scaling_factor": 100 }
		}
	}
}`

// Uploader stores product images and returns their public URL.
type Uploader interface {
	Upload(ctx context.Context, f storage.File) (string, error)
}

// ListCache caches product list pages.
type ListCache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeletePattern(ctx context.Context, pattern string) error
}

// SearchIndex is the full-text product index.
type SearchIndex interface {
	CreateIndex(ctx context.Context, name, mapping string) error
	Index(ctx context.Context, index, id string, doc interface{}) error
	Delete(ctx context.Context, index, id string) error
	Search(ctx context.Context, index string, query map[string]interface{}) (*search.SearchResponse, error)
}

type Options struct {
	Uploader Uploader
	Cache    ListCache
	Search   SearchIndex
	CacheTTL time.Duration
}

type productUseCase struct {
	repo       product.Repository
	categories category.Repository
	uploader   Uploader
	cache      ListCache
	es         SearchIndex
	cacheTTL   time.Duration
	logger     logger.ZapLogger
}

// NewProductUseCase wires the product use case. Every collaborator in opts is
// optional; a nil one disables the matching feature.
func NewProductUseCase(repo product.Repository, categories category.Repository, opts Options, log logger.ZapLogger) product.UseCase {
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &productUseCase{
		repo:       repo,
		categories: categories,
		uploader:   opts.Uploader,
		cache:      opts.Cache,
		es:         opts.Search,
		cacheTTL:   ttl,
		logger:     log,
	}
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	name, err := validateName(input.Name)
	if err != nil {
		return nil, err
	}
	if input.Price == nil {
		return nil, apperr.Validation("price is required")
	}
	if input.Price.IsNegative() {
		return nil, apperr.Validation("price must not be negative")
	}
	if err := uc.ensureCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	imageLink := input.ImageLink
	if input.Image != nil {
		url, err := uc.upload(ctx, *input.Image)
		if err != nil {
			return nil, err
		}
		imageLink = &url
	}

	now := time.Now().UTC()
	p := &model.Product{
		BaseModel:   model.BaseModel{CreatedAt: now, UpdatedAt: now},
		CategoryID:  input.CategoryID,
		Name:        name,
		Description: input.Description,
		Price:       input.Price.Round(2),
		ImageLink:   imageLink,
	}

	if err := uc.repo.Create(ctx, p); err != nil {
		uc.logger.Error("failed to create product", zap.Error(err))
		return nil, err
	}

	uc.invalidateListCache(ctx)
	uc.syncToElastic(ctx, p)

	return p, nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("product")
	}

	cat, err := uc.categories.FindByID(ctx, p.CategoryID)
	if err != nil {
		return nil, err
	}
	p.Category = cat
	return p, nil
}

func (uc *productUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) (*dto.ProductPage, error) {
	filters.Normalize()

	cacheKey := ""
	if uc.cache != nil {
		if key, err := generateCacheKey(filters); err == nil {
			cacheKey = key
			var cached dto.ProductPage
			hit, err := uc.cache.GetJSON(ctx, cacheKey, &cached)
			if err != nil {
				uc.logger.Warn("product cache read failed", zap.Error(err))
			}
			if hit {
				return &cached, nil
			}
		}
	}

	page, err := uc.listFromSearch(ctx, filters)
	if err != nil || page == nil {
		if err != nil {
			uc.logger.Error("ES search failed, falling back to DB", zap.Error(err))
		}
		products, count, err := uc.repo.FindAll(ctx, filters)
		if err != nil {
			return nil, err
		}
		page = &dto.ProductPage{Products: products, Total: count, Page: filters.Page, Limit: filters.PageSize}
	}

	if cacheKey != "" {
		if err := uc.cache.SetJSON(ctx, cacheKey, page, uc.cacheTTL); err != nil {
			uc.logger.Warn("product cache write failed", zap.Error(err))
		}
	}

	return page, nil
}

// listFromSearch resolves a search query through Elasticsearch and then loads
// the matching rows so prices come from the database. It returns nil, nil
// when search is not applicable.
func (uc *productUseCase) listFromSearch(ctx context.Context, filters *dto.ProductFilters) (*dto.ProductPage, error) {
	if filters.SearchQuery == "" || uc.es == nil {
		return nil, nil
	}

	must := []map[string]interface{}{
		{
			"multi_match": map[string]interface{}{
				"query":     filters.SearchQuery,
				"fields":    []string{"name^3", "description"},
				"fuzziness": "AUTO",
			},
		},
	}
	if filters.CategoryID > 0 {
		must = append(must, map[string]interface{}{
			"term": map[string]interface{}{"category_id": filters.CategoryID},
		})
	}
	q := map[string]interface{}{
		"query":   map[string]interface{}{"bool": map[string]interface{}{"must": must}},
		"from":    filters.Offset(),
		"size":    filters.PageSize,
		"_source": false,
	}

	res, err := uc.es.Search(ctx, indexName, q)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	rows, err := uc.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]model.Product, len(rows))
	for _, p := range rows {
		byID[p.ID] = p
	}

	// Keep relevance order; skip hits whose row is already gone.
	products := make([]model.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			products = append(products, p)
		}
	}

	return &dto.ProductPage{
		Products: products,
		Total:    res.Hits.Total.Value,
		Page:     filters.Page,
		Limit:    filters.PageSize,
	}, nil
}

// UpdateProduct patches the product. A new image replaces image_link; the
// previously stored object is left in the bucket.
func (uc *productUseCase) UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("product")
	}

	if input.Name != nil {
		name, err := validateName(*input.Name)
		if err != nil {
			return nil, err
		}
		p.Name = name
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, apperr.Validation("price must not be negative")
		}
		p.Price = input.Price.Round(2)
	}
	if input.CategoryID != nil && *input.CategoryID != p.CategoryID {
		if err := uc.ensureCategory(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
		p.CategoryID = *input.CategoryID
	}
	if input.Description != nil {
		p.Description = input.Description
	}
	if input.ImageLink != nil {
		p.ImageLink = input.ImageLink
	}
	if input.Image != nil {
		url, err := uc.upload(ctx, *input.Image)
		if err != nil {
			return nil, err
		}
		p.ImageLink = &url
	}

	p.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, p); err != nil {
		uc.logger.Error("failed to update product", zap.Int64("product_id", p.ID), zap.Error(err))
		return nil, err
	}

	uc.invalidateListCache(ctx)
	uc.syncToElastic(ctx, p)

	return p, nil
}

// DeleteProduct removes the product. Existing order items keep pointing at
// the removed id.
func (uc *productUseCase) DeleteProduct(ctx context.Context, id int64) error {
	deleted, err := uc.repo.Delete(ctx, id)
	if err != nil {
		uc.logger.Error("failed to delete product", zap.Int64("product_id", id), zap.Error(err))
		return err
	}
	if !deleted {
		return apperr.NotFound("product")
	}

	uc.invalidateListCache(ctx)
	if uc.es != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectLimit)
			defer cancel()
			if err := uc.es.Delete(ctx, indexName, strconv.FormatInt(id, 10)); err != nil {
				uc.logger.Error("failed to delete product from ES", zap.Int64("product_id", id), zap.Error(err))
			}
		}()
	}

	return nil
}

func (uc *productUseCase) ensureCategory(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperr.Validation("category_id is required")
	}
	cat, err := uc.categories.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if cat == nil {
		return apperr.Validation("category %d does not exist", id)
	}
	return nil
}

func (uc *productUseCase) upload(ctx context.Context, f storage.File) (string, error) {
	if uc.uploader == nil {
		return "", apperr.Upload(errors.New("image storage is not configured"))
	}
	url, err := uc.uploader.Upload(ctx, f)
	if err != nil {
		uc.logger.Error("failed to upload product image", zap.String("filename", f.Name), zap.Error(err))
		return "", apperr.Upload(err)
	}
	return url, nil
}

func (uc *productUseCase) invalidateListCache(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.DeletePattern(ctx, cacheKeyPrefix+"*"); err != nil {
		uc.logger.Warn("failed to invalidate product cache", zap.Error(err))
	}
}

func (uc *productUseCase) syncToElastic(ctx context.Context, p *model.Product) {
	if uc.es == nil {
		return
	}
	doc := map[string]interface{}{
		"name":        p.Name,
		"description": p.Description,
		"category_id": p.CategoryID,
		"price":       p.Price.InexactFloat64(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectLimit)
		defer cancel()
		_ = uc.es.CreateIndex(ctx, indexName, indexMapping)
		if err := uc.es.Index(ctx, indexName, strconv.FormatInt(p.ID, 10), doc); err != nil {
			uc.logger.Error("failed to index product", zap.Int64("product_id", p.ID), zap.Error(err))
		}
	}()
}

func generateCacheKey(filters *dto.ProductFilters) (string, error) {
	data, err := json.Marshal(filters)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%x", cacheKeyPrefix, md5.Sum(data)), nil
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Validation("name is required")
	}
	if len([]rune(name)) > maxNameLength {
		return "", apperr.Validation("name must be at most %d characters", maxNameLength)
	}
	return name, nil
}
