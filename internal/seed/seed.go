// Package seed loads the demo menu.
package seed

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-menu-service/internal/category"
	"github.com/fekuna/omnipos-menu-service/internal/model"
	"github.com/fekuna/omnipos-menu-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-menu-service/internal/product"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ProductSeed struct {
	Name     string
	Price    string
	Category string
}

var (
	Categories = []string{"Bebidas", "Cafés", "Doces"}

	Products = []ProductSeed{
		{Name: "capuccino", Price: "5.99", Category: "Cafés"},
		{Name: "Coca cola", Price: "12.99", Category: "Bebidas"},
		{Name: "Cheesecake", Price: "6.99", Category: "Doces"},
	}
)

type Result struct {
	CategoriesCreated int
	ProductsCreated   int
}

type Seeder struct {
	categories category.Repository
	products   product.Repository
	logger     logger.ZapLogger
}

func NewSeeder(categories category.Repository, products product.Repository, log logger.ZapLogger) *Seeder {
	return &Seeder{categories: categories, products: products, logger: log}
}

// Run inserts whatever part of the demo menu is missing. Rows are matched by
// name, so running it twice creates nothing the second time.
func (s *Seeder) Run(ctx context.Context) (*Result, error) {
	res := &Result{}
	now := time.Now().UTC()

	catIDs := make(map[string]int64, len(Categories))
	for _, name := range Categories {
		existing, err := s.categories.FindByName(ctx, name)
		if err != nil {
			return res, err
		}
		if existing != nil {
			catIDs[name] = existing.ID
			continue
		}

		c := &model.Category{Name: name, BaseModel: model.BaseModel{CreatedAt: now, UpdatedAt: now}}
		if err := s.categories.Create(ctx, c); err != nil {
			return res, err
		}
		catIDs[name] = c.ID
		res.CategoriesCreated++
		s.logger.Info("seeded category", zap.String("name", name), zap.Int64("category_id", c.ID))
	}

	for _, ps := range Products {
		existing, err := s.products.FindByName(ctx, ps.Name)
		if err != nil {
			return res, err
		}
		if existing != nil {
			continue
		}

		p := &model.Product{
			BaseModel:  model.BaseModel{CreatedAt: now, UpdatedAt: now},
			CategoryID: catIDs[ps.Category],
			Name:       ps.Name,
			Price:      decimal.RequireFromString(ps.Price),
		}
		if err := s.products.Create(ctx, p); err != nil {
			return res, err
		}
		res.ProductsCreated++
		s.logger.Info("seeded product", zap.String("name", ps.Name), zap.Int64("product_id", p.ID))
	}

	return res, nil
}
