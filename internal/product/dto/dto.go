package dto

import "github.com/fekuna/omnipos-menu-service/internal/model"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	MaxPage         = 100_000
)

type ProductFilters struct {
	CategoryID  int64
	SearchQuery string // case-insensitive name match
	Page        int
	PageSize    int
}

// Normalize clamps paging to sane bounds.
func (f *ProductFilters) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Page > MaxPage {
		f.Page = MaxPage
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
}

func (f *ProductFilters) Offset() int {
	return (f.Page - 1) * f.PageSize
}

type ProductPage struct {
	Products []model.Product `json:"products"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	Limit    int             `json:"limit"`
}
