package dto

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProductFilters_Normalize(t *testing.T) {
	tests := []struct {
		name       string
		in         ProductFilters
		wantPage   int
		wantSize   int
		wantOffset int
	}{
		{"defaults", ProductFilters{}, 1, DefaultPageSize, 0},
		{"second page", ProductFilters{Page: 2, PageSize: 5}, 2, 5, 5},
		{"size clamped", ProductFilters{Page: 1, PageSize: 1000}, 1, MaxPageSize, 0},
		{"huge page", ProductFilters{Page: math.MaxInt, PageSize: MaxPageSize}, MaxPage, MaxPageSize, (MaxPage - 1) * MaxPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.in
			f.Normalize()
			assert.Equal(t, tt.wantPage, f.Page)
			assert.Equal(t, tt.wantSize, f.PageSize)
			assert.Equal(t, tt.wantOffset, f.Offset())
			assert.GreaterOrEqual(t, f.Offset(), 0)
		})
	}
}
