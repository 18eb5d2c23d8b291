package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/omnipos-menu-service/internal/apperr"
	"github.com/fekuna/omnipos-menu-service/internal/category"
	"github.com/fekuna/omnipos-menu-service/internal/category/dto"
	"github.com/fekuna/omnipos-menu-service/internal/model"
	"github.com/fekuna/omnipos-menu-service/internal/pkg/logger"
	"go.uber.org/zap"
)

const maxNameLength = 50

type categoryUseCase struct {
	repo   category.Repository
	logger logger.ZapLogger
}

func NewCategoryUseCase(repo category.Repository, log logger.ZapLogger) category.UseCase {
	return &categoryUseCase{
		repo:   repo,
		logger: log,
	}
}

func (uc *categoryUseCase) CreateCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error) {
	name, err := validateName(input.Name)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	cat := &model.Category{
		BaseModel: model.BaseModel{CreatedAt: now, UpdatedAt: now},
		Name:      name,
	}

	if err := uc.repo.Create(ctx, cat); err != nil {
		uc.logger.Error("failed to create category", zap.Error(err))
		return nil, err
	}

	return cat, nil
}

func (uc *categoryUseCase) GetCategory(ctx context.Context, id int64) (*model.Category, error) {
	cat, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, apperr.NotFound("category")
	}
	return cat, nil
}

func (uc *categoryUseCase) ListCategories(ctx context.Context) ([]model.Category, error) {
	return uc.repo.FindAll(ctx)
}

func (uc *categoryUseCase) UpdateCategory(ctx context.Context, input *dto.UpdateCategoryInput) (*model.Category, error) {
	cat, err := uc.GetCategory(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name, err := validateName(*input.Name)
		if err != nil {
			return nil, err
		}
		cat.Name = name
	}
	cat.UpdatedAt = time.Now().UTC()

	if err := uc.repo.Update(ctx, cat); err != nil {
		uc.logger.Error("failed to update category", zap.Int64("category_id", cat.ID), zap.Error(err))
		return nil, err
	}
	return cat, nil
}

func (uc *categoryUseCase) DeleteCategory(ctx context.Context, id int64) error {
	inUse, err := uc.repo.HasProducts(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return apperr.Validation("category %d still has products", id)
	}

	deleted, err := uc.repo.Delete(ctx, id)
	if err != nil {
		uc.logger.Error("failed to delete category", zap.Int64("category_id", id), zap.Error(err))
		return err
	}
	if !deleted {
		return apperr.NotFound("category")
	}
	return nil
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
