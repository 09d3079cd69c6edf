package service

import (
	"context"

	"eshop-api/internal/domain"
	"eshop-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CategoryService defines the interface for category business logic.
// Categories are plain CRUD with no cross-entity rules, so the service is
// a thin pass-through kept for symmetry with the other resources.
type CategoryService interface {
	List(ctx context.Context) ([]*domain.Category, error)
	Get(ctx context.Context, id primitive.ObjectID) (*domain.Category, error)
	Create(ctx context.Context, category *domain.Category) (*domain.Category, error)
	Update(ctx context.Context, id primitive.ObjectID, category *domain.Category) (*domain.Category, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
}

// NewCategoryService creates a new instance of CategoryService
func NewCategoryService(categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

func (s *categoryService) List(ctx context.Context) ([]*domain.Category, error) {
	return s.categoryRepo.List(ctx)
}

func (s *categoryService) Get(ctx context.Context, id primitive.ObjectID) (*domain.Category, error) {
	return s.categoryRepo.FindByID(ctx, id)
}

func (s *categoryService) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, id primitive.ObjectID, category *domain.Category) (*domain.Category, error) {
	return s.categoryRepo.Update(ctx, id, category)
}

func (s *categoryService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.categoryRepo.Delete(ctx, id)
}
