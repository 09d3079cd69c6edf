package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eshop-api/internal/domain"
	"eshop-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrInvalidCategory is returned when a product references a category
	// that does not exist
	ErrInvalidCategory = errors.New("invalid category")
)

// ProductService defines the interface for product business logic
type ProductService interface {
	List(ctx context.Context, categoryIDs []primitive.ObjectID) ([]*domain.PopulatedProduct, error)
	Get(ctx context.Context, id primitive.ObjectID) (*domain.PopulatedProduct, error)
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Update(ctx context.Context, id primitive.ObjectID, product *domain.Product, imageURL string) (*domain.Product, error)
	UpdateGallery(ctx context.Context, id primitive.ObjectID, images []string) (*domain.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error)
	Count(ctx context.Context) (int64, error)
	Featured(ctx context.Context, limit int64) ([]*domain.Product, error)
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewProductService creates a new instance of ProductService
func NewProductService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

// List returns products with categories expanded, optionally filtered by
// category membership
func (s *productService) List(ctx context.Context, categoryIDs []primitive.ObjectID) ([]*domain.PopulatedProduct, error) {
	return s.productRepo.List(ctx, categoryIDs)
}

// Get returns one product with its category expanded
func (s *productService) Get(ctx context.Context, id primitive.ObjectID) (*domain.PopulatedProduct, error) {
	return s.productRepo.FindByID(ctx, id)
}

// Create validates the category reference and persists the product.
// Nothing is written when the reference does not resolve.
func (s *productService) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := s.resolveCategory(ctx, product.CategoryID); err != nil {
		return nil, err
	}

	product.DateCreated = time.Now().UTC()
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// Update validates the product and category references, retains the
// stored image path when no new image was uploaded, and replaces the
// remaining fields.
func (s *productService) Update(ctx context.Context, id primitive.ObjectID, product *domain.Product, imageURL string) (*domain.Product, error) {
	existing, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.resolveCategory(ctx, product.CategoryID); err != nil {
		return nil, err
	}

	if imageURL == "" {
		product.Image = existing.Image
	} else {
		product.Image = imageURL
	}

	return s.productRepo.Update(ctx, id, product)
}

// UpdateGallery replaces the product's gallery wholesale
func (s *productService) UpdateGallery(ctx context.Context, id primitive.ObjectID, images []string) (*domain.Product, error) {
	return s.productRepo.UpdateGallery(ctx, id, images)
}

// Delete removes one product
func (s *productService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.productRepo.Delete(ctx, id)
}

// DeleteMany removes every product in ids and returns the removed count
func (s *productService) DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	return s.productRepo.DeleteMany(ctx, ids)
}

// Count returns the total product count
func (s *productService) Count(ctx context.Context) (int64, error) {
	return s.productRepo.Count(ctx)
}

// Featured returns up to limit featured products; limit <= 0 applies no
// limit
func (s *productService) Featured(ctx context.Context, limit int64) ([]*domain.Product, error) {
	return s.productRepo.FindFeatured(ctx, limit)
}

func (s *productService) resolveCategory(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.categoryRepo.FindByID(ctx, id); err != nil {
		if err == repository.ErrCategoryNotFound {
			return ErrInvalidCategory
		}
		return fmt.Errorf("failed to resolve category: %w", err)
	}
	return nil
}
