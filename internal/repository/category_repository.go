package repository

import (
	"context"
	"errors"
	"fmt"

	"eshop-api/internal/domain"
	"eshop-api/internal/mapper"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
)

// categoryUpdateFields is the whitelist of fields a category update may
// replace. The identity is immutable once assigned.
var categoryUpdateFields = []string{"name", "icon", "color"}

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	List(ctx context.Context) ([]*domain.Category, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Category, error)
	Update(ctx context.Context, id primitive.ObjectID, category *domain.Category) (*domain.Category, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type categoryRepository struct {
	col *mongo.Collection
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db *mongo.Database) CategoryRepository {
	return &categoryRepository{col: db.Collection("categories")}
}

// Create inserts a new category and assigns its server-side identity
func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	if category.ID.IsZero() {
		category.ID = primitive.NewObjectID()
	}

	if _, err := r.col.InsertOne(ctx, category); err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

// List retrieves all categories sorted by name
func (r *categoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	cursor, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer cursor.Close(ctx)

	categories := []*domain.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}

	return categories, nil
}

// FindByID retrieves a category by ID
func (r *categoryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Category, error) {
	category := &domain.Category{}
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(category)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category by ID: %w", err)
	}

	return category, nil
}

// Update replaces the whitelisted category fields and returns the updated
// document
func (r *categoryRepository) Update(ctx context.Context, id primitive.ObjectID, category *domain.Category) (*domain.Category, error) {
	updated := &domain.Category{}
	err := r.col.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		mapper.Set(category, categoryUpdateFields...),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(updated)

	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	return updated, nil
}

// Delete removes a category, reporting ErrCategoryNotFound when no
// document matched
func (r *categoryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	err := r.col.FindOneAndDelete(ctx, bson.M{"_id": id}).Err()
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}

	return nil
}
