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
	ErrProductNotFound = errors.New("product not found")
)

// productUpdateFields is the whitelist of fields a product update may
// replace. Identity and creation date are immutable; the gallery has its
// own dedicated operation.
var productUpdateFields = []string{
	"name", "description", "richDescription", "image", "brand",
	"price", "category", "rating", "numReviews", "isFeatured", "countInStock",
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.PopulatedProduct, error)
	List(ctx context.Context, categoryIDs []primitive.ObjectID) ([]*domain.PopulatedProduct, error)
	Update(ctx context.Context, id primitive.ObjectID, product *domain.Product) (*domain.Product, error)
	UpdateGallery(ctx context.Context, id primitive.ObjectID, images []string) (*domain.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error)
	Count(ctx context.Context) (int64, error)
	FindFeatured(ctx context.Context, limit int64) ([]*domain.Product, error)
}

type productRepository struct {
	col *mongo.Collection
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *mongo.Database) ProductRepository {
	return &productRepository{col: db.Collection("products")}
}

// Create inserts a new product and assigns its server-side identity
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	if product.Images == nil {
		product.Images = []string{}
	}

	if _, err := r.col.InsertOne(ctx, product); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// populatePipeline expands the category reference into the full category
// document, the document-store equivalent of populate('category').
func populatePipeline(match bson.M) mongo.Pipeline {
	return mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "categories"},
			{Key: "localField", Value: "category"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "categoryDetail"},
		}}},
		bson.D{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$categoryDetail"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}
}

// FindByID retrieves a product by ID with its category expanded
func (r *productRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.PopulatedProduct, error) {
	cursor, err := r.col.Aggregate(ctx, populatePipeline(bson.M{"_id": id}))
	if err != nil {
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	defer cursor.Close(ctx)

	products := []*domain.PopulatedProduct{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode product: %w", err)
	}
	if len(products) == 0 {
		return nil, ErrProductNotFound
	}

	return products[0], nil
}

// List retrieves products with their categories expanded, optionally
// restricted to a set of category identities
func (r *productRepository) List(ctx context.Context, categoryIDs []primitive.ObjectID) ([]*domain.PopulatedProduct, error) {
	match := bson.M{}
	if len(categoryIDs) > 0 {
		match["category"] = bson.M{"$in": categoryIDs}
	}

	cursor, err := r.col.Aggregate(ctx, populatePipeline(match))
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	products := []*domain.PopulatedProduct{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	return products, nil
}

// Update replaces the whitelisted product fields and returns the updated
// document
func (r *productRepository) Update(ctx context.Context, id primitive.ObjectID, product *domain.Product) (*domain.Product, error) {
	updated := &domain.Product{}
	err := r.col.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		mapper.Set(product, productUpdateFields...),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(updated)

	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return updated, nil
}

// UpdateGallery replaces the gallery array wholesale
func (r *productRepository) UpdateGallery(ctx context.Context, id primitive.ObjectID, images []string) (*domain.Product, error) {
	updated := &domain.Product{}
	err := r.col.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"images": images}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(updated)

	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product gallery: %w", err)
	}

	return updated, nil
}

// Delete removes a product, reporting ErrProductNotFound when no document
// matched
func (r *productRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	err := r.col.FindOneAndDelete(ctx, bson.M{"_id": id}).Err()
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return nil
}

// DeleteMany removes every product whose identity is in ids and returns
// how many documents were removed. Zero matches is not an error.
func (r *productRepository) DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	result, err := r.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete products: %w", err)
	}

	return result.DeletedCount, nil
}

// Count returns the total product count
func (r *productRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}

	return count, nil
}

// FindFeatured retrieves up to limit featured products; limit <= 0 means
// no limit is applied
func (r *productRepository) FindFeatured(ctx context.Context, limit int64) ([]*domain.Product, error) {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.col.Find(ctx, bson.M{"isFeatured": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find featured products: %w", err)
	}
	defer cursor.Close(ctx)

	products := []*domain.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode featured products: %w", err)
	}

	return products, nil
}
