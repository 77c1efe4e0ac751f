package repositories

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"gerai/internal/models"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
// It mirrors the MongoDB repository's behavior: ObjectID identifiers,
// patch-merge updates, and counts of modified/deleted documents.
type MockProductRepository struct {
	mu       sync.RWMutex
	products map[primitive.ObjectID]models.Product
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[primitive.ObjectID]models.Product),
	}
}

// GetAll returns all products.
func (r *MockProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		productList = append(productList, p)
	}
	return productList, nil
}

// GetByID returns a product by its identifier.
func (r *MockProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid product id %q: %w", id, err)
	}
	product, ok := r.products[oid]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	return &product, nil
}

// Create adds a new product, assigning an identifier if missing.
func (r *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	r.products[product.ID] = *product
	return nil
}

// Update merges the patch into an existing product. Like Mongo's UpdateByID,
// a missing identifier is not an error; it just modifies zero documents.
func (r *MockProductRepository) Update(ctx context.Context, id string, patch *models.ProductPatch) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, fmt.Errorf("invalid product id %q: %w", id, err)
	}
	product, ok := r.products[oid]
	if !ok {
		return 0, nil
	}

	if patch.Title != "" {
		product.Title = patch.Title
	}
	if patch.Image != "" {
		product.Image = patch.Image
	}
	if patch.Description != "" {
		product.Description = patch.Description
	}
	if patch.Price != 0 {
		product.Price = patch.Price
	}
	if patch.Meta != nil {
		meta := *patch.Meta
		product.Meta = &meta
	}
	updatedAt := patch.UpdatedAt
	product.UpdatedAt = &updatedAt

	r.products[oid] = product
	return 1, nil
}

// Delete removes a product by its identifier.
func (r *MockProductRepository) Delete(ctx context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, fmt.Errorf("invalid product id %q: %w", id, err)
	}
	if _, ok := r.products[oid]; !ok {
		return 0, nil
	}
	delete(r.products, oid)
	return 1, nil
}
