package repositories

import (
	"context"
	"errors"

	"gerai/internal/models"
)

// ErrNotFound is returned when no product matches the given identifier.
var ErrNotFound = errors.New("product not found")

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, id string, patch *models.ProductPatch) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
}
