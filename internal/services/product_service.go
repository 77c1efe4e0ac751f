package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"gerai/internal/models"
	"gerai/internal/repositories"
	"gerai/pkg/events"
)

// Errors returned by the ownership gates on update and delete.
var (
	ErrEmailRequired = errors.New("user email required")
	ErrNotOwner      = errors.New("user is not the product owner")
)

const defaultPriority = "medium"

// ProductService handles business logic related to products.
type ProductService struct {
	repo     repositories.ProductRepository
	mqClient *events.Client // nil disables event publishing
	logger   zerolog.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, mqClient *events.Client, logger zerolog.Logger) *ProductService {
	return &ProductService{
		repo:     repo,
		mqClient: mqClient,
		logger:   logger,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAll(ctx)
}

// GetProductByID retrieves a single product by its identifier.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateProduct builds the product record, applying meta defaults and
// stamping createdAt, and inserts it into the store.
func (s *ProductService) CreateProduct(ctx context.Context, input *models.CreateProductInput) (*models.Product, error) {
	now := time.Now()
	product := &models.Product{
		Title:       input.Title,
		Image:       input.Image,
		Description: input.Description,
		Price:       float64(input.Price),
		UserEmail:   input.UserEmail,
		Meta:        normalizeMeta(input.Meta, now),
		CreatedAt:   now,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.publish(events.ProductCreated, product.ID.Hex())
	return product, nil
}

// UpdateProduct merges the supplied fields into the stored product after the
// ownership gates pass: email present, record found, stored email matches.
// The fetch-then-update sequence is not atomic; a concurrent mutation can
// slip between the ownership check and the write.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, input *models.UpdateProductInput) (int64, error) {
	if input.UserEmail == "" {
		return 0, ErrEmailRequired
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if existing.UserEmail != input.UserEmail {
		return 0, ErrNotOwner
	}

	now := time.Now()
	patch := &models.ProductPatch{
		Title:       input.Title,
		Image:       input.Image,
		Description: input.Description,
		Price:       float64(input.Price),
		UpdatedAt:   now,
	}
	if input.Meta != nil {
		patch.Meta = normalizeMeta(input.Meta, now)
	}

	modified, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return 0, err
	}

	s.publish(events.ProductUpdated, id)
	return modified, nil
}

// DeleteProduct removes a product after the same ownership gates as update.
func (s *ProductService) DeleteProduct(ctx context.Context, id, userEmail string) (int64, error) {
	if userEmail == "" {
		return 0, ErrEmailRequired
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if existing.UserEmail != userEmail {
		return 0, ErrNotOwner
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return 0, err
	}

	s.publish(events.ProductDeleted, id)
	return deleted, nil
}

// publish sends a product event when a client is configured. Publishing is
// best effort: failures are logged and never fail the request.
func (s *ProductService) publish(eventType, productID string) {
	if s.mqClient == nil {
		return
	}
	if err := s.mqClient.PublishProductEvent(eventType, productID); err != nil {
		s.logger.Warn().Err(err).
			Str("event", eventType).
			Str("product_id", productID).
			Msg("failed to publish product event")
	}
}

// normalizeMeta applies the meta defaults: date falls back to now, priority
// to "medium". An absent meta record comes back fully defaulted.
func normalizeMeta(meta *models.Meta, now time.Time) *models.Meta {
	normalized := models.Meta{Date: now, Priority: defaultPriority}
	if meta != nil {
		if !meta.Date.IsZero() {
			normalized.Date = meta.Date
		}
		if meta.Priority != "" {
			normalized.Priority = meta.Priority
		}
	}
	return &normalized
}
