package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"gerai/internal/database"
	"gerai/internal/models"
)

const productCollection = "products"

// MongoProductRepository is a MongoDB implementation of ProductRepository.
type MongoProductRepository struct {
	connector *database.Connector
}

// NewMongoProductRepository creates a new instance of MongoProductRepository.
func NewMongoProductRepository(connector *database.Connector) *MongoProductRepository {
	return &MongoProductRepository{
		connector: connector,
	}
}

// collection resolves the products collection, connecting lazily if needed.
func (r *MongoProductRepository) collection(ctx context.Context) (*mongo.Collection, error) {
	db, err := r.connector.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("database unavailable: %w", err)
	}
	return db.Collection(productCollection), nil
}

// GetAll retrieves every product in the collection, in natural order.
func (r *MongoProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}

	cursor, err := coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its identifier. A token that is not
// a valid ObjectID hex fails here, at the store boundary.
func (r *MongoProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid product id %q: %w", id, err)
	}

	var product models.Product
	if err := coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	return &product, nil
}

// Create inserts a new product and fills in its store-assigned identifier.
func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	coll, err := r.collection(ctx)
	if err != nil {
		return err
	}

	res, err := coll.InsertOne(ctx, product)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		product.ID = oid
	}
	return nil
}

// Update merges the patch into the stored product and reports how many
// documents were modified (0 or 1).
func (r *MongoProductRepository) Update(ctx context.Context, id string, patch *models.ProductPatch) (int64, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return 0, err
	}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, fmt.Errorf("invalid product id %q: %w", id, err)
	}

	res, err := coll.UpdateByID(ctx, oid, bson.M{"$set": patch})
	if err != nil {
		return 0, fmt.Errorf("failed to update product %s: %w", id, err)
	}
	return res.ModifiedCount, nil
}

// Delete removes a product by its identifier and reports how many documents
// were deleted (0 or 1).
func (r *MongoProductRepository) Delete(ctx context.Context, id string) (int64, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return 0, err
	}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, fmt.Errorf("invalid product id %q: %w", id, err)
	}

	res, err := coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return 0, fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	return res.DeletedCount, nil
}
