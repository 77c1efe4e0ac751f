package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Price is a float64 that also accepts numeric strings over the wire,
// so both `"price": 19.99` and `"price": "19.99"` decode to 19.99.
type Price float64

func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	s := string(data)
	if s[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid price: %w", err)
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("price %q is not numeric", s)
	}
	*p = Price(f)
	return nil
}

// Meta carries optional per-product metadata. It is replaced wholesale on
// update, never merged field by field.
type Meta struct {
	Date     time.Time `json:"date" bson:"date"`
	Priority string    `json:"priority" bson:"priority"`
}

// Product represents a product document in the store.
type Product struct {
	ID          primitive.ObjectID `json:"id,omitzero" bson:"_id,omitempty"`
	Title       string             `json:"title" bson:"title"`
	Image       string             `json:"image" bson:"image"`
	Description string             `json:"description" bson:"description"`
	Price       float64            `json:"price" bson:"price"`
	UserEmail   string             `json:"userEmail" bson:"userEmail"`
	Meta        *Meta              `json:"meta,omitempty" bson:"meta,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   *time.Time         `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// CreateProductInput is the request body for creating a product.
// UserEmail is deliberately untagged for validation: its absence must be
// reported separately from the other required fields.
type CreateProductInput struct {
	Title       string `json:"title" validate:"required"`
	Image       string `json:"image" validate:"required"`
	Description string `json:"description" validate:"required"`
	Price       Price  `json:"price" validate:"required"`
	UserEmail   string `json:"userEmail"`
	Meta        *Meta  `json:"meta"`
}

// UpdateProductInput is the request body for updating a product. Every field
// is optional except UserEmail, which authorizes the change.
type UpdateProductInput struct {
	Title       string `json:"title"`
	Image       string `json:"image"`
	Description string `json:"description"`
	Price       Price  `json:"price"`
	UserEmail   string `json:"userEmail"`
	Meta        *Meta  `json:"meta"`
}

// DeleteProductInput is the request body for deleting a product.
type DeleteProductInput struct {
	UserEmail string `json:"userEmail"`
}

// ProductPatch is the partial update applied to a stored product. Zero-value
// fields marshal away via omitempty, so unsupplied (or falsy) fields are
// dropped from the patch rather than cleared. UpdatedAt is always set.
type ProductPatch struct {
	Title       string    `bson:"title,omitempty"`
	Image       string    `bson:"image,omitempty"`
	Description string    `bson:"description,omitempty"`
	Price       float64   `bson:"price,omitempty"`
	Meta        *Meta     `bson:"meta,omitempty"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}
