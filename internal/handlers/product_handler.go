package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"gerai/internal/models"
	"gerai/internal/repositories"
	"gerai/internal/services"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	productService *services.ProductService
	validate       *validator.Validate
	logger         zerolog.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(productService *services.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		validate:       validator.New(),
		logger:         logger,
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Get("/:id", h.HandleGetProduct)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleListProducts returns every product in the collection.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	products, err := h.productService.GetAllProducts(c.Context())
	if err != nil {
		return h.serverError(c, "list products", err)
	}
	return c.Status(fiber.StatusOK).JSON(products)
}

// HandleGetProduct returns a single product by identifier.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.productService.GetProductByID(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "product not found",
			})
		}
		return h.serverError(c, "get product", err)
	}
	return c.Status(fiber.StatusOK).JSON(product)
}

// HandleCreateProduct validates the request and inserts a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var input models.CreateProductInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}
	}

	// Required-field presence first, then the email, so the caller gets the
	// more specific message only once the rest of the record is complete.
	if err := h.validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing required fields",
		})
	}
	if input.UserEmail == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user email required",
		})
	}

	product, err := h.productService.CreateProduct(c.Context(), &input)
	if err != nil {
		return h.serverError(c, "create product", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "product created successfully",
		"product": product,
	})
}

// HandleUpdateProduct merges the supplied fields into an owned product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	// An absent body is tolerated so the email gate can answer 401.
	var input models.UpdateProductInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}
	}

	modified, err := h.productService.UpdateProduct(c.Context(), c.Params("id"), &input)
	if err != nil {
		return h.mutationError(c, "update product", err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":       "product updated successfully",
		"modifiedCount": modified,
	})
}

// HandleDeleteProduct removes an owned product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	var input models.DeleteProductInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}
	}

	deleted, err := h.productService.DeleteProduct(c.Context(), c.Params("id"), input.UserEmail)
	if err != nil {
		return h.mutationError(c, "delete product", err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":      "product deleted successfully",
		"deletedCount": deleted,
	})
}

// mutationError maps the ownership-gate errors of update/delete onto their
// status codes, falling back to a generic 500 for store failures.
func (h *ProductHandler) mutationError(c *fiber.Ctx, op string, err error) error {
	switch {
	case errors.Is(err, services.ErrEmailRequired):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "user email required",
		})
	case errors.Is(err, repositories.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "product not found",
		})
	case errors.Is(err, services.ErrNotOwner):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "not authorized",
		})
	default:
		return h.serverError(c, op, err)
	}
}

// serverError logs the underlying failure and answers with a generic message;
// no internal error detail crosses the boundary.
func (h *ProductHandler) serverError(c *fiber.Ctx, op string, err error) error {
	h.logger.Error().Err(err).Str("op", op).Msg("product request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "something went wrong",
	})
}
