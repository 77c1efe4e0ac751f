package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"gerai/internal/handlers"
	"gerai/internal/repositories"
	"gerai/internal/services"
)

// setupApp wires a Fiber app with the in-memory repository, mirroring the
// production route layout (minus the readiness gate, which needs a live store).
func setupApp() *fiber.App {
	repo := repositories.NewMockProductRepository()
	logger := zerolog.Nop()
	productService := services.NewProductService(repo, nil, logger)
	productHandler := handlers.NewProductHandler(productService, logger)

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Product API is running")
	})
	api := app.Group("/api")
	productHandler.RegisterRoutes(api)
	return app
}

// doJSON performs a request with a JSON body and decodes the JSON response.
func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)

	var decoded map[string]interface{}
	if len(raw) > 0 && raw[0] == '{' {
		assert.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp.StatusCode, decoded
}

func listProducts(t *testing.T, app *fiber.App) []map[string]interface{} {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var products []map[string]interface{}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
	return products
}

func createProduct(t *testing.T, app *fiber.App, body map[string]interface{}) map[string]interface{} {
	t.Helper()

	status, resp := doJSON(t, app, http.MethodPost, "/api/products", body)
	assert.Equal(t, http.StatusCreated, status)
	product, ok := resp["product"].(map[string]interface{})
	assert.True(t, ok, "response should carry the created product")
	return product
}

func validProductBody() map[string]interface{} {
	return map[string]interface{}{
		"title":       "Test Laptop",
		"image":       "https://example.com/laptop.png",
		"description": "For testing purposes",
		"price":       1000.00,
		"userEmail":   "owner@example.com",
	}
}

func TestRootGreeting(t *testing.T) {
	app := setupApp()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "Product API is running", string(body))
}

func TestCreateProduct(t *testing.T) {
	app := setupApp()

	body := validProductBody()
	body["price"] = "19.99" // numeric string must coerce to a float
	product := createProduct(t, app, body)

	assert.NotEmpty(t, product["id"])
	assert.Equal(t, "Test Laptop", product["title"])
	assert.Equal(t, 19.99, product["price"])
	assert.Equal(t, "owner@example.com", product["userEmail"])
	assert.NotEmpty(t, product["createdAt"])
	assert.Nil(t, product["updatedAt"])

	meta, ok := product["meta"].(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, "medium", meta["priority"])
	assert.NotEmpty(t, meta["date"])
}

func TestCreateProduct_MissingRequiredFields(t *testing.T) {
	app := setupApp()

	for _, field := range []string{"title", "image", "description", "price"} {
		body := validProductBody()
		delete(body, field)

		status, resp := doJSON(t, app, http.MethodPost, "/api/products", body)
		assert.Equal(t, http.StatusBadRequest, status, "missing %s", field)
		assert.Equal(t, "missing required fields", resp["error"])
	}

	// A zero price counts as missing.
	body := validProductBody()
	body["price"] = 0
	status, resp := doJSON(t, app, http.MethodPost, "/api/products", body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "missing required fields", resp["error"])

	assert.Empty(t, listProducts(t, app), "nothing should be persisted")
}

func TestCreateProduct_MissingUserEmail(t *testing.T) {
	app := setupApp()

	body := validProductBody()
	delete(body, "userEmail")

	status, resp := doJSON(t, app, http.MethodPost, "/api/products", body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "user email required", resp["error"])
	assert.Empty(t, listProducts(t, app))
}

func TestGetProduct(t *testing.T) {
	app := setupApp()

	created := createProduct(t, app, validProductBody())
	id := created["id"].(string)

	status, fetched := doJSON(t, app, http.MethodGet, "/api/products/"+id, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, created["title"], fetched["title"])
	assert.Equal(t, created["userEmail"], fetched["userEmail"])

	status, resp := doJSON(t, app, http.MethodGet, "/api/products/"+primitive.NewObjectID().Hex(), nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "product not found", resp["error"])
}

func TestMalformedIdentifierIsStoreFailure(t *testing.T) {
	app := setupApp()

	created := createProduct(t, app, validProductBody())

	// A token that is not ObjectID hex fails at the store boundary and is
	// reported only as the generic server error, never 400 or 404.
	status, resp := doJSON(t, app, http.MethodGet, "/api/products/not-a-hex-id", nil)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "something went wrong", resp["error"])

	status, resp = doJSON(t, app, http.MethodPut, "/api/products/not-a-hex-id", map[string]interface{}{
		"title":     "Renamed",
		"userEmail": "owner@example.com",
	})
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "something went wrong", resp["error"])

	status, resp = doJSON(t, app, http.MethodDelete, "/api/products/not-a-hex-id", map[string]interface{}{
		"userEmail": "owner@example.com",
	})
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "something went wrong", resp["error"])

	// Nothing was touched by the failed requests.
	status, fetched := doJSON(t, app, http.MethodGet, "/api/products/"+created["id"].(string), nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, created["title"], fetched["title"])
}

func TestUpdateProduct(t *testing.T) {
	app := setupApp()

	created := createProduct(t, app, validProductBody())
	id := created["id"].(string)

	// Missing email
	status, resp := doJSON(t, app, http.MethodPut, "/api/products/"+id, map[string]interface{}{
		"title": "Renamed",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "user email required", resp["error"])

	// Unknown identifier
	status, resp = doJSON(t, app, http.MethodPut, "/api/products/"+primitive.NewObjectID().Hex(), map[string]interface{}{
		"title":     "Renamed",
		"userEmail": "owner@example.com",
	})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "product not found", resp["error"])

	// Non-owning email
	status, resp = doJSON(t, app, http.MethodPut, "/api/products/"+id, map[string]interface{}{
		"title":     "Renamed",
		"userEmail": "intruder@example.com",
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "not authorized", resp["error"])

	// Owning email
	status, resp = doJSON(t, app, http.MethodPut, "/api/products/"+id, map[string]interface{}{
		"title":     "Renamed",
		"userEmail": "owner@example.com",
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), resp["modifiedCount"])

	status, fetched := doJSON(t, app, http.MethodGet, "/api/products/"+id, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Renamed", fetched["title"])
	assert.Equal(t, created["userEmail"], fetched["userEmail"])
	assert.Equal(t, created["createdAt"], fetched["createdAt"])
	assert.NotEmpty(t, fetched["updatedAt"])
}

func TestDeleteProduct(t *testing.T) {
	app := setupApp()

	created := createProduct(t, app, validProductBody())
	id := created["id"].(string)

	// No body at all means no email, so the gate answers 401.
	status, resp := doJSON(t, app, http.MethodDelete, "/api/products/"+id, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "user email required", resp["error"])

	// Non-owning email leaves the record in place.
	status, resp = doJSON(t, app, http.MethodDelete, "/api/products/"+id, map[string]interface{}{
		"userEmail": "intruder@example.com",
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "not authorized", resp["error"])

	status, _ = doJSON(t, app, http.MethodGet, "/api/products/"+id, nil)
	assert.Equal(t, http.StatusOK, status)

	// Owning email deletes it.
	status, resp = doJSON(t, app, http.MethodDelete, "/api/products/"+id, map[string]interface{}{
		"userEmail": "owner@example.com",
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), resp["deletedCount"])

	status, _ = doJSON(t, app, http.MethodGet, "/api/products/"+id, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestListProducts(t *testing.T) {
	app := setupApp()

	first := createProduct(t, app, validProductBody())

	second := validProductBody()
	second["title"] = "Test Monitor"
	createProduct(t, app, second)

	assert.Len(t, listProducts(t, app), 2)

	status, _ := doJSON(t, app, http.MethodDelete, "/api/products/"+first["id"].(string), map[string]interface{}{
		"userEmail": "owner@example.com",
	})
	assert.Equal(t, http.StatusOK, status)

	remaining := listProducts(t, app)
	assert.Len(t, remaining, 1)
	assert.Equal(t, "Test Monitor", remaining[0]["title"])
}
