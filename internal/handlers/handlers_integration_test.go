package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"storefront/internal/app"
	"storefront/internal/config"
	"storefront/internal/export"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"
)

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type testServer struct {
	t   *testing.T
	app *fiber.App
	db  *gorm.DB
}

// setupApp builds the full application on a fresh in-memory SQLite database.
func setupApp(t *testing.T) *testServer {
	t.Helper()
	db, err := repositories.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, repositories.AutoMigrate(db))

	cfg := &config.Config{
		JWTSecret:   "test_jwt_secret",
		JWTTTL:      time.Hour,
		CORSOrigins: []string{"http://localhost:5173"},
	}
	return &testServer{t: t, app: app.New(app.Deps{DB: db, Config: cfg}), db: db}
}

// do sends a request and decodes a JSON response into out when out is not nil.
func (s *testServer) do(method, path, token string, body, out interface{}) int {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(s.t, err)
	defer resp.Body.Close()
	if out != nil {
		raw, err := io.ReadAll(resp.Body)
		require.NoError(s.t, err)
		require.NoError(s.t, json.Unmarshal(raw, out), string(raw))
	}
	return resp.StatusCode
}

type adminAuth struct {
	Message   string       `json:"message"`
	Token     string       `json:"token"`
	ExpiresIn int64        `json:"expiresIn"`
	Admin     models.Admin `json:"admin"`
}

// bootstrap registers the first admin and returns its token.
func (s *testServer) bootstrap() string {
	s.t.Helper()
	var auth adminAuth
	status := s.do(http.MethodPost, "/api/admin/register", "", fiber.Map{
		"username": "root", "email": "root@example.com", "password": "secret1", "fullName": "Root",
	}, &auth)
	require.Equal(s.t, fiber.StatusCreated, status)
	require.NotEmpty(s.t, auth.Token)
	require.Equal(s.t, int64(3600), auth.ExpiresIn)
	return auth.Token
}

func (s *testServer) createProduct(token string, body fiber.Map) models.Product {
	s.t.Helper()
	var product models.Product
	require.Equal(s.t, fiber.StatusCreated, s.do(http.MethodPost, "/api/products", token, body, &product))
	return product
}

func TestProductPublishLifecycle(t *testing.T) {
	s := setupApp(t)
	token := s.bootstrap()

	product := s.createProduct(token, fiber.Map{
		"name": "Bondi 8", "brand": "HOKA", "price": 6490, "description": "Max cushion road shoe",
	})
	assert.Equal(t, uint64(1), product.ID)
	assert.Equal(t, models.StatusDraft, product.Status)
	assert.Equal(t, "root", product.CreatedBy)

	var public []models.Product
	require.Equal(t, fiber.StatusOK, s.do(http.MethodGet, "/api/products", "", nil, &public))
	assert.Empty(t, public)
	assert.Equal(t, fiber.StatusNotFound, s.do(http.MethodGet, "/api/products/1", "", nil, nil))

	var published models.Product
	require.Equal(t, fiber.StatusOK, s.do(http.MethodPut, "/api/products/1/publish", token, nil, &published))
	assert.Equal(t, models.StatusPublished, published.Status)
	assert.NotNil(t, published.PublishedAt)

	require.Equal(t, fiber.StatusOK, s.do(http.MethodGet, "/api/products", "", nil, &public))
	require.Len(t, public, 1)
	assert.Equal(t, "Bondi 8", public[0].Name)

	s.createProduct(token, fiber.Map{"name": "Clifton 9", "brand": "HOKA", "price": 5490})

	var all []models.Product
	require.Equal(t, fiber.StatusOK, s.do(http.MethodGet, "/api/products/admin/all", token, nil, &all))
	assert.Len(t, all, 2)

	var brands []string
	require.Equal(t, fiber.StatusOK, s.do(http.MethodGet, "/api/products/brands", "", nil, &brands))
	assert.Equal(t, []string{"HOKA"}, brands)

	var found []models.Product
	require.Equal(t, fiber.StatusOK, s.do(http.MethodGet, "/api/products?search=bondi", "", nil, &found))
	assert.Len(t, found, 1)

	var deleted fiber.Map
	require.Equal(t, fiber.StatusOK, s.do(http.MethodDelete, "/api/products/1", token, nil, &deleted))
	assert.Equal(t, "Product deleted successfully", deleted["message"])

	var archived models.Product
	require.Equal(t, fiber.StatusOK, s.do(http.MethodGet, "/api/products/admin/1", token, nil, &archived))
	assert.Equal(t, models.StatusArchived, archived.Status)
	assert.False(t, archived.IsActive)
	assert.Equal(t, fiber.StatusConflict, s.do(http.MethodPut, "/api/products/1/publish", token, nil, nil))
}

func TestProductValidationAndConflicts(t *testing.T) {
	s := setupApp(t)
	token := s.bootstrap()

	var failure struct {
		Message string            `json:"message"`
		Errors  map[string]string `json:"errors"`
	}
	status := s.do(http.MethodPost, "/api/products", token, fiber.Map{"brand": "HOKA", "price": -1}, &failure)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Validation failed", failure.Message)
	assert.Contains(t, failure.Errors, "name")
	assert.Contains(t, failure.Errors, "price")

	s.createProduct(token, fiber.Map{"name": "Bondi 8", "brand": "HOKA", "price": 6490})
	assert.Equal(t, fiber.StatusConflict, s.do(http.MethodPost, "/api/products", token, fiber.Map{"name": "Bondi 8", "brand": "HOKA", "price": 1}, nil))
	assert.Equal(t, fiber.StatusBadRequest, s.do(http.MethodGet, "/api/products/abc", "", nil, nil))
	assert.Equal(t, fiber.StatusNotFound, s.do(http.MethodPut, "/api/products/99", token, fiber.Map{"price": 1}, nil))
}

func TestAuthorizationGuards(t *testing.T) {
	s := setupApp(t)
	root := s.bootstrap()

	assert.Equal(t, fiber.StatusUnauthorized, s.do(http.MethodPost, "/api/products", "", fiber.Map{"name": "X", "brand": "Y"}, nil))
	assert.Equal(t, fiber.StatusUnauthorized, s.do(http.MethodGet, "/api/products/admin/all", "not-a-token", nil, nil))

	// Once an admin exists, anonymous registration is closed.
	assert.Equal(t, fiber.StatusUnauthorized, s.do(http.MethodPost, "/api/admin/register", "", fiber.Map{
		"username": "intruder", "email": "x@example.com", "password": "secret1", "fullName": "X",
	}, nil))

	var created adminAuth
	require.Equal(t, fiber.StatusCreated, s.do(http.MethodPost, "/api/admin/register", root, fiber.Map{
		"username": "editor", "email": "editor@example.com", "password": "secret1", "fullName": "Editor", "role": "content_manager",
	}, &created))
	assert.Equal(t, models.RoleContentManager, created.Admin.Role)

	var login adminAuth
	require.Equal(t, fiber.StatusOK, s.do(http.MethodPost, "/api/admin/login", "", fiber.Map{"username": "editor", "password": "secret1"}, &login))
	editor := login.Token

	assert.Equal(t, fiber.StatusForbidden, s.do(http.MethodPost, "/api/products", editor, fiber.Map{"name": "X", "brand": "Y"}, nil))
	assert.Equal(t, fiber.StatusOK, s.do(http.MethodGet, "/api/products/admin/all", editor, nil, nil))
	assert.Equal(t, fiber.StatusCreated, s.do(http.MethodPost, "/api/colors", editor, fiber.Map{"name": "Black", "hexCode": "#000000"}, nil))
	assert.Equal(t, fiber.StatusForbidden, s.do(http.MethodGet, "/api/admin", editor, nil, nil))

	assert.Equal(t, fiber.StatusUnauthorized, s.do(http.MethodPost, "/api/admin/login", "", fiber.Map{"username": "editor", "password": "wrong1"}, nil))

	var customer services.CustomerAuth
	require.Equal(t, fiber.StatusCreated, s.do(http.MethodPost, "/api/auth/register", "", fiber.Map{
		"firstName": "Ada", "lastName": "Lovelace", "email": "ada@example.com", "password": "secret1",
	}, &customer))
	assert.Equal(t, fiber.StatusUnauthorized, s.do(http.MethodGet, "/api/products/admin/all", customer.AccessToken, nil, nil))
	assert.Equal(t, fiber.StatusUnauthorized, s.do(http.MethodGet, "/api/auth/me", root, nil, nil))
}

func TestAdminManagement(t *testing.T) {
	s := setupApp(t)
	root := s.bootstrap()

	var created adminAuth
	require.Equal(t, fiber.StatusCreated, s.do(http.MethodPost, "/api/admin/register", root, fiber.Map{
		"username": "pm", "email": "pm@example.com", "password": "secret1", "fullName": "PM",
	}, &created))
	assert.Equal(t, models.RoleProductManager, created.Admin.Role)
	assert.ElementsMatch(t, []string{models.PermProductsView, models.PermProductsEdit}, created.Admin.Permissions)

	assert.Equal(t, fiber.StatusConflict, s.do(http.MethodPost, "/api/admin/register", root, fiber.Map{
		"username": "pm", "email": "other@example.com", "password": "secret1", "fullName": "PM",
	}, nil))
	assert.Equal(t, fiber.StatusBadRequest, s.do(http.MethodPost, "/api/admin/register", root, fiber.Map{
		"username": "bad", "email": "bad@example.com", "password": "secret1", "fullName": "Bad", "permissions": []string{"everything"},
	}, nil))

	var admins []models.Admin
	require.Equal(t, fiber.StatusOK, s.do(http.MethodGet, "/api/admin", root, nil, &admins))
	require.Len(t, admins, 2)
	assert.Equal(t, "pm", admins[0].Username)

	path := fmt.Sprintf("/api/admin/%d", created.Admin.ID)
	assert.Equal(t, fiber.StatusConflict, s.do(http.MethodPut, path, root, fiber.Map{"email": "root@example.com"}, nil))

	var updated struct {
		Admin models.Admin `json:"admin"`
	}
	require.Equal(t, fiber.StatusOK, s.do(http.MethodPut, path, root, fiber.Map{"fullName": "Product Manager"}, &updated))
	assert.Equal(t, "Product Manager", updated.Admin.FullName)

	assert.Equal(t, fiber.StatusBadRequest, s.do(http.MethodDelete, "/api/admin/1", root, nil, nil))
	assert.Equal(t, fiber.StatusOK, s.do(http.MethodDelete, path, root, nil, nil))
	assert.Equal(t, fiber.StatusNotFound, s.do(http.MethodGet, path, root, nil, nil))
	assert.Equal(t, fiber.StatusUnauthorized, s.do(http.MethodPost, "/api/admin/login", "", fiber.Map{"username": "pm", "password": "secret1"}, nil))

	var entries []models.AuditEntry
	require.Equal(t, fiber.StatusOK, s.do(http.MethodGet, "/api/admin/audit?resource=admin", root, nil, &entries))
	require.NotEmpty(t, entries)
	assert.Equal(t, "admin.delete", entries[0].Action)
}

func TestColorImages(t *testing.T) {
	s := setupApp(t)
	token := s.bootstrap()

	var failure struct {
		Errors map[string]string `json:"errors"`
	}
	require.Equal(t, fiber.StatusBadRequest, s.do(http.MethodPost, "/api/colors", token, fiber.Map{"name": "Black", "hexCode": "black"}, &failure))
	assert.Contains(t, failure.Errors, "hexCode")

	var color models.Color
	require.Equal(t, fiber.StatusCreated, s.do(http.MethodPost, "/api/colors", token, fiber.Map{
		"name": "Black", "hexCode": "#000000", "images": []string{"a.jpg"},
	}, &color))
	assert.Equal(t, "a.jpg", color.PrimaryImage)
	assert.Equal(t, fiber.StatusConflict, s.do(http.MethodPost, "/api/colors", token, fiber.Map{"name": "Black", "hexCode": "#111111"}, nil))

	path := fmt.Sprintf("/api/colors/%d", color.ID)
	require.Equal(t, fiber.StatusOK, s.do(http.MethodPost, path+"/images", token, fiber.Map{"imageUrl": "b.jpg"}, &color))
	assert.Equal(t, models.StringList{"a.jpg", "b.jpg"}, color.Images)

	require.Equal(t, fiber.StatusOK, s.do(http.MethodPut, path+"/primary-image", token, fiber.Map{"imageUrl": "b.jpg"}, &color))
	assert.Equal(t, "b.jpg", color.PrimaryImage)
	assert.Equal(t, fiber.StatusNotFound, s.do(http.MethodPut, path+"/primary-image", token, fiber.Map{"imageUrl": "zzz.jpg"}, nil))

	require.Equal(t, fiber.StatusOK, s.do(http.MethodDelete, path+"/images", token, fiber.Map{"imageUrl": "b.jpg"}, &color))
	assert.Equal(t, "a.jpg", color.PrimaryImage)

	require.Equal(t, fiber.StatusOK, s.do(http.MethodPost, path+"/tags", token, fiber.Map{"tag": "dark"}, &color))
	assert.Equal(t, models.StringList{"dark"}, color.Tags)

	require.Equal(t, fiber.StatusOK, s.do(http.MethodDelete, path, token, nil, nil))
	assert.Equal(t, fiber.StatusNotFound, s.do(http.MethodGet, path, "", nil, nil))
}

func TestVariantsAndStock(t *testing.T) {
	s := setupApp(t)
	token := s.bootstrap()

	product := s.createProduct(token, fiber.Map{"name": "Bondi 8", "brand": "HOKA", "price": 6490, "status": "published"})
	var color models.Color
	require.Equal(t, fiber.StatusCreated, s.do(http.MethodPost, "/api/colors", token, fiber.Map{"name": "Black", "hexCode": "#000000"}, &color))
	var size models.Size
	require.Equal(t, fiber.StatusCreated, s.do(http.MethodPost, "/api/sizes", token, fiber.Map{"name": "42", "category": "shoe"}, &size))

	variantsPath := fmt.Sprintf("/api/products/%d/variants", product.ID)
	var variant models.ProductVariant
	require.Equal(t, fiber.StatusCreated, s.do(http.MethodPost, variantsPath, token, fiber.Map{
		"colorId": color.ID, "sizeId": size.ID, "stock": 3,
	}, &variant))
	assert.Equal(t, 3, variant.Stock)

	assert.Equal(t, fiber.StatusConflict, s.do(http.MethodPost, variantsPath, token, fiber.Map{
		"colorId": color.ID, "sizeId": size.ID, "stock": 1,
	}, nil))
	assert.Equal(t, fiber.StatusNotFound, s.do(http.MethodPost, variantsPath, token, fiber.Map{
		"colorId": 999, "sizeId": size.ID,
	}, nil))

	var public []models.ProductVariant
	require.Equal(t, fiber.StatusOK, s.do(http.MethodGet, variantsPath, "", nil, &public))
	require.Len(t, public, 1)
	require.NotNil(t, public[0].Color)
	assert.Equal(t, "Black", public[0].Color.Name)
	assert.Equal(t, "42", public[0].Size.Name)

	var colors []models.Color
	require.Equal(t, fiber.StatusOK, s.do(http.MethodGet, fmt.Sprintf("/api/colors/product/%d", product.ID), "", nil, &colors))
	require.Len(t, colors, 1)

	stockPath := fmt.Sprintf("%s/%d/stock", variantsPath, variant.ID)
	assert.Equal(t, fiber.StatusConflict, s.do(http.MethodPatch, stockPath, token, fiber.Map{"delta": -4}, nil))
	require.Equal(t, fiber.StatusOK, s.do(http.MethodPatch, stockPath, token, fiber.Map{"delta": -3}, &variant))
	assert.Equal(t, 0, variant.Stock)
	assert.Equal(t, fiber.StatusBadRequest, s.do(http.MethodPatch, stockPath, token, fiber.Map{"delta": 0}, nil))

	require.Equal(t, fiber.StatusOK, s.do(http.MethodDelete, fmt.Sprintf("/api/products/%d", product.ID), token, nil, nil))
	var adminVariants []models.ProductVariant
	require.Equal(t, fiber.StatusOK, s.do(http.MethodGet, fmt.Sprintf("/api/products/admin/%d/variants", product.ID), token, nil, &adminVariants))
	require.Len(t, adminVariants, 1)
	assert.False(t, adminVariants[0].IsActive)
}

func TestSizeReorderReportsSkips(t *testing.T) {
	s := setupApp(t)
	token := s.bootstrap()

	create := func(name, category string) models.Size {
		var size models.Size
		require.Equal(t, fiber.StatusCreated, s.do(http.MethodPost, "/api/sizes", token, fiber.Map{"name": name, "category": category}, &size))
		return size
	}
	s42 := create("42", "shoe")
	s43 := create("43", "shoe")
	medium := create("M", "clothing")
	assert.Equal(t, 1, s42.SortOrder)
	assert.Equal(t, 2, s43.SortOrder)

	var result services.ReorderResult
	require.Equal(t, fiber.StatusOK, s.do(http.MethodPost, "/api/sizes/reorder/shoe", token, []fiber.Map{
		{"id": s42.ID, "sortOrder": 5},
		{"id": medium.ID, "sortOrder": 9},
		{"id": 999, "sortOrder": 1},
	}, &result))
	assert.Equal(t, []uint64{s42.ID}, result.Updated)
	assert.Equal(t, []services.ReorderSkip{
		{ID: medium.ID, Reason: services.SkipCategoryMismatch},
		{ID: 999, Reason: services.SkipNotFound},
	}, result.Skipped)

	var stored models.Size
	require.Equal(t, fiber.StatusOK, s.do(http.MethodGet, fmt.Sprintf("/api/sizes/%d", medium.ID), "", nil, &stored))
	assert.Equal(t, medium.SortOrder, stored.SortOrder)
	assert.Equal(t, models.SizeCategoryClothing, stored.Category)

	var shoes []models.Size
	require.Equal(t, fiber.StatusOK, s.do(http.MethodGet, "/api/sizes?category=shoe", "", nil, &shoes))
	require.Len(t, shoes, 2)
	assert.Equal(t, "43", shoes[0].Name)

	assert.Equal(t, fiber.StatusBadRequest, s.do(http.MethodPost, "/api/sizes/reorder/hats", token, []fiber.Map{}, nil))
	assert.Equal(t, fiber.StatusBadRequest, s.do(http.MethodGet, "/api/sizes?category=hats", "", nil, nil))
}

func TestCustomerAuth(t *testing.T) {
	s := setupApp(t)
	root := s.bootstrap()

	var registered services.CustomerAuth
	require.Equal(t, fiber.StatusCreated, s.do(http.MethodPost, "/api/auth/register", "", fiber.Map{
		"firstName": "Ada", "lastName": "Lovelace", "email": "Ada@Example.com", "password": "secret1",
	}, &registered))
	assert.NotEmpty(t, registered.AccessToken)
	assert.Equal(t, "ada@example.com", registered.User.Email)

	assert.Equal(t, fiber.StatusConflict, s.do(http.MethodPost, "/api/auth/register", "", fiber.Map{
		"firstName": "Ada", "lastName": "L", "email": "ada@example.com", "password": "secret1",
	}, nil))
	assert.Equal(t, fiber.StatusUnauthorized, s.do(http.MethodPost, "/api/auth/login", "", fiber.Map{"email": "ada@example.com", "password": "nope"}, nil))

	var login services.CustomerAuth
	require.Equal(t, fiber.StatusOK, s.do(http.MethodPost, "/api/auth/login", "", fiber.Map{"email": "ada@example.com", "password": "secret1"}, &login))

	var me map[string]interface{}
	require.Equal(t, fiber.StatusOK, s.do(http.MethodGet, "/api/auth/me", login.AccessToken, nil, &me))
	assert.Equal(t, "ada@example.com", me["email"])
	assert.NotContains(t, me, "password")

	assert.Equal(t, int64(3600), login.ExpiresIn)

	var updated models.Customer
	require.Equal(t, fiber.StatusOK, s.do(http.MethodPut, "/api/auth/me", login.AccessToken, fiber.Map{
		"phone": "+44 20 7946 0000", "city": "London",
	}, &updated))
	assert.Equal(t, "London", updated.City)
	assert.Equal(t, "Lovelace", updated.LastName)
	assert.Equal(t, fiber.StatusBadRequest, s.do(http.MethodPut, "/api/auth/me", login.AccessToken, fiber.Map{"firstName": ""}, nil))
	assert.Equal(t, fiber.StatusUnauthorized, s.do(http.MethodPut, "/api/auth/me", root, fiber.Map{"city": "Paris"}, nil))

	// The password survives a profile update.
	require.Equal(t, fiber.StatusOK, s.do(http.MethodPost, "/api/auth/login", "", fiber.Map{"email": "ada@example.com", "password": "secret1"}, nil))

	var customers []models.Customer
	require.Equal(t, fiber.StatusOK, s.do(http.MethodGet, "/api/customers", root, nil, &customers))
	assert.Len(t, customers, 1)
	assert.Equal(t, "London", customers[0].City)
}

func (s *testServer) registerCustomer(first, email string) services.CustomerAuth {
	s.t.Helper()
	var auth services.CustomerAuth
	require.Equal(s.t, fiber.StatusCreated, s.do(http.MethodPost, "/api/auth/register", "", fiber.Map{
		"firstName": first, "lastName": "Test", "email": email, "password": "secret1",
	}, &auth))
	return auth
}

func TestOrders(t *testing.T) {
	s := setupApp(t)
	root := s.bootstrap()

	product := s.createProduct(root, fiber.Map{"name": "Bondi 8", "brand": "HOKA", "price": 6490})
	var color models.Color
	require.Equal(t, fiber.StatusCreated, s.do(http.MethodPost, "/api/colors", root, fiber.Map{"name": "Black", "hexCode": "#000000"}, &color))
	var size models.Size
	require.Equal(t, fiber.StatusCreated, s.do(http.MethodPost, "/api/sizes", root, fiber.Map{"name": "42", "category": "shoe"}, &size))
	var variant models.ProductVariant
	require.Equal(t, fiber.StatusCreated, s.do(http.MethodPost, fmt.Sprintf("/api/products/%d/variants", product.ID), root, fiber.Map{
		"colorId": color.ID, "sizeId": size.ID, "stock": 10,
	}, &variant))

	ada := s.registerCustomer("Ada", "ada@example.com")
	alan := s.registerCustomer("Alan", "alan@example.com")

	now := time.Now().UTC()
	for _, o := range []models.Order{
		{ID: 1, CustomerID: ada.User.ID, TotalAmount: 6490, PaymentMethod: "card", CreatedAt: now.Add(-2 * time.Hour),
			Items: []models.OrderItem{{ID: 1, ProductVariantID: variant.ID, Quantity: 1, UnitPrice: 6490, TotalPrice: 6490}}},
		{ID: 2, CustomerID: alan.User.ID, TotalAmount: 12980, Status: models.OrderShipped, CreatedAt: now.Add(-time.Hour),
			Items: []models.OrderItem{{ID: 2, ProductVariantID: variant.ID, Quantity: 2, UnitPrice: 6490, TotalPrice: 12980}}},
		{ID: 3, CustomerID: ada.User.ID, TotalAmount: 6490, CreatedAt: now,
			Items: []models.OrderItem{{ID: 3, ProductVariantID: variant.ID, Quantity: 1, UnitPrice: 6490, TotalPrice: 6490}}},
	} {
		o := o
		require.NoError(t, s.db.Create(&o).Error)
	}

	assert.Equal(t, fiber.StatusUnauthorized, s.do(http.MethodGet, "/api/orders", "", nil, nil))
	assert.Equal(t, fiber.StatusUnauthorized, s.do(http.MethodGet, "/api/orders", ada.AccessToken, nil, nil))

	var editor adminAuth
	require.Equal(t, fiber.StatusCreated, s.do(http.MethodPost, "/api/admin/register", root, fiber.Map{
		"username": "editor", "email": "editor@example.com", "password": "secret1", "fullName": "Editor", "role": "content_manager",
	}, &editor))
	var login adminAuth
	require.Equal(t, fiber.StatusOK, s.do(http.MethodPost, "/api/admin/login", "", fiber.Map{"username": "editor", "password": "secret1"}, &login))
	assert.Equal(t, fiber.StatusForbidden, s.do(http.MethodGet, "/api/orders", login.Token, nil, nil))

	var all []models.Order
	require.Equal(t, fiber.StatusOK, s.do(http.MethodGet, "/api/orders", root, nil, &all))
	require.Len(t, all, 3)
	assert.Equal(t, uint64(3), all[0].ID)
	assert.Equal(t, uint64(1), all[2].ID)

	var shipped []models.Order
	require.Equal(t, fiber.StatusOK, s.do(http.MethodGet, "/api/orders?status=shipped", root, nil, &shipped))
	require.Len(t, shipped, 1)
	assert.Equal(t, alan.User.ID, shipped[0].CustomerID)
	assert.Equal(t, fiber.StatusBadRequest, s.do(http.MethodGet, "/api/orders?status=lost", root, nil, nil))

	var byCustomer []models.Order
	require.Equal(t, fiber.StatusOK, s.do(http.MethodGet, fmt.Sprintf("/api/orders?customerId=%d", alan.User.ID), root, nil, &byCustomer))
	require.Len(t, byCustomer, 1)
	assert.Equal(t, uint64(2), byCustomer[0].ID)

	var order models.Order
	require.Equal(t, fiber.StatusOK, s.do(http.MethodGet, "/api/orders/2", root, nil, &order))
	require.NotNil(t, order.Customer)
	assert.Equal(t, "alan@example.com", order.Customer.Email)
	require.Len(t, order.Items, 1)
	require.NotNil(t, order.Items[0].Variant)
	require.NotNil(t, order.Items[0].Variant.Color)
	assert.Equal(t, "Black", order.Items[0].Variant.Color.Name)
	assert.Equal(t, fiber.StatusNotFound, s.do(http.MethodGet, "/api/orders/99", root, nil, nil))

	var mine []models.Order
	require.Equal(t, fiber.StatusOK, s.do(http.MethodGet, "/api/auth/me/orders", ada.AccessToken, nil, &mine))
	require.Len(t, mine, 2)
	assert.Equal(t, uint64(3), mine[0].ID)
	assert.Equal(t, uint64(1), mine[1].ID)
	for _, o := range mine {
		assert.Equal(t, ada.User.ID, o.CustomerID)
	}
	assert.Equal(t, fiber.StatusUnauthorized, s.do(http.MethodGet, "/api/auth/me/orders", root, nil, nil))
}

func TestExportProducts(t *testing.T) {
	s := setupApp(t)
	token := s.bootstrap()
	s.createProduct(token, fiber.Map{"name": "Bondi 8", "brand": "HOKA", "price": 6490})

	req := httptest.NewRequest(http.MethodGet, "/api/products/admin/export", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, export.ContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "products.xlsx")

	f, err := excelize.OpenReader(resp.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.ProductsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Bondi 8", rows[1][1])
}

func TestHealth(t *testing.T) {
	s := setupApp(t)

	var health map[string]interface{}
	require.Equal(t, fiber.StatusOK, s.do(http.MethodGet, "/api/health", "", nil, &health))
	assert.Equal(t, "healthy", health["status"])
}
