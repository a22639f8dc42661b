package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/app"
	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/handlers"
	"storefront/internal/repositories"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *recordingPublisher) Publish(routingKey string, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, routingKey)
	return nil
}

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}

func call(t *testing.T, a *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestNew_CacheAndEvents(t *testing.T) {
	db, err := repositories.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, repositories.AutoMigrate(db))

	mr := miniredis.RunT(t)
	catalogCache := cache.New(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	events := &recordingPublisher{}

	a := app.New(app.Deps{
		DB:     db,
		Config: &config.Config{JWTSecret: "test_jwt_secret", JWTTTL: time.Hour},
		Cache:  catalogCache,
		Events: events,
	})

	resp := call(t, a, http.MethodPost, "/api/admin/register", "", fiber.Map{
		"username": "root", "email": "root@example.com", "password": "secret1", "fullName": "Root",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var auth struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&auth))

	resp = call(t, a, http.MethodPost, "/api/products", auth.Token, fiber.Map{
		"name": "Bondi 8", "brand": "HOKA", "price": 6490, "status": "published",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = call(t, a, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, mr.Exists("catalog:products"))

	resp = call(t, a, http.MethodPut, "/api/products/1/unpublish", auth.Token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.False(t, mr.Exists("catalog:products"))

	resp = call(t, a, http.MethodGet, "/api/products", "", nil)
	var products []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
	assert.Empty(t, products)

	assert.Equal(t, []string{"product.created", "product.unpublished"}, events.published())

	resp = call(t, a, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestNew_HealthReportsFailingProbe(t *testing.T) {
	db, err := repositories.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, repositories.AutoMigrate(db))

	a := app.New(app.Deps{
		DB:     db,
		Config: &config.Config{JWTSecret: "test_jwt_secret", JWTTTL: time.Hour},
		Probes: map[string]handlers.Probe{
			"redis": func(context.Context) error { return errors.New("connection refused") },
		},
	})

	resp := call(t, a, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	var health struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "degraded", health.Status)
	assert.Equal(t, "ok", health.Checks["database"])
	assert.Equal(t, "connection refused", health.Checks["redis"])
}
