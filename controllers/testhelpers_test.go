package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/handyhub-dev/handyhub-api/models"
	"github.com/handyhub-dev/handyhub-api/store"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// mockAuthMiddleware stands in for the token validation and user resolution
// chain, injecting the given user directly into the request context.
func mockAuthMiddleware(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", user.ID)
		c.Set("auth_user", user)
		c.Next()
	}
}

// setupTestStore installs a fresh in-memory store seeded with a customer and
// an approved, available technician, and restores the previous store when the
// test ends.
func setupTestStore(t *testing.T) store.Store {
	t.Helper()
	prev := store.Get()
	s := store.NewMemory()
	store.Set(s)
	t.Cleanup(func() { store.Set(prev) })

	ctx := context.Background()
	require.NoError(t, s.Users().Create(ctx, &models.User{
		ID:    "customer-1",
		Email: "customer@example.com",
		Name:  "Customer One",
		Role:  models.RoleCustomer,
		Roles: []string{models.RoleCustomer},
	}))
	require.NoError(t, s.Users().Create(ctx, &models.User{
		ID:               "tech-1",
		Email:            "tech@example.com",
		Name:             "Tech One",
		Role:             models.RoleTechnician,
		Roles:            []string{models.RoleTechnician},
		TechnicianStatus: models.TechnicianStatusApproved,
	}))
	require.NoError(t, s.Technicians().Put(ctx, &models.Technician{
		ID:          "tech-1",
		Category:    "plumbing",
		City:        "austin",
		Price:       80,
		IsAvailable: true,
	}))
	return s
}

func testCustomer() *models.User {
	return &models.User{
		ID:    "customer-1",
		Email: "customer@example.com",
		Name:  "Customer One",
		Role:  models.RoleCustomer,
		Roles: []string{models.RoleCustomer},
	}
}

func testTechnician() *models.User {
	return &models.User{
		ID:    "tech-1",
		Email: "tech@example.com",
		Name:  "Tech One",
		Role:  models.RoleTechnician,
		Roles: []string{models.RoleTechnician},
	}
}

func testAdmin() *models.User {
	return &models.User{
		ID:    "admin-1",
		Email: "admin@example.com",
		Name:  "Admin",
		Role:  models.RoleAdmin,
		Roles: []string{models.RoleAdmin},
	}
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
