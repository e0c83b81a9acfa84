package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handyhub-dev/handyhub-api/config"
	"github.com/handyhub-dev/handyhub-api/models"
	"github.com/handyhub-dev/handyhub-api/store"
)

// stubUserInfo serves the identity provider's /userinfo endpoint with fixed
// user details and installs its URL as the configured domain.
func stubUserInfo(t *testing.T, email, name string) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/userinfo", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sub":"auth0|newuser","email":"` + email + `","name":"` + name + `"}`))
	}))
	t.Cleanup(server.Close)

	prev := config.GetConfig()
	config.SetConfig(&config.Config{
		Auth0Domain:   server.URL,
		Auth0Audience: "https://api.test.com",
		AdminEmail:    "admin@handyhub.dev",
	})
	t.Cleanup(func() { config.SetConfig(prev) })
}

// tokenOnlyMiddleware simulates a validated token for a subject that has no
// profile yet: registration runs before ResolveUser would find anything.
func tokenOnlyMiddleware(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", uid)
		c.Next()
	}
}

func register(t *testing.T, path string, handler gin.HandlerFunc, uid string, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	router := setupTestRouter()
	router.POST(path, tokenOnlyMiddleware(uid), handler)

	req := jsonRequest(t, http.MethodPost, path, body)
	req.Header.Set("Authorization", "Bearer mock-token")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegisterUserEndpoint(t *testing.T) {
	t.Run("creates a customer profile", func(t *testing.T) {
		s := setupTestStore(t)
		stubUserInfo(t, "new@example.com", "New User")

		w := register(t, "/api/auth/register", RegisterUser, "auth0|newuser", map[string]any{})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "User registered", decodeBody(t, w)["message"])

		user, err := s.Users().Get(context.Background(), "auth0|newuser")
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", user.Email)
		assert.Equal(t, "New User", user.Name) // name fell back to the identity provider
		assert.Equal(t, models.RoleCustomer, user.Role)
		assert.Equal(t, models.TechnicianStatusNone, user.TechnicianStatus)
	})

	t.Run("client-provided name wins", func(t *testing.T) {
		s := setupTestStore(t)
		stubUserInfo(t, "new@example.com", "New User")

		w := register(t, "/api/auth/register", RegisterUser, "auth0|newuser", map[string]any{"name": "Chosen Name"})
		assert.Equal(t, http.StatusOK, w.Code)

		user, err := s.Users().Get(context.Background(), "auth0|newuser")
		require.NoError(t, err)
		assert.Equal(t, "Chosen Name", user.Name)
	})

	t.Run("existing profile is returned, not recreated", func(t *testing.T) {
		setupTestStore(t)
		stubUserInfo(t, "customer@example.com", "Customer One")

		w := register(t, "/api/auth/register", RegisterUser, "customer-1", map[string]any{})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Profile already exists", decodeBody(t, w)["message"])
	})

	t.Run("missing token is rejected before any write", func(t *testing.T) {
		s := setupTestStore(t)
		stubUserInfo(t, "new@example.com", "New User")

		router := setupTestRouter()
		router.POST("/api/auth/register", tokenOnlyMiddleware("auth0|newuser"), RegisterUser)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/api/auth/register", map[string]any{"name": "Bob"}))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "No token provided", decodeBody(t, w)["message"])

		_, err := s.Users().Get(context.Background(), "auth0|newuser")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("identity provider failure aborts registration", func(t *testing.T) {
		s := setupTestStore(t)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		}))
		t.Cleanup(server.Close)

		prev := config.GetConfig()
		config.SetConfig(&config.Config{Auth0Domain: server.URL, Auth0Audience: "https://api.test.com"})
		t.Cleanup(func() { config.SetConfig(prev) })

		w := register(t, "/api/auth/register", RegisterUser, "auth0|newuser", map[string]any{"name": "Bob"})
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Equal(t, "Failed to verify identity with the provider", decodeBody(t, w)["message"])

		_, err := s.Users().Get(context.Background(), "auth0|newuser")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("client name never becomes the email", func(t *testing.T) {
		s := setupTestStore(t)
		stubUserInfo(t, "", "Provider Name")

		w := register(t, "/api/auth/register", RegisterUser, "auth0|newuser", map[string]any{"name": "Bob"})
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Equal(t, "Identity provider did not supply an email", decodeBody(t, w)["message"])

		_, err := s.Users().Get(context.Background(), "auth0|newuser")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("admin email is refused", func(t *testing.T) {
		setupTestStore(t)
		stubUserInfo(t, "admin@handyhub.dev", "Impostor")

		w := register(t, "/api/auth/register", RegisterUser, "auth0|impostor", map[string]any{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Admin account is managed by the server bootstrap process", decodeBody(t, w)["message"])
	})
}

func TestRegisterTechnicianEndpoint(t *testing.T) {
	s := setupTestStore(t)
	stubUserInfo(t, "pro@example.com", "Pro User")

	w := register(t, "/api/auth/register/technician", RegisterTechnician, "auth0|pro", map[string]any{
		"name":       "Pro User",
		"category":   "roofing",
		"experience": "8 years",
		"price":      150.0,
		"city":       "Denver",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	ctx := context.Background()
	user, err := s.Users().Get(ctx, "auth0|pro")
	require.NoError(t, err)
	assert.Equal(t, models.RoleTechnician, user.Role)
	assert.Equal(t, models.TechnicianStatusPending, user.TechnicianStatus)

	tech, err := s.Technicians().Get(ctx, "auth0|pro")
	require.NoError(t, err)
	assert.Equal(t, "roofing", tech.Category)
	assert.Equal(t, "denver", tech.City) // normalized
	assert.True(t, tech.IsAvailable)

	// Not approved yet, so the technician must not be searchable
	approved, err := s.Users().ListByTechnicianStatus(ctx, models.TechnicianStatusApproved)
	require.NoError(t, err)
	for _, u := range approved {
		assert.NotEqual(t, "auth0|pro", u.ID)
	}
}
