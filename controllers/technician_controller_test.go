package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handyhub-dev/handyhub-api/models"
)

func TestApplyTechnicianEndpoint(t *testing.T) {
	s := setupTestStore(t)

	router := setupTestRouter()
	router.POST("/api/technician/apply", mockAuthMiddleware(testCustomer()), ApplyTechnician)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/api/technician/apply", map[string]any{
		"category":   "carpentry",
		"price":      65.0,
		"experience": "5 years",
		"bio":        "Cabinets and decks",
		"city":       "Dallas",
	}))

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, "Technician application submitted", resp["message"])
	assert.Equal(t, models.TechnicianStatusPending, resp["status"])

	ctx := context.Background()
	user, err := s.Users().Get(ctx, "customer-1")
	require.NoError(t, err)
	assert.Equal(t, models.TechnicianStatusPending, user.TechnicianStatus)
	assert.True(t, user.HasRole(models.RoleTechnician))
	assert.True(t, user.HasRole(models.RoleCustomer))

	tech, err := s.Technicians().Get(ctx, "customer-1")
	require.NoError(t, err)
	assert.Equal(t, "carpentry", tech.Category)
	assert.Equal(t, "dallas", tech.City) // normalized
	assert.True(t, tech.IsAvailable)
}

func TestUpdateAvailabilityEndpoint(t *testing.T) {
	toggle := func(t *testing.T, body map[string]any) *httptest.ResponseRecorder {
		t.Helper()
		router := setupTestRouter()
		router.PUT("/api/technician/availability", mockAuthMiddleware(testTechnician()), UpdateAvailability)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, jsonRequest(t, http.MethodPut, "/api/technician/availability", body))
		return w
	}

	t.Run("turns availability off and on", func(t *testing.T) {
		s := setupTestStore(t)

		w := toggle(t, map[string]any{"isAvailable": false})
		assert.Equal(t, http.StatusOK, w.Code)

		tech, err := s.Technicians().Get(context.Background(), "tech-1")
		require.NoError(t, err)
		assert.False(t, tech.IsAvailable)

		w = toggle(t, map[string]any{"isAvailable": true})
		assert.Equal(t, http.StatusOK, w.Code)

		tech, err = s.Technicians().Get(context.Background(), "tech-1")
		require.NoError(t, err)
		assert.True(t, tech.IsAvailable)
	})

	t.Run("requires the flag", func(t *testing.T) {
		setupTestStore(t)

		w := toggle(t, map[string]any{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "isAvailable is required", decodeBody(t, w)["message"])
	})
}

func TestGetTechnicianByIDEndpoint(t *testing.T) {
	setupTestStore(t)

	router := setupTestRouter()
	router.GET("/api/technician/:id", GetTechnicianByID)

	t.Run("joined public listing", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, err := http.NewRequest(http.MethodGet, "/api/technician/tech-1", nil)
		require.NoError(t, err)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var listing models.TechnicianListing
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
		assert.Equal(t, "tech-1", listing.TechnicianID)
		assert.Equal(t, "Tech One", listing.Name)
		assert.Equal(t, "plumbing", listing.Category)
	})

	t.Run("unknown technician", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, err := http.NewRequest(http.MethodGet, "/api/technician/nobody", nil)
		require.NoError(t, err)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestTechnicianCatalogEndpoints(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Technicians().Put(ctx, &models.Technician{ID: "tech-2", Category: "electrical", City: "boston"}))
	require.NoError(t, s.Technicians().Put(ctx, &models.Technician{ID: "tech-3", Category: "plumbing", City: "austin"}))

	router := setupTestRouter()
	router.GET("/api/technician/cities", GetTechnicianCities)
	router.GET("/api/technician/categories", GetTechnicianCategories)

	t.Run("distinct sorted cities", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, err := http.NewRequest(http.MethodGet, "/api/technician/cities", nil)
		require.NoError(t, err)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var cities []string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cities))
		assert.Equal(t, []string{"austin", "boston"}, cities)
	})

	t.Run("distinct sorted categories", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, err := http.NewRequest(http.MethodGet, "/api/technician/categories", nil)
		require.NoError(t, err)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var categories []string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &categories))
		assert.Equal(t, []string{"electrical", "plumbing"}, categories)
	})
}
