package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"

	"github.com/handyhub-dev/handyhub-api/config"
	"github.com/handyhub-dev/handyhub-api/models"
	"github.com/handyhub-dev/handyhub-api/store"
)

// CustomClaims contains custom data we want from the token.
type CustomClaims struct {
	Scope string `json:"scope"`
}

// Validate does nothing for this example, but we need
// it to satisfy validator.CustomClaims interface.
func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// HasScope checks whether our claims have a specific scope.
func (c CustomClaims) HasScope(expectedScope string) bool {
	result := strings.Split(c.Scope, " ")
	for i := range result {
		if result[i] == expectedScope {
			return true
		}
	}

	return false
}

// EnsureValidToken is a middleware that will check the validity of our JWT.
func EnsureValidToken(cfg *config.Config) gin.HandlerFunc {
	issuerURL, err := url.Parse("https://" + cfg.Auth0Domain + "/")
	if err != nil {
		log.Fatalf("Failed to parse the issuer url: %v", err)
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{cfg.Auth0Audience},
		validator.WithCustomClaims(
			func() validator.CustomClaims {
				return &CustomClaims{}
			},
		),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		log.Fatalf("Failed to set up the jwt validator")
	}

	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		log.Printf("Encountered error while validating JWT: %v", err)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		if _, writeErr := w.Write([]byte(`{"message":"Unauthorized"}`)); writeErr != nil {
			log.Printf("Failed to write error response: %v", writeErr)
		}
	}

	middleware := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(errorHandler),
	)

	return func(c *gin.Context) {
		var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
			// Store the validated claims in Gin context
			token := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)

			// Extract user_id from sub claim
			userID := token.RegisteredClaims.Subject
			c.Set("user_id", userID)
			c.Set("validated_claims", token)

			c.Next()
		}

		// Use the JWT middleware to check the token
		middleware.CheckJWT(handler).ServeHTTP(c.Writer, c.Request)
	}
}

// ResolveUser loads the caller's user document and attaches it to the
// context. A missing profile does not abort the request: the registration
// and upload flows run before the profile exists, so those callers get a
// bare customer identity instead.
func ResolveUser(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, err := GetUserID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			c.Abort()
			return
		}

		user, err := store.Get().Users().Get(c.Request.Context(), uid)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to resolve user"})
				c.Abort()
				return
			}
			log.Printf("profile missing for %s, treating as new user", uid)
			user = &models.User{
				ID:               uid,
				Role:             models.RoleCustomer,
				Roles:            []string{models.RoleCustomer},
				TechnicianStatus: models.TechnicianStatusNone,
			}
		}

		// The admin account is managed by the bootstrap process; the role is
		// forced from configuration in case the document predates it.
		if cfg.AdminEmail != "" && user.Email == cfg.AdminEmail {
			user.Role = models.RoleAdmin
		}

		c.Set("auth_user", user)
		c.Next()
	}
}

// GetAuthUser extracts the resolved user from the Gin context
func GetAuthUser(c *gin.Context) (*models.User, error) {
	value, exists := c.Get("auth_user")
	if !exists {
		return nil, &AuthError{Code: "MISSING_USER", Message: "User not found in context"}
	}

	user, ok := value.(*models.User)
	if !ok {
		return nil, &AuthError{Code: "INVALID_USER", Message: "User is not in the expected format"}
	}

	return user, nil
}

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) (string, error) {
	userID, exists := c.Get("user_id")
	if !exists {
		return "", &AuthError{Code: "MISSING_USER_ID", Message: "User ID not found in context"}
	}

	userIDStr, ok := userID.(string)
	if !ok {
		return "", &AuthError{Code: "INVALID_USER_ID", Message: "User ID is not a string"}
	}

	return userIDStr, nil
}

// GetAccessToken extracts the raw bearer token from the Authorization header
func GetAccessToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return "", &AuthError{Code: "MISSING_TOKEN", Message: "Bearer token not found"}
	}
	return strings.TrimPrefix(authHeader, "Bearer "), nil
}

// GetClaims extracts the validated JWT claims from the Gin context
func GetClaims(c *gin.Context) (*validator.ValidatedClaims, error) {
	claims, exists := c.Get("validated_claims")
	if !exists {
		return nil, &AuthError{Code: "MISSING_CLAIMS", Message: "Claims not found in context"}
	}

	validatedClaims, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return nil, &AuthError{Code: "INVALID_CLAIMS", Message: "Claims are not in the expected format"}
	}

	return validatedClaims, nil
}

// RequireAdmin allows only the admin user through
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := GetAuthUser(c)
		if err != nil || !user.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"message": "Access denied: Admin only"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireCustomer allows only users holding the customer role
func RequireCustomer() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := GetAuthUser(c)
		if err != nil || !user.HasRole(models.RoleCustomer) {
			c.JSON(http.StatusForbidden, gin.H{"message": "Access denied: Customer only"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireApprovedTechnician allows only technicians whose application has
// been approved
func RequireApprovedTechnician() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := GetAuthUser(c)
		if err != nil || !user.HasRole(models.RoleTechnician) ||
			user.TechnicianStatus != models.TechnicianStatusApproved {
			c.JSON(http.StatusForbidden, gin.H{"message": "Access denied: Technician not approved"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
