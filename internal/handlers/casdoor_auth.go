package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/ksys/admission-service/internal/models"
	"github.com/ksys/admission-service/internal/repositories"
	"github.com/ksys/admission-service/internal/services"
	"github.com/ksys/admission-service/internal/utils"
)

// TokenParser validates identity provider tokens. *casdoorsdk.Client satisfies it.
type TokenParser interface {
	ParseJwtToken(token string) (*casdoorsdk.Claims, error)
}

// CasdoorAuthMiddleware provides authentication using Casdoor SDK
type CasdoorAuthMiddleware struct {
	parser   TokenParser
	userRepo repositories.UserRepository
	admins   services.AdminService
	logger   utils.Logger
}

// NewCasdoorAuthMiddleware creates a new Casdoor authentication middleware
func NewCasdoorAuthMiddleware(parser TokenParser, userRepo repositories.UserRepository, admins services.AdminService, logger utils.Logger) *CasdoorAuthMiddleware {
	return &CasdoorAuthMiddleware{
		parser:   parser,
		userRepo: userRepo,
		admins:   admins,
		logger:   logger,
	}
}

// AuthMiddleware rejects requests without a valid bearer token
func (cam *CasdoorAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "authorization header missing")
			return
		}

		token, ok := bearerToken(authHeader)
		if !ok {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "invalid authorization header format")
			return
		}

		claims, err := cam.parser.ParseJwtToken(token)
		if err != nil {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", fmt.Sprintf("invalid token: %v", err))
			return
		}

		user, err := cam.extractUserFromClaims(c.Request.Context(), claims)
		if err != nil {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", fmt.Sprintf("failed to extract user info: %v", err))
			return
		}

		setUser(c, user)
		c.Next()
	}
}

// OptionalAuthMiddleware sets user info when a valid token is present
func (cam *CasdoorAuthMiddleware) OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Next()
			return
		}

		claims, err := cam.parser.ParseJwtToken(token)
		if err != nil {
			c.Next()
			return
		}

		if user, err := cam.extractUserFromClaims(c.Request.Context(), claims); err == nil {
			setUser(c, user)
		}

		c.Next()
	}
}

// RequireAdminMiddleware admits roster members only. Must run after AuthMiddleware.
func (cam *CasdoorAuthMiddleware) RequireAdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := GetUserIDFromContext(c)
		if err != nil {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "user not found in context")
			return
		}

		isAdmin, err := cam.admins.IsAdmin(c.Request.Context(), userID)
		if err != nil {
			utils.FromContext(c.Request.Context(), cam.logger).Error("Admin check failed", "error", err, "user_id", userID)
			abortJSON(c, http.StatusServiceUnavailable, "service_unavailable", "unable to verify admin role")
			return
		}
		if !isAdmin {
			abortJSON(c, http.StatusForbidden, "forbidden", "admin role required")
			return
		}

		c.Set("user_role", models.RoleAdmin)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	tokenParts := strings.Split(header, " ")
	if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" || tokenParts[1] == "" {
		return "", false
	}
	return tokenParts[1], true
}

func abortJSON(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":   code,
		"message": message,
	})
}

func setUser(c *gin.Context, user *models.User) {
	c.Set("user_id", user.ID)
	c.Set("user", user)
	c.Set("user_email", user.Email)
}

// extractUserFromClaims resolves the identity behind the token
func (cam *CasdoorAuthMiddleware) extractUserFromClaims(ctx context.Context, claims *casdoorsdk.Claims) (*models.User, error) {
	userID := claims.Id
	if userID == "" {
		return nil, fmt.Errorf("invalid user ID in token")
	}

	if cam.userRepo != nil {
		if user, err := cam.userRepo.GetByID(ctx, userID); err == nil {
			return user, nil
		}
	}

	return createUserFromClaims(claims), nil
}

func createUserFromClaims(claims *casdoorsdk.Claims) *models.User {
	return &models.User{
		ID:          claims.Id,
		Name:        claims.User.Name,
		DisplayName: claims.User.DisplayName,
		Email:       claims.User.Email,
		AvatarURL:   claims.User.Avatar,
		CreatedAt:   time.Now(),
	}
}

// GetUserFromContext extracts user from Gin context
func GetUserFromContext(c *gin.Context) (*models.User, error) {
	user, exists := c.Get("user")
	if !exists {
		return nil, fmt.Errorf("user not found in context")
	}

	userModel, ok := user.(*models.User)
	if !ok {
		return nil, fmt.Errorf("invalid user type in context")
	}

	return userModel, nil
}

// GetUserIDFromContext extracts user ID from Gin context
func GetUserIDFromContext(c *gin.Context) (string, error) {
	userID, exists := c.Get("user_id")
	if !exists {
		return "", fmt.Errorf("user ID not found in context")
	}

	id, ok := userID.(string)
	if !ok || id == "" {
		return "", fmt.Errorf("invalid user ID type in context")
	}

	return id, nil
}
