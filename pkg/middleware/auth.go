package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/richxcame/logistics-pricing/pkg/common"
)

// Roles recognised by the pricing API.
const (
	RoleAdmin   = "admin"
	RoleDriver  = "driver"
	RoleRider   = "rider"
	RoleService = "service"
)

const (
	userIDKey   = "user_id"
	userRoleKey = "user_role"
)

// Claims represents JWT claims
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates HS256 bearer tokens signed with secret. When
// issuer is set the iss claim must match it.
func AuthMiddleware(secret, issuer string) gin.HandlerFunc {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	parser := jwt.NewParser(opts...)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			common.ErrorResponse(c, http.StatusUnauthorized, "authorization required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			common.ErrorResponse(c, http.StatusUnauthorized, "invalid authorization header format")
			c.Abort()
			return
		}

		claims := &Claims{}
		token, err := parser.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if secret == "" {
				return nil, errors.New("jwt secret is not configured")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			common.ErrorResponse(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(userRoleKey, claims.Role)

		c.Next()
	}
}

// RequireRole middleware checks if user has required role
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := GetUserRole(c)
		if err != nil {
			common.ErrorResponse(c, http.StatusUnauthorized, "user role not found")
			c.Abort()
			return
		}

		for _, required := range roles {
			if role == required {
				c.Next()
				return
			}
		}

		common.ErrorResponse(c, http.StatusForbidden, "insufficient permissions")
		c.Abort()
	}
}

// RequireAdmin restricts configuration writes to administrators.
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(RoleAdmin)
}

// GetUserID extracts user ID from context
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	value, ok := c.Get(userIDKey)
	if !ok {
		return uuid.Nil, common.ErrUnauthorized
	}
	id, ok := value.(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("unexpected user id type %T", value)
	}
	return id, nil
}

// GetUserRole extracts user role from context
func GetUserRole(c *gin.Context) (string, error) {
	value, ok := c.Get(userRoleKey)
	if !ok {
		return "", common.ErrUnauthorized
	}
	role, _ := value.(string)
	return role, nil
}

// SetUser stores an authenticated identity on c; used by trusted callers and tests.
func SetUser(c *gin.Context, userID uuid.UUID, role string) {
	c.Set(userIDKey, userID)
	c.Set(userRoleKey, role)
}
