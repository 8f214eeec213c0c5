package utils

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	ContextKeyUserID  = "user_id"
	ContextKeyRole    = "user_role"
	ContextKeyHotelID = "hotel_id"
)

// AuthMiddleware requires a valid bearer access token and stores its claims in the context.
func AuthMiddleware(tm *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			AbortError(c, http.StatusUnauthorized, "Authorization header required")
			return
		}

		tokenString, err := bearerToken(authHeader)
		if err != nil {
			AbortError(c, http.StatusUnauthorized, err.Error())
			return
		}

		claims, err := tm.ParseAccess(tokenString)
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				AbortError(c, http.StatusUnauthorized, "Access token has expired")
				return
			}
			AbortError(c, http.StatusUnauthorized, "Invalid access token")
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyRole, claims.Role)
		c.Set(ContextKeyHotelID, claims.HotelID)

		c.Next()
	}
}

func bearerToken(authHeader string) (string, error) {
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", errors.New("invalid token format")
	}
	tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if tokenString == "" {
		return "", errors.New("token is empty")
	}
	return tokenString, nil
}

// RequireRole lets the request through only for the listed roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetRole(c)
		if !ok {
			AbortError(c, http.StatusUnauthorized, "User not authenticated")
			return
		}
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		AbortError(c, http.StatusForbidden, "Insufficient permissions")
	}
}

// GetClaims rebuilds the token claims stored by AuthMiddleware.
func GetClaims(c *gin.Context) (Claims, bool) {
	userID, ok := c.Get(ContextKeyUserID)
	if !ok {
		return Claims{}, false
	}
	id, ok := userID.(uint)
	if !ok {
		return Claims{}, false
	}
	role, _ := GetRole(c)
	hotelID, _ := c.Get(ContextKeyHotelID)
	hid, _ := hotelID.(uint)
	return Claims{UserID: id, Role: role, HotelID: hid}, true
}

func GetRole(c *gin.Context) (string, bool) {
	role, exists := c.Get(ContextKeyRole)
	if !exists {
		return "", false
	}
	r, ok := role.(string)
	return r, ok
}
