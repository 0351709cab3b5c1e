package middleware

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const userIDKey = "user_id"

func parseUserID(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid token signing method")
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return 0, errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("invalid token claims")
	}
	raw, ok := claims[userIDKey].(float64)
	if !ok || raw <= 0 {
		return 0, errors.New("token missing user id")
	}
	return uint(raw), nil
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// RequireAuth rejects requests without a valid token.
func RequireAuth(c *gin.Context) {
	tokenString := bearerToken(c)
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
		c.Abort()
		return
	}
	userID, err := parseUserID(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		c.Abort()
		return
	}
	c.Set(userIDKey, userID)
	c.Next()
}

// OptionalAuth attributes the request to a user when a valid token is
// present and lets it through anonymously otherwise. Checkout allows
// unauthenticated orders, they just earn no bonus.
func OptionalAuth(c *gin.Context) {
	if tokenString := bearerToken(c); tokenString != "" {
		if userID, err := parseUserID(tokenString); err == nil {
			c.Set(userIDKey, userID)
		}
	}
	c.Next()
}

// UserID returns the authenticated user's id, or nil for anonymous requests.
func UserID(c *gin.Context) *uint {
	value, ok := c.Get(userIDKey)
	if !ok {
		return nil
	}
	id, ok := value.(uint)
	if !ok {
		return nil
	}
	return &id
}
