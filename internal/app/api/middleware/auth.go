package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"

	"github.com/haventherapy/booking/pkg/response"
)

const (
	// ContextKeyClientID is where AuthMiddleware stores the authenticated
	// client id on gin.Context.
	ContextKeyClientID = "clientID"
	// ContextKeyRole mirrors the token's role claim ("client" or "admin").
	ContextKeyRole = "role"
)

// Claims is the bearer-token payload issued by the account service.
type Claims struct {
	ClientID string `json:"client_id"`
	Role     string `json:"role"`
	jwt.StandardClaims
}

// AuthMiddleware validates the Authorization bearer token (HS256) and puts
// client_id and role on the context. Requests without a valid token are
// rejected before reaching handlers.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw := strings.TrimPrefix(header, "Bearer ")
		if raw == "" || raw == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing bearer token"))
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid || claims.ClientID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid token"))
			return
		}

		c.Set(ContextKeyClientID, claims.ClientID)
		c.Set(ContextKeyRole, claims.Role)
		c.Next()
	}
}

// RequireAdmin gates admin routes; it runs after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextKeyRole) != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, response.ErrorT[any](response.APIResponseCodeError, "admin role required"))
			return
		}
		c.Next()
	}
}

// ClientID returns the authenticated client id, empty when unauthenticated.
func ClientID(c *gin.Context) string {
	return c.GetString(ContextKeyClientID)
}
