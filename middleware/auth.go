package middleware

import (
	"strings"

	"tmas-assistant-backend/internal/config"
	"tmas-assistant-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AdminClaims are the claims expected on staff tokens.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// RequireAdmin guards the admin surface with an HMAC-signed bearer token
// carrying role "admin". Student-facing endpoints instead pass the caller's
// upstream credential through in the request body; there is nothing to
// validate locally there beyond presence.
func RequireAdmin(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.JWTSecret == "" {
			utils.RespondWithUnauthorized(c, "Admin surface is not configured")
			c.Abort()
			return
		}

		authHeader := c.GetHeader("Authorization")
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == "" || tokenString == authHeader {
			utils.RespondWithUnauthorized(c, "Authentication token is required")
			c.Abort()
			return
		}

		claims := &AdminClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			utils.RespondWithUnauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}
		if claims.Role != "admin" {
			utils.RespondWithError(c, 403, "forbidden", "Admin role required", nil)
			c.Abort()
			return
		}

		c.Set("admin_subject", claims.Subject)
		c.Next()
	}
}
