package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"bidsmart-backend/internal/config"
	"bidsmart-backend/internal/models"
)

const UserIDKey = "user_id"

func unauthorized(c *gin.Context, err, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: err, Message: msg})
}

// bearerToken pulls the token out of "Bearer <token>".
func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// AuthMiddleware validates the Supabase access token and stores the sub
// claim as the user id.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "missing authorization header", "")
			return
		}

		tokenString, ok := bearerToken(authHeader)
		if !ok {
			unauthorized(c, "invalid authorization header format", "")
			return
		}

		// Some clients URL-encode the token
		if decoded, err := url.QueryUnescape(tokenString); err == nil {
			tokenString = decoded
		}

		if strings.Count(tokenString, ".") != 2 {
			unauthorized(c, "invalid token format", "JWT token must have 3 parts separated by dots")
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			if cfg.SupabaseJWTSecret == "" {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.SupabaseJWTSecret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil {
			var msg string
			switch {
			case strings.Contains(err.Error(), "signature is invalid"):
				msg = "token signature is invalid - check JWT secret"
			case strings.Contains(err.Error(), "token is expired"):
				msg = "token has expired"
			case strings.Contains(err.Error(), "could not JSON decode"):
				msg = "token is malformed - ensure you're using a valid Supabase JWT token"
			default:
				msg = err.Error()
			}
			unauthorized(c, "invalid token", msg)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !token.Valid {
			unauthorized(c, "invalid token claims", "")
			return
		}

		sub, ok := claims["sub"].(string)
		if !ok {
			unauthorized(c, "missing user id in token", "")
			return
		}
		if _, err := uuid.Parse(sub); err != nil {
			unauthorized(c, "invalid user id in token", "sub claim must be a uuid")
			return
		}

		c.Set(UserIDKey, sub)
		c.Next()
	}
}

// UserID returns the authenticated user set by AuthMiddleware.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return uuid.Nil, false
	}
	s, ok := v.(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
