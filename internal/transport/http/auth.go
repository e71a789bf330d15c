package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bersena911/quizapi/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const userKey = "user"

// Claims are the bearer token claims the API relies on. The subject is the
// user id.
type Claims struct {
	Disabled bool `json:"disabled,omitempty"`
	jwt.RegisteredClaims
}

// Authenticate verifies an HS256 bearer token from the Authorization header
// or the token query parameter, which browsers need for websockets.
func Authenticate(secret []byte) gin.HandlerFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	keyFunc := func(*jwt.Token) (interface{}, error) { return secret, nil }

	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			abort(c, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims := &Claims{}
		if _, err := parser.ParseWithClaims(raw, claims, keyFunc); err != nil {
			abort(c, http.StatusUnauthorized, "invalid token")
			return
		}
		if claims.Subject == "" {
			abort(c, http.StatusUnauthorized, "token has no subject")
			return
		}

		user := domain.User{ID: claims.Subject, Disabled: claims.Disabled}
		if user.Disabled {
			abort(c, http.StatusForbidden, "user is disabled")
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return c.Query("token")
}

var errNoUser = errors.New("no authenticated user in context")

// currentUser returns the identity stored by Authenticate.
func currentUser(c *gin.Context) (domain.User, error) {
	v, ok := c.Get(userKey)
	if !ok {
		return domain.User{}, errNoUser
	}
	user, ok := v.(domain.User)
	if !ok {
		return domain.User{}, errNoUser
	}
	return user, nil
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
