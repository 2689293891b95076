package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"voluma/capture-portal/capture-portal-backend/pkg/lifecycle"
)

const actorContextKey = "auth.actor"

// Actor is the authenticated user acting on a request. Identity issuance and
// per-project role assignment happen upstream; by the time a request reaches
// a handler the role claim is already scoped to the project portal.
type Actor struct {
	UserID uuid.UUID
	Role   lifecycle.Role
}

// Claims are the JWT claims the portal issues for its users.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Middleware verifies the bearer token and resolves the acting user's role.
// Requests without a valid token or with an unrecognized role claim are
// rejected before reaching any handler.
func Middleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		actor, err := ParseToken(raw, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(actorContextKey, actor)
		c.Next()
	}
}

// ParseToken verifies a signed token and extracts the actor.
func ParseToken(raw, secret string) (Actor, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Actor{}, err
	}
	if !token.Valid {
		return Actor{}, fmt.Errorf("token is not valid")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Actor{}, fmt.Errorf("invalid subject claim: %w", err)
	}
	role, err := lifecycle.ParseRole(claims.Role)
	if err != nil {
		return Actor{}, err
	}

	return Actor{UserID: userID, Role: role}, nil
}

// ActorFrom returns the actor resolved by the middleware, if any.
func ActorFrom(c *gin.Context) (Actor, bool) {
	v, ok := c.Get(actorContextKey)
	if !ok {
		return Actor{}, false
	}
	actor, ok := v.(Actor)
	return actor, ok
}
