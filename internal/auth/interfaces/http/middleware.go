package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/loanflow/internal/auth/application"
	"github.com/wyfcoding/loanflow/internal/auth/domain"
)

// actorKey is the gin context key carrying the authenticated actor.
const actorKey = "auth.actor"

// Actor is the authenticated identity attached to a request.
type Actor struct {
	ID   uint
	Role domain.UserRole
}

// Authenticator turns bearer tokens into request actors. When a session
// repository is configured, tokens revoked by account deletion are refused
// even before their JWT expiry.
type Authenticator struct {
	tokens   *application.TokenService
	sessions domain.SessionRepository
}

func NewAuthenticator(tokens *application.TokenService, sessions domain.SessionRepository) *Authenticator {
	return &Authenticator{tokens: tokens, sessions: sessions}
}

// RequireAuth validates the Authorization header and stores the actor on
// the context.
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if header == "" || len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "authentication required"})
			return
		}

		claims, err := a.tokens.Parse(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid or expired token"})
			return
		}

		if a.sessions != nil {
			session, err := a.sessions.Get(c.Request.Context(), parts[1])
			if err != nil || session == nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "session expired"})
				return
			}
		}

		id, err := strconv.ParseUint(claims.UserID, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid or expired token"})
			return
		}

		c.Set(actorKey, Actor{ID: uint(id), Role: domain.UserRole(claims.Role)})
		c.Next()
	}
}

// RequireRoles refuses actors holding none of the given roles. It must run
// after RequireAuth.
func RequireRoles(roles ...domain.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := CurrentActor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "authentication required"})
			return
		}
		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "insufficient permissions"})
	}
}

// CurrentActor returns the actor set by RequireAuth.
func CurrentActor(c *gin.Context) (Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return Actor{}, false
	}
	actor, ok := v.(Actor)
	return actor, ok
}
