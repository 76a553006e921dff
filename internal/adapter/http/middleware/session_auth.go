package middleware

import (
	"net/http"

	"github.com/chilin89117/shopfront/internal/entity"
	"github.com/chilin89117/shopfront/internal/usecase"
	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// SessionAuth resolves the session cookie to a principal value once per
// request. Resolution is silent; enforcement is Require/RequireAdmin so
// public routes can still see who is browsing.
type SessionAuth struct {
	sessions   usecase.SessionStore
	cookieName string
}

func NewSessionAuth(sessions usecase.SessionStore, cookieName string) *SessionAuth {
	return &SessionAuth{sessions: sessions, cookieName: cookieName}
}

// Resolve loads the principal into the request context when a valid
// session cookie is present.
func (a *SessionAuth) Resolve() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(a.cookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}
		p, ok, err := a.sessions.Get(c.Request.Context(), token)
		if err == nil && ok {
			c.Set(principalKey, p)
		}
		c.Next()
	}
}

// Require aborts with 401 unless a principal was resolved.
func (a *SessionAuth) Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := Principal(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login_required"})
			return
		}
		c.Next()
	}
}

// RequireAdmin aborts with 403 unless the principal has the admin flag.
func (a *SessionAuth) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := Principal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login_required"})
			return
		}
		if !p.Admin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin_only"})
			return
		}
		c.Next()
	}
}

// Principal returns the request's authenticated principal, if any.
func Principal(c *gin.Context) (entity.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return entity.Principal{}, false
	}
	p, ok := v.(entity.Principal)
	return p, ok
}
