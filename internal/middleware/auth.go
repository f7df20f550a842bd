package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/brighthive/brighthive-testing-exercise/internal/authz"
	"github.com/brighthive/brighthive-testing-exercise/internal/models"
	"github.com/brighthive/brighthive-testing-exercise/internal/store"
	"github.com/brighthive/brighthive-testing-exercise/internal/util"

	"github.com/gin-gonic/gin"
)

const (
	currentUserKey = "currentUser"
	sessionIDKey   = "sessionID"
)

// AuthMiddleware verifies the bearer token and loads the current user into
// the context. A request with no token at all gets 403; a present but
// invalid, expired or revoked token gets 401. Session expiry is evaluated
// against the current clock on every request, with no grace window.
func AuthMiddleware(jwtSecret string, st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenStr string

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenStr = parts[1]
			}
		}

		if tokenStr == "" {
			util.Error(c, http.StatusForbidden, util.ReasonForbiddenNoToken, "not authenticated")
			c.Abort()
			return
		}

		claims, err := util.ParseToken(jwtSecret, tokenStr)
		if err != nil {
			util.Error(c, http.StatusUnauthorized, util.ReasonUnauthenticated, "invalid or expired token")
			c.Abort()
			return
		}

		sess, err := st.SessionByID(claims.SessionID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				util.Error(c, http.StatusUnauthorized, util.ReasonUnauthenticated, "invalid or expired token")
			} else {
				util.Error(c, http.StatusInternalServerError, util.ReasonServerError, "session lookup failed")
			}
			c.Abort()
			return
		}
		if !sess.Live(time.Now()) {
			util.Error(c, http.StatusUnauthorized, util.ReasonUnauthenticated, "invalid or expired token")
			c.Abort()
			return
		}

		user, err := st.UserByID(claims.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				util.Error(c, http.StatusUnauthorized, util.ReasonUnauthenticated, "invalid or expired token")
			} else {
				util.Error(c, http.StatusInternalServerError, util.ReasonServerError, "user lookup failed")
			}
			c.Abort()
			return
		}

		c.Set(currentUserKey, user)
		c.Set(sessionIDKey, sess.ID)
		c.Next()
	}
}

// CurrentUser returns the authenticated user placed by AuthMiddleware.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}

// SessionID returns the id of the session that authenticated this request.
func SessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}

// PrincipalOf builds the evaluator's principal for the authenticated user.
func PrincipalOf(user *models.User) authz.Principal {
	return authz.Principal{
		UserID:        user.ID,
		Role:          authz.Role(user.Role),
		Authenticated: true,
	}
}
