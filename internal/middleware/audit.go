package middleware

import (
	"log"
	"net/http"

	"github.com/brighthive/brighthive-testing-exercise/internal/models"
	"github.com/brighthive/brighthive-testing-exercise/internal/store"
	"github.com/brighthive/brighthive-testing-exercise/internal/util"

	"github.com/gin-gonic/gin"
)

// AuditMiddleware records every authenticated mutating request with the
// acting user's identity and the final outcome. Denied deletions land here
// too, so each denial is attributable to one user and one reason code.
func AuditMiddleware(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method == http.MethodGet {
			return
		}

		user, ok := CurrentUser(c)
		if !ok {
			// unauthenticated requests are already rejected before handlers run
			return
		}

		entry := &models.AuditLog{
			UserID:     &user.ID,
			Method:     c.Request.Method,
			Path:       c.Request.URL.Path,
			ResourceID: c.Param("id"),
			Status:     c.Writer.Status(),
			Reason:     util.ErrorReason(c),
			IP:         c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
		}

		if err := st.AppendAudit(entry); err != nil {
			// auditing must not fail the request it describes
			log.Printf("append audit log: %v", err)
		}
	}
}
