package handler

import (
	"net/http"
	"strconv"

	"github.com/brighthive/brighthive-testing-exercise/internal/middleware"
	"github.com/brighthive/brighthive-testing-exercise/internal/models"
	"github.com/brighthive/brighthive-testing-exercise/internal/store"
	"github.com/brighthive/brighthive-testing-exercise/internal/util"

	"github.com/gin-gonic/gin"
)

// AuditLogHandler exposes the audit trail to administrators.
type AuditLogHandler struct {
	Store    *store.Store
	PageSize int
}

func NewAuditLogHandler(st *store.Store, pageSize int) *AuditLogHandler {
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = 20
	}
	return &AuditLogHandler{Store: st, PageSize: pageSize}
}

// ListAuditLogs returns audit records, newest first. Admin only: the audit
// trail spans all users and is not an owned resource.
func (h *AuditLogHandler) ListAuditLogs(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.ReasonUnauthenticated, "not logged in")
		return
	}
	if user.Role != models.RoleAdmin {
		util.Error(c, http.StatusForbidden, util.ReasonForbiddenDefault, "permission denied")
		return
	}

	limit := h.PageSize
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "")); err == nil && v > 0 && v <= maxPageSize {
		limit = v
	}
	offset := 0
	if v, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil && v > 0 {
		offset = v
	}

	logs, total, err := h.Store.AuditLogs(limit, offset)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.ReasonServerError, "audit log listing failed")
		return
	}

	util.Success(c, util.Response{
		"logs":   logs,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}
