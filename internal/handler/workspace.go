package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/brighthive/brighthive-testing-exercise/internal/authz"
	"github.com/brighthive/brighthive-testing-exercise/internal/middleware"
	"github.com/brighthive/brighthive-testing-exercise/internal/models"
	"github.com/brighthive/brighthive-testing-exercise/internal/store"
	"github.com/brighthive/brighthive-testing-exercise/internal/util"

	"github.com/gin-gonic/gin"
)

// WorkspaceHandler serves workspace CRUD. Every authorization question goes
// through authz.Decide; handlers never re-implement ownership checks.
type WorkspaceHandler struct {
	Store *store.Store
}

func NewWorkspaceHandler(st *store.Store) *WorkspaceHandler {
	return &WorkspaceHandler{Store: st}
}

// denied maps an evaluator denial to the HTTP taxonomy: UNAUTHENTICATED is
// 401, MALFORMED_REQUEST is 422, every FORBIDDEN_* is 403. A DENY is never
// downgraded to a success.
func denied(c *gin.Context, d authz.Decision) {
	switch d.Reason {
	case authz.ReasonUnauthenticated:
		util.Error(c, http.StatusUnauthorized, string(d.Reason), "not authenticated")
	case authz.ReasonMalformedRequest:
		util.Error(c, http.StatusUnprocessableEntity, string(d.Reason), "malformed request")
	default:
		util.Error(c, http.StatusForbidden, string(d.Reason), "permission denied")
	}
}

func workspacePayload(w *models.Workspace) gin.H {
	return gin.H{
		"id":          w.ID,
		"name":        w.Name,
		"description": w.Description,
		"owner_id":    w.OwnerID,
		"status":      w.Status,
		"created_at":  w.CreatedAt,
	}
}

// ---------- create ----------

type createWorkspaceReq struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"max=255"`
	OwnerEmail  string `json:"owner_email"`
}

func (h *WorkspaceHandler) CreateWorkspace(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.ReasonUnauthenticated, "not logged in")
		return
	}

	var req createWorkspaceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.ReasonMalformedRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if err := util.ValidateName(req.Name); err != nil {
		util.Error(c, http.StatusUnprocessableEntity, util.ReasonMalformedRequest, err.Error())
		return
	}

	// the intended owner defaults to the caller; naming someone else is
	// an impersonation attempt unless the caller is admin
	owner := user
	if req.OwnerEmail != "" {
		var err error
		owner, err = h.Store.UserByEmail(req.OwnerEmail)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				util.Error(c, http.StatusNotFound, util.ReasonNotFound, "owner not found")
			} else {
				util.Error(c, http.StatusInternalServerError, util.ReasonServerError, "owner lookup failed")
			}
			return
		}
	}

	d := authz.Decide(middleware.PrincipalOf(user), authz.ActionCreate, &authz.Resource{
		Kind:    authz.KindWorkspace,
		OwnerID: owner.ID,
	})
	if !d.Allowed() {
		denied(c, d)
		return
	}

	ws := models.Workspace{
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		OwnerID:     owner.ID,
	}
	if err := h.Store.CreateWorkspace(&ws); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			util.Error(c, http.StatusConflict, util.ReasonConflict, "workspace with this name already exists")
		} else {
			util.Error(c, http.StatusInternalServerError, util.ReasonServerError, "could not create workspace")
		}
		return
	}

	util.Created(c, util.Response{"workspace": workspacePayload(&ws)})
}

// ---------- read ----------

// loadWorkspace resolves the :id param, answering 404 when the workspace
// does not exist. Missing-parent checks happen before any authorization.
func (h *WorkspaceHandler) loadWorkspace(c *gin.Context) (*models.Workspace, bool) {
	ws, err := h.Store.WorkspaceByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			util.Error(c, http.StatusNotFound, util.ReasonNotFound, "workspace not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.ReasonServerError, "workspace lookup failed")
		}
		return nil, false
	}
	return ws, true
}

func (h *WorkspaceHandler) GetWorkspace(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.ReasonUnauthenticated, "not logged in")
		return
	}

	ws, ok := h.loadWorkspace(c)
	if !ok {
		return
	}

	d := authz.Decide(middleware.PrincipalOf(user), authz.ActionRead, &authz.Resource{
		Kind:    authz.KindWorkspace,
		ID:      ws.ID,
		OwnerID: ws.OwnerID,
	})
	if !d.Allowed() {
		denied(c, d)
		return
	}

	util.Success(c, util.Response{"workspace": workspacePayload(ws)})
}

// ListWorkspaces returns the caller's workspaces; admins see all of them.
func (h *WorkspaceHandler) ListWorkspaces(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.ReasonUnauthenticated, "not logged in")
		return
	}

	var (
		workspaces []models.Workspace
		err        error
	)
	if user.Role == models.RoleAdmin {
		workspaces, err = h.Store.AllWorkspaces()
	} else {
		workspaces, err = h.Store.WorkspacesOwnedBy(user.ID)
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.ReasonServerError, "workspace listing failed")
		return
	}

	items := make([]gin.H, 0, len(workspaces))
	for i := range workspaces {
		items = append(items, workspacePayload(&workspaces[i]))
	}
	util.Success(c, util.Response{"workspaces": items, "total": len(items)})
}

// ---------- delete ----------

// DeleteWorkspace removes a workspace and cascade-deletes its datasets.
// The denial path still reaches the audit trail with the caller's identity.
func (h *WorkspaceHandler) DeleteWorkspace(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.ReasonUnauthenticated, "not logged in")
		return
	}

	ws, ok := h.loadWorkspace(c)
	if !ok {
		return
	}

	d := authz.Decide(middleware.PrincipalOf(user), authz.ActionDelete, &authz.Resource{
		Kind:    authz.KindWorkspace,
		ID:      ws.ID,
		OwnerID: ws.OwnerID,
	})
	if !d.Allowed() {
		denied(c, d)
		return
	}

	if err := h.Store.DeleteWorkspace(ws.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// a concurrent delete won the race
			util.Error(c, http.StatusNotFound, util.ReasonNotFound, "workspace not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.ReasonServerError, "could not delete workspace")
		}
		return
	}

	util.Success(c, util.Response{"message": "workspace " + ws.Name + " deleted successfully"})
}
