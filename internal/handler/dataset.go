package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/brighthive/brighthive-testing-exercise/internal/authz"
	"github.com/brighthive/brighthive-testing-exercise/internal/middleware"
	"github.com/brighthive/brighthive-testing-exercise/internal/models"
	"github.com/brighthive/brighthive-testing-exercise/internal/store"
	"github.com/brighthive/brighthive-testing-exercise/internal/util"

	"github.com/gin-gonic/gin"
)

const maxPageSize = 100

// DatasetHandler serves dataset CRUD inside a workspace. The parent
// workspace is resolved (404 on absence) before the evaluator runs.
type DatasetHandler struct {
	Store    *store.Store
	PageSize int
}

func NewDatasetHandler(st *store.Store, pageSize int) *DatasetHandler {
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = 10
	}
	return &DatasetHandler{Store: st, PageSize: pageSize}
}

func datasetPayload(d *models.Dataset) gin.H {
	return gin.H{
		"id":           d.ID,
		"name":         d.Name,
		"workspace_id": d.WorkspaceID,
		"data_schema":  d.SchemaJSON,
		"row_count":    d.RowCount,
		"created_at":   d.CreatedAt,
		"updated_at":   d.UpdatedAt,
	}
}

// loadParent resolves the :id (workspace) param, answering 404 when the
// parent is gone. No dataset action may proceed against a missing parent.
func (h *DatasetHandler) loadParent(c *gin.Context) (*models.Workspace, bool) {
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

// ---------- create ----------

type createDatasetReq struct {
	Name       string `json:"name" binding:"required"`
	DataSchema string `json:"data_schema"`
	RowCount   *int64 `json:"row_count"`
}

func (h *DatasetHandler) CreateDataset(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.ReasonUnauthenticated, "not logged in")
		return
	}

	ws, ok := h.loadParent(c)
	if !ok {
		return
	}

	var req createDatasetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.ReasonMalformedRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if err := util.ValidateDatasetName(req.Name); err != nil {
		util.Error(c, http.StatusUnprocessableEntity, util.ReasonMalformedRequest, err.Error())
		return
	}
	var rowCount int64
	if req.RowCount != nil {
		if err := util.ValidateRowCount(*req.RowCount); err != nil {
			util.Error(c, http.StatusUnprocessableEntity, util.ReasonMalformedRequest, err.Error())
			return
		}
		rowCount = *req.RowCount
	}

	d := authz.Decide(middleware.PrincipalOf(user), authz.ActionCreate, &authz.Resource{
		Kind:    authz.KindDataset,
		OwnerID: ws.OwnerID,
	})
	if !d.Allowed() {
		denied(c, d)
		return
	}

	ds := models.Dataset{
		WorkspaceID: ws.ID,
		Name:        req.Name,
		SchemaJSON:  req.DataSchema,
		RowCount:    rowCount,
	}
	if err := h.Store.CreateDataset(&ds); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			// parent deleted between the lookup above and the insert
			util.Error(c, http.StatusNotFound, util.ReasonNotFound, "workspace not found")
		case errors.Is(err, store.ErrDuplicate):
			util.Error(c, http.StatusConflict, util.ReasonConflict, "dataset with this name already exists in workspace")
		default:
			util.Error(c, http.StatusInternalServerError, util.ReasonServerError, "could not create dataset")
		}
		return
	}

	util.Created(c, util.Response{"dataset": datasetPayload(&ds)})
}

// ---------- list ----------

// pageParams clamps limit into [1, maxPageSize] and offset to >= 0, so no
// combination of query values can produce an error or a runaway page.
func (h *DatasetHandler) pageParams(c *gin.Context) (limit, offset int) {
	limit = h.PageSize
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "")); err == nil {
		limit = v
	}
	if limit < 1 {
		limit = 1
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	if v, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

func (h *DatasetHandler) ListDatasets(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.ReasonUnauthenticated, "not logged in")
		return
	}

	ws, ok := h.loadParent(c)
	if !ok {
		return
	}

	d := authz.Decide(middleware.PrincipalOf(user), authz.ActionRead, &authz.Resource{
		Kind:    authz.KindDataset,
		OwnerID: ws.OwnerID,
	})
	if !d.Allowed() {
		denied(c, d)
		return
	}

	limit, offset := h.pageParams(c)
	datasets, total, err := h.Store.Datasets(ws.ID, limit, offset)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.ReasonServerError, "dataset listing failed")
		return
	}

	items := make([]gin.H, 0, len(datasets))
	for i := range datasets {
		items = append(items, datasetPayload(&datasets[i]))
	}
	util.Success(c, util.Response{
		"datasets": items,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

// ---------- read one ----------

func (h *DatasetHandler) GetDataset(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.ReasonUnauthenticated, "not logged in")
		return
	}

	ws, ok := h.loadParent(c)
	if !ok {
		return
	}

	d := authz.Decide(middleware.PrincipalOf(user), authz.ActionRead, &authz.Resource{
		Kind:    authz.KindDataset,
		ID:      c.Param("datasetID"),
		OwnerID: ws.OwnerID,
	})
	if !d.Allowed() {
		denied(c, d)
		return
	}

	ds, err := h.Store.DatasetByID(ws.ID, c.Param("datasetID"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			util.Error(c, http.StatusNotFound, util.ReasonNotFound, "dataset not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.ReasonServerError, "dataset lookup failed")
		}
		return
	}

	util.Success(c, util.Response{"dataset": datasetPayload(ds)})
}

// ---------- update ----------

type updateDatasetReq struct {
	Name       string  `json:"name"`
	DataSchema *string `json:"data_schema"`
	RowCount   *int64  `json:"row_count"`
}

func (h *DatasetHandler) UpdateDataset(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.ReasonUnauthenticated, "not logged in")
		return
	}

	ws, ok := h.loadParent(c)
	if !ok {
		return
	}

	var req updateDatasetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.ReasonMalformedRequest, "invalid request body")
		return
	}

	d := authz.Decide(middleware.PrincipalOf(user), authz.ActionUpdate, &authz.Resource{
		Kind:    authz.KindDataset,
		ID:      c.Param("datasetID"),
		OwnerID: ws.OwnerID,
	})
	if !d.Allowed() {
		denied(c, d)
		return
	}

	ds, err := h.Store.DatasetByID(ws.ID, c.Param("datasetID"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			util.Error(c, http.StatusNotFound, util.ReasonNotFound, "dataset not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.ReasonServerError, "dataset lookup failed")
		}
		return
	}

	if req.Name != "" {
		name := strings.TrimSpace(req.Name)
		if err := util.ValidateDatasetName(name); err != nil {
			util.Error(c, http.StatusUnprocessableEntity, util.ReasonMalformedRequest, err.Error())
			return
		}
		ds.Name = name
	}
	if req.DataSchema != nil {
		ds.SchemaJSON = *req.DataSchema
	}
	if req.RowCount != nil {
		if err := util.ValidateRowCount(*req.RowCount); err != nil {
			util.Error(c, http.StatusUnprocessableEntity, util.ReasonMalformedRequest, err.Error())
			return
		}
		ds.RowCount = *req.RowCount
	}

	if err := h.Store.SaveDataset(ds); err != nil {
		util.Error(c, http.StatusInternalServerError, util.ReasonServerError, "could not update dataset")
		return
	}

	util.Success(c, util.Response{"dataset": datasetPayload(ds)})
}

// ---------- delete ----------

func (h *DatasetHandler) DeleteDataset(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.ReasonUnauthenticated, "not logged in")
		return
	}

	ws, ok := h.loadParent(c)
	if !ok {
		return
	}

	d := authz.Decide(middleware.PrincipalOf(user), authz.ActionDelete, &authz.Resource{
		Kind:    authz.KindDataset,
		ID:      c.Param("datasetID"),
		OwnerID: ws.OwnerID,
	})
	if !d.Allowed() {
		denied(c, d)
		return
	}

	if err := h.Store.DeleteDataset(ws.ID, c.Param("datasetID")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			util.Error(c, http.StatusNotFound, util.ReasonNotFound, "dataset not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.ReasonServerError, "could not delete dataset")
		}
		return
	}

	util.Success(c, util.Response{"message": "dataset deleted successfully"})
}
