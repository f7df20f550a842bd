package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/brighthive/brighthive-testing-exercise/internal/authz"
	"github.com/brighthive/brighthive-testing-exercise/internal/middleware"
	"github.com/brighthive/brighthive-testing-exercise/internal/models"
	"github.com/brighthive/brighthive-testing-exercise/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportDatasets streams a workspace's datasets as CSV or XLSX, owner or
// admin only. Reuses the dataset read rule: exporting is a read.
func (h *DatasetHandler) ExportDatasets(c *gin.Context) {
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

	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		util.Error(c, http.StatusUnprocessableEntity, util.ReasonMalformedRequest, "format must be csv or xlsx")
		return
	}

	datasets, err := h.Store.AllDatasets(ws.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.ReasonServerError, "dataset listing failed")
		return
	}

	if format == "csv" {
		h.exportCSV(c, ws, datasets)
		return
	}
	h.exportXLSX(c, ws, datasets)
}

var exportHeaders = []string{"id", "name", "row_count", "created_at", "updated_at"}

func exportRow(d *models.Dataset) []string {
	return []string{
		d.ID,
		d.Name,
		strconv.FormatInt(d.RowCount, 10),
		d.CreatedAt.Format(time.RFC3339),
		d.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *DatasetHandler) exportCSV(c *gin.Context, ws *models.Workspace, datasets []models.Dataset) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s_datasets_%s.csv\"",
		ws.Name, time.Now().Format("20060102")))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeaders)
	for i := range datasets {
		writer.Write(exportRow(&datasets[i]))
	}
}

func (h *DatasetHandler) exportXLSX(c *gin.Context, ws *models.Workspace, datasets []models.Dataset) {
	f := excelize.NewFile()
	sheetName := "Datasets"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.ReasonServerError, "could not create sheet")
		return
	}
	f.SetActiveSheet(index)

	for i, hdr := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, hdr)
	}

	for idx := range datasets {
		row := idx + 2
		for col, val := range exportRow(&datasets[idx]) {
			cell := fmt.Sprintf("%c%d", 'A'+col, row)
			f.SetCellValue(sheetName, cell, val)
		}
	}

	f.SetColWidth(sheetName, "A", "A", 38)
	f.SetColWidth(sheetName, "B", "B", 30)
	f.SetColWidth(sheetName, "C", "C", 12)
	f.SetColWidth(sheetName, "D", "E", 22)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s_datasets_%s.xlsx\"",
		ws.Name, time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.ReasonServerError, "export failed")
	}
}
