package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"packslip/internal/csvexport"
	"packslip/internal/domain"
	"packslip/internal/service"
)

// OrderHandler handles order queue and pick-list endpoints.
type OrderHandler struct {
	orderService service.OrderQueueService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService service.OrderQueueService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// List handles GET /api/v1/orders
// @Summary List order queue entries
// @Tags orders
// @Produce json
// @Param platform query string false "Marketplace filter"
// @Param status query string false "Workflow status (pending, listed, archived)"
// @Param unresolved query bool false "Only entries without a canonical SKU"
// @Param document_id query string false "Only entries ingested from this document"
// @Param offset query int false "Pagination offset" default(0)
// @Param limit query int false "Pagination limit" default(20)
// @Success 200 {object} Response{data=[]domain.OrderQueueEntry}
// @Failure 400 {object} ErrorResponseBody "Invalid filter"
// @Router /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	filter := domain.OrderQueueFilter{
		Platform: domain.Platform(c.Query("platform")),
		Status:   domain.WorkflowStatus(c.Query("status")),
	}
	if v := c.Query("unresolved"); v != "" {
		unresolved, err := strconv.ParseBool(v)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "unresolved must be true or false")
			return
		}
		filter.UnresolvedOnly = unresolved
	}
	if v := c.Query("document_id"); v != "" {
		docID, err := uuid.Parse(v)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
			return
		}
		filter.DocumentID = &docID
	}

	entries, total, err := h.orderService.List(c.Request.Context(), filter, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, entries, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/orders/:id
// @Summary Get order queue entry
// @Tags orders
// @Produce json
// @Param id path string true "Entry ID (UUID)"
// @Success 200 {object} Response{data=domain.OrderQueueEntry}
// @Failure 404 {object} ErrorResponseBody "Entry not found"
// @Router /orders/{id} [get]
func (h *OrderHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "entry")
	if !ok {
		return
	}

	entry, err := h.orderService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, entry)
}

// MarkListed handles POST /api/v1/orders/:id/list
// @Summary Move a pending entry to listed
// @Tags orders
// @Produce json
// @Param id path string true "Entry ID (UUID)"
// @Success 200 {object} Response{data=domain.OrderQueueEntry}
// @Failure 404 {object} ErrorResponseBody "Entry not found"
// @Failure 409 {object} ErrorResponseBody "Entry is not pending"
// @Router /orders/{id}/list [post]
func (h *OrderHandler) MarkListed(c *gin.Context) {
	id, ok := parseID(c, "entry")
	if !ok {
		return
	}

	entry, err := h.orderService.MarkListed(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, entry)
}

// Archive handles POST /api/v1/orders/:id/archive
// @Summary Move a listed entry to archived
// @Tags orders
// @Produce json
// @Param id path string true "Entry ID (UUID)"
// @Success 200 {object} Response{data=domain.OrderQueueEntry}
// @Failure 404 {object} ErrorResponseBody "Entry not found"
// @Failure 409 {object} ErrorResponseBody "Entry is not listed"
// @Router /orders/{id}/archive [post]
func (h *OrderHandler) Archive(c *gin.Context) {
	id, ok := parseID(c, "entry")
	if !ok {
		return
	}

	entry, err := h.orderService.Archive(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, entry)
}

// PickList handles GET /api/v1/picklist
// @Summary Aggregated pick list
// @Description Quantities of pending and listed entries, grouped by canonical SKU. Unresolved entries stay in their own buckets.
// @Tags picklist
// @Produce json
// @Param platform query string false "Marketplace filter"
// @Success 200 {object} Response{data=[]domain.PickListAggregate}
// @Router /picklist [get]
func (h *OrderHandler) PickList(c *gin.Context) {
	aggs, err := h.orderService.PickList(c.Request.Context(), domain.Platform(c.Query("platform")))
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, aggs)
}

// ExportPickList handles GET /api/v1/picklist/export
// @Summary Export pick list
// @Tags picklist
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param platform query string false "Marketplace filter"
// @Param format query string false "csv or xlsx" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponseBody "Unsupported format"
// @Router /picklist/export [get]
func (h *OrderHandler) ExportPickList(c *gin.Context) {
	format := c.DefaultQuery("format", service.ExportFormatCSV)
	contentType := "text/csv; charset=utf-8"
	switch format {
	case service.ExportFormatCSV:
	case service.ExportFormatXLSX:
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		RespondError(c, http.StatusBadRequest, "UNSUPPORTED_FORMAT", "format must be csv or xlsx")
		return
	}

	platform := domain.Platform(c.Query("platform"))
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", `attachment; filename="`+csvexport.BuildFilename(string(platform), format)+`"`)

	if err := h.orderService.ExportPickList(c.Request.Context(), platform, format, c.Writer); err != nil {
		if c.Writer.Written() {
			_ = c.Error(err)
			return
		}
		c.Writer.Header().Del("Content-Disposition")
		c.Writer.Header().Set("Content-Type", "application/json; charset=utf-8")
		HandleError(c, err)
	}
}
