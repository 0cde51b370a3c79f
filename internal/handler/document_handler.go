package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"packslip/internal/domain"
	"packslip/internal/service"
)

// maxDryRunBytes bounds the in-memory read of a dry-run upload.
const maxDryRunBytes = 50 << 20

// DocumentHandler handles shipment document endpoints.
type DocumentHandler struct {
	documentService service.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documentService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// Upload handles POST /api/v1/documents
// @Summary Upload a shipment document
// @Description Store a shipping label or packing slip (PDF, JPG, PNG) and queue it for parsing
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document to upload"
// @Param platform formData string false "Marketplace (amazon, flipkart, meesho); detected when omitted"
// @Success 202 {object} Response{data=domain.ShipmentDocument} "Document queued for parsing"
// @Failure 400 {object} ErrorResponseBody "Missing file or unsupported type"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 422 {object} ErrorResponseBody "Unknown platform"
// @Failure 500 {object} ErrorResponseBody "Upload failed"
// @Router /documents [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	doc, err := h.documentService.Upload(c.Request.Context(), service.UploadInput{
		Platform: domain.Platform(c.PostForm("platform")),
		File:     file,
		FileName: header.Filename,
		Size:     header.Size,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondAccepted(c, doc)
}

// List handles GET /api/v1/documents
// @Summary List documents
// @Tags documents
// @Produce json
// @Param offset query int false "Pagination offset" default(0)
// @Param limit query int false "Pagination limit" default(20)
// @Success 200 {object} Response{data=[]domain.ShipmentDocument}
// @Router /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	docs, total, err := h.documentService.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, docs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/documents/:id
// @Summary Get document by ID
// @Description Get the parse status and ingestion counters of a document
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 200 {object} Response{data=domain.ShipmentDocument}
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Router /documents/{id} [get]
func (h *DocumentHandler) GetByID(c *gin.Context) {
	docID, ok := parseID(c, "document")
	if !ok {
		return
	}

	doc, err := h.documentService.GetByID(c.Request.Context(), docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, doc)
}

// GetDiagnostics handles GET /api/v1/documents/:id/diagnostics
// @Summary Get parse diagnostics
// @Description Per-page header, column bands, rows, structural misses and rejected cells of the last parse
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 200 {object} Response{data=domain.DocumentDiagnostic}
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Failure 409 {object} ErrorResponseBody "Document not parsed yet"
// @Router /documents/{id}/diagnostics [get]
func (h *DocumentHandler) GetDiagnostics(c *gin.Context) {
	docID, ok := parseID(c, "document")
	if !ok {
		return
	}

	diag, err := h.documentService.GetDiagnostics(c.Request.Context(), docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, diag)
}

// Download handles GET /api/v1/documents/:id/download
// @Summary Get a download link for the original file
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 200 {object} Response{data=DownloadURLResponse}
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Router /documents/{id}/download [get]
func (h *DocumentHandler) Download(c *gin.Context) {
	docID, ok := parseID(c, "document")
	if !ok {
		return
	}

	url, err := h.documentService.DownloadURL(c.Request.Context(), docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, DownloadURLResponse{URL: url})
}

// Retry handles POST /api/v1/documents/:id/retry
// @Summary Retry parsing
// @Description Requeue a completed or failed document. Already ingested rows are skipped as duplicates.
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 202 {object} Response{data=domain.ShipmentDocument}
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Failure 409 {object} ErrorResponseBody "Document is already queued or processing"
// @Router /documents/{id}/retry [post]
func (h *DocumentHandler) Retry(c *gin.Context) {
	docID, ok := parseID(c, "document")
	if !ok {
		return
	}

	doc, err := h.documentService.RetryParse(c.Request.Context(), docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondAccepted(c, doc)
}

// DryRun handles POST /api/v1/diagnostics/parse
// @Summary Dry-run parse
// @Description Parse an uploaded file and return the diagnostic export without storing anything
// @Tags diagnostics
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document to parse"
// @Param platform formData string false "Marketplace; detected when omitted"
// @Success 200 {object} Response{data=domain.DocumentDiagnostic}
// @Failure 400 {object} ErrorResponseBody "Missing file or unsupported type"
// @Failure 422 {object} ErrorResponseBody "Unknown platform or unreadable document"
// @Router /diagnostics/parse [post]
func (h *DocumentHandler) DryRun(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	if header.Size > maxDryRunBytes {
		HandleError(c, domain.ErrFileTooLarge)
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, maxDryRunBytes))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_FILE", "could not read uploaded file")
		return
	}

	diag, err := h.documentService.DryRun(c.Request.Context(), service.DryRunInput{
		Platform: domain.Platform(c.PostForm("platform")),
		Data:     data,
		FileName: header.Filename,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, diag)
}
