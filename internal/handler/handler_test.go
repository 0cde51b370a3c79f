package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"packslip/internal/domain"
	"packslip/internal/handler"
	"packslip/internal/service"
	"packslip/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) handler.APIResponse {
	t.Helper()
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func multipartBody(t *testing.T, fields map[string]string, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrDocumentNotFound, http.StatusNotFound, "DOCUMENT_NOT_FOUND"},
		{domain.ErrDocumentBusy, http.StatusConflict, "DOCUMENT_BUSY"},
		{domain.ErrUnknownPlatform, http.StatusUnprocessableEntity, "UNKNOWN_PLATFORM"},
		{domain.ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION"},
		{domain.ErrDuplicateAlias, http.StatusConflict, "DUPLICATE_ALIAS"},
		{domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			status, code, _ := handler.MapDomainError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

// --- documents ---

func TestDocumentHandler_Upload(t *testing.T) {
	svc := new(mocks.MockDocumentService)
	h := handler.NewDocumentHandler(svc)

	doc := &domain.ShipmentDocument{ID: uuid.New(), ParseStatus: domain.ParseStatusQueued}
	svc.On("Upload", mock.Anything, mock.MatchedBy(func(in service.UploadInput) bool {
		return in.Platform == "meesho" && in.FileName == "labels.pdf" && in.Size == 9
	})).Return(doc, nil)

	body, ct := multipartBody(t, map[string]string{"platform": "meesho"}, "labels.pdf", []byte("%PDF-1.4\n"))
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	c.Request.Header.Set("Content-Type", ct)

	h.Upload(c)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.True(t, decode(t, w).Success)
	svc.AssertExpectations(t)
}

func TestDocumentHandler_UploadMissingFile(t *testing.T) {
	h := handler.NewDocumentHandler(new(mocks.MockDocumentService))

	body, ct := multipartBody(t, map[string]string{"platform": "amazon"}, "", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	c.Request.Header.Set("Content-Type", ct)

	h.Upload(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_FILE", decode(t, w).Error.Code)
}

func TestDocumentHandler_GetDiagnostics(t *testing.T) {
	svc := new(mocks.MockDocumentService)
	h := handler.NewDocumentHandler(svc)
	docID := uuid.New()

	svc.On("GetDiagnostics", mock.Anything, docID).Return(nil, domain.ErrDocumentNotParsed)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+docID.String()+"/diagnostics", nil)
	c.Params = gin.Params{{Key: "id", Value: docID.String()}}

	h.GetDiagnostics(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "DOCUMENT_NOT_PARSED", decode(t, w).Error.Code)
}

func TestDocumentHandler_Download(t *testing.T) {
	svc := new(mocks.MockDocumentService)
	h := handler.NewDocumentHandler(svc)
	docID := uuid.New()

	svc.On("DownloadURL", mock.Anything, docID).Return("https://example.test/signed", nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+docID.String()+"/download", nil)
	c.Params = gin.Params{{Key: "id", Value: docID.String()}}

	h.Download(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).Data.(map[string]interface{})
	assert.Equal(t, "https://example.test/signed", data["url"])
}

func TestDocumentHandler_InvalidID(t *testing.T) {
	h := handler.NewDocumentHandler(new(mocks.MockDocumentService))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/documents/nope/retry", nil)
	c.Params = gin.Params{{Key: "id", Value: "nope"}}

	h.Retry(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", decode(t, w).Error.Code)
}

func TestDocumentHandler_DryRun(t *testing.T) {
	svc := new(mocks.MockDocumentService)
	h := handler.NewDocumentHandler(svc)

	diag := &domain.DocumentDiagnostic{Platform: "amazon", Pages: []domain.PageDiagnostic{{PageNumber: 1}}}
	svc.On("DryRun", mock.Anything, mock.MatchedBy(func(in service.DryRunInput) bool {
		return in.FileName == "slip.pdf" && string(in.Data) == "%PDF-1.4\n" && in.Platform == ""
	})).Return(diag, nil)

	body, ct := multipartBody(t, nil, "slip.pdf", []byte("%PDF-1.4\n"))
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/diagnostics/parse", body)
	c.Request.Header.Set("Content-Type", ct)

	h.DryRun(c)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

// --- orders ---

func TestOrderHandler_ListParsesFilters(t *testing.T) {
	svc := new(mocks.MockOrderQueueService)
	h := handler.NewOrderHandler(svc)
	docID := uuid.New()

	svc.On("List", mock.Anything, domain.OrderQueueFilter{
		Platform:       "flipkart",
		Status:         domain.WorkflowPending,
		UnresolvedOnly: true,
		DocumentID:     &docID,
	}, 0, 50).Return([]domain.OrderQueueEntry{}, 0, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet,
		"/api/v1/orders?platform=flipkart&status=pending&unresolved=true&limit=50&document_id="+docID.String(), nil)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 50, resp.Meta.Limit)
	svc.AssertExpectations(t)
}

func TestOrderHandler_ListBadUnresolved(t *testing.T) {
	h := handler.NewOrderHandler(new(mocks.MockOrderQueueService))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/orders?unresolved=maybe", nil)

	h.List(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderHandler_ArchiveInvalidTransition(t *testing.T) {
	svc := new(mocks.MockOrderQueueService)
	h := handler.NewOrderHandler(svc)
	id := uuid.New()

	svc.On("Archive", mock.Anything, id).Return(nil, domain.ErrInvalidTransition)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+id.String()+"/archive", nil)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	h.Archive(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_TRANSITION", decode(t, w).Error.Code)
}

func TestOrderHandler_ExportPickList(t *testing.T) {
	svc := new(mocks.MockOrderQueueService)
	h := handler.NewOrderHandler(svc)

	svc.On("ExportPickList", mock.Anything, domain.Platform("amazon"), "csv", mock.Anything).
		Run(func(args mock.Arguments) {
			_, _ = io.WriteString(args.Get(3).(io.Writer), "Platform,SKU\n")
		}).Return(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/picklist/export?platform=amazon", nil)

	h.ExportPickList(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "picklist_amazon_")
	assert.Equal(t, "Platform,SKU\n", w.Body.String())
}

func TestOrderHandler_ExportPickListBadFormat(t *testing.T) {
	h := handler.NewOrderHandler(new(mocks.MockOrderQueueService))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/picklist/export?format=pdf", nil)

	h.ExportPickList(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- catalog ---

func TestCatalogHandler_CreateAlias(t *testing.T) {
	svc := new(mocks.MockCatalogService)
	h := handler.NewCatalogHandler(svc)

	svc.On("ApplyMapping", mock.Anything, service.ApplyMappingInput{
		Platform: "flipkart", MarketplaceIdentifier: "FK-1", SKU: "SKU-1", Limit: 10,
	}).Return(&service.MappingResult{Updated: 3}, nil)

	body, _ := json.Marshal(map[string]interface{}{
		"platform": "flipkart", "alias_value": "FK-1", "sku": "SKU-1", "apply_limit": 10,
	})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/catalog/aliases", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.CreateAlias(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestCatalogHandler_CreateProductMissingFields(t *testing.T) {
	h := handler.NewCatalogHandler(new(mocks.MockCatalogService))

	body, _ := json.Marshal(map[string]string{"sku": "SKU-1"})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/catalog/products", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.CreateProduct(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCatalogHandler_Resolve(t *testing.T) {
	svc := new(mocks.MockCatalogService)
	h := handler.NewCatalogHandler(svc)

	svc.On("Resolve", mock.Anything, domain.Platform("amazon"), "B0ABC").Return(domain.Unresolved(), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/catalog/resolve?platform=amazon&identifier=B0ABC", nil)

	h.Resolve(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).Data.(map[string]interface{})
	assert.Equal(t, "unresolved", data["status"])
}

// --- stats ---

func TestStatsHandler_GetStats(t *testing.T) {
	svc := new(mocks.MockStatsService)
	h := handler.NewStatsHandler(svc)

	svc.On("GetStats", mock.Anything, domain.Platform("etsy")).Return(nil, domain.ErrUnknownPlatform)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/stats?platform=etsy", nil)

	h.GetStats(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

// --- health ---

type fakePinger struct{ err error }

func (p fakePinger) PingContext(_ context.Context) error { return p.err }

func TestHealthHandler_Readiness(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/readyz", nil)
	handler.NewHealthHandler(fakePinger{err: errors.New("down")}).Readiness(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/readyz", nil)
	handler.NewHealthHandler(fakePinger{}).Readiness(c)
	assert.Equal(t, http.StatusOK, w.Code)
}
