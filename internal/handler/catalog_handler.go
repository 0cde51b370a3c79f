package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"packslip/internal/domain"
	"packslip/internal/service"
)

// CatalogHandler handles product catalog and identifier mapping endpoints.
type CatalogHandler struct {
	catalogService service.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// CreateProduct handles POST /api/v1/catalog/products
// @Summary Create a canonical product
// @Tags catalog
// @Accept json
// @Produce json
// @Param request body CreateProductRequest true "Product"
// @Success 201 {object} Response{data=domain.Product}
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Failure 409 {object} ErrorResponseBody "SKU or barcode already exists"
// @Router /catalog/products [post]
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "sku and name are required")
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), service.CreateProductInput{
		SKU:     req.SKU,
		Barcode: req.Barcode,
		Name:    req.Name,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, product)
}

// ListProducts handles GET /api/v1/catalog/products
// @Summary List products
// @Tags catalog
// @Produce json
// @Param offset query int false "Pagination offset" default(0)
// @Param limit query int false "Pagination limit" default(20)
// @Success 200 {object} Response{data=[]domain.Product}
// @Router /catalog/products [get]
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	offset, limit := parsePagination(c)

	products, total, err := h.catalogService.ListProducts(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, products, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetProduct handles GET /api/v1/catalog/products/:sku
// @Summary Get product by SKU
// @Tags catalog
// @Produce json
// @Param sku path string true "Canonical SKU (exact)"
// @Success 200 {object} Response{data=domain.Product}
// @Failure 404 {object} ErrorResponseBody "Product not found"
// @Router /catalog/products/{sku} [get]
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.catalogService.GetProductBySKU(c.Request.Context(), c.Param("sku"))
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, product)
}

// CreateAlias handles POST /api/v1/catalog/aliases
// @Summary Map a marketplace identifier to a product
// @Description Creates the alias and, when apply_limit is set, resolves up to that many unresolved queue entries carrying the identifier
// @Tags catalog
// @Accept json
// @Produce json
// @Param request body CreateAliasRequest true "Alias"
// @Success 201 {object} Response{data=service.MappingResult}
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Failure 404 {object} ErrorResponseBody "Product not found"
// @Failure 409 {object} ErrorResponseBody "Alias already maps to another product"
// @Router /catalog/aliases [post]
func (h *CatalogHandler) CreateAlias(c *gin.Context) {
	var req CreateAliasRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ApplyLimit < 0 {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "platform, alias_value and sku are required; apply_limit must not be negative")
		return
	}

	result, err := h.catalogService.ApplyMapping(c.Request.Context(), service.ApplyMappingInput{
		Platform:              req.Platform,
		MarketplaceIdentifier: req.AliasValue,
		SKU:                   req.SKU,
		Limit:                 req.ApplyLimit,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, result)
}

// ContinueMapping handles POST /api/v1/catalog/mappings/continue
// @Summary Continue a mapping session
// @Description Applies a session returned by a previous mapping call to further unresolved entries
// @Tags catalog
// @Accept json
// @Produce json
// @Param request body domain.MappingSession true "Session state"
// @Success 200 {object} Response{data=service.MappingResult}
// @Failure 400 {object} ErrorResponseBody "Invalid session"
// @Router /catalog/mappings/continue [post]
func (h *CatalogHandler) ContinueMapping(c *gin.Context) {
	var session domain.MappingSession
	if err := c.ShouldBindJSON(&session); err != nil || session.Platform == "" ||
		session.MarketplaceIdentifier == "" || session.CanonicalSKU == "" {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "platform, marketplace_identifier and canonical_sku are required")
		return
	}

	result, err := h.catalogService.ContinueMapping(c.Request.Context(), session)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, result)
}

// Resolve handles GET /api/v1/catalog/resolve
// @Summary Resolve a marketplace identifier
// @Description Exact lookup: alias for the platform, then product SKU, then barcode
// @Tags catalog
// @Produce json
// @Param platform query string true "Marketplace"
// @Param identifier query string true "Marketplace identifier (exact)"
// @Success 200 {object} Response{data=domain.Resolution}
// @Failure 400 {object} ErrorResponseBody "Missing parameters"
// @Router /catalog/resolve [get]
func (h *CatalogHandler) Resolve(c *gin.Context) {
	platform := c.Query("platform")
	identifier := c.Query("identifier")
	if platform == "" || identifier == "" {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "platform and identifier are required")
		return
	}

	res, err := h.catalogService.Resolve(c.Request.Context(), domain.Platform(platform), identifier)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, res)
}
