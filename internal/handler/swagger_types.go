package handler

import "packslip/internal/domain"

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Request Types ---

// CreateProductRequest represents the create product request body.
type CreateProductRequest struct {
	SKU     string `json:"sku" binding:"required" example:"BOTTLE-1L-STEEL"`
	Barcode string `json:"barcode" example:"8901234567890"`
	Name    string `json:"name" binding:"required" example:"Steel water bottle 1L"`
}

// CreateAliasRequest represents the create alias request body. ApplyLimit
// bounds how many unresolved queue entries are resolved with the new alias.
type CreateAliasRequest struct {
	Platform   domain.Platform `json:"platform" binding:"required" example:"flipkart"`
	AliasValue string          `json:"alias_value" binding:"required" example:"BTLSTL1LBLK"`
	SKU        string          `json:"sku" binding:"required" example:"BOTTLE-1L-STEEL"`
	ApplyLimit int             `json:"apply_limit" example:"25"`
}

// --- Response Types ---

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"database not reachable"`
}

// DownloadURLResponse carries a presigned link to a stored document.
type DownloadURLResponse struct {
	URL string `json:"url" example:"https://packslip-documents.s3.ap-south-1.amazonaws.com/documents/..."`
}

// --- Generic Response Wrappers ---

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}
