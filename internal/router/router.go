package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "packslip/docs" // registers the OpenAPI document with swag
	"packslip/internal/handler"
	"packslip/internal/middleware"
)

// Handlers groups the HTTP handlers mounted by Setup.
type Handlers struct {
	Document *handler.DocumentHandler
	Order    *handler.OrderHandler
	Catalog  *handler.CatalogHandler
	Stats    *handler.StatsHandler
	Health   *handler.HealthHandler
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(h Handlers, allowedOrigins []string) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger("/healthz", "/readyz"))
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	// Shipment documents
	docs := v1.Group("/documents")
	docs.POST("", h.Document.Upload)
	docs.GET("", h.Document.List)
	docs.GET("/:id", h.Document.GetByID)
	docs.GET("/:id/diagnostics", h.Document.GetDiagnostics)
	docs.GET("/:id/download", h.Document.Download)
	docs.POST("/:id/retry", h.Document.Retry)

	// Parse without persisting anything
	v1.POST("/diagnostics/parse", h.Document.DryRun)

	// Order queue
	orders := v1.Group("/orders")
	orders.GET("", h.Order.List)
	orders.GET("/:id", h.Order.GetByID)
	orders.POST("/:id/list", h.Order.MarkListed)
	orders.POST("/:id/archive", h.Order.Archive)

	v1.GET("/picklist", h.Order.PickList)
	v1.GET("/picklist/export", h.Order.ExportPickList)

	// Catalog and identifier mapping
	catalog := v1.Group("/catalog")
	catalog.POST("/products", h.Catalog.CreateProduct)
	catalog.GET("/products", h.Catalog.ListProducts)
	catalog.GET("/products/:sku", h.Catalog.GetProduct)
	catalog.POST("/aliases", h.Catalog.CreateAlias)
	catalog.POST("/mappings/continue", h.Catalog.ContinueMapping)
	catalog.GET("/resolve", h.Catalog.Resolve)

	v1.GET("/stats", h.Stats.GetStats)

	return r
}
