package router

import (
	"bakery-service/internal/handlers"
	"bakery-service/internal/middleware"

	"github.com/gin-contrib/cors"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Orders    *handlers.OrderHandler
	Designer  *handlers.DesignerHandler
	Catalog   *handlers.CatalogHandler
	Analytics *handlers.AnalyticsHandler
	Directory *handlers.DirectoryHandler
}

// Router: mediaDir == "" — статика не раздаётся
func Router(h Handlers, tokens middleware.TokenParser, mediaDir string, log *zap.Logger) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "Idempotency-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	if mediaDir != "" {
		r.Static("/media", mediaDir)
	}

	api := r.Group("/api/v1")

	// публичные справочники
	api.GET("/cakes", h.Catalog.List)
	api.POST("/cakes/quote", h.Catalog.Quote)
	api.GET("/stores", h.Directory.Stores)
	api.GET("/stores/:id", h.Directory.Store)
	api.GET("/factories", h.Directory.Factories)
	api.GET("/factories/:id", h.Directory.Factory)

	authed := api.Group("", middleware.AuthRequired(tokens, log))

	orders := authed.Group("/orders")
	{
		orders.POST("", h.Orders.PlaceOrder)
		orders.GET("", h.Orders.ListOrders)
		orders.GET("/:id", h.Orders.GetOrder)
		orders.PUT("/:id/accept-all", h.Orders.AcceptAll)
		orders.PUT("/:id/ship-all", h.Orders.ShipAll)

		lines := orders.Group("/lines/:id")
		lines.PUT("/accept", h.Orders.Accept)
		lines.PUT("/reject", h.Orders.Reject)
		lines.PUT("/ship", h.Orders.Ship)
		lines.PUT("/receive", h.Orders.Receive)
		lines.PUT("/receive-with-condition", h.Orders.ReceiveWithCondition)
		lines.PUT("/quantity", h.Orders.UpdateQuantity)
	}

	designer := authed.Group("/designer-orders")
	{
		designer.POST("", h.Designer.Place)
		designer.GET("", h.Designer.List)
		designer.PUT("/:id", h.Designer.Update)
		designer.PUT("/:id/accept", h.Designer.Accept)
		designer.PUT("/:id/reject", h.Designer.Reject)
		designer.PUT("/:id/ship", h.Designer.Ship)
		designer.PUT("/:id/receive", h.Designer.Receive)
	}

	authed.GET("/analytics/store-receipts", h.Analytics.StoreReceipts)

	cakes := authed.Group("/cakes")
	{
		cakes.POST("", h.Catalog.Add)
		cakes.POST("/bulk", h.Catalog.BulkImport)
		cakes.PUT("/:id/price", h.Catalog.UpdatePrice)
		cakes.DELETE("/:id", h.Catalog.Delete)
	}

	return r
}
