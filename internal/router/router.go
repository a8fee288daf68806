package router

import (
	"ecommerce-backend/internal/handlers"
	"ecommerce-backend/internal/middleware"
	"ecommerce-backend/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Services struct {
	Auth     service.AuthService
	Catalog  service.CatalogService
	Carts    service.CartService
	Orders   service.OrderService
	Payments service.PaymentService
	Tokens   service.TokenProvider
}

func Router(svc Services, log *zap.Logger) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	authHandler := handlers.NewAuthHandler(svc.Auth, log)
	catalogHandler := handlers.NewCatalogHandler(svc.Catalog, log)
	cartHandler := handlers.NewCartHandler(svc.Carts, log)
	orderHandler := handlers.NewOrderHandler(svc.Orders, log)
	paymentHandler := handlers.NewPaymentHandler(svc.Payments, log)

	authRequired := middleware.AuthRequired(svc.Tokens, log)
	adminOnly := middleware.AdminRequired()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	users := r.Group("/api/users")
	{
		users.POST("/register", authHandler.Register)
		users.POST("/login", authHandler.Login)
		users.POST("/refresh", authHandler.Refresh)
		users.POST("/logout", authHandler.Logout)

		users.GET("/me", authRequired, authHandler.Me)
		users.PUT("/me", authRequired, authHandler.UpdateMe)
		users.GET("", authRequired, adminOnly, authHandler.ListUsers)
	}

	catalog := r.Group("/api/catalog")
	{
		catalog.GET("/categories", catalogHandler.ListCategories)
		catalog.GET("/categories/:id", catalogHandler.GetCategory)
		catalog.POST("/categories", authRequired, adminOnly, catalogHandler.CreateCategory)
		catalog.PUT("/categories/:id", authRequired, adminOnly, catalogHandler.UpdateCategory)
		catalog.DELETE("/categories/:id", authRequired, adminOnly, catalogHandler.DeleteCategory)

		catalog.GET("/products", catalogHandler.ListProducts)
		catalog.GET("/products/:id", catalogHandler.GetProduct)
		catalog.GET("/products/slug/:slug", catalogHandler.GetProductBySlug)
		catalog.POST("/products", authRequired, adminOnly, catalogHandler.CreateProduct)
		catalog.PUT("/products/:id", authRequired, adminOnly, catalogHandler.UpdateProduct)
		catalog.DELETE("/products/:id", authRequired, adminOnly, catalogHandler.DeleteProduct)
		catalog.POST("/products/:id/stock", authRequired, adminOnly, catalogHandler.SetProductStock)
		catalog.POST("/products/:id/variations", authRequired, adminOnly, catalogHandler.CreateVariation)

		catalog.GET("/variations", catalogHandler.ListVariations)
		catalog.GET("/variations/:id", catalogHandler.GetVariation)
		catalog.PUT("/variations/:id", authRequired, adminOnly, catalogHandler.UpdateVariation)
		catalog.DELETE("/variations/:id", authRequired, adminOnly, catalogHandler.DeleteVariation)
		catalog.POST("/variations/:id/stock", authRequired, adminOnly, catalogHandler.SetVariationStock)
	}

	orders := r.Group("/api/orders", authRequired)
	{
		orders.GET("/cart", cartHandler.GetOpenCart)
		orders.POST("/cart/items", cartHandler.AddItem)
		orders.PUT("/cart/items/:id", cartHandler.UpdateItem)
		orders.DELETE("/cart/items/:id", cartHandler.RemoveItem)
		orders.GET("/carts", cartHandler.ListCarts)
		orders.GET("/carts/:id", cartHandler.GetCart)

		orders.POST("/checkout", orderHandler.Checkout)
		orders.GET("", orderHandler.ListOrders)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.POST("/:id/cancel", orderHandler.CancelOrder)
		orders.PUT("/:id/status", adminOnly, orderHandler.UpdateOrderStatus)
		orders.GET("/:id/shipment", orderHandler.GetOrderShipment)

		orders.GET("/shipments", orderHandler.ListShipments)
		orders.GET("/shipments/:id", orderHandler.GetShipment)
		orders.PUT("/shipments/:id", adminOnly, orderHandler.UpdateShipment)
	}

	payments := r.Group("/api/payments")
	{
		// Callback шлюза приходит без токена
		payments.POST("/callback/", paymentHandler.Callback)

		payments.POST("/initiate", authRequired, paymentHandler.Initiate)
		payments.GET("", authRequired, paymentHandler.ListPayments)
		payments.GET("/:id", authRequired, paymentHandler.GetPayment)
	}

	return r
}
