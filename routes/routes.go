package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shopswift-api/apperrors"
	"shopswift-api/config"
	"shopswift-api/controllers"
	"shopswift-api/middleware"
	"shopswift-api/repository"
	"shopswift-api/services"
)

// Controllers bundles every controller the router mounts.
type Controllers struct {
	Auth     *controllers.AuthController
	User     *controllers.UserController
	Product  *controllers.ProductController
	Category *controllers.CategoryController
	Cart     *controllers.CartController
	Order    *controllers.OrderController
	Payment  *controllers.PaymentController
	Review   *controllers.ReviewController
}

// Register mounts the whole API surface under /api.
func Register(r *gin.Engine, cfg *config.Config, ctrl Controllers, tokens *services.TokenService, users repository.UserRepository) {
	protect := middleware.Protect(tokens, users)
	admin := middleware.RequireAdmin()
	catalog := middleware.RequireCatalogManager()
	authLimit := middleware.RateLimit(cfg.AuthRateLimitPerMin, time.Minute, cfg.AuthRateLimitBurst)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "shopswift-api"})
	})

	api := r.Group("/api")

	// Webhook sits outside auth: the gateway signs its own requests.
	api.POST("/payment/webhook", ctrl.Payment.Webhook)

	auth := api.Group("/auth")
	{
		auth.POST("/signup", authLimit, ctrl.Auth.Signup)
		auth.POST("/signin", authLimit, ctrl.Auth.Signin)
		auth.POST("/refresh-token", authLimit, ctrl.Auth.Refresh)
		auth.POST("/forgot-password", authLimit, ctrl.Auth.ForgotPassword)
		auth.PATCH("/reset-password/:token", authLimit, ctrl.Auth.ResetPassword)
		auth.POST("/logout", protect, ctrl.Auth.Logout)
		auth.PATCH("/update-password", protect, ctrl.Auth.UpdatePassword)
		auth.GET("/me", protect, ctrl.User.GetMe)
	}

	users_ := api.Group("/users")
	{
		users_.GET("/me", protect, ctrl.User.GetMe)
		users_.PATCH("/me", protect, ctrl.User.UpdateMe)
		users_.DELETE("/me", protect, ctrl.User.DeactivateMe)

		users_.GET("", protect, admin, ctrl.User.ListUsers)
		users_.GET("/:id", protect, admin, ctrl.User.GetUser)
		users_.PATCH("/:id/role", protect, admin, ctrl.User.UpdateUserRole)
		users_.DELETE("/:id", protect, admin, ctrl.User.DeleteUser)
	}

	products := api.Group("/products")
	{
		products.GET("", ctrl.Product.ListProducts)
		products.GET("/mine", protect, catalog, ctrl.Product.ListMyProducts)
		products.GET("/:id", ctrl.Product.GetProduct)
		products.GET("/slug/:slug", ctrl.Product.GetProductBySlug)
		products.GET("/vendor/:vendorId", ctrl.Product.ListVendorProducts)
		products.POST("", protect, catalog, ctrl.Product.CreateProduct)
		products.PATCH("/:id", protect, catalog, ctrl.Product.UpdateProduct)
		products.DELETE("/:id", protect, catalog, ctrl.Product.DeleteProduct)

		products.GET("/:id/reviews", ctrl.Review.ListProductReviews)
		products.POST("/:id/reviews", protect, ctrl.Review.CreateReview)
	}

	categories := api.Group("/category")
	{
		categories.GET("", ctrl.Category.ListCategories)
		categories.GET("/:id", ctrl.Category.GetCategory)
		categories.GET("/:id/products", ctrl.Category.ListCategoryProducts)
		categories.POST("", protect, admin, ctrl.Category.CreateCategory)
		categories.PATCH("/:id", protect, admin, ctrl.Category.UpdateCategory)
		categories.DELETE("/:id", protect, admin, ctrl.Category.DeleteCategory)
	}

	cart := api.Group("/cart", protect)
	{
		cart.GET("", ctrl.Cart.GetCart)
		cart.POST("", ctrl.Cart.AddItem)
		cart.PUT("", ctrl.Cart.UpdateItem)
		cart.DELETE("/item/:productId", ctrl.Cart.RemoveItem)
		cart.DELETE("", ctrl.Cart.ClearCart)
	}

	orders := api.Group("/orders", protect)
	{
		orders.POST("", ctrl.Order.PlaceOrder)
		orders.GET("", ctrl.Order.ListMyOrders)
		orders.GET("/all", admin, ctrl.Order.ListAllOrders)
		orders.GET("/vendor", catalog, ctrl.Order.ListVendorOrders)
		orders.GET("/:id", ctrl.Order.GetOrder)
		orders.PUT("/:id/status", ctrl.Order.UpdateOrderStatus)
		orders.PUT("/:id/pay", ctrl.Order.MarkOrderPaid)
	}

	payments := api.Group("/payment", protect)
	{
		payments.POST("/process", ctrl.Payment.ProcessPayment)
		payments.POST("/refund", ctrl.Payment.RefundPayment)
		payments.GET("/:orderId", ctrl.Payment.GetPayment)
	}

	reviews := api.Group("/reviews", protect)
	{
		reviews.PATCH("/:id", ctrl.Review.UpdateReview)
		reviews.DELETE("/:id", ctrl.Review.DeleteReview)
	}

	r.NoRoute(func(c *gin.Context) {
		_ = c.Error(apperrors.NotFound("Route not found"))
	})
}
