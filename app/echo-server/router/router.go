package router

import (
	"toutaunclicla/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupAuthRoutes(api *echo.Group, handler *rest.UserHandler, authRequired, rateLimit echo.MiddlewareFunc) {
	auth := api.Group("/auth")

	auth.POST("/register", handler.Register, rateLimit)
	auth.POST("/login", handler.Login, rateLimit)
	auth.POST("/verify-email", handler.VerifyEmail, rateLimit)
	auth.POST("/resend-verification", handler.ResendVerification, rateLimit)

	auth.POST("/logout", handler.Logout, authRequired)
	auth.GET("/me", handler.Me, authRequired)
	auth.PUT("/me", handler.UpdateProfile, authRequired)
	auth.PUT("/change-password", handler.ChangePassword, authRequired)
}

func SetupUserRoutes(api *echo.Group, handler *rest.UserHandler, authRequired, adminOnly echo.MiddlewareFunc) {
	users := api.Group("/users", authRequired, adminOnly)

	users.GET("", handler.ListUsers)
	users.PUT("/:id/block", handler.BlockUser)
	users.PUT("/:id/unblock", handler.UnblockUser)
}

func SetupCategoryRoutes(api *echo.Group, handler *rest.CategoryHandler, authRequired, adminOnly echo.MiddlewareFunc) {
	categories := api.Group("/categories")

	categories.GET("", handler.GetAllCategories)
	categories.GET("/:id", handler.GetCategoryByID)
	categories.POST("", handler.CreateCategory, authRequired, adminOnly)
	categories.PUT("/:id", handler.UpdateCategory, authRequired, adminOnly)
	categories.DELETE("/:id", handler.DeleteCategory, authRequired, adminOnly)
}

func SetupProductRoutes(api *echo.Group, handler *rest.ProductHandler, reviews *rest.ReviewHandler, authRequired, adminOnly echo.MiddlewareFunc) {
	products := api.Group("/products")

	products.GET("", handler.GetAllProducts)
	products.GET("/:id", handler.GetProductByID)
	products.GET("/:id/reviews", reviews.ListProductReviews)
	products.POST("", handler.CreateProduct, authRequired, adminOnly)
	products.PUT("/:id", handler.UpdateProduct, authRequired, adminOnly)
	products.DELETE("/:id", handler.DeleteProduct, authRequired, adminOnly)
}

func SetupCartRoutes(api *echo.Group, handler *rest.CartHandler, authRequired echo.MiddlewareFunc) {
	cart := api.Group("/cart", authRequired)

	cart.GET("", handler.GetCart)
	cart.DELETE("", handler.Clear)
	cart.POST("/items", handler.AddItem)
	cart.PUT("/items/:id", handler.UpdateItem)
	cart.DELETE("/items/:id", handler.RemoveItem)
	cart.POST("/apply-coupon", handler.ApplyCoupon)
	cart.GET("/with-coupon", handler.WithCoupon)
}

func SetupFavoriteRoutes(api *echo.Group, handler *rest.FavoriteHandler, authRequired echo.MiddlewareFunc) {
	favorites := api.Group("/favorites", authRequired)

	favorites.GET("", handler.ListFavorites)
	favorites.POST("", handler.AddFavorite)
	favorites.GET("/:productId/check", handler.CheckFavorite)
	favorites.DELETE("/:productId", handler.RemoveFavorite)
}

func SetupAddressRoutes(api *echo.Group, handler *rest.AddressHandler, authRequired echo.MiddlewareFunc) {
	addresses := api.Group("/addresses", authRequired)

	addresses.GET("", handler.ListAddresses)
	addresses.POST("", handler.CreateAddress)
	addresses.GET("/:id", handler.GetAddress)
	addresses.PUT("/:id", handler.UpdateAddress)
	addresses.DELETE("/:id", handler.DeleteAddress)
	addresses.PUT("/:id/default", handler.SetDefaultAddress)
}

func SetupReviewRoutes(api *echo.Group, handler *rest.ReviewHandler, authRequired echo.MiddlewareFunc) {
	reviews := api.Group("/reviews", authRequired)

	reviews.GET("/me", handler.ListMyReviews)
	reviews.POST("", handler.CreateReview)
	reviews.PUT("/:id", handler.UpdateReview)
	reviews.DELETE("/:id", handler.DeleteReview)
}

func SetOrdersRoutes(api *echo.Group, ordersHandler *rest.OrdersHandler, authRequired, adminOnly echo.MiddlewareFunc) {
	orders := api.Group("/orders", authRequired)

	orders.GET("/my-orders", ordersHandler.ListMyOrders)
	orders.POST("", ordersHandler.CreateOrder)
	orders.GET("/:id", ordersHandler.GetOrderByID)
	orders.PUT("/:id/cancel", ordersHandler.CancelOrder)

	orders.GET("", ordersHandler.ListOrders, adminOnly)
	orders.PUT("/:id/status", ordersHandler.UpdateStatus, adminOnly)
}

func SetPaymentsRoutes(api *echo.Group, paymentsHandler *rest.PaymentsHandler, authRequired echo.MiddlewareFunc) {
	stripe := api.Group("/stripe", authRequired)

	stripe.POST("/payment-intent", paymentsHandler.CreatePaymentIntent)
	stripe.POST("/confirm-payment", paymentsHandler.ConfirmPayment)
	stripe.GET("/payment-methods", paymentsHandler.ListPaymentMethods)
	stripe.POST("/payment-methods", paymentsHandler.AddPaymentMethod)
	stripe.DELETE("/payment-methods/:id", paymentsHandler.RemovePaymentMethod)
}
