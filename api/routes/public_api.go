package routes

import (
	"bookswap/api/handlers"
	"bookswap/api/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func PublicApi(router *gin.Engine) *gin.RouterGroup {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1/")

	// Публичные endpoint'ы
	public := api.Group("")
	public.Use(middleware.OptionalAuthMiddleware())
	{
		public.POST("auth/register", handlers.Register)
		public.POST("auth/login", handlers.Login)

		public.GET("books/get/:id", handlers.GetBook)
		public.GET("books/get/:id/info", handlers.BookInfo)
		public.GET("books/available", handlers.AvailableBooks)
		public.GET("books/search", handlers.SearchBooks)
		public.GET("books/genres", handlers.Genres)
		public.GET("books/featured", handlers.FeaturedBooks)

		public.GET("statistics", handlers.Statistics)
	}

	// Endpoint'ы под аутентификацией
	private := api.Group("")
	private.Use(middleware.AuthMiddleware())
	{
		private.POST("auth/logout", handlers.Logout)

		private.POST("books", handlers.CreateBook)
		private.PUT("books/:id", handlers.UpdateBook)
		private.DELETE("books/:id", handlers.DeleteBook)
		private.POST("books/:id/toggle", handlers.ToggleAvailability)
		private.GET("books/my", handlers.MyBooks)

		private.POST("requests", handlers.CreateRequest)
		private.GET("requests/my", handlers.MyRequests)
		private.GET("requests/incoming", handlers.IncomingRequests)
		private.POST("requests/:id/accept", handlers.AcceptRequest)
		private.POST("requests/:id/decline", handlers.DeclineRequest)
		private.POST("requests/:id/cancel", handlers.CancelRequest)

		private.GET("loans/my", handlers.MyLoans)
		private.GET("loans/lent", handlers.MyLentBooks)
		private.POST("loans/:id/return", handlers.ReturnBook)

		private.POST("wishlist", handlers.AddToWishlist)
		private.GET("wishlist", handlers.GetWishlist)
		private.DELETE("wishlist/:id", handlers.DeleteFromWishlist)
		private.GET("wishlist/availability", handlers.WishlistWithAvailability)
		private.POST("wishlist/:id/matches", handlers.FindWishlistMatches)

		private.GET("profile/my", handlers.MyProfile)
		private.PUT("profile", handlers.UpdateProfile)

		private.GET("queue/stats", handlers.QueueStats)
		private.GET("ws/notifications", handlers.WSNotificationsHandler)
	}

	return api
}
