package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/connect/internal/container"
	"github.com/joshua-takyi/connect/internal/handlers"
	"github.com/joshua-takyi/connect/internal/middleware"
)

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"service": "connect-api",
	})
}

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     container.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(middleware.Recovery(container.Logger))

	r.GET("/health", health)

	api := r.Group("/api")
	api.GET("/health", health)

	auth := middleware.AuthMiddleware(container.UserService, container.Logger)

	events := container.EventService
	eventRoutes := api.Group("/events")
	{
		eventRoutes.GET("", handlers.ListEvents(events))
		eventRoutes.GET("/search", handlers.SearchEvents(events))
		eventRoutes.GET("/:id", handlers.GetEvent(events))

		eventRoutes.POST("", auth, handlers.CreateEvent(events))
		eventRoutes.PUT("/:id", auth, handlers.UpdateEvent(events))
		eventRoutes.DELETE("/:id", auth, handlers.DeleteEvent(events))
		eventRoutes.POST("/:id/join", auth, handlers.JoinEvent(events))
		eventRoutes.POST("/:id/leave", auth, handlers.LeaveEvent(events))
		eventRoutes.GET("/:id/joined", auth, handlers.CheckJoined(events))
		eventRoutes.GET("/my", auth, handlers.MyEvents(events))
		eventRoutes.GET("/created", auth, handlers.CreatedEvents(events))
		eventRoutes.GET("/friends", auth, handlers.FriendsEvents(events))
	}

	users := container.UserService
	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/signup", handlers.Signup(users))
		authRoutes.POST("/login", handlers.Login(users))
		authRoutes.POST("/logout", auth, handlers.Logout(users))
		authRoutes.POST("/refresh", auth, handlers.Refresh(users))
		authRoutes.GET("/me", auth, handlers.Me(users))
	}

	protected := api.Group("")
	protected.Use(auth)

	userRoutes := protected.Group("/users")
	{
		userRoutes.GET("/me", handlers.Me(users))
		userRoutes.PUT("/me", handlers.UpdateProfile(users))
		userRoutes.GET("/profile", handlers.Me(users))
		userRoutes.PUT("/profile", handlers.UpdateProfile(users))
		userRoutes.POST("/me/avatar", handlers.UploadAvatar(users))
		userRoutes.GET("/discover", handlers.DiscoverUsers(users))
		userRoutes.GET("/search", handlers.SearchUsers(users))
		userRoutes.GET("/:id", handlers.GetUser(users))
	}

	friends := container.FriendService
	friendRoutes := protected.Group("/friends")
	{
		friendRoutes.GET("", handlers.ListFriends(friends))
		friendRoutes.GET("/requests/pending", handlers.PendingRequests(friends))
		friendRoutes.GET("/requests/sent", handlers.SentRequests(friends))
		friendRoutes.POST("/request/:userId", handlers.SendFriendRequest(friends))
		friendRoutes.POST("/accept/:requestId", handlers.AcceptFriendRequest(friends))
		friendRoutes.POST("/reject/:requestId", handlers.RejectFriendRequest(friends))
		friendRoutes.DELETE("/:friendId", handlers.RemoveFriend(friends))
	}

	favourites := container.FavouritesService
	favRoutes := protected.Group("/favorites")
	{
		favRoutes.GET("", handlers.GetUserFavourites(favourites))
		favRoutes.POST("/:eventId", handlers.AddToFavourites(favourites))
		favRoutes.DELETE("/:eventId", handlers.RemoveFromFavourite(favourites))
		favRoutes.GET("/:eventId/check", handlers.CheckFavourite(favourites))
	}

	return r
}
