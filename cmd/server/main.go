package main

import (
	"fmt"
	"log"
	"net/http"

	"roomchat/backend/internal/auth"
	"roomchat/backend/internal/chat"
	"roomchat/backend/internal/config"
	"roomchat/backend/internal/database"
	"roomchat/backend/internal/handler"
	"roomchat/backend/internal/hub"
	"roomchat/backend/internal/store"

	"github.com/gin-gonic/gin"

	// Swagger imports
	_ "roomchat/backend/docs" // This is important for swag to find the generated docs

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func init() {
	config.LoadConfig()
}

// @title           RoomChat API
// @version         1.0
// @description     This is the API for the RoomChat service.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	// Connect to the database
	database.Connect(config.AppConfig.DatabaseURL)

	services := chat.NewServices(store.New(database.DB), hub.GlobalHub)

	roomHandler := handler.NewRoomHandler(services)
	messageHandler := handler.NewMessageHandler(services)
	reactionHandler := handler.NewReactionHandler(services)
	typingHandler := handler.NewTypingHandler(services)
	wsHandler := handler.NewWSHandler(hub.GlobalHub)

	router := gin.Default()

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	{
		// Auth routes
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/register", handler.RegisterUser)
			authRoutes.POST("/login", handler.LoginUser)
		}

		// User routes (protected)
		userRoutes := apiV1.Group("/users")
		userRoutes.Use(auth.AuthMiddleware())
		{
			userRoutes.GET("/me", handler.GetMe)
		}

		// Room routes (protected)
		roomRoutes := apiV1.Group("/rooms")
		roomRoutes.Use(auth.AuthMiddleware())
		{
			roomRoutes.GET("", roomHandler.ListRooms)
			roomRoutes.POST("", roomHandler.CreateRoom)
			roomRoutes.POST("/join", roomHandler.JoinRoom)
			roomRoutes.GET("/:id", roomHandler.GetRoom)
			roomRoutes.POST("/:id/read", roomHandler.MarkRead)

			roomRoutes.GET("/:id/messages", messageHandler.ListMessages)
			roomRoutes.POST("/:id/messages", messageHandler.CreateMessage)
			roomRoutes.PATCH("/:id/messages/:messageID", messageHandler.EditMessage)
			roomRoutes.DELETE("/:id/messages/:messageID", messageHandler.DeleteMessage)

			roomRoutes.POST("/:id/reactions", reactionHandler.ToggleReaction)
		}

		// WebSocket subscription (token also accepted via query parameter)
		wsRoutes := apiV1.Group("/rooms")
		wsRoutes.Use(auth.WSAuthMiddleware())
		{
			wsRoutes.GET("/:id/ws", wsHandler.SubscribeRoom)
		}

		// Typing indicator (protected)
		typingRoutes := apiV1.Group("/typing")
		typingRoutes.Use(auth.AuthMiddleware())
		{
			typingRoutes.POST("", typingHandler.SendTyping)
		}
	}

	fmt.Printf("Server is running on %s\n", config.AppConfig.ServerAddr)
	fmt.Println("Swagger UI is available at http://localhost:8080/swagger/index.html")
	log.Fatal(router.Run(config.AppConfig.ServerAddr))
}
