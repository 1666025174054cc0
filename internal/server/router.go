package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yungbote/mindpalace-backend/internal/handlers"
	"github.com/yungbote/mindpalace-backend/internal/middleware"
)

type RouterConfig struct {
	AuthMiddleware     *middleware.AuthMiddleware
	HealthcheckHandler *handlers.HealthcheckHandler
	FloorHandler       *handlers.FloorHandler
	RoomHandler        *handlers.RoomHandler
	PalaceHandler      *handlers.PalaceHandler
	SSEHandler         *handlers.SSEHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", cfg.HealthcheckHandler.Healthcheck)

	// ===============
	// || Protected ||
	// ===============
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())

	// SSE
	api.GET("/sse/stream", cfg.SSEHandler.Stream)

	// Floors
	api.GET("/floors", cfg.FloorHandler.ListFloors)
	api.POST("/floors", cfg.FloorHandler.CreateFloor)
	api.GET("/floors/:id", cfg.FloorHandler.GetFloor)
	api.PATCH("/floors/:id", cfg.FloorHandler.UpdateFloor)
	api.DELETE("/floors/:id", cfg.FloorHandler.DeleteFloor)
	api.GET("/floors/:id/rooms", cfg.FloorHandler.ListFloorRooms)
	api.POST("/floors/:id/rooms", cfg.FloorHandler.AttachRoom)
	api.DELETE("/floors/:id/rooms/:roomId", cfg.FloorHandler.DetachRoom)
	api.POST("/floors/:id/files", cfg.FloorHandler.UploadFile)
	api.GET("/floors/:id/files", cfg.FloorHandler.ListFiles)
	api.GET("/floors/:id/associations", cfg.FloorHandler.ListAssociations)
	api.GET("/floors/:id/rooms/:roomId/walkthrough", cfg.FloorHandler.Walkthrough)

	// Generation
	api.POST("/floors/:id/generate", cfg.PalaceHandler.Generate)
	api.GET("/floors/:id/generation", cfg.PalaceHandler.GetGeneration)

	// Rooms
	api.GET("/rooms", cfg.RoomHandler.ListRooms)
	api.POST("/rooms", cfg.RoomHandler.CreateRoom)
	api.GET("/rooms/:id", cfg.RoomHandler.GetRoom)
	api.PATCH("/rooms/:id", cfg.RoomHandler.UpdateRoom)
	api.DELETE("/rooms/:id", cfg.RoomHandler.DeleteRoom)
	api.POST("/rooms/:id/objects", cfg.RoomHandler.AddObject)
	api.POST("/rooms/:id/photo", cfg.RoomHandler.AddObjectsFromPhoto)
	api.PATCH("/rooms/:id/objects/:objectId", cfg.RoomHandler.UpdateObject)
	api.DELETE("/rooms/:id/objects/:objectId", cfg.RoomHandler.DeleteObject)

	return router
}
