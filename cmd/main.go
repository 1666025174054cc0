package main

import (
	"context"
	"fmt"
	"os"

	goredis "github.com/yungbote/mindpalace-backend/internal/clients/redis"
	"github.com/yungbote/mindpalace-backend/internal/db"
	"github.com/yungbote/mindpalace-backend/internal/handlers"
	"github.com/yungbote/mindpalace-backend/internal/logger"
	"github.com/yungbote/mindpalace-backend/internal/middleware"
	"github.com/yungbote/mindpalace-backend/internal/repos"
	"github.com/yungbote/mindpalace-backend/internal/server"
	"github.com/yungbote/mindpalace-backend/internal/services"
	"github.com/yungbote/mindpalace-backend/internal/sse"
	"github.com/yungbote/mindpalace-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	floorRepo := repos.NewFloorRepo(thePG, log)
	roomRepo := repos.NewRoomRepo(thePG, log)
	objectRepo := repos.NewRoomObjectRepo(thePG, log)
	pdfRepo := repos.NewPDFFileRepo(thePG, log)
	floorRoomRepo := repos.NewFloorRoomRepo(thePG, log)
	assocRepo := repos.NewAssociationRepo(thePG, log)
	runRepo := repos.NewPalaceGenerationRunRepo(thePG, log)

	// SSE
	log.Info("Setting up SSE hub now...")
	sseHub := sse.NewSSEHub(log)

	// Services
	log.Info("Setting up Services from main...")
	bucketService, err := services.NewBucketService(log)
	if err != nil {
		log.Warn("Could not init BucketService", "error", err)
	}
	groqClient, err := services.NewGroqClient(log)
	if err != nil {
		log.Error("Could not init GroqClient", "error", err)
		os.Exit(1)
	}
	falClient, err := services.NewFalClient(log)
	if err != nil {
		log.Warn("Could not init FalClient, object image isolation disabled", "error", err)
		falClient = nil
	}
	regenLock, err := goredis.NewRegenLock(log)
	if err != nil {
		log.Warn("Could not init redis regeneration lock, using in-process fallback", "error", err)
		regenLock = goredis.NewLocalRegenLock(log)
	}

	conceptService := services.NewConceptService(groqClient, log)
	associationService := services.NewAssociationService(groqClient, log)
	visionService := services.NewVisionService(groqClient, log)

	pdfService := services.NewPDFService(thePG, log, floorRepo, pdfRepo, bucketService)
	floorService := services.NewFloorService(thePG, log, sseHub, floorRepo, roomRepo, objectRepo, floorRoomRepo, assocRepo)
	roomService := services.NewRoomService(thePG, log, sseHub, roomRepo, objectRepo, bucketService, visionService, falClient)
	generationService := services.NewPalaceGenerationService(
		thePG,
		log,
		sseHub,
		floorRepo,
		roomRepo,
		objectRepo,
		pdfRepo,
		floorRoomRepo,
		assocRepo,
		runRepo,
		conceptService,
		associationService,
		regenLock,
	)
	generationService.StartWorker(context.Background())

	// Handlers
	log.Info("Setting up handlers from main...")
	healthcheckHandler := handlers.NewHealthcheckHandler()
	floorHandler := handlers.NewFloorHandler(log, floorService, pdfService)
	roomHandler := handlers.NewRoomHandler(log, roomService)
	palaceHandler := handlers.NewPalaceHandler(log, generationService, runRepo)
	sseHandler := handlers.NewSSEHandler(log, sseHub)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware, err := middleware.NewAuthMiddleware(log)
	if err != nil {
		log.Error("Could not init AuthMiddleware", "error", err)
		os.Exit(1)
	}

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthMiddleware:     authMiddleware,
		HealthcheckHandler: healthcheckHandler,
		FloorHandler:       floorHandler,
		RoomHandler:        roomHandler,
		PalaceHandler:      palaceHandler,
		SSEHandler:         sseHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}
