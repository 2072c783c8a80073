package main

import (
	"context"
	"os"
	"time"

	_ "mrtrack/api/swagger" // swagger docs
	"mrtrack/internal/database"
	"mrtrack/internal/handler"
	"mrtrack/internal/middleware"
	"mrtrack/internal/repository"
	"mrtrack/internal/service"
	"mrtrack/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           MR Visit Tracker API
// @version         1.0
// @description     Tracks medical representative visits, medicine orders and the admin approval workflow.
// @host            localhost:8080
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	middleware.InitLogger("mrtrack-api")

	if err := godotenv.Load("configs/.env"); err != nil {
		log.Info().Msg("no configs/.env file found")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	log.Info().Msg("connected to PostgreSQL")

	// Optional leaderboard cache; the service runs without it
	var cache *redis.Client
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cache = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := cache.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis unreachable, leaderboard cache disabled")
			cache = nil
		}
		cancel()
	}

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTxManager(db)
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)
	doctorRepo := repository.NewDoctorRepository(db)
	medicalRepo := repository.NewMedicalRepository(db)
	medicineRepo := repository.NewMedicineRepository(db)
	visitRepo := repository.NewVisitRepository(db)
	medicalVisitRepo := repository.NewMedicalVisitRepository(db)
	monthlyReportRepo := repository.NewMonthlyReportRepository(db)

	userService := service.NewUserService(userRepo, tokenRepo, wsHub)
	doctorService := service.NewDoctorService(doctorRepo, wsHub)
	medicalService := service.NewMedicalService(medicalRepo)
	medicineService := service.NewMedicineService(medicineRepo)
	visitService := service.NewVisitService(visitRepo, medicalVisitRepo, doctorRepo, medicalRepo, medicineRepo, userRepo, txManager, wsHub)
	approvalService := service.NewApprovalService(visitRepo, medicalVisitRepo, doctorRepo, userRepo, medicalRepo, medicineRepo, tokenRepo, wsHub)
	reportService := service.NewReportService(visitRepo, medicalVisitRepo, userRepo, doctorRepo, medicalRepo, medicineRepo)
	statisticsService := service.NewStatisticsService(userRepo, doctorRepo, medicalRepo, visitRepo, medicalVisitRepo, cache)
	monthlyReportService := service.NewMonthlyReportService(monthlyReportRepo, userRepo, visitRepo, medicalVisitRepo, medicineRepo, txManager)

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	doctorHandler := handler.NewDoctorHandler(doctorService)
	medicalHandler := handler.NewMedicalHandler(medicalService)
	medicineHandler := handler.NewMedicineHandler(medicineService)
	visitHandler := handler.NewVisitHandler(visitService)
	approvalHandler := handler.NewApprovalHandler(approvalService)
	reportHandler := handler.NewReportHandler(reportService)
	statisticsHandler := handler.NewStatisticsHandler(statisticsService)
	monthlyReportHandler := handler.NewMonthlyReportHandler(monthlyReportService)

	// Set up Gin Router
	router := gin.Default()
	router.Use(middleware.RequestLogger())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint for approval-queue push updates
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes. Auth endpoints get a tighter per-IP rate limit.
	api := router.Group("/api")
	api.Use(middleware.RateLimit(20, 40))

	auth := router.Group("/api/auth")
	auth.Use(middleware.RateLimit(2, 5))
	userHandler.RegisterAuthRoutes(auth)

	userHandler.RegisterRoutes(api)
	doctorHandler.RegisterRoutes(api)
	medicalHandler.RegisterRoutes(api)
	medicineHandler.RegisterRoutes(api)
	visitHandler.RegisterRoutes(api)
	approvalHandler.RegisterRoutes(api)
	reportHandler.RegisterRoutes(api)
	statisticsHandler.RegisterRoutes(api)
	monthlyReportHandler.RegisterRoutes(api)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Info().Str("port", port).Msg("server listening")
	if err := router.Run(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
