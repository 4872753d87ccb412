package main

import (
	"context"
	"log"
	"os"

	_ "formsly/api/swagger" // swagger docs
	"formsly/internal/database"
	"formsly/internal/handler"
	"formsly/internal/middleware"
	"formsly/internal/repository"
	"formsly/internal/service"
	"formsly/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Formsly API
// @version         1.0
// @description     Team-scoped form, request and approval workflow API.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
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
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Permission middleware needs a DB handle for role lookups
	middleware.InitPermissionMiddleware(db)

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	formRepo := repository.NewFormRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	decisionRepo := repository.NewRequestSignerRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	preferenceRepo := repository.NewPreferenceRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)

	userService := service.NewUserService(userRepo, db)
	teamService := service.NewTeamService(teamRepo, auditRepo, txManager)
	formService := service.NewFormService(formRepo, teamRepo, auditRepo, txManager)
	requestService := service.NewRequestService(requestRepo, decisionRepo, formRepo, teamRepo, notificationRepo, auditRepo, txManager, wsHub)
	notificationService := service.NewNotificationService(notificationRepo)
	preferenceService := service.NewPreferenceService(preferenceRepo)
	auditService := service.NewAuditService(auditRepo)
	roleService := service.NewRoleService(roleRepo)
	dashboardService := service.NewDashboardService(dashboardRepo)

	// Seed roles and permissions so RequirePermission resolves on first boot
	if err := roleService.SeedDefaultRolesAndPermissions(context.Background()); err != nil {
		log.Printf("WARNING: Failed to seed roles and permissions: %v", err)
	}

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	teamHandler := handler.NewTeamHandler(teamService)
	formHandler := handler.NewFormHandler(formService)
	requestHandler := handler.NewRequestHandler(requestService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	preferenceHandler := handler.NewPreferenceHandler(preferenceService)
	auditHandler := handler.NewAuditHandler(auditService)
	roleHandler := handler.NewRoleHandler(roleService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)

	// Set up Gin Router
	router := gin.Default()

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

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	api := router.Group("/api")
	userHandler.RegisterRoutes(api)
	teamHandler.RegisterRoutes(api)
	formHandler.RegisterRoutes(api)
	requestHandler.RegisterRoutes(api)
	notificationHandler.RegisterRoutes(api)
	preferenceHandler.RegisterRoutes(api)
	auditHandler.RegisterRoutes(api)
	roleHandler.RegisterRoutes(api)
	dashboardHandler.RegisterRoutes(api)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
