package main

import (
	"fmt"
	"net/http"
	"time"

	_ "github.com/dlopezm/gin-task-api/docs" // Import generated docs
	"github.com/dlopezm/gin-task-api/internal/auth"
	"github.com/dlopezm/gin-task-api/internal/config"
	"github.com/dlopezm/gin-task-api/internal/controllers"
	"github.com/dlopezm/gin-task-api/internal/database"
	"github.com/dlopezm/gin-task-api/internal/middleware"
	"github.com/dlopezm/gin-task-api/internal/models"
	"github.com/dlopezm/gin-task-api/internal/services"
	"github.com/dlopezm/gin-task-api/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/swaggo/files"
	"github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

var (
	db               *gorm.DB
	configuration    *config.Config
	documentStore    *storage.DocumentStore
	tokenIssuer      *auth.TokenIssuer
	clientTokens     *auth.ClientTokenService
	authController   *controllers.AuthController
	taskController   controllers.TaskController
	usersController  *controllers.UsersController
	clientController *controllers.ClientController
)

// @title Task API
// @version 1.0
// @description A task management API with role-based access control
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load environment variables
	loadDotenvFile()

	// Initialize logger
	setUpLogger()

	// Load configuration
	configuration = loadConfig()

	// Initialize database connection
	setupDatabase(configuration)

	// Initialize attachment storage
	var err error
	documentStore, err = storage.NewDocumentStore(configuration.UploadDir)
	checkPanicErr(err)

	// Initialize services and controllers
	tokenTTL := time.Duration(configuration.TokenTTLHours) * time.Hour
	tokenIssuer = auth.NewTokenIssuer(configuration.JWTSecret, tokenTTL)
	clientTokens = auth.NewClientTokenService(db, configuration.JWTSecret, tokenTTL)

	userService := services.NewUserService(db)
	taskService := services.NewTaskService(db)
	clientService := services.NewClientService(db)

	authController = controllers.NewAuthController(userService, tokenIssuer)
	taskController = controllers.NewTaskController(taskService, documentStore)
	usersController = controllers.NewUsersController(userService)
	clientController = controllers.NewClientController(clientService)

	// Initialize Gin router
	var router *gin.Engine = setupRouter()

	// Start the server
	log.Infof("Starting server on %s:%d", configuration.Host, configuration.Port)
	router.Run(fmt.Sprintf("%v:%d", configuration.Host, configuration.Port))
}

// checkPanicErr checks if an error occurred and panics if it did
func checkPanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger initializes the logger with a JSON formatter and sets the log level based on the environment
func setUpLogger() {
	log.SetFormatter(&log.JSONFormatter{})
	environment := config.GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(log.DebugLevel)
	case "production":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}

// loadConfig loads the application configuration from environment variables
// It returns a Config struct or panics if there is an error
func loadConfig() *config.Config {
	log.Info("Loading configuration from environment variables")
	conf, err := config.LoadConfig()
	checkPanicErr(err)
	log.Infof("Configuration loaded: %+v", conf)
	return conf
}

// setupDatabase initializes the database connection and migrates the schema
func setupDatabase(conf *config.Config) *gorm.DB {
	var err error
	db, err = database.InitDatabase(database.FromAppConfig(conf))
	checkPanicErr(err)

	// Migrate the schema
	err = db.AutoMigrate(&models.User{}, &models.Task{}, &models.APIClient{}, &models.ClientToken{})
	checkPanicErr(err)

	// Seed an initial admin in development so the API is usable out of the box
	if conf.Environment == "development" {
		seedAdminUser()
	}
	return db
}

// seedAdminUser creates a development admin account if no user exists yet
func seedAdminUser() {
	var count int64
	db.Model(&models.User{}).Count(&count)
	if count > 0 {
		log.Info("Database already has users, skipping admin seed")
		return
	}

	admin := models.User{
		Name:     "Admin",
		Email:    "admin@example.com",
		Password: config.GetEnvWithDefault("ADMIN_PASSWORD", "admin123"),
		Role:     models.RoleAdmin,
	}
	if err := admin.HashPassword(); err != nil {
		log.WithError(err).Error("Failed to hash seed admin password")
		return
	}
	if err := db.Create(&admin).Error; err != nil {
		log.WithError(err).Error("Failed to seed admin user")
		return
	}
	log.WithField("email", admin.Email).Info("Seeded development admin user")
}

// setupRouter initializes the Gin router and sets up the routes
// It returns the configured router
func setupRouter() *gin.Engine {
	// Initialize Gin router
	router := gin.Default()

	// Define routes
	setupRoutes(router)

	return router
}

// setupRoutes defines the routes for the Gin router
func setupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", healthCheckHandler)

	// Stored attachments
	router.Static("/uploads", documentStore.Dir())

	v1 := router.Group("/api/v1")
	{
		// Authentication routes (public)
		authApi := v1.Group("/auth")
		{
			authApi.POST("/register", authController.Register)
			authApi.POST("/login", authController.Login)
			authApi.POST("/token", clientTokens.HandleToken)
		}

		// Protected routes (requires JWT authentication)
		protectedApi := v1.Group("")
		protectedApi.Use(middleware.JWTAuth([]byte(configuration.JWTSecret)))
		{
			tasksApi := protectedApi.Group("/tasks")
			{
				tasksApi.GET("", taskController.ListTasks)
				tasksApi.POST("", taskController.CreateTask)
				tasksApi.GET("/:id", taskController.GetTaskByID)
				tasksApi.PUT("/:id", taskController.UpdateTask)
				tasksApi.DELETE("/:id", taskController.DeleteTask)
			}

			usersApi := protectedApi.Group("/users")
			{
				// List, create and delete are admin-only; get and update
				// resolve self-or-admin inside the service.
				usersApi.GET("", middleware.RequireRole(models.RoleAdmin), usersController.ListUsers)
				usersApi.POST("", middleware.RequireRole(models.RoleAdmin), usersController.CreateUser)
				usersApi.GET("/:id", usersController.GetUser)
				usersApi.PUT("/:id", usersController.UpdateUser)
				usersApi.DELETE("/:id", middleware.RequireRole(models.RoleAdmin), usersController.DeleteUser)
			}

			clientsApi := protectedApi.Group("/clients")
			clientsApi.Use(middleware.RequireRole(models.RoleAdmin))
			{
				clientsApi.POST("", clientController.CreateClient)
				clientsApi.GET("", clientController.ListClients)
				clientsApi.DELETE("/:id", clientController.DeleteClient)
			}
		}
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// healthCheckHandler handles the health check endpoint
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "gin-task-api",
	})
}
