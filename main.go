package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/artursniegowski/Recipe-APP-API/internal/handlers"
	"github.com/artursniegowski/Recipe-APP-API/internal/middleware"
	"github.com/artursniegowski/Recipe-APP-API/internal/models"
	"github.com/artursniegowski/Recipe-APP-API/internal/repositories"
	"github.com/artursniegowski/Recipe-APP-API/internal/services"
	"github.com/artursniegowski/Recipe-APP-API/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DATABASE_DSN", "") // empty -> local sqlite file
	viper.SetDefault("SQLITE_PATH", "recipe.db")
	viper.SetDefault("JWT_SECRET", "change-me-in-production")
	viper.SetDefault("RABBITMQ_URL", "") // empty -> event publishing disabled
	viper.SetDefault("UPLOAD_DIR", "uploads")
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")
	databaseDSN := viper.GetString("DATABASE_DSN")
	jwtSecret := viper.GetString("JWT_SECRET")
	rabbitMQURL := viper.GetString("RABBITMQ_URL")
	uploadDir := viper.GetString("UPLOAD_DIR")

	// --- Database ---
	// TranslateError maps driver unique-violation errors to
	// gorm.ErrDuplicatedKey, which the repositories depend on.
	gormConfig := &gorm.Config{TranslateError: true}
	var db *gorm.DB
	var err error
	if databaseDSN != "" {
		db, err = gorm.Open(postgres.Open(databaseDSN), gormConfig)
	} else {
		db, err = gorm.Open(sqlite.Open(viper.GetString("SQLITE_PATH")), gormConfig)
	}
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Recipe{},
		&models.Tag{},
		&models.Ingredient{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- RabbitMQ (optional) ---
	var mqClient *rabbitmq.Client
	if rabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: rabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
	} else {
		log.Println("RABBITMQ_URL not set, recipe event publishing disabled")
	}

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	recipeRepo := repositories.NewGORMRecipeRepository(db)
	tagRepo := repositories.NewGORMTagRepository(db)
	ingredientRepo := repositories.NewGORMIngredientRepository(db)

	// --- Services ---
	authService := services.NewAuthService(userRepo, jwtSecret)
	var events services.EventPublisher
	if mqClient != nil {
		events = mqClient
	}
	recipeService := services.NewRecipeService(recipeRepo, tagRepo, ingredientRepo, events)
	tagService := services.NewLabelService(tagRepo)
	ingredientService := services.NewLabelService(ingredientRepo)

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(authService)
	recipeHandler := handlers.NewRecipeHandler(recipeService, uploadDir)
	tagHandler := handlers.NewLabelHandler(tagService, "Tag", "tags")
	ingredientHandler := handlers.NewLabelHandler(ingredientService, "Ingredient", "ingredients")

	// --- Fiber App ---
	app := fiber.New()
	app.Use(logger.New())
	app.Static("/uploads", uploadDir)

	apiV1 := app.Group("/api/v1")
	authRequired := middleware.AuthRequired(authService)

	userHandler.RegisterRoutes(apiV1, authRequired)

	recipeGroup := apiV1.Group("/recipe", authRequired)
	recipeHandler.RegisterRoutes(recipeGroup)
	tagHandler.RegisterRoutes(recipeGroup)
	ingredientHandler.RegisterRoutes(recipeGroup)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		dbStatus := "connected"
		if sqlDB, err := db.DB(); err != nil || sqlDB.Ping() != nil {
			dbStatus = "unreachable"
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": dbStatus,
		})
	})

	// --- Recipe Event Consumer ---
	if mqClient != nil {
		go func() {
			log.Println("Starting RabbitMQ consumer for recipe events...")
			messageHandler := func(msg amqp.Delivery) error {
				log.Printf("Received Recipe Event (Tag: %d): %s", msg.DeliveryTag, string(msg.Body))
				return nil
			}
			if consumerErr := mqClient.ConsumeRecipeEvents(messageHandler); consumerErr != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
			}
		}()
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", appPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}
