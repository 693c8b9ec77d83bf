package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/yourusername/aegis-api/internal/config"
	"github.com/yourusername/aegis-api/internal/handler"
	"github.com/yourusername/aegis-api/internal/middleware"
	pgRepo "github.com/yourusername/aegis-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/aegis-api/internal/repository/redis"
	"github.com/yourusername/aegis-api/internal/service"
	"github.com/yourusername/aegis-api/pkg/auth"
	"github.com/yourusername/aegis-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	quizRepo := pgRepo.NewQuizRepo(db)
	questionRepo := pgRepo.NewQuestionRepo(db)
	registrationRepo := pgRepo.NewRegistrationRepo(db)
	attemptRepo := pgRepo.NewAttemptRepo(db)
	answerRepo := pgRepo.NewAnswerRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// Инициализируем JWT сервис
	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	// Инициализируем email-сервис (noop, если не включен в конфигурации)
	var emailService service.EmailService = &service.NoopEmailService{}
	if cfg.Email.Enabled {
		resendService, errEmail := service.NewResendEmailService(cfg.Email.APIKey, cfg.Email.From)
		if errEmail != nil {
			log.Printf("Email отключен: %v", errEmail)
		} else {
			emailService = resendService
			log.Println("Resend email-сервис инициализирован")
		}
	}

	// Инициализируем сервисы
	authService := service.NewAuthService(userRepo)
	quizService := service.NewQuizService(quizRepo, questionRepo, registrationRepo, userRepo, cacheRepo)
	sessionService := service.NewSessionService(
		quizRepo, questionRepo, registrationRepo, attemptRepo, answerRepo,
		userRepo, cacheRepo, emailService,
	)

	// Инициализируем обработчики и middleware
	authHandler := handler.NewAuthHandler(authService, jwtService, cfg.JWT.ExpirationHrs)
	quizHandler := handler.NewQuizHandler(quizService, sessionService)
	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Настраиваем роутер
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := router.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", rateLimiter.Limit(middleware.StrictAuthRateLimitConfig()), authHandler.Register)
			authRoutes.POST("/login", rateLimiter.Limit(middleware.StrictAuthRateLimitConfig()), authHandler.Login)
			authRoutes.GET("/me", authMiddleware.RequireAuth(), authHandler.GetMe)
		}

		quizzes := api.Group("/quizzes", authMiddleware.RequireAuth())
		{
			// Admin-гейт внутри сервисов: роль перечитывается из БД на каждый вызов
			quizzes.POST("", quizHandler.CreateQuiz)
			quizzes.GET("", quizHandler.ListQuizzes)
			quizzes.GET("/upcoming", quizHandler.GetUpcomingQuizzes)

			quiz := quizzes.Group("/:id", middleware.ExtractUintParam("id", "quizID"))
			{
				quiz.GET("", quizHandler.GetQuizDetail)
				quiz.DELETE("", quizHandler.DeleteQuiz)
				quiz.GET("/session", quizHandler.GetSessionStatus)
				quiz.GET("/questions", quizHandler.GetQuestions)
				quiz.POST("/register", quizHandler.RegisterForQuiz)
				quiz.POST("/start", quizHandler.StartQuiz)
				quiz.POST("/auto-start", quizHandler.AutoStartQuiz)
				quiz.POST("/answers", rateLimiter.Limit(middleware.SubmitRateLimitConfig()), quizHandler.SubmitAnswer)
				quiz.GET("/answers", quizHandler.GetMyAnswers)
				quiz.GET("/leaderboard", quizHandler.GetLeaderboard)
				quiz.GET("/leaderboard/export", quizHandler.ExportLeaderboard)
			}
		}
	}

	// Запускаем HTTP сервер с корректным завершением
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Сервер запущен на порту %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Ошибка сервера: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Завершение работы сервера...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Принудительное завершение сервера: %v", err)
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Ошибка закрытия Redis клиента: %v", err)
	}

	log.Println("Сервер остановлен")
}
