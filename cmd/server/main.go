package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // Драйвер PostgreSQL

	"github.com/asap-project/pickuplines/internal/handlers"
	appmiddleware "github.com/asap-project/pickuplines/internal/middleware"
	"github.com/asap-project/pickuplines/internal/repository"
	"github.com/asap-project/pickuplines/internal/services"
	"github.com/asap-project/pickuplines/internal/storage"
	"github.com/asap-project/pickuplines/migrations"
)

const (
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 10 * time.Second
	defaultIdleTimeout  = 30 * time.Second

	// Время жизни токена сессии — 1 час с момента выдачи.
	tokenTTL = time.Hour

	// Переменные окружения для MinIO (значения по умолчанию из docker-compose).
	envMinioEndpoint     = "MINIO_ENDPOINT"
	envMinioUser         = "MINIO_USER"
	envMinioPassword     = "MINIO_PASSWORD"
	envMinioBucket       = "MINIO_BUCKET"
	defaultMinioEndpoint = "localhost:9000"
	defaultMinioUser     = "minioadmin"
	defaultMinioPassword = "minioadmin"
	defaultMinioBucket   = "pickuplines-exports"
	minioUseSSL          = false // Для локальной разработки
)

// Переменные-прослойки для подмены внешних зависимостей в тестах.
var (
	newPostgresDB = repository.NewPostgresDB
	runMigrations = migrations.Run
	newObjStorage = func(cfg storage.MinioConfig) (storage.ObjectStorage, error) {
		return storage.NewMinioClient(cfg)
	}
)

// Структура для хранения инициализированных зависимостей.
type dependencies struct {
	db            *sqlx.DB
	objStorage    storage.ObjectStorage // Используем интерфейс
	authService   services.AuthService
	authHandler   *handlers.AuthHandler
	lineHandler   *handlers.LineHandler
	exportHandler *handlers.ExportHandler
}

// main - точка входа. Вызывает run и обрабатывает ошибку.
func main() {
	if err := run(); err != nil {
		log.Printf("Ошибка выполнения сервера: %v", err)
		os.Exit(1) // Выход с кодом ошибки
	}
}

// run содержит основную логику запуска сервера и возвращает ошибку.
func run() error {
	log.Println("Запуск сервера ASAP Project...")

	// Разбор конфигурации
	cfg, err := parseFlags()
	if err != nil {
		return fmt.Errorf("ошибка конфигурации: %w", err)
	}

	// Инициализация зависимостей
	deps, err := setupDependencies(cfg)
	if err != nil {
		return fmt.Errorf("ошибка инициализации зависимостей: %w", err)
	}
	// Отложенное закрытие соединения с БД
	defer func() {
		if deps.db != nil {
			if closeErr := deps.db.Close(); closeErr != nil {
				log.Printf("Ошибка закрытия соединения с БД: %v", closeErr)
			}
		}
	}()

	// Настройка роутера
	r := setupRouter(deps)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	// HTTPS, если заданы сертификат и ключ, иначе обычный HTTP
	if cfg.CertFile != "" && cfg.KeyFile != "" {
		log.Printf("Запуск HTTPS-сервера на порту %s...", cfg.Port)
		err = server.ListenAndServeTLS(cfg.CertFile, cfg.KeyFile)
	} else {
		log.Printf("Запуск HTTP-сервера на порту %s...", cfg.Port)
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("ошибка запуска сервера: %w", err)
	}
	return nil // Успешное завершение run()
}

// setupDependencies инициализирует и возвращает все необходимые зависимости сервера.
func setupDependencies(cfg *config) (*dependencies, error) {
	deps := &dependencies{}
	var err error

	// 1. Подключение к БД
	deps.db, err = newPostgresDB(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации БД: %w", err)
	}

	// 2. Применение миграций
	if err = runMigrations(context.Background(), deps.db.DB); err != nil {
		if dbCloseErr := deps.db.Close(); dbCloseErr != nil {
			log.Printf("Ошибка закрытия соединения с БД при ошибке миграций: %v", dbCloseErr)
		}
		return nil, fmt.Errorf("ошибка применения миграций: %w", err)
	}
	log.Println("Миграции успешно применены.")

	// 3. Инициализация клиента MinIO для выгрузок
	minioCfg := storage.MinioConfig{
		Endpoint:        getEnv(envMinioEndpoint, defaultMinioEndpoint),
		AccessKeyID:     getEnv(envMinioUser, defaultMinioUser),
		SecretAccessKey: getEnv(envMinioPassword, defaultMinioPassword),
		UseSSL:          minioUseSSL,
		BucketName:      getEnv(envMinioBucket, defaultMinioBucket),
	}
	deps.objStorage, err = newObjStorage(minioCfg)
	if err != nil {
		// Закрываем соединение с БД перед выходом
		if dbCloseErr := deps.db.Close(); dbCloseErr != nil {
			log.Printf("Ошибка закрытия соединения с БД при ошибке MinIO: %v", dbCloseErr)
		}
		return nil, fmt.Errorf("ошибка инициализации клиента MinIO: %w", err)
	}

	// 4. Создание репозиториев
	userRepo := repository.NewPostgresUserRepository(deps.db)
	lineRepo := repository.NewPostgresLineRepository(deps.db)
	exportRepo := repository.NewPostgresExportRepository(deps.db)

	// 5. Создание сервисов
	// Секрет подписи и время жизни токена передаются явно, а не читаются
	// из окружения внутри сервиса
	deps.authService = services.NewAuthService(userRepo, services.AuthConfig{
		JWTSecret: []byte(cfg.JWTSecret),
		TokenTTL:  tokenTTL,
	})
	lineService := services.NewLineService(lineRepo)
	exportService := services.NewExportService(lineRepo, exportRepo, deps.objStorage)

	// 6. Создание обработчиков
	deps.authHandler = handlers.NewAuthHandler(deps.authService, tokenTTL)
	deps.lineHandler = handlers.NewLineHandler(lineService)
	deps.exportHandler = handlers.NewExportHandler(exportService)

	return deps, nil
}

// setupRouter настраивает и возвращает роутер chi.
func setupRouter(deps *dependencies) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// --- Маршруты --- //
	r.Get("/", homeHandler(deps.db))

	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("pong\n"))
	})

	// Определяем базовый маршрут /api
	r.Route("/api", func(r chi.Router) {
		// Публичные маршруты (регистрация, вход, выход)
		r.Post("/register", deps.authHandler.Register)
		r.Post("/login", deps.authHandler.Login)
		r.Post("/logout", deps.authHandler.Logout)

		r.Route("/lines", func(r chi.Router) {
			// Чтение списка и отдельной записи открыто без аутентификации
			r.Get("/", deps.lineHandler.List)
			r.Get("/{lineID}", deps.lineHandler.Get)

			// Все изменяющие операции требуют аутентификации
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.Authenticator(deps.authService))

				r.Post("/", deps.lineHandler.Create)
				r.Put("/{lineID}", deps.lineHandler.Update)
				r.Delete("/{lineID}", deps.lineHandler.Delete)

				// Выгрузка коллекции в объектное хранилище
				r.Post("/export", deps.exportHandler.Export)
				r.Get("/export/latest", deps.exportHandler.DownloadLatest)
			})
		})
	})
	return r
}

// homeHandler возвращает обработчик домашней страницы с состоянием БД.
func homeHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		dbStatus := "Connected"
		if db == nil || db.Ping() != nil {
			dbStatus = "Not Connected"
		}

		w.Header().Set("Content-Type", "application/json")
		resp := struct {
			Message        string `json:"message"`
			DatabaseStatus string `json:"databaseStatus"`
		}{
			Message:        "Welcome to the ASAP Project!",
			DatabaseStatus: dbStatus,
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Printf("[Home] Ошибка кодирования ответа: %v", err)
		}
	}
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	log.Printf("Переменная окружения '%s' не установлена, используется значение по умолчанию: '%s'", key, fallback)
	return fallback
}
