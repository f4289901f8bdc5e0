package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

const (
	// Порт по умолчанию (непривилегированный).
	defaultServerPort = "8080"

	// Переменные окружения.
	envServerPort  = "SERVER_PORT"
	envDatabaseDSN = "DATABASE_DSN"
	envJWTSecret   = "JWT_SECRET" //nolint:gosec // Имя переменной окружения, а не секрет
	envTLSCertFile = "TLS_CERT_FILE"
	envTLSKeyFile  = "TLS_KEY_FILE"
)

// config хранит конфигурацию сервера.
type config struct {
	Port        string
	DatabaseDSN string
	JWTSecret   string
	CertFile    string
	KeyFile     string
}

// parseFlags разбирает флаги и переменные окружения, возвращает config или ошибку.
// Перед разбором подгружается локальный .env файл, если он есть.
func parseFlags() (*config, error) {
	// .env необязателен: в контейнере переменные приходят из окружения
	if err := godotenv.Load(); err == nil {
		log.Println("Загружен локальный .env файл")
	}

	cfg := &config{}

	// Определяем флаги
	flag.StringVar(&cfg.Port, "port", "",
		fmt.Sprintf("Порт для запуска сервера (env: %s, default: %s)", envServerPort, defaultServerPort))
	flag.StringVar(&cfg.DatabaseDSN, "database-dsn", "",
		fmt.Sprintf("Строка подключения к базе данных (env: %s)", envDatabaseDSN))
	flag.StringVar(&cfg.JWTSecret, "jwt-secret", "",
		fmt.Sprintf("Секрет для подписи токенов (env: %s)", envJWTSecret))
	flag.StringVar(&cfg.CertFile, "cert-file", "",
		fmt.Sprintf("Путь к файлу TLS-сертификата (env: %s, опционально)", envTLSCertFile))
	flag.StringVar(&cfg.KeyFile, "key-file", "",
		fmt.Sprintf("Путь к файлу TLS-ключа (env: %s, опционально)", envTLSKeyFile))

	// Парсим флаги
	flag.Parse()

	// Применяем переменные окружения, если флаги не заданы
	if cfg.Port == "" {
		if value, ok := os.LookupEnv(envServerPort); ok {
			cfg.Port = value
		} else {
			cfg.Port = defaultServerPort
		}
	}
	if cfg.DatabaseDSN == "" {
		if value, ok := os.LookupEnv(envDatabaseDSN); ok {
			cfg.DatabaseDSN = value
		}
	}
	if cfg.JWTSecret == "" {
		if value, ok := os.LookupEnv(envJWTSecret); ok {
			cfg.JWTSecret = value
		}
	}
	if cfg.CertFile == "" {
		if value, ok := os.LookupEnv(envTLSCertFile); ok {
			cfg.CertFile = value
		}
	}
	if cfg.KeyFile == "" {
		if value, ok := os.LookupEnv(envTLSKeyFile); ok {
			cfg.KeyFile = value
		}
	}

	// Проверяем обязательные параметры
	if cfg.DatabaseDSN == "" {
		return nil, errors.New("не указана строка подключения к БД (--database-dsn или " + envDatabaseDSN + ")")
	}
	// Без секрета подписи сервер не стартует: токены с дефолтным секретом недопустимы
	if cfg.JWTSecret == "" {
		return nil, errors.New("не указан секрет для подписи токенов (--jwt-secret или " + envJWTSecret + ")")
	}
	// TLS опционален, но сертификат и ключ имеют смысл только парой
	if (cfg.CertFile == "") != (cfg.KeyFile == "") {
		return nil, errors.New("для TLS нужно указать и сертификат, и ключ (--cert-file и --key-file)")
	}

	return cfg, nil
}
