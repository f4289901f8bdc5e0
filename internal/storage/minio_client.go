package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Таймаут для служебных операций с хранилищем (проверка/создание бакета).
const bucketSetupTimeout = 10 * time.Second

// ObjectStorage определяет интерфейс для взаимодействия с объектным хранилищем,
// в котором лежат выгрузки коллекции подкатов.
type ObjectStorage interface {
	UploadObject(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) error
	DownloadObject(ctx context.Context, objectKey string) (io.ReadCloser, error)
}

// MinioClient реализует ObjectStorage для MinIO.
type MinioClient struct {
	client     *minio.Client
	bucketName string
}

// MinioConfig содержит параметры для подключения к MinIO.
type MinioConfig struct {
	Endpoint        string // Адрес MinIO (например, "localhost:9000")
	AccessKeyID     string // Логин
	SecretAccessKey string // Пароль
	UseSSL          bool   // Использовать SSL (обычно false для локальной разработки)
	BucketName      string // Имя бакета для хранения выгрузок
}

// NewMinioClient создает новый клиент MinIO и гарантирует наличие бакета.
func NewMinioClient(cfg MinioConfig) (*MinioClient, error) {
	log.Printf("Инициализация клиента MinIO для эндпоинта %s...", cfg.Endpoint)

	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации клиента MinIO: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), bucketSetupTimeout)
	defer cancel()

	// Создаем бакет, если его еще нет
	exists, err := minioClient.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("ошибка проверки существования бакета '%s': %w", cfg.BucketName, err)
	}
	if !exists {
		if err = minioClient.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("ошибка создания бакета '%s': %w", cfg.BucketName, err)
		}
		log.Printf("Бакет '%s' успешно создан", cfg.BucketName)
	}

	log.Printf("Клиент MinIO успешно инициализирован (бакет: %s)", cfg.BucketName)
	return &MinioClient{client: minioClient, bucketName: cfg.BucketName}, nil
}

// UploadObject загружает объект в бакет под указанным ключом.
func (c *MinioClient) UploadObject(
	ctx context.Context,
	objectKey string,
	reader io.Reader,
	size int64,
	contentType string,
) error {
	log.Printf("[Storage] Загрузка объекта '%s' (размер: %d)...", objectKey, size)

	_, err := c.client.PutObject(ctx, c.bucketName, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		log.Printf("[Storage] Ошибка загрузки объекта '%s': %v", objectKey, err)
		return fmt.Errorf("ошибка загрузки объекта '%s': %w", objectKey, err)
	}

	log.Printf("[Storage] Объект '%s' успешно загружен", objectKey)
	return nil
}

// DownloadObject скачивает объект по ключу. Закрыть reader обязан вызывающий.
func (c *MinioClient) DownloadObject(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	log.Printf("[Storage] Скачивание объекта '%s'...", objectKey)

	object, err := c.client.GetObject(ctx, c.bucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		log.Printf("[Storage] Ошибка скачивания объекта '%s': %v", objectKey, err)
		return nil, fmt.Errorf("ошибка скачивания объекта '%s': %w", objectKey, err)
	}

	// GetObject ленивый: ошибка отсутствия объекта всплывает только при чтении,
	// поэтому сразу запрашиваем метаданные
	if _, err = object.Stat(); err != nil {
		_ = object.Close()
		log.Printf("[Storage] Объект '%s' недоступен: %v", objectKey, err)
		return nil, fmt.Errorf("объект '%s' недоступен: %w", objectKey, err)
	}

	return object, nil
}
