package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/asap-project/pickuplines/internal/models"
	"github.com/asap-project/pickuplines/internal/repository"
	"github.com/asap-project/pickuplines/internal/storage"
)

// Content-Type выгрузок в объектном хранилище.
const exportContentType = "application/json"

// ExportService определяет интерфейс для сервиса выгрузки коллекции
// подкатов в объектное хранилище.
type ExportService interface {
	ExportLines(userID int64) (*models.Export, error)
	DownloadLatest() (io.ReadCloser, *models.Export, error)
}

// Убедимся, что exportService удовлетворяет интерфейсу ExportService.
var _ ExportService = (*exportService)(nil)

type exportService struct {
	lineRepo   repository.LineRepository
	exportRepo repository.ExportRepository
	objStorage storage.ObjectStorage
}

// NewExportService создает новый экземпляр сервиса выгрузок.
func NewExportService(
	lineRepo repository.LineRepository,
	exportRepo repository.ExportRepository,
	objStorage storage.ObjectStorage,
) ExportService {
	return &exportService{lineRepo: lineRepo, exportRepo: exportRepo, objStorage: objStorage}
}

// ExportLines сериализует всю коллекцию записей в JSON, загружает ее в
// объектное хранилище под ключом с временной меткой и сохраняет запись
// о выгрузке в БД.
func (s *exportService) ExportLines(userID int64) (*models.Export, error) {
	ctx := context.Background()

	lines, err := s.lineRepo.ListAllLines(ctx)
	if err != nil {
		log.Printf("[ExportService] Ошибка получения записей для выгрузки: %v", err)
		return nil, errors.New("внутренняя ошибка сервера при получении записей")
	}

	data, err := json.Marshal(lines)
	if err != nil {
		log.Printf("[ExportService] Ошибка сериализации записей: %v", err)
		return nil, errors.New("внутренняя ошибка сервера при сериализации записей")
	}

	objectKey := fmt.Sprintf("exports/lines-%s.json", time.Now().UTC().Format("20060102T150405Z"))

	err = s.objStorage.UploadObject(ctx, objectKey, bytes.NewReader(data), int64(len(data)), exportContentType)
	if err != nil {
		log.Printf("[ExportService] Ошибка загрузки выгрузки '%s': %v", objectKey, err)
		return nil, errors.New("внутренняя ошибка сервера при загрузке выгрузки в хранилище")
	}

	export := &models.Export{
		ObjectKey: objectKey,
		LineCount: len(lines),
		CreatedBy: userID,
	}

	exportID, err := s.exportRepo.CreateExport(ctx, export)
	if err != nil {
		log.Printf("[ExportService] Ошибка сохранения записи о выгрузке '%s': %v", objectKey, err)
		return nil, errors.New("внутренняя ошибка сервера при сохранении записи о выгрузке")
	}
	export.ID = exportID

	log.Printf("[ExportService] Выгрузка '%s' выполнена пользователем %d (записей: %d)",
		objectKey, userID, len(lines))
	return export, nil
}

// DownloadLatest возвращает поток с содержимым самой свежей выгрузки
// и ее метаданные. Закрыть поток обязан вызывающий.
func (s *exportService) DownloadLatest() (io.ReadCloser, *models.Export, error) {
	ctx := context.Background()

	export, err := s.exportRepo.GetLatestExport(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrExportNotFound) {
			return nil, nil, ErrExportNotFound
		}
		log.Printf("[ExportService] Ошибка поиска последней выгрузки: %v", err)
		return nil, nil, errors.New("внутренняя ошибка сервера при поиске последней выгрузки")
	}

	reader, err := s.objStorage.DownloadObject(ctx, export.ObjectKey)
	if err != nil {
		log.Printf("[ExportService] Ошибка скачивания выгрузки '%s': %v", export.ObjectKey, err)
		return nil, nil, errors.New("внутренняя ошибка сервера при скачивании выгрузки")
	}

	return reader, export, nil
}

// Кастомная ошибка сервиса.
var (
	ErrExportNotFound = errors.New("выгрузка не найдена")
)
