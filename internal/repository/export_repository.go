package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/asap-project/pickuplines/internal/models"
	"github.com/jmoiron/sqlx"
)

// ExportRepository определяет методы для работы с записями о выгрузках коллекции.
type ExportRepository interface {
	CreateExport(ctx context.Context, export *models.Export) (int64, error)
	GetLatestExport(ctx context.Context) (*models.Export, error)
}

// postgresExportRepository реализует ExportRepository для PostgreSQL.
type postgresExportRepository struct {
	db *sqlx.DB
}

// NewPostgresExportRepository создает новый экземпляр репозитория выгрузок для PostgreSQL.
func NewPostgresExportRepository(db *sqlx.DB) ExportRepository {
	return &postgresExportRepository{db: db}
}

// CreateExport сохраняет запись о выполненной выгрузке.
func (r *postgresExportRepository) CreateExport(ctx context.Context, export *models.Export) (int64, error) {
	query := `INSERT INTO exports (object_key, line_count, created_by) VALUES ($1, $2, $3) RETURNING id`
	var exportID int64

	err := r.db.QueryRowxContext(ctx, query, export.ObjectKey, export.LineCount, export.CreatedBy).Scan(&exportID)
	if err != nil {
		log.Printf("[ExportRepo] Ошибка при создании записи о выгрузке '%s': %v", export.ObjectKey, err)
		return 0, fmt.Errorf("ошибка выполнения запроса на создание записи о выгрузке: %w", err)
	}

	log.Printf("[ExportRepo] Запись о выгрузке '%s' создана с ID %d", export.ObjectKey, exportID)
	return exportID, nil
}

// GetLatestExport возвращает запись о самой свежей выгрузке.
func (r *postgresExportRepository) GetLatestExport(ctx context.Context) (*models.Export, error) {
	query := `SELECT id, object_key, line_count, created_by, created_at
	          FROM exports ORDER BY created_at DESC LIMIT 1`
	var export models.Export

	err := r.db.GetContext(ctx, &export, query)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Printf("[ExportRepo] Выгрузки еще не выполнялись")
			return nil, ErrExportNotFound
		}
		log.Printf("[ExportRepo] Ошибка при поиске последней выгрузки: %v", err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение последней выгрузки: %w", err)
	}

	return &export, nil
}

// Кастомная ошибка репозитория.
var (
	ErrExportNotFound = errors.New("выгрузка не найдена")
)
