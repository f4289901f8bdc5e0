package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/asap-project/pickuplines/internal/models"
	"github.com/jmoiron/sqlx"
)

// Параметры сортировки и пагинации по умолчанию.
const (
	DefaultSortField = "created_at"
	DefaultSortOrder = "desc"
)

// allowedSortFields — белый список колонок, по которым разрешена сортировка.
// ORDER BY нельзя параметризовать плейсхолдерами, поэтому имя колонки
// подставляется в запрос только из этого списка.
var allowedSortFields = map[string]struct{}{
	"created_at":  {},
	"contributor": {},
	"category":    {},
	"mood":        {},
}

// ListLinesParams задает сортировку и пагинацию для выборки записей.
type ListLinesParams struct {
	SortBy string
	Order  string
	Limit  int
	Offset int
}

// LineRepository определяет методы для работы с записями подкатов.
type LineRepository interface {
	CreateLine(ctx context.Context, line *models.PickupLine) (*models.PickupLine, error)
	GetLineByID(ctx context.Context, id string) (*models.PickupLine, error)
	ListLines(ctx context.Context, params ListLinesParams) ([]models.PickupLine, error)
	ListAllLines(ctx context.Context) ([]models.PickupLine, error)
	UpdateLine(ctx context.Context, line *models.PickupLine) (*models.PickupLine, error)
	DeleteLine(ctx context.Context, id string) error
}

// postgresLineRepository реализует LineRepository для PostgreSQL.
type postgresLineRepository struct {
	db *sqlx.DB
}

// NewPostgresLineRepository создает новый экземпляр репозитория записей для PostgreSQL.
func NewPostgresLineRepository(db *sqlx.DB) LineRepository {
	return &postgresLineRepository{db: db}
}

// CreateLine вставляет новую запись и возвращает ее в окончательном виде
// (с временными метками, проставленными базой данных).
func (r *postgresLineRepository) CreateLine(ctx context.Context, line *models.PickupLine) (*models.PickupLine, error) {
	query := `INSERT INTO lines (id, line, contributor, category, mood)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id, line, contributor, category, mood, created_at, updated_at`
	var created models.PickupLine

	err := r.db.GetContext(ctx, &created, query,
		line.ID, line.Line, line.Contributor, line.Category, line.Mood,
	)
	if err != nil {
		log.Printf("[LineRepo] Ошибка при создании записи '%s': %v", line.ID, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на создание записи: %w", err)
	}

	log.Printf("[LineRepo] Запись '%s' успешно создана", created.ID)
	return &created, nil
}

// GetLineByID находит запись по ее идентификатору.
func (r *postgresLineRepository) GetLineByID(ctx context.Context, id string) (*models.PickupLine, error) {
	query := `SELECT id, line, contributor, category, mood, created_at, updated_at FROM lines WHERE id=$1`
	var line models.PickupLine

	err := r.db.GetContext(ctx, &line, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Printf("[LineRepo] Запись '%s' не найдена", id)
			return nil, ErrLineNotFound
		}
		log.Printf("[LineRepo] Ошибка при поиске записи '%s': %v", id, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение записи: %w", err)
	}

	return &line, nil
}

// ListLines возвращает страницу записей с динамической сортировкой.
// Колонка сортировки и направление нормализуются к значениям по умолчанию,
// если переданы неизвестные.
func (r *postgresLineRepository) ListLines(ctx context.Context, params ListLinesParams) ([]models.PickupLine, error) {
	sortBy := params.SortBy
	if _, ok := allowedSortFields[sortBy]; !ok {
		sortBy = DefaultSortField
	}

	order := strings.ToLower(params.Order)
	if order != "asc" && order != "desc" {
		order = DefaultSortOrder
	}

	// sortBy и order к этому моменту прошли белый список
	query := fmt.Sprintf(`SELECT id, line, contributor, category, mood, created_at, updated_at
	          FROM lines
	          ORDER BY %s %s
	          LIMIT $1 OFFSET $2`, sortBy, strings.ToUpper(order))

	lines := make([]models.PickupLine, 0, params.Limit)
	err := r.db.SelectContext(ctx, &lines, query, params.Limit, params.Offset)
	if err != nil {
		log.Printf("[LineRepo] Ошибка при получении списка записей: %v", err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение списка записей: %w", err)
	}

	return lines, nil
}

// ListAllLines возвращает все записи без пагинации (используется при выгрузке коллекции).
func (r *postgresLineRepository) ListAllLines(ctx context.Context) ([]models.PickupLine, error) {
	query := `SELECT id, line, contributor, category, mood, created_at, updated_at
	          FROM lines ORDER BY created_at ASC`

	var lines []models.PickupLine
	err := r.db.SelectContext(ctx, &lines, query)
	if err != nil {
		log.Printf("[LineRepo] Ошибка при получении полного списка записей: %v", err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение полного списка записей: %w", err)
	}

	return lines, nil
}

// UpdateLine обновляет изменяемые поля записи и возвращает ее новое состояние.
func (r *postgresLineRepository) UpdateLine(ctx context.Context, line *models.PickupLine) (*models.PickupLine, error) {
	query := `UPDATE lines
	          SET line=$2, contributor=$3, category=$4, mood=$5, updated_at=now()
	          WHERE id=$1
	          RETURNING id, line, contributor, category, mood, created_at, updated_at`
	var updated models.PickupLine

	err := r.db.GetContext(ctx, &updated, query,
		line.ID, line.Line, line.Contributor, line.Category, line.Mood,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Printf("[LineRepo] Запись '%s' для обновления не найдена", line.ID)
			return nil, ErrLineNotFound
		}
		log.Printf("[LineRepo] Ошибка при обновлении записи '%s': %v", line.ID, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на обновление записи: %w", err)
	}

	log.Printf("[LineRepo] Запись '%s' успешно обновлена", updated.ID)
	return &updated, nil
}

// DeleteLine удаляет запись по идентификатору.
func (r *postgresLineRepository) DeleteLine(ctx context.Context, id string) error {
	query := `DELETE FROM lines WHERE id=$1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Printf("[LineRepo] Ошибка при удалении записи '%s': %v", id, err)
		return fmt.Errorf("ошибка выполнения запроса на удаление записи: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка получения количества удаленных строк: %w", err)
	}
	if affected == 0 {
		log.Printf("[LineRepo] Запись '%s' для удаления не найдена", id)
		return ErrLineNotFound
	}

	log.Printf("[LineRepo] Запись '%s' успешно удалена", id)
	return nil
}

// Кастомная ошибка репозитория.
var (
	ErrLineNotFound = errors.New("запись не найдена")
)
