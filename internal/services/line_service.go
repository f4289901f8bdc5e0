package services

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	"github.com/asap-project/pickuplines/internal/models"
	"github.com/asap-project/pickuplines/internal/repository"
)

// LineService определяет интерфейс для сервиса работы с записями подкатов.
type LineService interface {
	ListLines(params repository.ListLinesParams) ([]models.PickupLine, error)
	GetLine(id string) (*models.PickupLine, error)
	CreateLine(req models.LineRequest, contributor string) (*models.PickupLine, error)
	UpdateLine(id string, req models.LineRequest) (*models.PickupLine, error)
	DeleteLine(id string) error
}

// Убедимся, что lineService удовлетворяет интерфейсу LineService.
var _ LineService = (*lineService)(nil)

type lineService struct {
	lineRepo repository.LineRepository // Зависимость от репозитория записей
}

// NewLineService создает новый экземпляр сервиса записей.
func NewLineService(lineRepo repository.LineRepository) LineService {
	return &lineService{lineRepo: lineRepo}
}

// ListLines возвращает страницу записей с сортировкой и пагинацией.
func (s *lineService) ListLines(params repository.ListLinesParams) ([]models.PickupLine, error) {
	ctx := context.Background()

	lines, err := s.lineRepo.ListLines(ctx, params)
	if err != nil {
		log.Printf("[LineService] Ошибка репозитория при получении списка записей: %v", err)
		return nil, errors.New("внутренняя ошибка сервера при получении списка записей")
	}

	return lines, nil
}

// GetLine возвращает одну запись по идентификатору.
func (s *lineService) GetLine(id string) (*models.PickupLine, error) {
	ctx := context.Background()

	line, err := s.lineRepo.GetLineByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrLineNotFound) {
			return nil, ErrLineNotFound
		}
		log.Printf("[LineService] Ошибка репозитория при получении записи '%s': %v", id, err)
		return nil, errors.New("внутренняя ошибка сервера при получении записи")
	}

	return line, nil
}

// CreateLine создает новую запись. Если contributor в запросе не указан,
// подставляется имя аутентифицированного пользователя.
func (s *lineService) CreateLine(req models.LineRequest, contributor string) (*models.PickupLine, error) {
	ctx := context.Background()

	if req.Line == "" {
		return nil, ErrEmptyLine
	}

	// Contributor — свободный текст: клиент может указать любое имя,
	// пустое значение заполняется личностью автора запроса
	if req.Contributor == "" {
		req.Contributor = contributor
	}

	line := &models.PickupLine{
		ID:          uuid.NewString(),
		Line:        req.Line,
		Contributor: req.Contributor,
		Category:    req.Category,
		Mood:        req.Mood,
	}

	created, err := s.lineRepo.CreateLine(ctx, line)
	if err != nil {
		log.Printf("[LineService] Ошибка репозитория при создании записи: %v", err)
		return nil, errors.New("внутренняя ошибка сервера при создании записи")
	}

	log.Printf("[LineService] Запись '%s' создана (contributor: %s)", created.ID, created.Contributor)
	return created, nil
}

// UpdateLine обновляет существующую запись.
func (s *lineService) UpdateLine(id string, req models.LineRequest) (*models.PickupLine, error) {
	ctx := context.Background()

	if req.Line == "" {
		return nil, ErrEmptyLine
	}

	line := &models.PickupLine{
		ID:          id,
		Line:        req.Line,
		Contributor: req.Contributor,
		Category:    req.Category,
		Mood:        req.Mood,
	}

	updated, err := s.lineRepo.UpdateLine(ctx, line)
	if err != nil {
		if errors.Is(err, repository.ErrLineNotFound) {
			log.Printf("[LineService] Запись '%s' для обновления не найдена", id)
			return nil, ErrLineNotFound
		}
		log.Printf("[LineService] Ошибка репозитория при обновлении записи '%s': %v", id, err)
		return nil, errors.New("внутренняя ошибка сервера при обновлении записи")
	}

	return updated, nil
}

// DeleteLine удаляет запись по идентификатору.
func (s *lineService) DeleteLine(id string) error {
	ctx := context.Background()

	err := s.lineRepo.DeleteLine(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrLineNotFound) {
			log.Printf("[LineService] Запись '%s' для удаления не найдена", id)
			return ErrLineNotFound
		}
		log.Printf("[LineService] Ошибка репозитория при удалении записи '%s': %v", id, err)
		return errors.New("внутренняя ошибка сервера при удалении записи")
	}

	return nil
}

// Кастомные ошибки сервиса.
var (
	ErrLineNotFound = errors.New("запись не найдена")
	ErrEmptyLine    = errors.New("текст подката не может быть пустым")
)
