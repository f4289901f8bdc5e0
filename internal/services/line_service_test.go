package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/asap-project/pickuplines/internal/models"
	"github.com/asap-project/pickuplines/internal/repository"
	"github.com/asap-project/pickuplines/internal/services"
)

// --- Mock LineRepository --- //

type MockLineRepository struct {
	mock.Mock
}

func (m *MockLineRepository) CreateLine(ctx context.Context, line *models.PickupLine) (*models.PickupLine, error) {
	args := m.Called(ctx, line)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PickupLine), args.Error(1)
}

func (m *MockLineRepository) GetLineByID(ctx context.Context, id string) (*models.PickupLine, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PickupLine), args.Error(1)
}

func (m *MockLineRepository) ListLines(
	ctx context.Context,
	params repository.ListLinesParams,
) ([]models.PickupLine, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PickupLine), args.Error(1)
}

func (m *MockLineRepository) ListAllLines(ctx context.Context) ([]models.PickupLine, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PickupLine), args.Error(1)
}

func (m *MockLineRepository) UpdateLine(ctx context.Context, line *models.PickupLine) (*models.PickupLine, error) {
	args := m.Called(ctx, line)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PickupLine), args.Error(1)
}

func (m *MockLineRepository) DeleteLine(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Tests --- //

func TestNewLineService(t *testing.T) {
	mockLineRepo := new(MockLineRepository)
	lineService := services.NewLineService(mockLineRepo)
	require.NotNil(t, lineService)
}

func TestLineService_CreateLine(t *testing.T) {
	ctx := context.Background()

	t.Run("Успешное создание с указанным contributor", func(t *testing.T) {
		mockLineRepo := new(MockLineRepository)
		var captured *models.PickupLine
		mockLineRepo.On("CreateLine", ctx, mock.AnythingOfType("*models.PickupLine")).
			Run(func(args mock.Arguments) {
				captured = args.Get(1).(*models.PickupLine)
			}).
			Return(&models.PickupLine{ID: "some-id", Line: "Are you French?"}, nil).Once()

		lineService := services.NewLineService(mockLineRepo)
		req := models.LineRequest{
			Line:        "Are you French? Because Eiffel for you.",
			Contributor: "John Doe",
			Category:    "cheesy",
			Mood:        "funny",
		}

		created, err := lineService.CreateLine(req, "alice")
		require.NoError(t, err)
		require.NotNil(t, created)

		// Идентификатор — валидный UUID, contributor из запроса сохранен
		require.NotNil(t, captured)
		_, parseErr := uuid.Parse(captured.ID)
		assert.NoError(t, parseErr)
		assert.Equal(t, "John Doe", captured.Contributor)

		mockLineRepo.AssertExpectations(t)
	})

	t.Run("Contributor по умолчанию — имя автора запроса", func(t *testing.T) {
		mockLineRepo := new(MockLineRepository)
		var captured *models.PickupLine
		mockLineRepo.On("CreateLine", ctx, mock.AnythingOfType("*models.PickupLine")).
			Run(func(args mock.Arguments) {
				captured = args.Get(1).(*models.PickupLine)
			}).
			Return(&models.PickupLine{ID: "some-id"}, nil).Once()

		lineService := services.NewLineService(mockLineRepo)
		req := models.LineRequest{Line: "Is your name Google?"}

		_, err := lineService.CreateLine(req, "alice")
		require.NoError(t, err)
		require.NotNil(t, captured)
		assert.Equal(t, "alice", captured.Contributor)

		mockLineRepo.AssertExpectations(t)
	})

	t.Run("Пустой текст подката", func(t *testing.T) {
		mockLineRepo := new(MockLineRepository) // Репозиторий не должен вызываться

		lineService := services.NewLineService(mockLineRepo)
		created, err := lineService.CreateLine(models.LineRequest{Line: ""}, "alice")

		require.ErrorIs(t, err, services.ErrEmptyLine)
		assert.Nil(t, created)
		mockLineRepo.AssertExpectations(t)
	})

	t.Run("Ошибка репозитория", func(t *testing.T) {
		mockLineRepo := new(MockLineRepository)
		mockLineRepo.On("CreateLine", ctx, mock.AnythingOfType("*models.PickupLine")).
			Return(nil, errors.New("some db error")).Once()

		lineService := services.NewLineService(mockLineRepo)
		created, err := lineService.CreateLine(models.LineRequest{Line: "text"}, "alice")

		require.Error(t, err)
		assert.Nil(t, created)
		mockLineRepo.AssertExpectations(t)
	})
}

func TestLineService_ListLines(t *testing.T) {
	ctx := context.Background()
	params := repository.ListLinesParams{SortBy: "mood", Order: "asc", Limit: 10, Offset: 5}

	t.Run("Параметры передаются репозиторию без изменений", func(t *testing.T) {
		expected := []models.PickupLine{{ID: "id-1", Line: "first"}, {ID: "id-2", Line: "second"}}

		mockLineRepo := new(MockLineRepository)
		mockLineRepo.On("ListLines", ctx, params).Return(expected, nil).Once()

		lineService := services.NewLineService(mockLineRepo)
		lines, err := lineService.ListLines(params)

		require.NoError(t, err)
		assert.Equal(t, expected, lines)
		mockLineRepo.AssertExpectations(t)
	})

	t.Run("Ошибка репозитория", func(t *testing.T) {
		mockLineRepo := new(MockLineRepository)
		mockLineRepo.On("ListLines", ctx, params).Return(nil, errors.New("some db error")).Once()

		lineService := services.NewLineService(mockLineRepo)
		lines, err := lineService.ListLines(params)

		require.Error(t, err)
		assert.Nil(t, lines)
		mockLineRepo.AssertExpectations(t)
	})
}

func TestLineService_GetLine(t *testing.T) {
	ctx := context.Background()

	t.Run("Запись найдена", func(t *testing.T) {
		expected := &models.PickupLine{ID: "id-1", Line: "text"}

		mockLineRepo := new(MockLineRepository)
		mockLineRepo.On("GetLineByID", ctx, "id-1").Return(expected, nil).Once()

		lineService := services.NewLineService(mockLineRepo)
		line, err := lineService.GetLine("id-1")

		require.NoError(t, err)
		assert.Equal(t, expected, line)
		mockLineRepo.AssertExpectations(t)
	})

	t.Run("Запись не найдена", func(t *testing.T) {
		mockLineRepo := new(MockLineRepository)
		mockLineRepo.On("GetLineByID", ctx, "missing").Return(nil, repository.ErrLineNotFound).Once()

		lineService := services.NewLineService(mockLineRepo)
		line, err := lineService.GetLine("missing")

		require.ErrorIs(t, err, services.ErrLineNotFound)
		assert.Nil(t, line)
		mockLineRepo.AssertExpectations(t)
	})
}

func TestLineService_UpdateLine(t *testing.T) {
	ctx := context.Background()

	t.Run("Успешное обновление", func(t *testing.T) {
		expected := &models.PickupLine{ID: "id-1", Line: "updated"}

		mockLineRepo := new(MockLineRepository)
		mockLineRepo.On("UpdateLine", ctx, mock.AnythingOfType("*models.PickupLine")).
			Return(expected, nil).Once()

		lineService := services.NewLineService(mockLineRepo)
		updated, err := lineService.UpdateLine("id-1", models.LineRequest{Line: "updated"})

		require.NoError(t, err)
		assert.Equal(t, expected, updated)
		mockLineRepo.AssertExpectations(t)
	})

	t.Run("Пустой текст подката", func(t *testing.T) {
		mockLineRepo := new(MockLineRepository)

		lineService := services.NewLineService(mockLineRepo)
		updated, err := lineService.UpdateLine("id-1", models.LineRequest{Line: ""})

		require.ErrorIs(t, err, services.ErrEmptyLine)
		assert.Nil(t, updated)
		mockLineRepo.AssertExpectations(t)
	})

	t.Run("Запись не найдена", func(t *testing.T) {
		mockLineRepo := new(MockLineRepository)
		mockLineRepo.On("UpdateLine", ctx, mock.AnythingOfType("*models.PickupLine")).
			Return(nil, repository.ErrLineNotFound).Once()

		lineService := services.NewLineService(mockLineRepo)
		updated, err := lineService.UpdateLine("missing", models.LineRequest{Line: "text"})

		require.ErrorIs(t, err, services.ErrLineNotFound)
		assert.Nil(t, updated)
		mockLineRepo.AssertExpectations(t)
	})
}

func TestLineService_DeleteLine(t *testing.T) {
	ctx := context.Background()

	t.Run("Успешное удаление", func(t *testing.T) {
		mockLineRepo := new(MockLineRepository)
		mockLineRepo.On("DeleteLine", ctx, "id-1").Return(nil).Once()

		lineService := services.NewLineService(mockLineRepo)
		require.NoError(t, lineService.DeleteLine("id-1"))
		mockLineRepo.AssertExpectations(t)
	})

	t.Run("Запись не найдена", func(t *testing.T) {
		mockLineRepo := new(MockLineRepository)
		mockLineRepo.On("DeleteLine", ctx, "missing").Return(repository.ErrLineNotFound).Once()

		lineService := services.NewLineService(mockLineRepo)
		require.ErrorIs(t, lineService.DeleteLine("missing"), services.ErrLineNotFound)
		mockLineRepo.AssertExpectations(t)
	})
}
