package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/asap-project/pickuplines/internal/middleware"
	"github.com/asap-project/pickuplines/internal/models"
	"github.com/asap-project/pickuplines/internal/repository"
	"github.com/asap-project/pickuplines/internal/services"
)

// Ограничения пагинации списка записей.
const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// LineHandler обрабатывает HTTP-запросы, связанные с записями подкатов.
type LineHandler struct {
	lineService services.LineService
}

// NewLineHandler создает новый экземпляр LineHandler.
func NewLineHandler(ls services.LineService) *LineHandler {
	return &LineHandler{lineService: ls}
}

// List обрабатывает GET запрос на получение списка записей.
// Доступен без аутентификации. Поддерживает параметры sort, order, limit, offset.
func (h *LineHandler) List(w http.ResponseWriter, r *http.Request) {
	// Получаем параметры сортировки и пагинации
	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))
	if limit <= 0 || limit > maxListLimit { // Ограничиваем максимальный лимит
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	params := repository.ListLinesParams{
		SortBy: query.Get("sort"),
		Order:  query.Get("order"),
		Limit:  limit,
		Offset: offset,
	}

	log.Printf("[LineHandler:List] Запрос списка записей (sort=%s, order=%s, limit=%d, offset=%d)",
		params.SortBy, params.Order, params.Limit, params.Offset)

	lines, err := h.lineService.ListLines(params)
	if err != nil {
		log.Printf("[LineHandler:List] Внутренняя ошибка при получении списка записей: %v", err)
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(lines); err != nil {
		log.Printf("[LineHandler:List] Ошибка кодирования ответа со списком записей: %v", err)
	}
}

// Get обрабатывает GET запрос на получение одной записи по идентификатору.
// Доступен без аутентификации.
func (h *LineHandler) Get(w http.ResponseWriter, r *http.Request) {
	lineID := chi.URLParam(r, "lineID")

	line, err := h.lineService.GetLine(lineID)
	if err != nil {
		if errors.Is(err, services.ErrLineNotFound) {
			log.Printf("[LineHandler:Get] Запись '%s' не найдена", lineID)
			http.Error(w, "Запись не найдена", http.StatusNotFound)
		} else {
			log.Printf("[LineHandler:Get] Внутренняя ошибка при получении записи '%s': %v", lineID, err)
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(line); err != nil {
		log.Printf("[LineHandler:Get] Ошибка кодирования ответа с записью: %v", err)
	}
}

// Create обрабатывает POST запрос на создание записи. Требует аутентификации.
func (h *LineHandler) Create(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.GetUsernameFromContext(r.Context())
	if !ok {
		log.Printf("[LineHandler:Create] Не удалось получить имя пользователя из контекста")
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	var req models.LineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[LineHandler:Create] Ошибка декодирования запроса на создание: %v", err)
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	log.Printf("[LineHandler:Create] Запрос на создание записи от пользователя '%s'", username)

	created, err := h.lineService.CreateLine(req, username)
	if err != nil {
		if errors.Is(err, services.ErrEmptyLine) {
			http.Error(w, "Текст подката не может быть пустым", http.StatusBadRequest)
		} else {
			log.Printf("[LineHandler:Create] Внутренняя ошибка при создании записи: %v", err)
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated) // 201 Created
	if err = json.NewEncoder(w).Encode(created); err != nil {
		log.Printf("[LineHandler:Create] Ошибка кодирования ответа с созданной записью: %v", err)
	}
}

// Update обрабатывает PUT запрос на обновление записи. Требует аутентификации.
func (h *LineHandler) Update(w http.ResponseWriter, r *http.Request) {
	lineID := chi.URLParam(r, "lineID")

	var req models.LineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[LineHandler:Update] Ошибка декодирования запроса на обновление: %v", err)
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	log.Printf("[LineHandler:Update] Запрос на обновление записи '%s'", lineID)

	updated, err := h.lineService.UpdateLine(lineID, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyLine):
			http.Error(w, "Текст подката не может быть пустым", http.StatusBadRequest)
		case errors.Is(err, services.ErrLineNotFound):
			log.Printf("[LineHandler:Update] Запись '%s' не найдена", lineID)
			http.Error(w, "Запись не найдена", http.StatusNotFound)
		default:
			log.Printf("[LineHandler:Update] Внутренняя ошибка при обновлении записи '%s': %v", lineID, err)
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(updated); err != nil {
		log.Printf("[LineHandler:Update] Ошибка кодирования ответа с обновленной записью: %v", err)
	}
}

// Delete обрабатывает DELETE запрос на удаление записи. Требует аутентификации.
func (h *LineHandler) Delete(w http.ResponseWriter, r *http.Request) {
	lineID := chi.URLParam(r, "lineID")

	log.Printf("[LineHandler:Delete] Запрос на удаление записи '%s'", lineID)

	err := h.lineService.DeleteLine(lineID)
	if err != nil {
		if errors.Is(err, services.ErrLineNotFound) {
			log.Printf("[LineHandler:Delete] Запись '%s' не найдена", lineID)
			http.Error(w, "Запись не найдена", http.StatusNotFound)
		} else {
			log.Printf("[LineHandler:Delete] Внутренняя ошибка при удалении записи '%s': %v", lineID, err)
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent) // 204 No Content
	log.Printf("[LineHandler:Delete] Запись '%s' успешно удалена", lineID)
}
