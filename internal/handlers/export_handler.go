package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/asap-project/pickuplines/internal/middleware"
	"github.com/asap-project/pickuplines/internal/models"
	"github.com/asap-project/pickuplines/internal/services"
)

// ExportHandler обрабатывает HTTP-запросы, связанные с выгрузками коллекции.
type ExportHandler struct {
	exportService services.ExportService
}

// NewExportHandler создает новый экземпляр ExportHandler.
func NewExportHandler(es services.ExportService) *ExportHandler {
	return &ExportHandler{exportService: es}
}

// Export обрабатывает POST запрос на выгрузку коллекции в объектное хранилище.
// Требует аутентификации.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		log.Printf("[ExportHandler:Export] Не удалось получить userID из контекста")
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	log.Printf("[ExportHandler:Export] Запрос на выгрузку коллекции от пользователя %d", userID)

	export, err := h.exportService.ExportLines(userID)
	if err != nil {
		log.Printf("[ExportHandler:Export] Внутренняя ошибка при выгрузке для пользователя %d: %v", userID, err)
		http.Error(w, "Внутренняя ошибка сервера при выгрузке", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err = json.NewEncoder(w).Encode(models.ExportResponse{
		ObjectKey: export.ObjectKey,
		Count:     export.LineCount,
	}); err != nil {
		log.Printf("[ExportHandler:Export] Ошибка кодирования ответа о выгрузке: %v", err)
	}
}

// DownloadLatest обрабатывает GET запрос на скачивание самой свежей выгрузки.
// Требует аутентификации.
func (h *ExportHandler) DownloadLatest(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		log.Printf("[ExportHandler:DownloadLatest] Не удалось получить userID из контекста")
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	log.Printf("[ExportHandler:DownloadLatest] Запрос на скачивание выгрузки от пользователя %d", userID)

	reader, export, err := h.exportService.DownloadLatest()
	if err != nil {
		if errors.Is(err, services.ErrExportNotFound) {
			log.Printf("[ExportHandler:DownloadLatest] Выгрузки еще не выполнялись")
			http.Error(w, "Выгрузка не найдена", http.StatusNotFound)
		} else {
			log.Printf("[ExportHandler:DownloadLatest] Внутренняя ошибка при скачивании выгрузки: %v", err)
			http.Error(w, "Внутренняя ошибка сервера при скачивании выгрузки", http.StatusInternalServerError)
		}
		return
	}
	defer func() {
		if closeErr := reader.Close(); closeErr != nil {
			log.Printf("[ExportHandler:DownloadLatest] Ошибка закрытия потока выгрузки: %v", closeErr)
		}
	}()

	// Устанавливаем заголовки для скачивания файла
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, "pickuplines_export.json"))

	// Копируем данные из reader в ResponseWriter
	if _, err = io.Copy(w, reader); err != nil {
		log.Printf("[ExportHandler:DownloadLatest] Ошибка копирования данных выгрузки в ответ: %v", err)
		return
	}

	log.Printf("[ExportHandler:DownloadLatest] Выгрузка '%s' успешно отправлена пользователю %d",
		export.ObjectKey, userID)
}
