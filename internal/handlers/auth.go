package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/asap-project/pickuplines/internal/middleware"
	"github.com/asap-project/pickuplines/internal/models"
	"github.com/asap-project/pickuplines/internal/services"
)

// AuthService определяет интерфейс для сервиса аутентификации.
// Это позволит нам легко подменять реализацию (например, для тестов).
type AuthService interface {
	Register(username, email, password string) error
	Login(email, password string) (string, error) // Возвращает JWT токен или ошибку
}

// AuthHandler обрабатывает HTTP-запросы, связанные с аутентификацией.
type AuthHandler struct {
	service  AuthService // Зависимость от интерфейса, а не конкретной реализации
	tokenTTL time.Duration
}

// NewAuthHandler создает новый экземпляр AuthHandler.
// tokenTTL нужен, чтобы срок жизни cookie совпадал со сроком жизни токена.
func NewAuthHandler(s AuthService, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{service: s, tokenTTL: tokenTTL}
}

// Register обрабатывает запрос на регистрацию нового пользователя.
// Токен при регистрации не выдается: вход — отдельный шаг.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	// Декодируем JSON из тела запроса
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[AuthHandler] Ошибка декодирования запроса регистрации: %v", err)
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	log.Printf("[AuthHandler] Попытка регистрации пользователя: %s", req.Username)

	err := h.service.Register(req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			http.Error(w, "Имя пользователя, email и пароль не могут быть пустыми", http.StatusBadRequest)
		case errors.Is(err, services.ErrEmailTaken), errors.Is(err, services.ErrUsernameTaken):
			log.Printf("[AuthHandler] Конфликт при регистрации '%s': %v", req.Username, err)
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			log.Printf("[AuthHandler] Внутренняя ошибка при регистрации '%s': %v", req.Username, err)
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated) // 201 Created
	if err = json.NewEncoder(w).Encode(models.MessageResponse{
		Message: "Пользователь успешно зарегистрирован",
	}); err != nil {
		log.Printf("[AuthHandler] Ошибка кодирования ответа регистрации: %v", err)
		return
	}
	log.Printf("[AuthHandler] Успешная регистрация для: %s", req.Username)
}

// Login обрабатывает запрос на вход пользователя.
// Токен доставляется клиенту только через HttpOnly cookie — в теле ответа
// его нет.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	// Декодируем JSON из тела запроса
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[AuthHandler] Ошибка декодирования запроса входа: %v", err)
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	log.Printf("[AuthHandler] Попытка входа пользователя: %s", req.Email)

	token, err := h.service.Login(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			http.Error(w, "Email и пароль не могут быть пустыми", http.StatusBadRequest)
		case errors.Is(err, services.ErrInvalidCredentials):
			// Одно сообщение для неизвестного email и неверного пароля
			http.Error(w, "Неверный email или пароль", http.StatusUnauthorized)
		default:
			log.Printf("[AuthHandler] Внутренняя ошибка при входе '%s': %v", req.Email, err)
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		}
		return
	}

	// Устанавливаем cookie с токеном
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokenTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK) // 200 OK
	if err = json.NewEncoder(w).Encode(models.MessageResponse{Message: "Вход выполнен успешно"}); err != nil {
		log.Printf("[AuthHandler] Ошибка кодирования ответа входа: %v", err)
		// Клиент уже получил статус 200, сложно что-то изменить
		return
	}
	log.Printf("[AuthHandler] Успешный вход для: %s", req.Email)
}

// Logout обрабатывает запрос на выход: очищает cookie с токеном.
// Криптографически токен при этом не отзывается — выданный ранее токен
// остается валидным до истечения своего срока (сервер не хранит сессии).
func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	// Просроченная cookie заставляет браузер удалить токен
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(models.MessageResponse{Message: "Выход выполнен успешно"}); err != nil {
		log.Printf("[AuthHandler] Ошибка кодирования ответа выхода: %v", err)
		return
	}
	log.Println("[AuthHandler] Выход выполнен, cookie очищена")
}
