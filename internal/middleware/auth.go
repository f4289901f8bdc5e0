package middleware

import (
	"context"
	"log"
	"net/http"

	"github.com/asap-project/pickuplines/internal/services"
)

// Тип для ключа контекста.
type contextKey string

// Ключи для хранения данных аутентифицированного пользователя в контексте.
const (
	UserIDKey    contextKey = "userID"
	UsernameKey  contextKey = "username"
	UserEmailKey contextKey = "userEmail"
)

// AuthCookieName — имя cookie, в которой клиент хранит токен сессии.
// Единственный транспорт токена в приложении: устанавливается при входе,
// читается этим middleware, очищается при выходе.
const AuthCookieName = "auth_token"

// TokenVerifier проверяет токен и возвращает личность пользователя.
type TokenVerifier interface {
	VerifyToken(tokenString string) (*services.TokenIdentity, error)
}

// Authenticator возвращает middleware, проверяющий токен аутентификации
// из cookie. Секрет подписи не хранится здесь: проверку выполняет verifier.
func Authenticator(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Получаем cookie с токеном
			cookie, err := r.Cookie(AuthCookieName)
			if err != nil {
				log.Println("[AuthMiddleware] Cookie с токеном отсутствует")
				http.Error(w, "Требуется аутентификация", http.StatusUnauthorized)
				return
			}

			// Проверяем подпись и срок действия токена
			identity, err := verifier.VerifyToken(cookie.Value)
			if err != nil {
				log.Printf("[AuthMiddleware] Ошибка проверки токена: %v", err)
				http.Error(w, "Невалидный токен", http.StatusBadRequest)
				return
			}

			// Добавляем данные пользователя в контекст запроса
			ctx := context.WithValue(r.Context(), UserIDKey, identity.UserID)
			ctx = context.WithValue(ctx, UsernameKey, identity.Username)
			ctx = context.WithValue(ctx, UserEmailKey, identity.Email)

			log.Printf("[AuthMiddleware] Пользователь %d (%s) успешно аутентифицирован",
				identity.UserID, identity.Email)

			// Передаем управление следующему обработчику с обновленным контекстом
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserIDFromContext извлекает UserID из контекста запроса.
// Возвращает ID пользователя и true, если ID найден, иначе 0 и false.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}

// GetUsernameFromContext извлекает имя пользователя из контекста запроса.
func GetUsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameKey).(string)
	return username, ok
}

// GetUserEmailFromContext извлекает email пользователя из контекста запроса.
func GetUserEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(UserEmailKey).(string)
	return email, ok
}
