package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/asap-project/pickuplines/internal/models"
	"github.com/asap-project/pickuplines/internal/repository"
)

// AuthService определяет интерфейс для сервиса аутентификации.
type AuthService interface {
	Register(username, email, password string) error
	Login(email, password string) (string, error) // Возвращает JWT токен или ошибку
	VerifyToken(tokenString string) (*TokenIdentity, error)
}

// AuthConfig содержит параметры аутентификации, передаваемые из конфигурации
// сервера. Секрет подписи никогда не хранится константой в коде.
type AuthConfig struct {
	JWTSecret []byte        // Секрет для подписи токенов (HS256)
	TokenTTL  time.Duration // Время жизни токена
}

// TokenIdentity — личность пользователя, извлеченная из валидного токена.
type TokenIdentity struct {
	UserID   int64
	Username string
	Email    string
}

// Структура для пользовательских данных в JWT (claims).
type jwtClaims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// Имя издателя токенов.
const tokenIssuer = "pickuplines-server"

// Убедимся, что authService удовлетворяет интерфейсу AuthService.
var _ AuthService = (*authService)(nil)

type authService struct {
	userRepo repository.UserRepository // Зависимость от репозитория пользователей
	cfg      AuthConfig
}

// NewAuthService создает новый экземпляр сервиса аутентификации.
func NewAuthService(userRepo repository.UserRepository, cfg AuthConfig) AuthService {
	return &authService{userRepo: userRepo, cfg: cfg}
}

// Register регистрирует нового пользователя.
// Пароль хешируется bcrypt с соленым хешем, открытый пароль не сохраняется.
func (s *authService) Register(username, email, password string) error {
	ctx := context.Background() // Используем фоновый контекст для операций сервиса

	// Все три поля обязательны
	if username == "" || email == "" || password == "" {
		return ErrValidation
	}

	// Хешируем пароль (DefaultCost = 10 раундов)
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[AuthService] Ошибка хеширования пароля для '%s': %v", username, err)
		return errors.New("внутренняя ошибка сервера при хешировании пароля")
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	// Создаем пользователя через репозиторий
	_, err = s.userRepo.CreateUser(ctx, user)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailTaken):
			log.Printf("[AuthService] Попытка регистрации с занятым email: %s", email)
			return ErrEmailTaken
		case errors.Is(err, repository.ErrUsernameTaken):
			log.Printf("[AuthService] Попытка регистрации с занятым именем: %s", username)
			return ErrUsernameTaken
		default:
			log.Printf("[AuthService] Непредвиденная ошибка репозитория при регистрации '%s': %v", username, err)
			return errors.New("внутренняя ошибка сервера при создании пользователя")
		}
	}

	log.Printf("[AuthService] Пользователь '%s' успешно зарегистрирован", username)
	return nil
}

// Login аутентифицирует пользователя и возвращает JWT токен.
// Для несуществующего email и неверного пароля возвращается одна и та же
// ошибка, чтобы нельзя было перебором выяснить, какие email зарегистрированы.
func (s *authService) Login(email, password string) (string, error) {
	ctx := context.Background()

	// Оба поля обязательны
	if email == "" || password == "" {
		return "", ErrValidation
	}

	// Получаем пользователя по email
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			log.Printf("[AuthService] Попытка входа с неизвестным email: %s", email)
			return "", ErrInvalidCredentials
		}
		log.Printf("[AuthService] Ошибка репозитория при поиске '%s': %v", email, err)
		return "", errors.New("внутренняя ошибка сервера при поиске пользователя")
	}

	// Сравниваем предоставленный пароль с хешем из базы данных
	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		log.Printf("[AuthService] Неверный пароль для пользователя: %s", email)
		return "", ErrInvalidCredentials
	}

	// Генерируем JWT токен
	token, err := s.generateJWT(user)
	if err != nil {
		log.Printf("[AuthService] Ошибка генерации JWT для '%s': %v", email, err)
		return "", errors.New("внутренняя ошибка сервера при генерации токена")
	}

	log.Printf("[AuthService] Пользователь '%s' успешно аутентифицирован", user.Username)
	return token, nil
}

// VerifyToken проверяет подпись и срок действия токена и возвращает
// личность пользователя. Сервер не хранит состояние сессий: токен,
// выданный до logout, остается валидным до истечения своего срока.
func (s *authService) VerifyToken(tokenString string) (*TokenIdentity, error) {
	claims := &jwtClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Убеждаемся, что метод подписи - HS256
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", token.Header["alg"])
		}
		return s.cfg.JWTSecret, nil
	})
	if err != nil {
		log.Printf("[AuthService] Ошибка парсинга/валидации токена: %v", err)
		return nil, ErrInvalidToken
	}

	// Проверяем валидность токена (включая время жизни)
	if !token.Valid {
		log.Println("[AuthService] Предоставлен невалидный токен (возможно, истек)")
		return nil, ErrInvalidToken
	}

	return &TokenIdentity{
		UserID:   claims.UserID,
		Username: claims.Username,
		Email:    claims.Email,
	}, nil
}

// generateJWT создает и подписывает JWT токен для пользователя.
func (s *authService) generateJWT(user *models.User) (string, error) {
	// Создаем claims (полезную нагрузку)
	claims := jwtClaims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.cfg.TokenTTL)), // Время истечения
			IssuedAt:  jwt.NewNumericDate(time.Now()),                     // Время выдачи
			NotBefore: jwt.NewNumericDate(time.Now()),                     // Время, с которого токен валиден
			Issuer:    tokenIssuer,                                        // Источник токена
		},
	}

	// Создаем токен с нашими claims и методом подписи HS256
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	// Подписываем токен секретным ключом
	signedToken, err := token.SignedString(s.cfg.JWTSecret)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи JWT: %w", err)
	}

	return signedToken, nil
}

// Кастомные ошибки сервиса.
var (
	ErrValidation         = errors.New("все поля обязательны для заполнения")
	ErrEmailTaken         = errors.New("email уже занят")
	ErrUsernameTaken      = errors.New("имя пользователя уже занято")
	ErrInvalidCredentials = errors.New("неверный email или пароль")
	ErrInvalidToken       = errors.New("невалидный токен")
)
