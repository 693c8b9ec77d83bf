package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yourusername/aegis-api/internal/domain/entity"
	"github.com/yourusername/aegis-api/internal/domain/repository"
	apperrors "github.com/yourusername/aegis-api/internal/pkg/errors"
)

// RegisterInput описывает данные регистрации нового пользователя
type RegisterInput struct {
	Username   string
	Email      string
	Password   string
	University string
	Field      string
}

// AuthService предоставляет методы регистрации и входа пользователей
type AuthService struct {
	userRepo repository.UserRepository
}

// NewAuthService создает новый сервис аутентификации
func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

// RegisterUser создает нового пользователя с ролью user.
// Пароль хешируется bcrypt в хуке entity.User.BeforeSave.
func (s *AuthService) RegisterUser(input RegisterInput) (*entity.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if username == "" || email == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", apperrors.ErrValidation)
	}
	if len(input.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", apperrors.ErrValidation)
	}

	user := &entity.User{
		Username:   username,
		Email:      email,
		Password:   input.Password,
		University: strings.TrimSpace(input.University),
		Field:      strings.TrimSpace(input.Field),
		Role:       entity.RoleUser,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	return user, nil
}

// AuthenticateUser проверяет email и пароль и возвращает пользователя.
// Несуществующий email и неверный пароль дают одну и ту же ошибку.
func (s *AuthService) AuthenticateUser(email, password string) (*entity.User, error) {
	user, err := s.userRepo.GetByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
		}
		return nil, err
	}

	if !user.CheckPassword(password) {
		return nil, fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
	}

	return user, nil
}

// GetUserByID возвращает пользователя по ID
func (s *AuthService) GetUserByID(userID uint) (*entity.User, error) {
	return s.userRepo.GetByID(userID)
}
