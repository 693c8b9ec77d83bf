package dto

import (
	"time"

	"github.com/yourusername/aegis-api/internal/domain/entity"
)

// UserResponse представляет пользователя в формате для ответа клиенту
type UserResponse struct {
	ID             uint      `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	University     string    `json:"university,omitempty"`
	Field          string    `json:"field,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// TokenResponse представляет выданный токен вместе с пользователем
type TokenResponse struct {
	AccessToken string        `json:"access_token"`
	ExpiresIn   int           `json:"expires_in"` // Секунды до истечения
	User        *UserResponse `json:"user"`
}

// NewUserResponse создает DTO для пользователя
func NewUserResponse(user *entity.User) *UserResponse {
	if user == nil {
		return nil
	}
	return &UserResponse{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		ProfilePicture: user.ProfilePicture,
		University:     user.University,
		Field:          user.Field,
		CreatedAt:      user.CreatedAt,
	}
}
