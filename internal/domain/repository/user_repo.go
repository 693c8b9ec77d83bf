package repository

import (
	"github.com/yourusername/aegis-api/internal/domain/entity"
)

// UserRepository определяет методы для работы с пользователями
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id uint) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	// GetRole возвращает роль пользователя ("user" или "admin").
	// Роль перечитывается из БД при каждой admin-операции, а не кешируется в claims.
	GetRole(userID uint) (string, error)
}
