package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/aegis-api/internal/domain/entity"
	"github.com/yourusername/aegis-api/internal/handler/dto"
	"github.com/yourusername/aegis-api/internal/middleware"
	apperrors "github.com/yourusername/aegis-api/internal/pkg/errors"
	"github.com/yourusername/aegis-api/internal/service"
	"github.com/yourusername/aegis-api/pkg/auth"
)

// AuthHandler обрабатывает запросы регистрации и входа
type AuthHandler struct {
	authService   *service.AuthService
	jwtService    *auth.JWTService
	expirationHrs int
}

// NewAuthHandler создает новый обработчик аутентификации
func NewAuthHandler(authService *service.AuthService, jwtService *auth.JWTService, expirationHrs int) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		jwtService:    jwtService,
		expirationHrs: expirationHrs,
	}
}

// RegisterRequest представляет запрос на регистрацию
type RegisterRequest struct {
	Username   string `json:"username" binding:"required,min=3,max=50"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	University string `json:"university" binding:"omitempty,max=100"`
	Field      string `json:"field" binding:"omitempty,max=100"`
}

// Register обрабатывает запрос на регистрацию пользователя
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authService.RegisterUser(service.RegisterInput{
		Username:   req.Username,
		Email:      req.Email,
		Password:   req.Password,
		University: req.University,
		Field:      req.Field,
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrConflict):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		}
		return
	}

	resp := h.tokenResponse(c, user)
	if resp == nil {
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// LoginRequest представляет запрос на вход
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login обрабатывает запрос на вход пользователя
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authService.AuthenticateUser(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to login"})
		return
	}

	resp := h.tokenResponse(c, user)
	if resp == nil {
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetMe возвращает текущего аутентифицированного пользователя
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := h.authService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return
	}

	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// tokenResponse генерирует токен для пользователя. При ошибке подписи
// сам пишет 500 в ответ и возвращает nil.
func (h *AuthHandler) tokenResponse(c *gin.Context, user *entity.User) *dto.TokenResponse {
	token, err := h.jwtService.GenerateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return nil
	}
	return &dto.TokenResponse{
		AccessToken: token,
		ExpiresIn:   h.expirationHrs * 3600,
		User:        dto.NewUserResponse(user),
	}
}
