package handlers

import (
	"receipt-vault/internal/dto"
	"receipt-vault/pkg/auth"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AuthHandler struct {
	jwtManager *auth.JWTManager
	validate   *validator.Validate
	logger     *zap.Logger
}

func NewAuthHandler(jwtManager *auth.JWTManager, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		jwtManager: jwtManager,
		validate:   validator.New(),
		logger:     logger,
	}
}

// Token godoc
// @Summary Exchange the API key for an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.TokenRequest true "API key"
// @Success 200 {object} dto.TokenResponse
// @Failure 401 {object} map[string]string
// @Router /auth/token [post]
func (h *AuthHandler) Token(c *fiber.Ctx) error {
	var req dto.TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	token, err := h.jwtManager.Exchange(req.APIKey)
	if err != nil {
		h.logger.Warn("Token exchange rejected", zap.Error(err))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid api key"})
	}

	return c.JSON(dto.TokenResponse{Token: token})
}
