package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/tracker-bot/pkg/util"
)

const gatewayKey = "auth_gateway"

// AuthMiddleware validates bearer tokens presented by chat gateways.
type AuthMiddleware struct {
	tokens *TokenManager
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	c.Locals(gatewayKey, claims.GatewayID)
	return c.Next()
}

// GatewayFromContext retrieves the authenticated gateway identifier.
func GatewayFromContext(c *fiber.Ctx) (string, bool) {
	val := c.Locals(gatewayKey)
	if val == nil {
		return "", false
	}
	gateway, ok := val.(string)
	return gateway, ok
}
