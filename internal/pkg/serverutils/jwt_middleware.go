package serverutils

import (
	"os"
	"strings"

	"orquix-backend/internal/pkg/apperrors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JwtMiddleware authenticates the request from a Bearer token and stores the
// token's user_id claim in ctx.Locals. Failures surface as AuthRequired
// errors so ErrorHandler answers 401 with the standard error shape.
func JwtMiddleware(ctx *fiber.Ctx) error {
	authHeader := ctx.Get(fiber.HeaderAuthorization)
	tokenStr, found := strings.CutPrefix(authHeader, "Bearer ")
	if !found || tokenStr == "" {
		return apperrors.AuthRequired("missing bearer token")
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.AuthRequired("unexpected signing method")
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return apperrors.AuthRequired("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return apperrors.AuthRequired("invalid claims")
	}
	userId, ok := claims["user_id"].(string)
	if !ok || userId == "" {
		return apperrors.AuthRequired("token is missing the user_id claim")
	}

	ctx.Locals("user_id", userId)
	return ctx.Next()
}
