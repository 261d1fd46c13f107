package serverutils

import (
	"errors"
	"fmt"
	"strings"

	"orquix-backend/internal/pkg/apperrors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

type Response struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func SuccessResponse(message string, data interface{}) *Response {
	return &Response{
		Message: message,
		Data:    data,
	}
}

// ValidateRequest runs struct tag validation and converts failures into a
// validation AppError so the error handler answers 400.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, len(verrs))
			for i, fe := range verrs {
				fields[i] = fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag())
			}
			return apperrors.Validation("invalid request: " + strings.Join(fields, ", "))
		}
		return apperrors.Validation("invalid request")
	}
	return nil
}

// ErrorHandler maps application error kinds to HTTP statuses. It is wired
// as the fiber app's global error handler.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return ctx.Status(fiberErr.Code).JSON(fiber.Map{"message": fiberErr.Message})
	}

	status := fiber.StatusInternalServerError
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation:
		status = fiber.StatusBadRequest
	case apperrors.KindNotFound:
		status = fiber.StatusNotFound
	case apperrors.KindAuthRequired:
		status = fiber.StatusUnauthorized
	case apperrors.KindUpstreamTimeout:
		status = fiber.StatusGatewayTimeout
	case apperrors.KindUpstreamRateLimited:
		status = fiber.StatusTooManyRequests
	case apperrors.KindUpstreamUnavailable, apperrors.KindUpstreamBusy, apperrors.KindEmbeddingUnavailable:
		status = fiber.StatusBadGateway
	case apperrors.KindCancelled:
		status = fiber.StatusRequestTimeout
	}

	message := err.Error()
	if status == fiber.StatusInternalServerError {
		// Internal details stay in the logs.
		message = "internal server error"
	}
	return ctx.Status(status).JSON(fiber.Map{"message": message})
}
