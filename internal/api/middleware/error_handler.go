package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/nilesh0210977/facial-recognition-implementation/internal/domain"
)

// ErrorResponse is the JSON body for every failed request
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func errorJSON(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(ErrorResponse{
		Error: ErrorBody{Code: code, Message: message},
	})
}

func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var appErr *domain.AppError
		if errors.As(err, &appErr) {
			if appErr.StatusCode >= 500 {
				logger.Error("request failed",
					slog.String("code", appErr.Code),
					slog.String("message", appErr.Message),
					slog.Any("error", err),
					slog.String("path", c.Path()),
					slog.Any("request_id", c.Locals("requestid")),
				)
			}

			return errorJSON(c, appErr.StatusCode, appErr.Code, appErr.Message)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return errorJSON(c, fiberErr.Code, "HTTP_ERROR", fiberErr.Message)
		}

		logger.Error("unhandled error",
			slog.Any("error", err),
			slog.String("path", c.Path()),
			slog.Any("request_id", c.Locals("requestid")),
		)

		return errorJSON(c, fiber.StatusInternalServerError, domain.ErrInternal.Code, domain.ErrInternal.Message)
	}
}
