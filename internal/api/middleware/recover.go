package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"

	"github.com/nilesh0210977/facial-recognition-implementation/internal/domain"
)

// Recover turns a handler panic into an INTERNAL_ERROR returned to the app
// ErrorHandler. The stack is logged here since the error cannot carry it.
func Recover(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			logger.Error("panic recovered",
				slog.Any("panic", r),
				slog.String("method", c.Method()),
				slog.String("path", c.Path()),
				slog.Any("request_id", c.Locals("requestid")),
				slog.String("stack", string(debug.Stack())),
			)

			err = domain.ErrInternal.WithError(fmt.Errorf("panic: %v", r))
		}()

		return c.Next()
	}
}
