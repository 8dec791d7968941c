package serverutils

import (
	"errors"

	"companion-counselling-be/internal/pkg/apperror"
	"companion-counselling-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

func StatusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation, apperror.KindInvalidRole:
		return fiber.StatusBadRequest
	case apperror.KindToken:
		return fiber.StatusUnauthorized
	case apperror.KindAuthorization:
		return fiber.StatusForbidden
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	case apperror.KindAlreadyHandled:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandlerMiddleware turns errors returned by handlers into BaseResponse bodies.
// Internal details of persistence and unknown failures are only logged.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return writeError(ctx, log, err)
	}
}

func writeError(ctx *fiber.Ctx, log logger.ILogger, err error) error {
	details := map[string]interface{}{
		"method": ctx.Method(),
		"path":   ctx.Path(),
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return ctx.Status(fe.Code).JSON(ErrorResponse(fe.Code, fe.Message))
	}

	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		details["error"] = err.Error()
		log.Error("HTTP", "Unhandled error", details)
		return ctx.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse(fiber.StatusInternalServerError, "internal server error"))
	}

	status := StatusFor(appErr.Kind)
	details["kind"] = string(appErr.Kind)
	switch appErr.Kind {
	case apperror.KindPersistence, apperror.KindConfiguration:
		details["error"] = appErr.Error()
		log.Error("HTTP", "Request failed", details)
	case apperror.KindAlreadyHandled:
		log.Info("HTTP", "Request already handled", details)
	default:
		log.Warn("HTTP", "Request rejected", details)
	}

	message := appErr.Message
	if status == fiber.StatusInternalServerError {
		message = "internal server error"
	}
	body := ErrorResponse(status, message)
	body.Errors = appErr.Fields
	return ctx.Status(status).JSON(body)
}
