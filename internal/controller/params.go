package controller

import (
	"companion-counselling-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

func idParam(ctx *fiber.Ctx) (uint, error) {
	id, err := ctx.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, apperror.ValidationFields(map[string]string{"id": "must be a positive integer"})
	}
	return uint(id), nil
}
