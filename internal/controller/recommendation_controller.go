package controller

import (
	"companion-counselling-be/internal/entity"
	"companion-counselling-be/internal/pkg/serverutils"
	"companion-counselling-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IRecommendationController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Consultants(ctx *fiber.Ctx) error
}

type recommendationController struct {
	service service.IRecommendationService
}

func NewRecommendationController(service service.IRecommendationService) IRecommendationController {
	return &recommendationController{service: service}
}

func (c *recommendationController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/recommendations")
	h.Use(auth, serverutils.RequireRole(entity.RoleUser))
	h.Get("/consultants", c.Consultants)
}

func (c *recommendationController) Consultants(ctx *fiber.Ctx) error {
	actor, err := serverutils.ActorFrom(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.RecommendConsultants(ctx.UserContext(), actor)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get recommendations", res))
}
