package controller

import (
	"companion-counselling-be/internal/dto"
	"companion-counselling-be/internal/entity"
	"companion-counselling-be/internal/pkg/serverutils"
	"companion-counselling-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Provision(ctx *fiber.Ctx) error
	Token(ctx *fiber.Ctx) error
	End(ctx *fiber.Ctx) error
	Expire(ctx *fiber.Ctx) error
	Active(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
}

type sessionController struct {
	service service.ILifecycleService
}

func NewSessionController(service service.ILifecycleService) ISessionController {
	return &sessionController{service: service}
}

func (c *sessionController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/session")
	h.Use(auth)
	h.Post("", serverutils.RequireRole(entity.RoleConsultant), c.Provision)
	h.Post("/token", serverutils.RequireRole(entity.RoleUser, entity.RoleConsultant), c.Token)
	h.Post("/expire", serverutils.RequireRole(entity.RoleUser), c.Expire)
	h.Get("/active", serverutils.RequireRole(entity.RoleUser), c.Active)
	h.Get("/history", serverutils.RequireRole(entity.RoleUser), c.History)
	h.Post("/:id/end", serverutils.RequireRole(entity.RoleConsultant), c.End)
}

func (c *sessionController) Provision(ctx *fiber.Ctx) error {
	actor, err := serverutils.ActorFrom(ctx)
	if err != nil {
		return err
	}

	var req dto.ProvisionSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.ProvisionVideoRoom(ctx.UserContext(), actor, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Video room ready", res))
}

func (c *sessionController) Token(ctx *fiber.Ctx) error {
	actor, err := serverutils.ActorFrom(ctx)
	if err != nil {
		return err
	}

	var req dto.SessionTokenRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.IssueSessionToken(ctx.UserContext(), actor, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Token issued", res))
}

func (c *sessionController) End(ctx *fiber.Ctx) error {
	actor, err := serverutils.ActorFrom(ctx)
	if err != nil {
		return err
	}
	id, err := idParam(ctx)
	if err != nil {
		return err
	}

	if err := c.service.EndSession(ctx.UserContext(), actor, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Session ended", nil))
}

// Expire succeeds whether or not a room was active.
func (c *sessionController) Expire(ctx *fiber.Ctx) error {
	actor, err := serverutils.ActorFrom(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.ExpireMostRecentActiveSession(ctx.UserContext(), actor)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Session expired", res))
}

func (c *sessionController) Active(ctx *fiber.Ctx) error {
	actor, err := serverutils.ActorFrom(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.ActiveSession(ctx.UserContext(), actor)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get active session", res))
}

func (c *sessionController) History(ctx *fiber.Ctx) error {
	actor, err := serverutils.ActorFrom(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.SessionHistory(ctx.UserContext(), actor)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get session history", res))
}
