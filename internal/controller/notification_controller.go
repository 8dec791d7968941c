package controller

import (
	"companion-counselling-be/internal/dto"
	"companion-counselling-be/internal/entity"
	"companion-counselling-be/internal/pkg/apperror"
	"companion-counselling-be/internal/pkg/serverutils"
	"companion-counselling-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type INotificationController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Fetch(ctx *fiber.Ctx) error
	Clear(ctx *fiber.Ctx) error
	Announce(ctx *fiber.Ctx) error
}

type notificationController struct {
	service service.INotificationService
}

func NewNotificationController(service service.INotificationService) INotificationController {
	return &notificationController{service: service}
}

func (c *notificationController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/notifications")
	h.Use(auth)
	h.Get("", c.Fetch)
	h.Post("/clear", c.Clear)

	admin := r.Group("/announcements")
	admin.Use(auth, serverutils.RequireRole(entity.RoleAdmin))
	admin.Post("", c.Announce)
}

func inboxOf(ctx *fiber.Ctx) (entity.Recipient, error) {
	actor, err := serverutils.ActorFrom(ctx)
	if err != nil {
		return entity.Recipient{}, err
	}
	recipient, ok := actor.Recipient()
	if !ok {
		return entity.Recipient{}, apperror.Authorization("only users and consultants have notifications")
	}
	return recipient, nil
}

func (c *notificationController) Fetch(ctx *fiber.Ctx) error {
	recipient, err := inboxOf(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Fetch(ctx.UserContext(), recipient)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get notifications", res))
}

func (c *notificationController) Clear(ctx *fiber.Ctx) error {
	recipient, err := inboxOf(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Clear(ctx.UserContext(), recipient)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Notifications cleared", res))
}

func (c *notificationController) Announce(ctx *fiber.Ctx) error {
	actor, err := serverutils.ActorFrom(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateAnnouncementRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.CreateAnnouncement(ctx.UserContext(), actor, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Announcement published", res))
}
