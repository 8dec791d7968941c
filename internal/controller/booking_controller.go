package controller

import (
	"companion-counselling-be/internal/dto"
	"companion-counselling-be/internal/entity"
	"companion-counselling-be/internal/pkg/serverutils"
	"companion-counselling-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IBookingController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Create(ctx *fiber.Ctx) error
	Accept(ctx *fiber.Ctx) error
	Complete(ctx *fiber.Ctx) error
	Pending(ctx *fiber.Ctx) error
	Mine(ctx *fiber.Ctx) error
}

type bookingController struct {
	service service.ILifecycleService
}

func NewBookingController(service service.ILifecycleService) IBookingController {
	return &bookingController{service: service}
}

func (c *bookingController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/booking")
	h.Use(auth)
	h.Post("", serverutils.RequireRole(entity.RoleUser), c.Create)
	h.Get("/pending", serverutils.RequireRole(entity.RoleConsultant), c.Pending)
	h.Get("/mine", serverutils.RequireRole(entity.RoleUser, entity.RoleConsultant), c.Mine)
	h.Post("/:id/accept", serverutils.RequireRole(entity.RoleConsultant), c.Accept)
	h.Post("/:id/complete", serverutils.RequireRole(entity.RoleConsultant), c.Complete)
}

func (c *bookingController) Create(ctx *fiber.Ctx) error {
	actor, err := serverutils.ActorFrom(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateBookingRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.CreateBooking(ctx.UserContext(), actor, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Booking requested", res))
}

func (c *bookingController) Accept(ctx *fiber.Ctx) error {
	actor, err := serverutils.ActorFrom(ctx)
	if err != nil {
		return err
	}
	id, err := idParam(ctx)
	if err != nil {
		return err
	}

	if err := c.service.AcceptBooking(ctx.UserContext(), actor, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Booking accepted", nil))
}

func (c *bookingController) Complete(ctx *fiber.Ctx) error {
	actor, err := serverutils.ActorFrom(ctx)
	if err != nil {
		return err
	}
	id, err := idParam(ctx)
	if err != nil {
		return err
	}

	if err := c.service.CompleteBooking(ctx.UserContext(), actor, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Booking completed", nil))
}

func (c *bookingController) Pending(ctx *fiber.Ctx) error {
	actor, err := serverutils.ActorFrom(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.ListPendingBookings(ctx.UserContext(), actor)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get pending bookings", res))
}

func (c *bookingController) Mine(ctx *fiber.Ctx) error {
	actor, err := serverutils.ActorFrom(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.ListMyBookings(ctx.UserContext(), actor)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get bookings", res))
}
