package serverutils

import (
	"companion-counselling-be/internal/entity"
	"companion-counselling-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

const actorLocalsKey = "actor"

func SetActor(ctx *fiber.Ctx, actor entity.Actor) {
	ctx.Locals(actorLocalsKey, actor)
}

func ActorFrom(ctx *fiber.Ctx) (entity.Actor, error) {
	actor, ok := ctx.Locals(actorLocalsKey).(entity.Actor)
	if !ok {
		return entity.Actor{}, apperror.Token("missing actor", nil)
	}
	return actor, nil
}

// RequireRole must run after the JWT middleware.
func RequireRole(roles ...entity.Role) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		actor, err := ActorFrom(ctx)
		if err != nil {
			return err
		}
		for _, r := range roles {
			if actor.Role == r {
				return ctx.Next()
			}
		}
		return apperror.Authorization("role not allowed")
	}
}
