package serverutils

import (
	"fmt"
	"strings"
	"time"

	"companion-counselling-be/internal/entity"
	"companion-counselling-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

type actorClaims struct {
	ActorID uint   `json:"actor_id"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

// ParseActor validates an HS256 bearer token and returns the actor it carries.
func ParseActor(secret, tokenStr string) (entity.Actor, error) {
	claims := &actorClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return entity.Actor{}, apperror.Token("invalid token", err)
	}

	role := entity.Role(claims.Role)
	if claims.ActorID == 0 || !role.Valid() {
		return entity.Actor{}, apperror.Token("invalid claims", nil)
	}
	return entity.Actor{ID: claims.ActorID, Role: role}, nil
}

// SignActorToken issues the bearer token format ParseActor accepts.
func SignActorToken(secret string, actor entity.Actor, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := actorClaims{
		ActorID: actor.ID,
		Role:    string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// BearerToken reads the Authorization header, falling back to the token query
// parameter which browsers need for websocket upgrades.
func BearerToken(ctx *fiber.Ctx) string {
	authHeader := ctx.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return authHeader[7:]
	}
	return ctx.Query("token")
}

func NewJwtMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tokenStr := BearerToken(ctx)
		if tokenStr == "" {
			return apperror.Token("missing token", nil)
		}

		actor, err := ParseActor(secret, tokenStr)
		if err != nil {
			return err
		}

		SetActor(ctx, actor)
		return ctx.Next()
	}
}
