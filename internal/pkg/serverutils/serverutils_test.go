package serverutils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"companion-counselling-be/internal/entity"
	"companion-counselling-be/internal/pkg/apperror"
	"companion-counselling-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestApp(handler fiber.Handler, mw ...fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware(logger.NewNopLogger()))
	handlers := append(mw, handler)
	app.Get("/probe", handlers...)
	return app
}

func decode(t *testing.T, body io.Reader) BaseResponse[map[string]interface{}] {
	t.Helper()
	var resp BaseResponse[map[string]interface{}]
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp
}

func TestErrorHandlerMapsKinds(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		message string
	}{
		{apperror.Validation("bad date"), fiber.StatusBadRequest, "bad date"},
		{apperror.InvalidRole("owner"), fiber.StatusBadRequest, `invalid role "owner"`},
		{apperror.Token("missing token", nil), fiber.StatusUnauthorized, "missing token"},
		{apperror.Authorization("nope"), fiber.StatusForbidden, "nope"},
		{apperror.NotFound("booking not found"), fiber.StatusNotFound, "booking not found"},
		{apperror.AlreadyHandled("taken"), fiber.StatusConflict, "taken"},
		{apperror.Persistence(errors.New("pq: boom")), fiber.StatusInternalServerError, "internal server error"},
		{apperror.Configuration("VIDEO_APP_ID is not set"), fiber.StatusInternalServerError, "internal server error"},
		{errors.New("surprise"), fiber.StatusInternalServerError, "internal server error"},
		{fiber.NewError(fiber.StatusTeapot, "teapot"), fiber.StatusTeapot, "teapot"},
	}

	for _, tc := range cases {
		t.Run(tc.message, func(t *testing.T) {
			app := newTestApp(func(*fiber.Ctx) error { return tc.err })
			resp, err := app.Test(httptest.NewRequest("GET", "/probe", nil))
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)

			body := decode(t, resp.Body)
			assert.False(t, body.Success)
			assert.Equal(t, tc.status, body.Code)
			assert.Equal(t, tc.message, body.Message)
		})
	}
}

func TestErrorHandlerReturnsFields(t *testing.T) {
	app := newTestApp(func(*fiber.Ctx) error {
		return ValidateRequest(&struct {
			PreferredDate string `validate:"required,date_ymd"`
			PreferredTime string `validate:"required,clock_hm"`
		}{PreferredDate: "16/03/2025", PreferredTime: "14:00"})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/probe", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body := decode(t, resp.Body)
	assert.Equal(t, map[string]string{"preferredDate": "date_ymd"}, body.Errors)
}

func TestJwtMiddleware(t *testing.T) {
	user := entity.Actor{ID: 3, Role: entity.RoleUser}
	token, err := SignActorToken(testSecret, user, time.Hour)
	require.NoError(t, err)

	echo := func(ctx *fiber.Ctx) error {
		actor, err := ActorFrom(ctx)
		if err != nil {
			return err
		}
		return ctx.JSON(SuccessResponse("ok", map[string]interface{}{"id": actor.ID, "role": actor.Role}))
	}
	app := newTestApp(echo, NewJwtMiddleware(testSecret))

	req := httptest.NewRequest("GET", "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decode(t, resp.Body)
	assert.EqualValues(t, 3, body.Data["id"])
	assert.Equal(t, "user", body.Data["role"])

	resp, err = app.Test(httptest.NewRequest("GET", "/probe?token="+token, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/probe", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	forged, err := SignActorToken("other-secret", user, time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest("GET", "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestParseActorRejectsBadClaims(t *testing.T) {
	expired, err := SignActorToken(testSecret, entity.Actor{ID: 3, Role: entity.RoleUser}, -time.Minute)
	require.NoError(t, err)
	_, err = ParseActor(testSecret, expired)
	assert.Equal(t, apperror.KindToken, apperror.KindOf(err))

	unknownRole, err := SignActorToken(testSecret, entity.Actor{ID: 3, Role: "superuser"}, time.Hour)
	require.NoError(t, err)
	_, err = ParseActor(testSecret, unknownRole)
	assert.Equal(t, apperror.KindToken, apperror.KindOf(err))
}

func TestRequireRole(t *testing.T) {
	setActor := func(actor entity.Actor) fiber.Handler {
		return func(ctx *fiber.Ctx) error {
			SetActor(ctx, actor)
			return ctx.Next()
		}
	}
	ok := func(ctx *fiber.Ctx) error { return ctx.SendStatus(fiber.StatusNoContent) }

	admin := newTestApp(ok, setActor(entity.Actor{ID: 1, Role: entity.RoleAdmin}), RequireRole(entity.RoleAdmin))
	resp, err := admin.Test(httptest.NewRequest("GET", "/probe", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	user := newTestApp(ok, setActor(entity.Actor{ID: 3, Role: entity.RoleUser}), RequireRole(entity.RoleAdmin))
	resp, err = user.Test(httptest.NewRequest("GET", "/probe", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	anonymous := newTestApp(ok, RequireRole(entity.RoleAdmin))
	resp, err = anonymous.Test(httptest.NewRequest("GET", "/probe", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
