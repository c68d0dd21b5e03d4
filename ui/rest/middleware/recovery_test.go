package middleware

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	pkgError "github.com/AzielCF/az-press/pkg/error"
	"github.com/AzielCF/az-press/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecovery_MapsTypedErrorsToStatus(t *testing.T) {
	app := fiber.New()
	app.Use(Recovery())
	app.Get("/missing", func(c *fiber.Ctx) error {
		panic(pkgError.NotFoundError("scheduled post not found."))
	})
	app.Get("/invalid", func(c *fiber.Ctx) error {
		panic(pkgError.ValidationError("site_id: cannot be blank."))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body utils.ResponseData
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "NOT_FOUND_ERROR", body.Code)
	assert.Equal(t, "scheduled post not found.", body.Message)

	resp, err = app.Test(httptest.NewRequest("GET", "/invalid", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRecovery_UntypedPanicIsInternalError(t *testing.T) {
	app := fiber.New()
	app.Use(Recovery())
	app.Get("/boom", func(c *fiber.Ctx) error {
		panic("unexpected state")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	var body utils.ResponseData
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "INTERNAL_SERVER_ERROR", body.Code)
	assert.Equal(t, "unexpected state", body.Message)
}
