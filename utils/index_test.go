package utils

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponses(t *testing.T) {
	app := fiber.New()
	app.Get("/ok", func(c *fiber.Ctx) error { return SuccessResponse(c, fiber.StatusOK, fiber.Map{"id": 1}) })
	app.Get("/bad", func(c *fiber.Ctx) error {
		return ErrorResponse(c, fiber.StatusConflict, "Invalid status transition", errors.New("completed -> new"))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/ok", nil))
	require.NoError(t, err)
	var ok map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ok))
	assert.Equal(t, "success", ok["status"])

	resp, err = app.Test(httptest.NewRequest("GET", "/bad", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	var bad map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&bad))
	assert.Equal(t, "completed -> new", bad["error"])
}

func TestNewLogger(t *testing.T) {
	for _, production := range []bool{true, false} {
		log, err := NewLogger(production)
		require.NoError(t, err)
		assert.NotNil(t, log)
	}
}
