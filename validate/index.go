package validate

import (
	"errors"
	"fmt"
	"strconv"

	"restaurant_manager/constants"
	"restaurant_manager/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// GetById kiểm tra tham số đường dẫn là số nguyên dương, lưu vào Locals(key)
func GetById(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		params := c.Params(key)
		valueKey, err := strconv.ParseUint(params, 10, 32)
		if err != nil || valueKey == 0 {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.DATA_INPUT_IS_NOT_NUMBER, errors.New("params invalid"))
		}

		c.Locals(key, uint(valueKey))
		return c.Next()
	}
}

// Body parse JSON vào T, chạy validator rồi lưu vào Locals("input")
func Body[T any]() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input T

		if err := c.BodyParser(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("Invalid input %s", err.Error()),
			})
		}

		if err := validate.Struct(input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		c.Locals("input", input)
		return c.Next()
	}
}
