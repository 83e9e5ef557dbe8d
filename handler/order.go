package handler

import (
	"restaurant_manager/constants"
	"restaurant_manager/model"
	"restaurant_manager/utils"

	"github.com/gofiber/fiber/v2"
)

// UpdateOrderStatus PATCH /orders/:orderId/status
func (h *Handler) UpdateOrderStatus(c *fiber.Ctx) error {
	input, ok := c.Locals("input").(model.UpdateOrderStatusInput)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.INVALID_INPUT, nil)
	}

	result, err := h.Orders.Transition(c.UserContext(), param(c, "orderId"), input.Status)
	if err != nil {
		return h.fail(c, constants.ORDER_NOT_FOUND, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, result)
}
