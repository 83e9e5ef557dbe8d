package handler

import (
	"errors"

	"restaurant_manager/constants"
	"restaurant_manager/service"
	"restaurant_manager/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Handler gom các service mà các route HTTP gọi tới.
type Handler struct {
	Orders    *service.OrderLifecycle
	Loyalty   *service.LoyaltyService
	Campaigns *service.CampaignSelector
	Tables    *service.TableReconciler
	Sweeper   *service.PointExpirySweeper
	Clock     clockwork.Clock
	Log       *zap.Logger
}

// fail đổi lỗi của service thành response
func (h *Handler) fail(c *fiber.Ctx, notFoundMsg string, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, notFoundMsg, err)
	case errors.Is(err, service.ErrInvalidTransition):
		return utils.ErrorResponse(c, fiber.StatusConflict, constants.INVALID_TRANSITION, err)
	case errors.Is(err, service.ErrInvalidStatus):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.INVALID_STATUS, err)
	case errors.Is(err, service.ErrInvalidInput):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.INVALID_INPUT, err)
	case errors.Is(err, service.ErrInsufficientPoints):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.INSUFFICIENT_POINTS, err)
	case errors.Is(err, service.ErrRewardUnavailable):
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.REWARD_NOT_FOUND, err)
	case errors.Is(err, service.ErrStorageConflict):
		return utils.ErrorResponse(c, fiber.StatusConflict, constants.ALREADY_EXISTS, err)
	}
	h.Log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
}

func param(c *fiber.Ctx, key string) uint {
	id, _ := c.Locals(key).(uint)
	return id
}
