package handler

import (
	"errors"
	"strconv"

	"restaurant_manager/constants"
	"restaurant_manager/model"
	"restaurant_manager/service"
	"restaurant_manager/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// AwardPoints POST /loyalty/award/:orderId, gọi lại nhiều lần vẫn an toàn
func (h *Handler) AwardPoints(c *fiber.Ctx) error {
	input, ok := c.Locals("input").(model.AwardPointsInput)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.INVALID_INPUT, nil)
	}

	result, err := h.Loyalty.Award(c.UserContext(), param(c, "orderId"), input.CustomerID)
	if errors.Is(err, service.ErrAwardFailure) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": constants.AWARD_FAILED,
			"error":   err.Error(),
			"data":    result,
		})
	}
	if err != nil {
		return h.fail(c, constants.ORDER_NOT_FOUND, err)
	}

	status := fiber.StatusOK
	if result.Outcome == service.AwardAwarded {
		status = fiber.StatusCreated
	}
	return utils.SuccessResponse(c, status, result)
}

// ExpirePoints POST /loyalty/expire, chạy tay lần quét hằng ngày
func (h *Handler) ExpirePoints(c *fiber.Ctx) error {
	total, err := h.Sweeper.Sweep(c.UserContext(), h.Clock.Now())
	if err != nil {
		return h.fail(c, constants.ERROR_INTERNAL_ERROR, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"pointsExpired": total})
}

func (h *Handler) GetLoyaltySummary(c *fiber.Ctx) error {
	summary, err := h.Loyalty.Summary(c.UserContext(), param(c, "customerId"))
	if err != nil {
		return h.fail(c, constants.CUSTOMER_NOT_FOUND, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, summary)
}

func (h *Handler) GetTierProgress(c *fiber.Ctx) error {
	progress, err := h.Loyalty.TierProgress(c.UserContext(), param(c, "customerId"))
	if err != nil {
		return h.fail(c, constants.CUSTOMER_NOT_FOUND, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, progress)
}

func (h *Handler) GetRedemptions(c *fiber.Ctx) error {
	history, err := h.Loyalty.RedemptionHistory(c.UserContext(), param(c, "customerId"))
	if err != nil {
		return h.fail(c, constants.CUSTOMER_NOT_FOUND, err)
	}
	if history == nil {
		history = []model.RewardRedemption{}
	}
	return utils.SuccessResponse(c, fiber.StatusOK, history)
}

func (h *Handler) RedeemReward(c *fiber.Ctx) error {
	input, ok := c.Locals("input").(model.RedeemRewardInput)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.INVALID_INPUT, nil)
	}

	redemption, err := h.Loyalty.RedeemReward(c.UserContext(), input.CustomerID, input.RewardID)
	if err != nil {
		return h.fail(c, constants.REWARD_NOT_FOUND, err)
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, redemption)
}

// GetRewards GET /loyalty/rewards?customerId=
func (h *Handler) GetRewards(c *fiber.Ctx) error {
	var customerID uint
	if raw := c.Query("customerId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.DATA_INPUT_IS_NOT_NUMBER, err)
		}
		customerID = uint(id)
	}

	rewards, err := h.Loyalty.ListRewards(c.UserContext(), customerID)
	if err != nil {
		return h.fail(c, constants.REWARD_NOT_FOUND, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, rewards)
}

// PreviewPoints GET /loyalty/preview?amount=
func (h *Handler) PreviewPoints(c *fiber.Ctx) error {
	amount, err := decimal.NewFromString(c.Query("amount"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.DATA_INPUT_IS_NOT_NUMBER, err)
	}

	points, err := h.Loyalty.PreviewPoints(c.UserContext(), amount)
	if err != nil {
		return h.fail(c, constants.ERROR_INTERNAL_ERROR, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"amount": amount, "points": points})
}
