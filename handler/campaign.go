package handler

import (
	"restaurant_manager/constants"
	"restaurant_manager/model"
	"restaurant_manager/utils"

	"github.com/gofiber/fiber/v2"
)

// GetCampaigns GET /campaigns?active=true
func (h *Handler) GetCampaigns(c *fiber.Ctx) error {
	campaigns, err := h.Campaigns.ListCampaigns(c.UserContext(), c.QueryBool("active", false))
	if err != nil {
		return h.fail(c, constants.ERROR_INTERNAL_ERROR, err)
	}
	if campaigns == nil {
		campaigns = []model.PromotionalCampaign{}
	}
	return utils.SuccessResponse(c, fiber.StatusOK, campaigns)
}

func (h *Handler) CreateCampaign(c *fiber.Ctx) error {
	input, ok := c.Locals("input").(model.CreateCampaignInput)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.INVALID_INPUT, nil)
	}

	campaign, err := h.Campaigns.CreateCampaign(c.UserContext(), input)
	if err != nil {
		return h.fail(c, constants.ERROR_INTERNAL_ERROR, err)
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, campaign)
}
