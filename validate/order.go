package validate

import (
	"restaurant_manager/model"

	"github.com/gofiber/fiber/v2"
)

func UpdateOrderStatus() fiber.Handler {
	return Body[model.UpdateOrderStatusInput]()
}

func AwardPoints() fiber.Handler {
	return Body[model.AwardPointsInput]()
}

func RedeemReward() fiber.Handler {
	return Body[model.RedeemRewardInput]()
}

func CreateCampaign() fiber.Handler {
	return Body[model.CreateCampaignInput]()
}
