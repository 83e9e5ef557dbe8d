package handler

import (
	"restaurant_manager/constants"
	"restaurant_manager/model"
	"restaurant_manager/utils"

	"github.com/gofiber/fiber/v2"
)

// ReconcileTables POST /tables/reconcile?dryRun=true
func (h *Handler) ReconcileTables(c *fiber.Ctx) error {
	report, err := h.Tables.ReconcileAll(c.UserContext(), c.QueryBool("dryRun", false))
	if err != nil {
		return h.fail(c, constants.TABLE_NOT_FOUND, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, report)
}

func (h *Handler) ReconcileTable(c *fiber.Ctx) error {
	change, err := h.Tables.ReconcileOne(c.UserContext(), param(c, "tableId"))
	if err != nil {
		return h.fail(c, constants.TABLE_NOT_FOUND, err)
	}
	changes := []model.TableStatusChange{}
	if change != nil {
		changes = append(changes, *change)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, changes)
}
