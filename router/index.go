package router

import (
	"restaurant_manager/handler"
	"restaurant_manager/middleware"
	"restaurant_manager/validate"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

// SetupRoutes đăng ký toàn bộ route. feed = nil khi không cấu hình Redis.
func SetupRoutes(app *fiber.App, h *handler.Handler, feed *handler.LiveFeed, jwtSecret string) {
	protected := middleware.Protected(jwtSecret)

	api := app.Group("/api", logger.New())
	v1 := api.Group("/v1")

	orders := v1.Group("/orders")
	orders.Patch("/:orderId/status", protected, validate.GetById("orderId"), validate.UpdateOrderStatus(), h.UpdateOrderStatus)

	loyalty := v1.Group("/loyalty")
	loyalty.Post("/award/:orderId", validate.GetById("orderId"), validate.AwardPoints(), h.AwardPoints)
	loyalty.Post("/expire", protected, h.ExpirePoints)
	loyalty.Post("/redeem", validate.RedeemReward(), h.RedeemReward)
	loyalty.Get("/rewards", h.GetRewards)
	loyalty.Get("/preview", h.PreviewPoints)
	loyalty.Get("/customers/:customerId", validate.GetById("customerId"), h.GetLoyaltySummary)
	loyalty.Get("/customers/:customerId/tier", validate.GetById("customerId"), h.GetTierProgress)
	loyalty.Get("/customers/:customerId/redemptions", validate.GetById("customerId"), h.GetRedemptions)

	tables := v1.Group("/tables")
	tables.Post("/reconcile", protected, h.ReconcileTables)
	tables.Post("/:tableId/reconcile", protected, validate.GetById("tableId"), h.ReconcileTable)

	campaigns := v1.Group("/campaigns")
	campaigns.Get("/", h.GetCampaigns)
	campaigns.Post("/", protected, validate.CreateCampaign(), h.CreateCampaign)

	if feed != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws/events", websocket.New(feed.Handle))
	}
}
