package api

import (
	v1 "github.com/BekaChkhiro/homevend-server-sub000/internal/api/v1"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const prefixV1 = "api/v1/"

func SetupRoutes(app *fiber.App, handler *v1.Handler) {
	app.Get("/ping", handler.Pong)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Post(prefixV1+"payments/topup", handler.InitiateTopUp)
	app.Get(prefixV1+"payments/:id", handler.GetTransaction)
	app.Post(prefixV1+"payments/:id/verify", handler.VerifyTransaction)
	app.Post(prefixV1+"payments/callback", handler.Callback)
	app.Post(prefixV1+"accounts/:id/payments/verify", handler.VerifyAccountPending)
}
