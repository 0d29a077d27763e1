package rest

import (
	domainOffline "github.com/savora/savora/domains/offline"
	domainSync "github.com/savora/savora/domains/sync"
	"github.com/savora/savora/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Sync struct {
	Service domainSync.ISyncUsecase
	Queue   domainOffline.IQueueUsecase
}

func InitRestSync(app fiber.Router, service domainSync.ISyncUsecase, queue domainOffline.IQueueUsecase) Sync {
	rest := Sync{Service: service, Queue: queue}
	app.Post("/sync", rest.SyncNow)
	app.Get("/sync/status", rest.GetStatus)
	app.Get("/sync/pending", rest.ListPending)

	return rest
}

func (handler *Sync) SyncNow(c *fiber.Ctx) error {
	started := handler.Service.SyncNow(c.UserContext())

	message := "Sync completed"
	if !started {
		message = "Sync skipped (offline or already in progress)"
	}
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: message,
		Results: fiber.Map{"started": started, "pending": handler.Queue.Len()},
	})
}

func (handler *Sync) GetStatus(c *fiber.Ctx) error {
	results := fiber.Map{
		"in_progress": handler.Service.InProgress(),
		"pending":     handler.Queue.Len(),
	}
	if report, ok := handler.Service.LastReport(); ok {
		results["last_report"] = report
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Sync status retrieved",
		Results: results,
	})
}

func (handler *Sync) ListPending(c *fiber.Ctx) error {
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Pending operations retrieved",
		Results: handler.Queue.Snapshot(),
	})
}
