package rest

import (
	domainStorage "github.com/savora/savora/domains/storage"
	"github.com/savora/savora/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Storage struct {
	Service domainStorage.IStorageUsecase
}

func InitRestStorage(app fiber.Router, service domainStorage.IStorageUsecase) Storage {
	rest := Storage{Service: service}
	app.Get("/storage", rest.GetUsage)
	app.Post("/storage/clear", rest.ClearAll)

	return rest
}

func (handler *Storage) GetUsage(c *fiber.Ctx) error {
	stats, err := handler.Service.Usage(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Storage usage retrieved",
		Results: stats,
	})
}

func (handler *Storage) ClearAll(c *fiber.Ctx) error {
	err := handler.Service.ClearAll(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "All engine data cleared successfully",
	})
}
