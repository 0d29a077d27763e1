package rest

import (
	domainNetwork "github.com/savora/savora/domains/network"
	"github.com/savora/savora/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Network struct {
	Service domainNetwork.INetworkUsecase
}

func InitRestNetwork(app fiber.Router, service domainNetwork.INetworkUsecase) Network {
	rest := Network{Service: service}
	app.Get("/network", rest.GetStatus)
	app.Put("/network", rest.SetStatus)

	return rest
}

func (handler *Network) GetStatus(c *fiber.Ctx) error {
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Network status retrieved",
		Results: handler.Service.Status(),
	})
}

// SetStatus is the manual reachability override, standing in for platform
// online/offline events.
func (handler *Network) SetStatus(c *fiber.Ctx) error {
	var request struct {
		Online bool `json:"online"`
	}
	if err := c.BodyParser(&request); err != nil {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: err.Error(),
		})
	}

	handler.Service.SetOnline(request.Online)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Network status updated",
		Results: handler.Service.Status(),
	})
}
