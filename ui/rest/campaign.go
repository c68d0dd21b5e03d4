package rest

import (
	domainCampaign "github.com/AzielCF/az-press/domains/campaign"
	"github.com/AzielCF/az-press/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Campaign struct {
	Service domainCampaign.ICampaignUsecase
}

func InitRestCampaign(app fiber.Router, service domainCampaign.ICampaignUsecase) Campaign {
	rest := Campaign{Service: service}
	app.Post("/campaigns", rest.Create)
	app.Get("/campaigns", rest.List)
	app.Get("/campaigns/:id", rest.Get)
	app.Put("/campaigns/:id", rest.Update)
	app.Post("/campaigns/:id/activate", rest.Activate)
	app.Post("/campaigns/:id/pause", rest.Pause)
	app.Post("/campaigns/:id/cancel", rest.Cancel)
	app.Delete("/campaigns/:id", rest.Delete)
	return rest
}

func (controller *Campaign) Create(c *fiber.Ctx) error {
	var request domainCampaign.CreateRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	campaign, err := controller.Service.Create(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.Status(201).JSON(utils.ResponseData{
		Status:  201,
		Code:    "CREATED",
		Message: "Success create campaign",
		Results: campaign,
	})
}

func (controller *Campaign) List(c *fiber.Ctx) error {
	siteID := c.Query("site_id")
	if siteID == "" {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: "site_id is required",
		})
	}

	campaigns, err := controller.Service.ListBySite(c.UserContext(), siteID)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch campaigns",
		Results: campaigns,
	})
}

func (controller *Campaign) Get(c *fiber.Ctx) error {
	campaign, err := controller.Service.Get(c.UserContext(), c.Params("id"), c.Query("site_id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch campaign",
		Results: campaign,
	})
}

func (controller *Campaign) Update(c *fiber.Ctx) error {
	var request domainCampaign.UpdateRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)
	request.ID = c.Params("id")

	campaign, err := controller.Service.Update(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success update campaign",
		Results: campaign,
	})
}

func (controller *Campaign) Activate(c *fiber.Ctx) error {
	campaign, err := controller.Service.Activate(c.UserContext(), c.Params("id"), c.Query("site_id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success activate campaign",
		Results: campaign,
	})
}

func (controller *Campaign) Pause(c *fiber.Ctx) error {
	campaign, err := controller.Service.Pause(c.UserContext(), c.Params("id"), c.Query("site_id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success pause campaign",
		Results: campaign,
	})
}

func (controller *Campaign) Cancel(c *fiber.Ctx) error {
	campaign, err := controller.Service.Cancel(c.UserContext(), c.Params("id"), c.Query("site_id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success cancel campaign",
		Results: campaign,
	})
}

func (controller *Campaign) Delete(c *fiber.Ctx) error {
	err := controller.Service.Delete(c.UserContext(), c.Params("id"), c.Query("site_id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success delete campaign",
	})
}
