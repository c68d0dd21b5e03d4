package rest

import (
	domainScheduledPost "github.com/AzielCF/az-press/domains/scheduledpost"
	"github.com/AzielCF/az-press/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type ScheduledPost struct {
	Service domainScheduledPost.IScheduledPostUsecase
}

func InitRestScheduledPost(app fiber.Router, service domainScheduledPost.IScheduledPostUsecase) ScheduledPost {
	rest := ScheduledPost{Service: service}
	app.Post("/scheduled-posts", rest.Create)
	app.Get("/scheduled-posts", rest.List)
	app.Get("/scheduled-posts/:id", rest.Get)
	app.Put("/scheduled-posts/:id", rest.Update)
	app.Post("/scheduled-posts/:id/cancel", rest.Cancel)
	app.Delete("/scheduled-posts/:id", rest.Delete)
	app.Post("/scheduled-posts/:id/campaign", rest.MoveToCampaign)
	app.Delete("/scheduled-posts/:id/campaign", rest.RemoveFromCampaign)
	return rest
}

func (controller *ScheduledPost) Create(c *fiber.Ctx) error {
	var request domainScheduledPost.CreateRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	post, err := controller.Service.Create(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.Status(201).JSON(utils.ResponseData{
		Status:  201,
		Code:    "CREATED",
		Message: "Success schedule post",
		Results: post,
	})
}

func (controller *ScheduledPost) List(c *fiber.Ctx) error {
	siteID := c.Query("site_id")
	if siteID == "" {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: "site_id is required",
		})
	}

	// campaign_id narrows the listing to a single campaign's members.
	if campaignID := c.Query("campaign_id"); campaignID != "" {
		posts, err := controller.Service.ListByCampaign(c.UserContext(), campaignID, siteID)
		utils.PanicIfNeeded(err)

		return c.JSON(utils.ResponseData{
			Status:  200,
			Code:    "SUCCESS",
			Message: "Success fetch campaign scheduled posts",
			Results: posts,
		})
	}

	posts, err := controller.Service.ListBySite(c.UserContext(), siteID)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch scheduled posts",
		Results: posts,
	})
}

func (controller *ScheduledPost) Get(c *fiber.Ctx) error {
	post, err := controller.Service.Get(c.UserContext(), c.Params("id"), c.Query("site_id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch scheduled post",
		Results: post,
	})
}

func (controller *ScheduledPost) Update(c *fiber.Ctx) error {
	var request domainScheduledPost.UpdateRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)
	request.ID = c.Params("id")

	post, err := controller.Service.Update(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success update scheduled post",
		Results: post,
	})
}

func (controller *ScheduledPost) Cancel(c *fiber.Ctx) error {
	err := controller.Service.Cancel(c.UserContext(), c.Params("id"), c.Query("site_id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success cancel scheduled post",
	})
}

func (controller *ScheduledPost) Delete(c *fiber.Ctx) error {
	err := controller.Service.Delete(c.UserContext(), c.Params("id"), c.Query("site_id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success delete scheduled post",
	})
}

func (controller *ScheduledPost) MoveToCampaign(c *fiber.Ctx) error {
	var request domainScheduledPost.MoveCampaignRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)
	request.ID = c.Params("id")

	post, err := controller.Service.MoveToCampaign(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success move post to campaign",
		Results: post,
	})
}

func (controller *ScheduledPost) RemoveFromCampaign(c *fiber.Ctx) error {
	post, err := controller.Service.RemoveFromCampaign(c.UserContext(), c.Params("id"), c.Query("site_id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success remove post from campaign",
		Results: post,
	})
}
