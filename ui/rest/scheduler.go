package rest

import (
	"fmt"

	"github.com/AzielCF/az-press/pkg/utils"
	"github.com/AzielCF/az-press/publishing/application"
	"github.com/gofiber/fiber/v2"
)

type SchedulerHandler struct {
	Scheduler *application.Scheduler
}

func InitRestScheduler(app fiber.Router, scheduler *application.Scheduler) SchedulerHandler {
	rest := SchedulerHandler{Scheduler: scheduler}
	app.Get("/scheduler/status", rest.Status)
	app.Post("/scheduler/trigger", rest.Trigger)
	return rest
}

func (controller *SchedulerHandler) Status(c *fiber.Ctx) error {
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch scheduler status",
		Results: controller.Scheduler.Status(c.UserContext()),
	})
}

// Trigger runs one synchronous tick outside the poll cadence.
func (controller *SchedulerHandler) Trigger(c *fiber.Ctx) error {
	dispatched := controller.Scheduler.TriggerNow(c.UserContext())

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: fmt.Sprintf("Tick complete, %d post(s) dispatched", dispatched),
		Results: fiber.Map{"dispatched": dispatched},
	})
}
