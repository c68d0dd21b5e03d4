package middleware

import (
	"fmt"

	pkgError "github.com/AzielCF/az-press/pkg/error"
	"github.com/AzielCF/az-press/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Recovery converts handler panics into JSON error responses. Typed errors
// raised through utils.PanicIfNeeded keep their status and code; anything
// else is logged and maps to a 500.
func Recovery() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}

			res := utils.ResponseData{
				Status:  fiber.StatusInternalServerError,
				Code:    "INTERNAL_SERVER_ERROR",
				Message: fmt.Sprintf("%v", recovered),
			}

			if genericErr, ok := recovered.(pkgError.GenericError); ok {
				res.Status = genericErr.StatusCode()
				res.Code = genericErr.ErrCode()
				res.Message = genericErr.Error()
			} else {
				logrus.Errorf("[REST] Panic recovered on %s %s: %v", ctx.Method(), ctx.Path(), recovered)
			}

			_ = ctx.Status(res.Status).JSON(res)
		}()

		return ctx.Next()
	}
}
