// Package errxfiber renders errx errors as Fiber JSON responses.
package errxfiber

import (
	"errors"

	"github.com/Abraxas-365/saenggibu/pkg/errx"
	"github.com/Abraxas-365/saenggibu/pkg/logx"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandler maps handler errors to JSON bodies. Underlying causes are
// only exposed when debug is set.
func ErrorHandler(debug bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		requestID, _ := c.Locals("requestid").(string)

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(errx.HTTPErrorResponse{
				Code:       "FIBER_ERROR",
				Message:    fe.Message,
				Type:       string(errx.TypeValidation),
				StatusCode: fe.Code,
				RequestID:  requestID,
			})
		}

		e := errx.From(err)
		entry := logx.WithFields(logx.Fields{
			"path":       c.Path(),
			"method":     c.Method(),
			"code":       e.Code,
			"request_id": requestID,
		}).WithError(err)
		if e.HTTPStatus >= fiber.StatusInternalServerError {
			entry.Error("request failed")
		} else {
			entry.Debug("request rejected")
		}

		resp := e.ToHTTPResponse(debug)
		resp.RequestID = requestID
		return c.Status(e.HTTPStatus).JSON(resp)
	}
}
