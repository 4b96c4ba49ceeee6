package middleware

import (
	"cbi/services"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errors)
}

// ErrorBody is the JSON shape of every failed domain operation and of unparsable input.
// Field-level request validation failures use the JsonResponse envelope with a 422 instead,
// so clients tell the two apart by the presence of "error".
type ErrorBody struct {
	Success          bool     `json:"success"`
	Error            string   `json:"error"`
	Message          string   `json:"message"`
	AvailableTickers []string `json:"available_tickers,omitempty"`
	AvailableKPIs    []string `json:"available_kpis,omitempty"`
}

// StatusFor maps an error kind onto its HTTP status.
func StatusFor(kind services.ErrorKind) int {
	switch kind {
	case services.KindInvalidInput, services.KindInvalidScenario, services.KindInvalidDate:
		return fiber.StatusBadRequest
	case services.KindTickerNotFound, services.KindKPINotFound, services.KindNoValue, services.KindSubmissionNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorResponse renders err. Storage failures only expose the operation that failed.
func ErrorResponse(c *fiber.Ctx, err error) error {
	body := ErrorBody{Error: string(services.KindStorage), Message: "Internal server error"}

	var se *services.Error
	if errors.As(err, &se) {
		body.Error = string(se.Kind)
		body.Message = se.Message
		body.AvailableTickers = se.AvailableTickers
		body.AvailableKPIs = se.AvailableKPIs
	}
	return c.Status(StatusFor(services.ErrorKind(body.Error))).JSON(body)
}

// BadRequest reports a body or query string that could not be parsed at all.
func BadRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorBody{
		Error:   string(services.KindInvalidInput),
		Message: message,
	})
}
