package submissionValidator

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"cbi/middleware"
	"cbi/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields by their wire names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	return v
}

// validationErrors flattens validator failures into the field → message map used by
// middleware.ValidationErrorResponse.
func validationErrors(err error) map[string]string {
	errors := make(map[string]string)
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errors["request"] = err.Error()
		return errors
	}
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		switch fe.Tag() {
		case "required":
			errors[field] = fmt.Sprintf("%s is required!", field)
		default:
			errors[field] = fmt.Sprintf("%s failed %s validation!", field, fe.Tag())
		}
	}
	return errors
}

// Submit validator middleware
func Submit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// fiber reuses the request buffer once the handler returns
		body := append([]byte(nil), c.Body()...)

		reqData := new(services.SubmissionInput)
		if err := json.Unmarshal(body, reqData); err != nil {
			return middleware.BadRequest(c, "Invalid request body!")
		}

		reqData.Ticker = strings.TrimSpace(reqData.Ticker)
		reqData.Username = strings.TrimSpace(reqData.Username)
		for i := range reqData.KPIs {
			reqData.KPIs[i].Name = strings.TrimSpace(reqData.KPIs[i].Name)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validationErrors(err))
		}

		reqData.Payload = body
		c.Locals("validatedSubmission", reqData)
		return c.Next()
	}
}

// Retrieve validator middleware
func Retrieve() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(services.RetrieveQuery)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.BadRequest(c, "Invalid query parameters!")
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validationErrors(err))
		}

		c.Locals("validatedRetrieve", reqData)
		return c.Next()
	}
}

// KPIList validator middleware
func KPIList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Ticker string `query:"ticker" validate:"required"`
		})
		if err := c.QueryParser(reqData); err != nil {
			return middleware.BadRequest(c, "Invalid query parameters!")
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validationErrors(err))
		}

		c.Locals("ticker", reqData.Ticker)
		return c.Next()
	}
}

// DeleteID validator middleware
func DeleteID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return middleware.BadRequest(c, "Submission id must be a positive integer!")
		}

		c.Locals("submissionId", uint(id))
		return c.Next()
	}
}
