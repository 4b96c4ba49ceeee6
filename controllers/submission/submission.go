package submissionController

import (
	"encoding/json"

	"cbi/middleware"
	"cbi/services"
	"cbi/utils"

	"github.com/gofiber/fiber/v2"
)

// Controller serves the write path and the retrieval endpoint.
type Controller struct {
	Recorder *services.Recorder
	Resolver *services.Resolver
	Clock    *utils.Clock
}

type submitResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	SubmissionID uint   `json:"submission_id"`
}

type retrieveResponse struct {
	Value        json.Number `json:"value"`
	Ticker       string      `json:"ticker"`
	Scenario     string      `json:"scenario"`
	Metric       string      `json:"metric"`
	SubmissionID uint        `json:"submission_id"`
	Timestamp    string      `json:"timestamp"`
	Username     string      `json:"username"`
}

type deletedSubmission struct {
	ID        uint   `json:"id"`
	Ticker    string `json:"ticker"`
	Username  string `json:"username"`
	Timestamp string `json:"timestamp"`
}

type deleteResponse struct {
	Success           bool              `json:"success"`
	Message           string            `json:"message"`
	DeletedSubmission deletedSubmission `json:"deleted_submission"`
}

func (ctl *Controller) Submit(c *fiber.Ctx) error {
	reqData := c.Locals("validatedSubmission").(*services.SubmissionInput)

	sub, err := ctl.Recorder.Record(c.UserContext(), *reqData)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return c.JSON(submitResponse{
		Success:      true,
		Message:      "Data submitted successfully",
		SubmissionID: sub.ID,
	})
}

func (ctl *Controller) Retrieve(c *fiber.Ctx) error {
	query := c.Locals("validatedRetrieve").(*services.RetrieveQuery)

	res, err := ctl.Resolver.Resolve(c.UserContext(), *query)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return c.JSON(retrieveResponse{
		Value:        json.Number(res.FormattedValue()),
		Ticker:       res.Ticker,
		Scenario:     string(res.Scenario),
		Metric:       res.Metric,
		SubmissionID: res.SubmissionID,
		Timestamp:    ctl.Clock.Format(res.Timestamp),
		Username:     res.Username,
	})
}

func (ctl *Controller) Delete(c *fiber.Ctx) error {
	id := c.Locals("submissionId").(uint)

	sub, err := ctl.Recorder.Delete(c.UserContext(), id)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return c.JSON(deleteResponse{
		Success: true,
		Message: "Submission deleted successfully",
		DeletedSubmission: deletedSubmission{
			ID:        sub.ID,
			Ticker:    sub.Ticker,
			Username:  sub.Username,
			Timestamp: ctl.Clock.Format(sub.Timestamp),
		},
	})
}
