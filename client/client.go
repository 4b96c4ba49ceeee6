// Package client is a thin HTTP client for downstream consumers of the projection service.
package client

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cbi/services"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// Client talks to one projection service.
type Client struct {
	http *resty.Client
}

// APIError is a non-2xx reply. Domain failures fill Kind; request validation failures fill Fields.
type APIError struct {
	StatusCode       int               `json:"-"`
	Kind             string            `json:"error"`
	Message          string            `json:"message"`
	AvailableTickers []string          `json:"available_tickers"`
	AvailableKPIs    []string          `json:"available_kpis"`
	Fields           map[string]string `json:"data"`
}

func (e *APIError) Error() string {
	parts := []string{fmt.Sprintf("HTTP %d", e.StatusCode)}
	if e.Kind != "" {
		parts = append(parts, e.Kind)
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	return strings.Join(parts, ": ")
}

// Result is a resolved value as returned by /retrieve.
type Result struct {
	Value        decimal.Decimal `json:"value"`
	Ticker       string          `json:"ticker"`
	Scenario     string          `json:"scenario"`
	Metric       string          `json:"metric"`
	SubmissionID uint            `json:"submission_id"`
	Timestamp    string          `json:"timestamp"`
	Username     string          `json:"username"`
}

// DeletedSubmission identifies a removed submission.
type DeletedSubmission struct {
	ID        uint   `json:"id"`
	Ticker    string `json:"ticker"`
	Username  string `json:"username"`
	Timestamp string `json:"timestamp"`
}

// New returns a client for baseURL, e.g. "http://localhost:8000".
func New(baseURL string, timeout time.Duration) *Client {
	http := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{http: http}
}

func (c *Client) do(req *resty.Request, method, path string) error {
	apiErr := &APIError{}
	resp, err := req.SetError(apiErr).Execute(method, path)
	if err != nil {
		return err
	}
	if resp.IsError() {
		apiErr.StatusCode = resp.StatusCode()
		return apiErr
	}
	return nil
}

// Submit records a new submission and returns its id.
func (c *Client) Submit(ctx context.Context, in services.SubmissionInput) (uint, error) {
	var out struct {
		SubmissionID uint `json:"submission_id"`
	}
	req := c.http.R().SetContext(ctx).SetBody(in).SetResult(&out)
	if err := c.do(req, resty.MethodPost, "/submit"); err != nil {
		return 0, err
	}
	return out.SubmissionID, nil
}

// Retrieve resolves one value.
func (c *Client) Retrieve(ctx context.Context, q services.RetrieveQuery) (*Result, error) {
	params := map[string]string{
		"ticker":   q.Ticker,
		"scenario": q.Scenario,
		"metric":   q.Metric,
	}
	if q.AsOfDate != "" {
		params["as_of_date"] = q.AsOfDate
	}

	out := &Result{}
	req := c.http.R().SetContext(ctx).SetQueryParams(params).SetResult(out)
	if err := c.do(req, resty.MethodGet, "/retrieve"); err != nil {
		return nil, err
	}
	return out, nil
}

// Tickers lists every ticker with its latest submission.
func (c *Client) Tickers(ctx context.Context) ([]services.TickerSummary, error) {
	var out struct {
		Tickers []services.TickerSummary `json:"tickers"`
	}
	req := c.http.R().SetContext(ctx).SetResult(&out)
	if err := c.do(req, resty.MethodGet, "/tickers"); err != nil {
		return nil, err
	}
	return out.Tickers, nil
}

// KPIs lists the KPI names on the ticker's latest submission.
func (c *Client) KPIs(ctx context.Context, ticker string) ([]string, error) {
	var out struct {
		KPIs []string `json:"kpis"`
	}
	req := c.http.R().SetContext(ctx).SetQueryParam("ticker", ticker).SetResult(&out)
	if err := c.do(req, resty.MethodGet, "/kpis"); err != nil {
		return nil, err
	}
	return out.KPIs, nil
}

// Delete removes one submission.
func (c *Client) Delete(ctx context.Context, id uint) (*DeletedSubmission, error) {
	var out struct {
		DeletedSubmission DeletedSubmission `json:"deleted_submission"`
	}
	req := c.http.R().SetContext(ctx).SetResult(&out)
	if err := c.do(req, resty.MethodDelete, "/submissions/"+strconv.FormatUint(uint64(id), 10)); err != nil {
		return nil, err
	}
	return &out.DeletedSubmission, nil
}
