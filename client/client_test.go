package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cbi/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", 5*time.Second)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestSubmit(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/submit", r.URL.Path)

		var in services.SubmissionInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "XYZ", in.Ticker)
		assert.True(t, in.BaseTargetPrice.Decimal.Equal(decimal.RequireFromString("100.50")))
		assert.False(t, in.UpTargetPrice.Valid)

		writeJSON(w, http.StatusOK, `{"success":true,"message":"Data submitted successfully","submission_id":42}`)
	})

	id, err := c.Submit(context.Background(), services.SubmissionInput{
		Ticker:          "XYZ",
		Username:        "alice",
		BaseTargetPrice: decimal.NewNullDecimal(decimal.RequireFromString("100.50")),
	})
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)
}

func TestRetrieveKeepsExactDecimal(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/retrieve", r.URL.Path)
		assert.Equal(t, "Target Price", r.URL.Query().Get("metric"))
		assert.Equal(t, "2024-03-15", r.URL.Query().Get("as_of_date"))
		writeJSON(w, http.StatusOK, `{"value":100.10,"ticker":"XYZ","scenario":"base","metric":"Target Price",
			"submission_id":7,"timestamp":"2024-03-15 10:00:00 EDT","username":"alice"}`)
	})

	res, err := c.Retrieve(context.Background(), services.RetrieveQuery{
		Ticker: "XYZ", Scenario: "base", Metric: "Target Price", AsOfDate: "2024-03-15",
	})
	require.NoError(t, err)
	assert.Equal(t, "100.1", res.Value.String())
	assert.EqualValues(t, 7, res.SubmissionID)
	assert.Equal(t, "alice", res.Username)
}

func TestErrorsCarryKindAndHints(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/retrieve":
			writeJSON(w, http.StatusNotFound, `{"success":false,"error":"ticker_not_found",
				"message":"No data found for ticker: 'QQQ'","available_tickers":["ABC","XYZ"]}`)
		default:
			writeJSON(w, http.StatusUnprocessableEntity, `{"status":false,"message":"Validation failed!",
				"data":{"ticker":"ticker is required!"}}`)
		}
	})

	_, err := c.Retrieve(context.Background(), services.RetrieveQuery{Ticker: "QQQ", Scenario: "base", Metric: "Target Price"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "ticker_not_found", apiErr.Kind)
	assert.Equal(t, []string{"ABC", "XYZ"}, apiErr.AvailableTickers)
	assert.Contains(t, apiErr.Error(), "ticker_not_found")

	_, err = c.KPIs(context.Background(), "")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "ticker is required!", apiErr.Fields["ticker"])
}

func TestListingsAndDelete(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/tickers":
			writeJSON(w, http.StatusOK, `{"tickers":[{"ticker":"XYZ","last_submission":"2024-05-01","username":"alice","kpi_count":2}]}`)
		case r.URL.Path == "/kpis":
			assert.Equal(t, "XYZ", r.URL.Query().Get("ticker"))
			writeJSON(w, http.StatusOK, `{"kpis":["EBITDA","Revenue"]}`)
		case r.Method == http.MethodDelete && r.URL.Path == "/submissions/9":
			writeJSON(w, http.StatusOK, `{"success":true,"message":"Submission deleted successfully",
				"deleted_submission":{"id":9,"ticker":"XYZ","username":"alice","timestamp":"2024-05-01 12:00:00 EDT"}}`)
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	tickers, err := c.Tickers(ctx)
	require.NoError(t, err)
	require.Len(t, tickers, 1)
	assert.Equal(t, services.TickerSummary{Ticker: "XYZ", LastSubmission: "2024-05-01", Username: "alice", KPICount: 2}, tickers[0])

	kpis, err := c.KPIs(ctx, "XYZ")
	require.NoError(t, err)
	assert.Equal(t, []string{"EBITDA", "Revenue"}, kpis)

	deleted, err := c.Delete(ctx, 9)
	require.NoError(t, err)
	assert.EqualValues(t, 9, deleted.ID)
	assert.Equal(t, "XYZ", deleted.Ticker)
}
