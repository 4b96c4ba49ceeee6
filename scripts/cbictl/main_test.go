package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cbi/client"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T, h http.HandlerFunc, stdin string) (cliContext, *bytes.Buffer) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	out := &bytes.Buffer{}
	return cliContext{
		API:    client.New(srv.URL, 5*time.Second),
		Stdin:  strings.NewReader(stdin),
		Stdout: out,
	}, out
}

func TestDispatchSubmitFromStdin(t *testing.T) {
	cc, out := testContext(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"ticker":"XYZ"`)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"success":true,"submission_id":3}`)
	}, `{"ticker":"XYZ","username":"alice","base_target_price":100.5}`)

	require.NoError(t, dispatch(context.Background(), cc, []string{"submit"}))
	assert.JSONEq(t, `{"submission_id":3}`, out.String())
}

func TestDispatchRetrieve(t *testing.T) {
	cc, out := testContext(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "up", r.URL.Query().Get("scenario"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"value":12.5,"ticker":"XYZ","scenario":"up","metric":"Target Multiple","submission_id":1,"timestamp":"t","username":"alice"}`)
	}, "")

	err := dispatch(context.Background(), cc, []string{"retrieve", "-ticker", "XYZ", "-scenario", "up", "-metric", "Target Multiple"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), `"value": "12.5"`)
}

func TestDispatchRejectsBadUsage(t *testing.T) {
	cc, _ := testContext(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL)
	}, "")
	ctx := context.Background()

	assert.Error(t, dispatch(ctx, cc, nil))
	assert.Error(t, dispatch(ctx, cc, []string{"frobnicate"}))
	assert.Error(t, dispatch(ctx, cc, []string{"retrieve", "-ticker", "XYZ"}))
	assert.Error(t, dispatch(ctx, cc, []string{"kpis"}))
	assert.Error(t, dispatch(ctx, cc, []string{"delete", "-id", "abc"}))
}
