package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"cbi/client"
	"cbi/services"
)

type cliContext struct {
	API    *client.Client
	Stdin  io.Reader
	Stdout io.Writer
}

func usage(w io.Writer) {
	fmt.Fprint(w, `cbictl [--api-base URL] [--timeout 10s] <command> [flags]

Global Flags:
  --api-base    service base URL (env: CBI_API_BASE, default http://localhost:8000)
  --timeout     request timeout

Commands:
  submit    -file payload.json (use - for stdin)
  retrieve  -ticker T -scenario down|base|up -metric M [-as-of YYYY-MM-DD]
  tickers
  kpis      -ticker T
  delete    -id N
`)
}

func main() {
	global := flag.NewFlagSet("cbictl", flag.ContinueOnError)
	apiBase := global.String("api-base", envOr("CBI_API_BASE", "http://localhost:8000"), "service base URL")
	timeout := global.Duration("timeout", 10*time.Second, "request timeout")
	global.Usage = func() { usage(os.Stderr) }
	if err := global.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	ctx := cliContext{
		API:    client.New(*apiBase, *timeout),
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
	}
	if err := dispatch(context.Background(), ctx, global.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func dispatch(ctx context.Context, cc cliContext, args []string) error {
	if len(args) == 0 {
		usage(os.Stderr)
		return errors.New("missing command")
	}
	switch args[0] {
	case "submit":
		return submitCmd(ctx, cc, args[1:])
	case "retrieve":
		return retrieveCmd(ctx, cc, args[1:])
	case "tickers":
		return tickersCmd(ctx, cc)
	case "kpis":
		return kpisCmd(ctx, cc, args[1:])
	case "delete":
		return deleteCmd(ctx, cc, args[1:])
	case "help", "-h", "--help":
		usage(cc.Stdout)
		return nil
	default:
		usage(os.Stderr)
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func write(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func submitCmd(ctx context.Context, cc cliContext, args []string) error {
	fs := flag.NewFlagSet("submit", flag.ContinueOnError)
	file := fs.String("file", "-", "JSON payload file, - for stdin")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var r io.Reader = cc.Stdin
	if *file != "-" {
		f, err := os.Open(*file)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	var in services.SubmissionInput
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	id, err := cc.API.Submit(ctx, in)
	if err != nil {
		return err
	}
	return write(cc.Stdout, map[string]any{"submission_id": id})
}

func retrieveCmd(ctx context.Context, cc cliContext, args []string) error {
	fs := flag.NewFlagSet("retrieve", flag.ContinueOnError)
	var q services.RetrieveQuery
	fs.StringVar(&q.Ticker, "ticker", "", "ticker symbol")
	fs.StringVar(&q.Scenario, "scenario", "base", "down|base|up")
	fs.StringVar(&q.Metric, "metric", "", `"Target Multiple", "Target Price" or a KPI name`)
	fs.StringVar(&q.AsOfDate, "as-of", "", "YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if q.Ticker == "" || q.Metric == "" {
		return errors.New("retrieve: -ticker and -metric are required")
	}

	res, err := cc.API.Retrieve(ctx, q)
	if err != nil {
		return err
	}
	return write(cc.Stdout, res)
}

func tickersCmd(ctx context.Context, cc cliContext) error {
	tickers, err := cc.API.Tickers(ctx)
	if err != nil {
		return err
	}
	return write(cc.Stdout, tickers)
}

func kpisCmd(ctx context.Context, cc cliContext, args []string) error {
	fs := flag.NewFlagSet("kpis", flag.ContinueOnError)
	ticker := fs.String("ticker", "", "ticker symbol")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *ticker == "" {
		return errors.New("kpis: -ticker is required")
	}

	names, err := cc.API.KPIs(ctx, *ticker)
	if err != nil {
		return err
	}
	return write(cc.Stdout, names)
}

func deleteCmd(ctx context.Context, cc cliContext, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	rawID := fs.String("id", "", "submission id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := strconv.ParseUint(*rawID, 10, 64)
	if err != nil || id == 0 {
		return fmt.Errorf("delete: -id must be a positive integer")
	}

	deleted, err := cc.API.Delete(ctx, uint(id))
	if err != nil {
		return err
	}
	return write(cc.Stdout, deleted)
}
