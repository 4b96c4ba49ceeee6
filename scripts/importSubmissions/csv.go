package main

import (
	"fmt"
	"strings"

	"cbi/services"
	"cbi/utils"

	"github.com/shopspring/decimal"
)

// kpiPrefix marks KPI columns: "kpi:<name>:<scenario>".
const kpiPrefix = "kpi:"

type kpiColumn struct {
	index    int
	name     string
	scenario string
}

// parseRecords turns CSV rows into submissions ready for the recorder. Rows without a ticker or
// username are skipped; rows with malformed numbers or timestamps are errors.
func parseRecords(records [][]string, clock *utils.Clock) ([]services.SubmissionInput, int, error) {
	if len(records) < 2 {
		return nil, 0, fmt.Errorf("CSV file is empty or has only headers")
	}

	// Map header indices
	header := records[0]
	headerIndex := make(map[string]int)
	var kpiCols []kpiColumn
	var kpiOrder []string
	seen := make(map[string]bool)
	for i, h := range header {
		h = strings.TrimSpace(h)
		if !strings.HasPrefix(strings.ToLower(h), kpiPrefix) {
			headerIndex[strings.ToLower(h)] = i
			continue
		}
		parts := strings.Split(h[len(kpiPrefix):], ":")
		if len(parts) != 2 {
			return nil, 0, fmt.Errorf("column %q: expected kpi:<name>:<scenario>", h)
		}
		name := strings.TrimSpace(parts[0])
		scenario := strings.ToLower(strings.TrimSpace(parts[1]))
		if scenario != "down" && scenario != "base" && scenario != "up" {
			return nil, 0, fmt.Errorf("column %q: unknown scenario %q", h, scenario)
		}
		kpiCols = append(kpiCols, kpiColumn{index: i, name: name, scenario: scenario})
		if !seen[name] {
			seen[name] = true
			kpiOrder = append(kpiOrder, name)
		}
	}

	var out []services.SubmissionInput
	skipped := 0
	for n, row := range records[1:] {
		line := n + 2
		in := services.SubmissionInput{
			Ticker:   getField(row, headerIndex, "ticker"),
			Username: getField(row, headerIndex, "username"),
		}
		if in.Ticker == "" || in.Username == "" {
			skipped++
			continue
		}

		if ts := getField(row, headerIndex, "timestamp"); ts != "" {
			t, err := clock.ParseTimestamp(ts)
			if err != nil {
				return nil, skipped, fmt.Errorf("line %d: %w", line, err)
			}
			in.Timestamp = &t
		}

		fields := []struct {
			column string
			dst    *decimal.NullDecimal
		}{
			{"down_target_multiple", &in.DownTargetMultiple},
			{"base_target_multiple", &in.BaseTargetMultiple},
			{"up_target_multiple", &in.UpTargetMultiple},
			{"down_target_price", &in.DownTargetPrice},
			{"base_target_price", &in.BaseTargetPrice},
			{"up_target_price", &in.UpTargetPrice},
		}
		for _, f := range fields {
			v, err := parseDecimal(getField(row, headerIndex, f.column))
			if err != nil {
				return nil, skipped, fmt.Errorf("line %d column %s: %w", line, f.column, err)
			}
			*f.dst = v
		}

		kpis := make(map[string]*services.KPIInput)
		for _, col := range kpiCols {
			raw := ""
			if col.index < len(row) {
				raw = strings.TrimSpace(row[col.index])
			}
			v, err := parseDecimal(raw)
			if err != nil {
				return nil, skipped, fmt.Errorf("line %d column %s: %w", line, header[col.index], err)
			}
			if !v.Valid {
				continue
			}
			k, ok := kpis[col.name]
			if !ok {
				k = &services.KPIInput{Name: col.name}
				kpis[col.name] = k
			}
			switch col.scenario {
			case "down":
				k.DownValue = v
			case "base":
				k.BaseValue = v
			case "up":
				k.UpValue = v
			}
		}
		for _, name := range kpiOrder {
			if k, ok := kpis[name]; ok {
				in.KPIs = append(in.KPIs, *k)
			}
		}

		out = append(out, in)
	}
	return out, skipped, nil
}

// getField safely gets a field from the row by header name
func getField(row []string, headerIndex map[string]int, field string) string {
	if idx, ok := headerIndex[field]; ok && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

// parseDecimal treats an empty cell as absent.
func parseDecimal(s string) (decimal.NullDecimal, error) {
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}
