package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"salesledger/internal/backend"
	"salesledger/internal/config"
	"salesledger/internal/core"
	"salesledger/internal/ledger"
	applog "salesledger/internal/log"
	"salesledger/internal/services"
	"salesledger/internal/workbook/excel"
)

func main() {
	_ = godotenv.Load()

	var (
		start     = flag.String("start", "", "start date (YYYY-MM-DD)")
		end       = flag.String("end", "", "end date (YYYY-MM-DD)")
		executive = flag.String("executive", "", "restrict to one sales executive")
		zone      = flag.String("zone", "", "restrict to one area zone")
		report    = flag.String("report", "chairman", "report to run: chairman, overview, commissions, alerts")
		out       = flag.String("out", "", "write an xlsx export to this path instead of printing JSON")
	)
	flag.Parse()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	wb, err := backend.New(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "workbook backend error: %v\n", err)
		os.Exit(1)
	}

	q, err := buildQuery(*start, *end, *executive, *zone)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid filter: %v\n", err)
		os.Exit(2)
	}

	dashboards := services.NewDashboardService(
		services.NewLedgerService(wb),
		decimal.NewFromFloat(cfg.OutstandingAlertThreshold))

	if *out != "" {
		if err := writeExport(ctx, dashboards, q, *out); err != nil {
			fmt.Fprintf(os.Stderr, "export error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("export written to %s\n", *out)
		return
	}

	payload, err := runReport(ctx, dashboards, strings.ToLower(*report), q)
	if err != nil {
		fmt.Fprintf(os.Stderr, "report error: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		fmt.Fprintf(os.Stderr, "encode error: %v\n", err)
		os.Exit(1)
	}
}

func buildQuery(start, end, executive, zone string) (ledger.Query, error) {
	var q ledger.Query
	if executive != "" {
		q.Executives = []string{executive}
	}
	if zone != "" {
		q.Zones = []string{zone}
	}
	if start == "" && end == "" {
		return q, nil
	}

	r := ledger.DateRange{
		Start: core.NewDate(1900, 1, 1),
		End:   core.NewDate(9999, 12, 31),
	}
	if start != "" {
		t, err := time.Parse("2006-01-02", start)
		if err != nil {
			return ledger.Query{}, fmt.Errorf("start date %q: use YYYY-MM-DD", start)
		}
		r.Start = core.Date{Time: t}
	}
	if end != "" {
		t, err := time.Parse("2006-01-02", end)
		if err != nil {
			return ledger.Query{}, fmt.Errorf("end date %q: use YYYY-MM-DD", end)
		}
		r.End = core.Date{Time: t}
	}
	if r.End.Before(r.Start.Time) {
		return ledger.Query{}, fmt.Errorf("end date %s is before start date %s", r.End, r.Start)
	}
	q.Range = &r
	return q, nil
}

func runReport(ctx context.Context, dashboards *services.DashboardService, name string, q ledger.Query) (any, error) {
	switch name {
	case "chairman":
		return dashboards.Chairman(ctx, q)
	case "overview":
		return dashboards.Overview(ctx, q)
	case "commissions":
		return dashboards.Commissions(ctx, q)
	case "alerts":
		return dashboards.OutstandingAlerts(ctx, q)
	default:
		return nil, fmt.Errorf("unknown report %q: use chairman, overview, commissions or alerts", name)
	}
}

func writeExport(ctx context.Context, dashboards *services.DashboardService, q ledger.Query, path string) error {
	table, err := dashboards.Export(ctx, q)
	if err != nil {
		return err
	}
	data, err := excel.Export(table)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
