package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"salesledger/internal/core"
	"salesledger/internal/ledger"
	"salesledger/internal/workbook/memory"
)

func seededDashboard(t *testing.T, threshold int64) *DashboardService {
	t.Helper()
	store := memory.NewSeeded(
		core.Record{
			Date: core.NewDate(2025, 6, 15), OrderNo: "ORD-1",
			CustomerName: "Acme Traders", CustomerType: "Dealer",
			SalesExecutive: "karim", AreaZone: "North",
			SalesAmount: decimal.NewFromInt(1000), PaidAmount: decimal.NewFromInt(600),
		},
		core.Record{
			Date: core.NewDate(2025, 6, 20), OrderNo: "ORD-2",
			CustomerName: "Bolt Supplies", CustomerType: "Retailer",
			SalesExecutive: "karim", AreaZone: "North",
			SalesAmount: decimal.NewFromInt(500), PaidAmount: decimal.NewFromInt(500),
		},
		core.Record{
			Date: core.NewDate(2025, 5, 10), OrderNo: "ORD-3",
			CustomerName: "Acme Traders", CustomerType: "Dealer",
			SalesExecutive: "rahim", AreaZone: "South",
			SalesAmount: decimal.NewFromInt(2000), PaidAmount: decimal.NewFromInt(100),
		},
	)
	return NewDashboardService(NewLedgerService(store), decimal.NewFromInt(threshold))
}

func TestOverviewTotals(t *testing.T) {
	svc := seededDashboard(t, 50000)

	ov, err := svc.Overview(context.Background(), ledger.Query{})
	if err != nil {
		t.Fatalf("Overview() error = %v", err)
	}

	if ov.Transactions != 3 {
		t.Errorf("Transactions = %d, want 3", ov.Transactions)
	}
	if ov.Customers != 2 {
		t.Errorf("Customers = %d, want 2", ov.Customers)
	}
	if ov.Executives != 2 {
		t.Errorf("Executives = %d, want 2", ov.Executives)
	}
	if !ov.TotalSales.Equal(decimal.NewFromInt(3500)) {
		t.Errorf("TotalSales = %s, want 3500", ov.TotalSales)
	}
	if !ov.TotalPaid.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("TotalPaid = %s, want 1200", ov.TotalPaid)
	}
	// 400 + 0 + 1900 from the three rows.
	if !ov.TotalOutstanding.Equal(decimal.NewFromInt(2300)) {
		t.Errorf("TotalOutstanding = %s, want 2300", ov.TotalOutstanding)
	}
	// 5% of total paid.
	if !ov.TotalCompanyProfit.Equal(decimal.NewFromInt(60)) {
		t.Errorf("TotalCompanyProfit = %s, want 60", ov.TotalCompanyProfit)
	}
}

func TestOverviewRespectsFilter(t *testing.T) {
	svc := seededDashboard(t, 50000)

	ov, err := svc.Overview(context.Background(), ledger.Query{Executives: []string{"rahim"}})
	if err != nil {
		t.Fatalf("Overview() error = %v", err)
	}
	if ov.Transactions != 1 {
		t.Errorf("Transactions = %d, want 1", ov.Transactions)
	}
	if !ov.TotalSales.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("TotalSales = %s, want 2000", ov.TotalSales)
	}
}

func TestExecutiveSummary(t *testing.T) {
	svc := seededDashboard(t, 50000)

	rollups, err := svc.ExecutiveSummary(context.Background(), ledger.Query{})
	if err != nil {
		t.Fatalf("ExecutiveSummary() error = %v", err)
	}
	if len(rollups) != 2 {
		t.Fatalf("got %d executives, want 2", len(rollups))
	}

	byName := map[string]ledger.Rollup{}
	for _, r := range rollups {
		byName[r.Key[0]] = r
	}
	karim := byName["karim"]
	if !karim.Sum(ledger.FieldSalesAmount).Equal(decimal.NewFromInt(1500)) {
		t.Errorf("karim sales = %s, want 1500", karim.Sum(ledger.FieldSalesAmount))
	}
	// 1% of 1100 paid.
	if !karim.Sum(ledger.FieldExecCommission).Equal(decimal.NewFromInt(11)) {
		t.Errorf("karim commission = %s, want 11", karim.Sum(ledger.FieldExecCommission))
	}
}

func TestExecutiveCustomerOutstanding(t *testing.T) {
	svc := seededDashboard(t, 50000)

	rollups, err := svc.ExecutiveCustomerOutstanding(context.Background(), "karim", ledger.Query{})
	if err != nil {
		t.Fatalf("ExecutiveCustomerOutstanding() error = %v", err)
	}
	if len(rollups) != 2 {
		t.Fatalf("got %d customers, want 2", len(rollups))
	}
	// Sorted by outstanding, largest first.
	if rollups[0].Key[0] != "Acme Traders" {
		t.Errorf("first customer = %q, want Acme Traders", rollups[0].Key[0])
	}
	if !rollups[0].Sum(ledger.FieldOutstanding).Equal(decimal.NewFromInt(400)) {
		t.Errorf("Acme outstanding = %s, want 400", rollups[0].Sum(ledger.FieldOutstanding))
	}
}

func TestCommissions(t *testing.T) {
	svc := seededDashboard(t, 50000)

	sum, err := svc.Commissions(context.Background(), ledger.Query{})
	if err != nil {
		t.Fatalf("Commissions() error = %v", err)
	}
	// Total paid is 1200: 1% executive, 0.3% zonal, 0.2% GM.
	if !sum.Executive.Equal(decimal.NewFromInt(12)) {
		t.Errorf("Executive = %s, want 12", sum.Executive)
	}
	if !sum.ZonalOfficer.Equal(decimal.RequireFromString("3.6")) {
		t.Errorf("ZonalOfficer = %s, want 3.6", sum.ZonalOfficer)
	}
	if !sum.GM.Equal(decimal.RequireFromString("2.4")) {
		t.Errorf("GM = %s, want 2.4", sum.GM)
	}
	if !sum.Total.Equal(decimal.NewFromInt(18)) {
		t.Errorf("Total = %s, want 18", sum.Total)
	}
	if len(sum.ByExecutive) != 2 {
		t.Errorf("ByExecutive groups = %d, want 2", len(sum.ByExecutive))
	}
}

func TestRangeTotals(t *testing.T) {
	svc := seededDashboard(t, 50000)

	r := ledger.DateRange{Start: core.NewDate(2025, 6, 1), End: core.NewDate(2025, 6, 30)}
	ov, err := svc.RangeTotals(context.Background(), r, ledger.Query{})
	if err != nil {
		t.Fatalf("RangeTotals() error = %v", err)
	}
	if ov.Transactions != 2 {
		t.Errorf("Transactions = %d, want 2", ov.Transactions)
	}
	if !ov.TotalSales.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("TotalSales = %s, want 1500", ov.TotalSales)
	}
}

func TestTop(t *testing.T) {
	svc := seededDashboard(t, 50000)

	rollups, err := svc.Top(context.Background(), ledger.Query{}, ledger.DimCustomer, ledger.FieldSalesAmount, 1)
	if err != nil {
		t.Fatalf("Top() error = %v", err)
	}
	if len(rollups) != 1 {
		t.Fatalf("got %d rollups, want 1", len(rollups))
	}
	if rollups[0].Key[0] != "Acme Traders" {
		t.Errorf("top customer = %q, want Acme Traders", rollups[0].Key[0])
	}
	if !rollups[0].Sum(ledger.FieldSalesAmount).Equal(decimal.NewFromInt(3000)) {
		t.Errorf("top sales = %s, want 3000", rollups[0].Sum(ledger.FieldSalesAmount))
	}
}

func TestOutstandingAlerts(t *testing.T) {
	// Acme has 400 + 1900 = 2300 outstanding; threshold 1000 flags only Acme.
	svc := seededDashboard(t, 1000)

	alerts, err := svc.OutstandingAlerts(context.Background(), ledger.Query{})
	if err != nil {
		t.Fatalf("OutstandingAlerts() error = %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("got %d alerts, want 1", len(alerts))
	}
	if alerts[0].Key[0] != "Acme Traders" {
		t.Errorf("alert customer = %q, want Acme Traders", alerts[0].Key[0])
	}
}

func TestChairmanReport(t *testing.T) {
	svc := seededDashboard(t, 1000)

	report, err := svc.Chairman(context.Background(), ledger.Query{})
	if err != nil {
		t.Fatalf("Chairman() error = %v", err)
	}
	if report.Overview.Transactions != 3 {
		t.Errorf("Overview.Transactions = %d, want 3", report.Overview.Transactions)
	}
	if len(report.TopCustomers) != 2 || report.TopCustomers[0].Key[0] != "Acme Traders" {
		t.Errorf("TopCustomers = %v, want Acme Traders first of 2", report.TopCustomers)
	}
	if len(report.MonthlyTrend) != 2 {
		t.Errorf("MonthlyTrend groups = %d, want 2", len(report.MonthlyTrend))
	}
	if len(report.HighOutstanding) != 1 {
		t.Errorf("HighOutstanding = %d, want 1", len(report.HighOutstanding))
	}
	if !report.Commissions.Total.Equal(decimal.NewFromInt(18)) {
		t.Errorf("Commissions.Total = %s, want 18", report.Commissions.Total)
	}
}
