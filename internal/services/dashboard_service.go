package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"salesledger/internal/core"
	"salesledger/internal/ledger"
)

// DefaultOutstandingAlertThreshold flags customers the chairman should chase.
var DefaultOutstandingAlertThreshold = decimal.NewFromInt(50000)

// Overview is the headline KPI block of the dashboard.
type Overview struct {
	Transactions       int             `json:"transactions"`
	Customers          int             `json:"customers"`
	Executives         int             `json:"executives"`
	TotalSales         decimal.Decimal `json:"total_sales"`
	TotalNetSales      decimal.Decimal `json:"total_net_sales"`
	TotalPaid          decimal.Decimal `json:"total_paid"`
	TotalOutstanding   decimal.Decimal `json:"total_outstanding"`
	TotalCompanyProfit decimal.Decimal `json:"total_company_profit"`
}

// CommissionSummary breaks payouts down by rate tier, with the per-executive
// split of the executive tier.
type CommissionSummary struct {
	Executive    decimal.Decimal `json:"executive"`
	ZonalOfficer decimal.Decimal `json:"zonal_officer"`
	GM           decimal.Decimal `json:"gm"`
	Total        decimal.Decimal `json:"total"`
	ByExecutive  []ledger.Rollup `json:"by_executive"`
}

// ChairmanReport is the one-page summary: headline KPIs, the biggest
// customers and executives and the monthly sales trend.
type ChairmanReport struct {
	Overview        Overview          `json:"overview"`
	TopCustomers    []ledger.Rollup   `json:"top_customers"`
	TopExecutives   []ledger.Rollup   `json:"top_executives"`
	MonthlyTrend    []ledger.Rollup   `json:"monthly_trend"`
	Commissions     CommissionSummary `json:"commissions"`
	HighOutstanding []ledger.Rollup   `json:"high_outstanding"`
}

// DashboardService computes the read-side views. Every method takes a fresh
// snapshot from the ledger so appends are visible immediately.
type DashboardService struct {
	ledger         *LedgerService
	alertThreshold decimal.Decimal
}

func NewDashboardService(ledger *LedgerService, alertThreshold decimal.Decimal) *DashboardService {
	if alertThreshold.IsZero() {
		alertThreshold = DefaultOutstandingAlertThreshold
	}
	return &DashboardService{ledger: ledger, alertThreshold: alertThreshold}
}

func (s *DashboardService) snapshot(ctx context.Context, q ledger.Query) (*core.Table, error) {
	table, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.Filter(table, q), nil
}

// Overview returns the headline KPIs for the filtered table.
func (s *DashboardService) Overview(ctx context.Context, q ledger.Query) (Overview, error) {
	table, err := s.snapshot(ctx, q)
	if err != nil {
		return Overview{}, err
	}
	return overviewOf(table), nil
}

func overviewOf(table *core.Table) Overview {
	totals := ledger.Totals(table,
		ledger.FieldSalesAmount,
		ledger.FieldNetSales,
		ledger.FieldPaidAmount,
		ledger.FieldOutstanding,
		ledger.FieldCompanyProfit,
	)
	return Overview{
		Transactions:       table.Len(),
		Customers:          ledger.DistinctCount(table, ledger.DimCustomer),
		Executives:         ledger.DistinctCount(table, ledger.DimExecutive),
		TotalSales:         totals[ledger.FieldSalesAmount],
		TotalNetSales:      totals[ledger.FieldNetSales],
		TotalPaid:          totals[ledger.FieldPaidAmount],
		TotalOutstanding:   totals[ledger.FieldOutstanding],
		TotalCompanyProfit: totals[ledger.FieldCompanyProfit],
	}
}

var summaryFields = []ledger.Field{
	ledger.FieldSalesAmount,
	ledger.FieldNetSales,
	ledger.FieldPaidAmount,
	ledger.FieldOutstanding,
}

// ExecutiveSummary groups the filtered table by sales executive.
func (s *DashboardService) ExecutiveSummary(ctx context.Context, q ledger.Query) ([]ledger.Rollup, error) {
	table, err := s.snapshot(ctx, q)
	if err != nil {
		return nil, err
	}
	fields := append(summaryFields[:len(summaryFields):len(summaryFields)], ledger.FieldExecCommission)
	return ledger.GroupAndSum(table, []ledger.Dimension{ledger.DimExecutive}, fields), nil
}

// CustomerSummary groups the filtered table by customer.
func (s *DashboardService) CustomerSummary(ctx context.Context, q ledger.Query) ([]ledger.Rollup, error) {
	table, err := s.snapshot(ctx, q)
	if err != nil {
		return nil, err
	}
	fields := append(summaryFields[:len(summaryFields):len(summaryFields)], ledger.FieldCashback)
	return ledger.GroupAndSum(table, []ledger.Dimension{ledger.DimCustomer}, fields), nil
}

// ExecutiveCustomerOutstanding lists one executive's customers with their
// outstanding balances, largest first.
func (s *DashboardService) ExecutiveCustomerOutstanding(ctx context.Context, executive string, q ledger.Query) ([]ledger.Rollup, error) {
	q.Executives = []string{executive}
	table, err := s.snapshot(ctx, q)
	if err != nil {
		return nil, err
	}
	rollups := ledger.GroupAndSum(table,
		[]ledger.Dimension{ledger.DimCustomer},
		[]ledger.Field{ledger.FieldOutstanding, ledger.FieldSalesAmount, ledger.FieldPaidAmount})
	return ledger.TopN(rollups, ledger.FieldOutstanding, len(rollups)), nil
}

// Commissions sums the payout tiers over the filtered table.
func (s *DashboardService) Commissions(ctx context.Context, q ledger.Query) (CommissionSummary, error) {
	table, err := s.snapshot(ctx, q)
	if err != nil {
		return CommissionSummary{}, err
	}
	return commissionsOf(table), nil
}

func commissionsOf(table *core.Table) CommissionSummary {
	totals := ledger.Totals(table,
		ledger.FieldExecCommission,
		ledger.FieldZonalOfficer,
		ledger.FieldGMCommission,
	)
	summary := CommissionSummary{
		Executive:    totals[ledger.FieldExecCommission],
		ZonalOfficer: totals[ledger.FieldZonalOfficer],
		GM:           totals[ledger.FieldGMCommission],
		ByExecutive: ledger.GroupAndSum(table,
			[]ledger.Dimension{ledger.DimExecutive},
			[]ledger.Field{ledger.FieldExecCommission, ledger.FieldPaidAmount}),
	}
	summary.Total = summary.Executive.Add(summary.ZonalOfficer).Add(summary.GM)
	return summary
}

// RangeTotals returns the headline KPIs restricted to a date range.
func (s *DashboardService) RangeTotals(ctx context.Context, r ledger.DateRange, q ledger.Query) (Overview, error) {
	q.Range = &r
	return s.Overview(ctx, q)
}

// Top returns the n largest groups along a dimension, ranked by field.
func (s *DashboardService) Top(ctx context.Context, q ledger.Query, dim ledger.Dimension, field ledger.Field, n int) ([]ledger.Rollup, error) {
	table, err := s.snapshot(ctx, q)
	if err != nil {
		return nil, err
	}
	rollups := ledger.GroupAndSum(table, []ledger.Dimension{dim}, []ledger.Field{field})
	return ledger.TopN(rollups, field, n), nil
}

// OutstandingAlerts lists customers whose total outstanding exceeds the
// configured threshold.
func (s *DashboardService) OutstandingAlerts(ctx context.Context, q ledger.Query) ([]ledger.Rollup, error) {
	table, err := s.snapshot(ctx, q)
	if err != nil {
		return nil, err
	}
	return ledger.HighOutstanding(table, s.alertThreshold), nil
}

// Chairman assembles the one-page report.
func (s *DashboardService) Chairman(ctx context.Context, q ledger.Query) (ChairmanReport, error) {
	table, err := s.snapshot(ctx, q)
	if err != nil {
		return ChairmanReport{}, err
	}

	byCustomer := ledger.GroupAndSum(table,
		[]ledger.Dimension{ledger.DimCustomer}, []ledger.Field{ledger.FieldSalesAmount})
	byExecutive := ledger.GroupAndSum(table,
		[]ledger.Dimension{ledger.DimExecutive}, []ledger.Field{ledger.FieldSalesAmount})
	byMonth := ledger.GroupAndSum(table,
		[]ledger.Dimension{ledger.DimMonth},
		[]ledger.Field{ledger.FieldSalesAmount, ledger.FieldPaidAmount, ledger.FieldOutstanding})

	return ChairmanReport{
		Overview:        overviewOf(table),
		TopCustomers:    ledger.TopN(byCustomer, ledger.FieldSalesAmount, 10),
		TopExecutives:   ledger.TopN(byExecutive, ledger.FieldSalesAmount, 10),
		MonthlyTrend:    byMonth,
		Commissions:     commissionsOf(table),
		HighOutstanding: ledger.HighOutstanding(table, s.alertThreshold),
	}, nil
}

// Transactions returns the filtered, derived rows themselves, in the
// snapshot's newest-first order.
func (s *DashboardService) Transactions(ctx context.Context, q ledger.Query) ([]core.Record, error) {
	table, err := s.snapshot(ctx, q)
	if err != nil {
		return nil, err
	}
	if table.Records == nil {
		return []core.Record{}, nil
	}
	return table.Records, nil
}

// Export returns the filtered, derived table for workbook export.
func (s *DashboardService) Export(ctx context.Context, q ledger.Query) (*core.Table, error) {
	table, err := s.snapshot(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("export snapshot: %w", err)
	}
	return table, nil
}
