package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"salesledger/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a transaction id does not exist.
var ErrNotFound = errors.New("transaction not found")

// PendingTransaction is a stored transaction that has not yet been appended
// to the workbook.
type PendingTransaction struct {
	ID     int64
	Record core.Record
}

// SQLiteRepository persists appended transactions until the sync worker has
// written them to the workbook of record.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

const insertSQL = `
INSERT INTO transactions (
    date, order_no, customer_name, customer_type, sales_executive, area_zone,
    sales_amount, sales_return, paid_amount, open_value, cashback,
    executive_commission, zonal_officer_commission, gm_commission, company_profit
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Insert stores a fully derived record and returns its id.
func (r *SQLiteRepository) Insert(ctx context.Context, rec core.Record) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertSQL,
		rec.Date.String(),
		rec.OrderNo,
		rec.CustomerName,
		rec.CustomerType,
		rec.SalesExecutive,
		rec.AreaZone,
		rec.SalesAmount.String(),
		rec.SalesReturn.String(),
		rec.PaidAmount.String(),
		rec.OpenValue.String(),
		rec.Cashback.String(),
		rec.ExecutiveCommission.String(),
		rec.ZonalOfficerCommission.String(),
		rec.GMCommission.String(),
		rec.CompanyProfit.String(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get transaction id: %w", err)
	}
	return id, nil
}

const selectColumns = `
    id, date, order_no, customer_name, customer_type, sales_executive, area_zone,
    sales_amount, sales_return, paid_amount, open_value, cashback,
    executive_commission, zonal_officer_commission, gm_commission, company_profit`

// GetByID loads a single stored transaction.
func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (PendingTransaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT`+selectColumns+` FROM transactions WHERE id = ?`, id)

	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return PendingTransaction{}, ErrNotFound
	}
	if err != nil {
		return PendingTransaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return tx, nil
}

// PendingSync returns up to limit transactions that have not been written to
// the workbook, oldest first.
func (r *SQLiteRepository) PendingSync(ctx context.Context, limit int) ([]PendingTransaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT`+selectColumns+`
         FROM transactions
         WHERE synced_at IS NULL
         ORDER BY created_at, id
         LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending transactions: %w", err)
	}
	defer rows.Close()

	var pending []PendingTransaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending transaction: %w", err)
		}
		pending = append(pending, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending transactions: %w", err)
	}
	return pending, nil
}

// MarkSynced records that the transaction landed in the workbook at sheetRef.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64, sheetRef string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET synced_at = ?, sheet_ref = ? WHERE id = ?`,
		time.Now().UTC(), sheetRef, id)
	if err != nil {
		return fmt.Errorf("mark transaction %d synced: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountPending reports how many transactions still await workbook sync.
func (r *SQLiteRepository) CountPending(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE synced_at IS NULL`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count pending transactions: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (PendingTransaction, error) {
	var (
		tx   PendingTransaction
		date string
		amts [9]string
	)
	err := row.Scan(
		&tx.ID,
		&date,
		&tx.Record.OrderNo,
		&tx.Record.CustomerName,
		&tx.Record.CustomerType,
		&tx.Record.SalesExecutive,
		&tx.Record.AreaZone,
		&amts[0], &amts[1], &amts[2], &amts[3], &amts[4],
		&amts[5], &amts[6], &amts[7], &amts[8],
	)
	if err != nil {
		return PendingTransaction{}, err
	}

	if date != "" {
		t, err := time.Parse("2006-01-02", date)
		if err != nil {
			return PendingTransaction{}, fmt.Errorf("parse stored date %q: %w", date, err)
		}
		tx.Record.Date = core.Date{Time: t}
	}

	fields := []*decimal.Decimal{
		&tx.Record.SalesAmount,
		&tx.Record.SalesReturn,
		&tx.Record.PaidAmount,
		&tx.Record.OpenValue,
		&tx.Record.Cashback,
		&tx.Record.ExecutiveCommission,
		&tx.Record.ZonalOfficerCommission,
		&tx.Record.GMCommission,
		&tx.Record.CompanyProfit,
	}
	for i, f := range fields {
		d, err := decimal.NewFromString(amts[i])
		if err != nil {
			return PendingTransaction{}, fmt.Errorf("parse stored amount %q: %w", amts[i], err)
		}
		*f = d
	}
	return tx, nil
}
