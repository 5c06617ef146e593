package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"salesledger/internal/amqp"
	"salesledger/internal/core"
	"salesledger/internal/ledger"
	applog "salesledger/internal/log"
	"salesledger/internal/storage"
)

// AppendRequest is the payload of a new sales transaction. Amounts arrive as
// plain JSON numbers; commissions are never accepted from the caller, they
// are always recomputed from the paid amount.
type AppendRequest struct {
	Date           string  `json:"date" validate:"required,datetime=2006-01-02"`
	OrderNo        string  `json:"order_no" validate:"required,max=64"`
	CustomerName   string  `json:"customer_name" validate:"required,max=200"`
	CustomerType   string  `json:"customer_type" validate:"required,max=100"`
	SalesExecutive string  `json:"sales_executive" validate:"required,max=200"`
	AreaZone       string  `json:"area_zone" validate:"max=100"`
	SalesAmount    float64 `json:"sales_amount" validate:"gte=0"`
	SalesReturn    float64 `json:"sales_return" validate:"gte=0"`
	PaidAmount     float64 `json:"paid_amount" validate:"gte=0"`
	OpenValue      float64 `json:"open_value" validate:"gte=0"`

	// Cashback overrides the computed amount when set. Omitting it asserts
	// the customer is cashback-eligible and defaults to 2% of the paid
	// amount; callers send an explicit 0 for non-eligible customers.
	Cashback *float64 `json:"customer_cashback_on_paid_amount,omitempty" validate:"omitempty,gte=0"`
}

// AppendResult is what the caller gets back: the fully derived record and
// the local id it was stored under while awaiting workbook sync.
type AppendResult struct {
	ID     int64       `json:"id"`
	Record core.Record `json:"record"`
}

// TransactionService handles the append path: validate, derive, store
// locally, then notify the sync worker. The workbook write itself happens
// asynchronously so a slow spreadsheet backend never blocks the caller.
type TransactionService struct {
	validate   *validator.Validate
	repo       *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewTransactionService(repo *storage.SQLiteRepository, amqpClient *amqp.Client) *TransactionService {
	return &TransactionService{
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		repo:       repo,
		amqpClient: amqpClient,
	}
}

// Append validates and stores a new transaction. Validation failures come
// back as a core.ValidationError with one message per offending field.
func (s *TransactionService) Append(ctx context.Context, req AppendRequest) (AppendResult, error) {
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, ve := range verrs {
				fields[fieldName(ve.Field())] = fieldMessage(ve)
			}
			return AppendResult{}, &core.ValidationError{Fields: fields}
		}
		return AppendResult{}, fmt.Errorf("validate request: %w", err)
	}

	rec, err := s.buildRecord(req)
	if err != nil {
		return AppendResult{}, err
	}

	id, err := s.repo.Insert(ctx, rec)
	if err != nil {
		return AppendResult{}, fmt.Errorf("store transaction: %w", err)
	}

	// Best effort: the transaction is durable locally, the poll loop will
	// pick it up even if the broker is down.
	if s.amqpClient != nil {
		if err := s.amqpClient.PublishTransactionSync(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to publish sync message",
				applog.FieldOperation, applog.OpAppend,
				applog.FieldTransactionID, id,
				applog.FieldError, err)
		}
	}

	return AppendResult{ID: id, Record: rec}, nil
}

func (s *TransactionService) buildRecord(req AppendRequest) (core.Record, error) {
	day, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return core.Record{}, &core.ValidationError{
			Fields: map[string]string{"date": "must be a YYYY-MM-DD date"},
		}
	}

	rec := core.Record{
		Date:           core.Date{Time: day},
		OrderNo:        req.OrderNo,
		CustomerName:   req.CustomerName,
		CustomerType:   req.CustomerType,
		SalesExecutive: req.SalesExecutive,
		AreaZone:       req.AreaZone,
		SalesAmount:    decimal.NewFromFloat(req.SalesAmount),
		SalesReturn:    decimal.NewFromFloat(req.SalesReturn),
		PaidAmount:     decimal.NewFromFloat(req.PaidAmount),
		OpenValue:      decimal.NewFromFloat(req.OpenValue),
	}

	if req.Cashback != nil {
		rec.Cashback = decimal.NewFromFloat(*req.Cashback)
	} else {
		rec.Cashback = rec.PaidAmount.Mul(core.RateCustomerCashback).Round(2)
	}

	return ledger.DeriveRecord(rec, true), nil
}

// Close releases the storage and broker connections.
func (s *TransactionService) Close() error {
	var errs []error

	if s.repo != nil {
		if err := s.repo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %v", errs)
	}
	return nil
}

// fieldName maps a struct field to its wire name.
func fieldName(structField string) string {
	names := map[string]string{
		"Date":           "date",
		"OrderNo":        "order_no",
		"CustomerName":   "customer_name",
		"CustomerType":   "customer_type",
		"SalesExecutive": "sales_executive",
		"AreaZone":       "area_zone",
		"SalesAmount":    "sales_amount",
		"SalesReturn":    "sales_return",
		"PaidAmount":     "paid_amount",
		"OpenValue":      "open_value",
		"Cashback":       "customer_cashback_on_paid_amount",
	}
	if n, ok := names[structField]; ok {
		return n
	}
	return structField
}

func fieldMessage(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "is required"
	case "datetime":
		return "must be a YYYY-MM-DD date"
	case "gte":
		return "must not be negative"
	case "max":
		return fmt.Sprintf("must be at most %s characters", ve.Param())
	default:
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
