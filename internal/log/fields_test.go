package log

import (
	"errors"
	"testing"
)

func TestLogFieldsBuilder(t *testing.T) {
	fields := NewFields().
		WithClientIP("10.0.0.1").
		WithHTTPRequest("GET", "/api/overview", "executive=karim", "curl/8").
		WithHTTPResponse(200, 12, true)

	if got := fields[FieldClientIP]; got != "10.0.0.1" {
		t.Errorf("client ip = %v, want 10.0.0.1", got)
	}
	if got := fields[FieldPath]; got != "/api/overview" {
		t.Errorf("path = %v, want /api/overview", got)
	}
	if got := fields[FieldStatusCode]; got != 200 {
		t.Errorf("status = %v, want 200", got)
	}
	if got := fields[FieldSuccess]; got != true {
		t.Errorf("success = %v, want true", got)
	}
}

func TestLogFieldsWithTransaction(t *testing.T) {
	fields := NewFields().
		WithOperation(OpSync).
		WithTransaction(7, "ORD-7", "Acme Traders", "karim")

	if got := fields[FieldOperation]; got != OpSync {
		t.Errorf("operation = %v, want %q", got, OpSync)
	}
	if got := fields[FieldTransactionID]; got != int64(7) {
		t.Errorf("transaction id = %v, want 7", got)
	}
	if got := fields[FieldOrderNo]; got != "ORD-7" {
		t.Errorf("order no = %v, want ORD-7", got)
	}
}

func TestLogFieldsWithError(t *testing.T) {
	if fields := NewFields().WithError(nil); len(fields) != 0 {
		t.Errorf("nil error should add nothing, got %v", fields)
	}

	fields := NewFields().WithError(errors.New("boom"))
	if got := fields[FieldError]; got != "boom" {
		t.Errorf("error = %v, want boom", got)
	}
}

func TestLogFieldsToSlice(t *testing.T) {
	fields := NewFields().WithClientIP("10.0.0.1").WithOperation(OpAppend)
	slice := fields.ToSlice()
	if len(slice) != 4 {
		t.Fatalf("len(ToSlice()) = %d, want 4", len(slice))
	}
	for i := 0; i < len(slice); i += 2 {
		if _, ok := slice[i].(string); !ok {
			t.Errorf("slice[%d] = %v, want a string key", i, slice[i])
		}
	}
}
