package http

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"salesledger/internal/core"
	"salesledger/internal/ledger"
)

// parseQuery builds a ledger filter from query parameters. Absent parameters
// leave their predicate inactive, so a bare request yields the full table.
//
//	?start=2025-06-01&end=2025-06-30&executive=karim&customer_type=Dealer&zone=North
func parseQuery(query url.Values) (ledger.Query, error) {
	q := ledger.Query{
		Executives:    cleanValues(query["executive"]),
		CustomerTypes: cleanValues(query["customer_type"]),
		Zones:         cleanValues(query["zone"]),
	}

	start, hasStart, err := parseDateParam(query, "start")
	if err != nil {
		return ledger.Query{}, err
	}
	end, hasEnd, err := parseDateParam(query, "end")
	if err != nil {
		return ledger.Query{}, err
	}

	if hasStart || hasEnd {
		r := ledger.DateRange{Start: start, End: end}
		if !hasStart {
			r.Start = core.NewDate(1900, 1, 1)
		}
		if !hasEnd {
			r.End = core.NewDate(9999, 12, 31)
		}
		if r.End.Before(r.Start.Time) {
			return ledger.Query{}, fmt.Errorf("end date %s is before start date %s", r.End, r.Start)
		}
		q.Range = &r
	}

	return q, nil
}

// parseDateRange requires both bounds, for the range report endpoint.
func parseDateRange(query url.Values) (ledger.DateRange, error) {
	start, hasStart, err := parseDateParam(query, "start")
	if err != nil {
		return ledger.DateRange{}, err
	}
	end, hasEnd, err := parseDateParam(query, "end")
	if err != nil {
		return ledger.DateRange{}, err
	}
	if !hasStart || !hasEnd {
		return ledger.DateRange{}, fmt.Errorf("both start and end dates are required")
	}
	if end.Before(start.Time) {
		return ledger.DateRange{}, fmt.Errorf("end date %s is before start date %s", end, start)
	}
	return ledger.DateRange{Start: start, End: end}, nil
}

func parseDateParam(query url.Values, key string) (core.Date, bool, error) {
	raw := strings.TrimSpace(query.Get(key))
	if raw == "" {
		return core.Date{}, false, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return core.Date{}, false, fmt.Errorf("invalid %s date %q: use YYYY-MM-DD", key, raw)
	}
	return core.Date{Time: t}, true, nil
}

// parseTopParams reads the dimension, ranking field and group count of a
// top-N request. Defaults: customers by sales amount, ten groups.
func parseTopParams(query url.Values) (ledger.Dimension, ledger.Field, int, error) {
	dim := ledger.DimCustomer
	if raw := strings.TrimSpace(query.Get("dim")); raw != "" {
		parsed, ok := ledger.ParseDimension(raw)
		if !ok {
			return "", "", 0, fmt.Errorf("unknown dimension %q", raw)
		}
		dim = parsed
	}

	field := ledger.FieldSalesAmount
	if raw := strings.TrimSpace(query.Get("field")); raw != "" {
		parsed, ok := ledger.ParseField(raw)
		if !ok {
			return "", "", 0, fmt.Errorf("unknown field %q", raw)
		}
		field = parsed
	}

	n := 10
	if raw := strings.TrimSpace(query.Get("n")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return "", "", 0, fmt.Errorf("invalid n %q: must be a positive integer", raw)
		}
		n = parsed
	}

	return dim, field, n, nil
}

func cleanValues(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
