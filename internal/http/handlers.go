package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"salesledger/internal/core"
	applog "salesledger/internal/log"
	"salesledger/internal/services"
	"salesledger/internal/workbook/excel"
)

const maxRequestBody = 1 << 20 // 1 MiB

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	overview, err := s.dashboards.Overview(r.Context(), q)
	if err != nil {
		s.writeLoadError(w, r, "overview", err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (s *Server) handleExecutiveSummary(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rollups, err := s.dashboards.ExecutiveSummary(r.Context(), q)
	if err != nil {
		s.writeLoadError(w, r, "executive summary", err)
		return
	}
	writeJSON(w, http.StatusOK, rollups)
}

func (s *Server) handleExecutiveCustomerOutstanding(w http.ResponseWriter, r *http.Request) {
	executive := r.PathValue("name")
	if executive == "" {
		writeError(w, http.StatusBadRequest, "executive name is required")
		return
	}

	q, err := parseQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rollups, err := s.dashboards.ExecutiveCustomerOutstanding(r.Context(), executive, q)
	if err != nil {
		s.writeLoadError(w, r, "executive outstanding", err)
		return
	}
	writeJSON(w, http.StatusOK, rollups)
}

func (s *Server) handleCustomerSummary(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rollups, err := s.dashboards.CustomerSummary(r.Context(), q)
	if err != nil {
		s.writeLoadError(w, r, "customer summary", err)
		return
	}
	writeJSON(w, http.StatusOK, rollups)
}

func (s *Server) handleRangeReport(w http.ResponseWriter, r *http.Request) {
	dateRange, err := parseDateRange(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	q.Range = nil

	overview, err := s.dashboards.RangeTotals(r.Context(), dateRange, q)
	if err != nil {
		s.writeLoadError(w, r, "range report", err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (s *Server) handleCommissionReport(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := s.dashboards.Commissions(r.Context(), q)
	if err != nil {
		s.writeLoadError(w, r, "commission report", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleChairmanReport(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := s.dashboards.Chairman(r.Context(), q)
	if err != nil {
		s.writeLoadError(w, r, "chairman report", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleTop(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	dim, field, n, err := parseTopParams(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rollups, err := s.dashboards.Top(r.Context(), q, dim, field, n)
	if err != nil {
		s.writeLoadError(w, r, "top groups", err)
		return
	}
	writeJSON(w, http.StatusOK, rollups)
}

func (s *Server) handleOutstandingAlerts(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	alerts, err := s.dashboards.OutstandingAlerts(r.Context(), q)
	if err != nil {
		s.writeLoadError(w, r, "outstanding alerts", err)
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := s.dashboards.Transactions(r.Context(), q)
	if err != nil {
		s.writeLoadError(w, r, "transactions", err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleAppendTransaction(w http.ResponseWriter, r *http.Request) {
	if s.transactions == nil {
		writeError(w, http.StatusServiceUnavailable, "transaction append is not configured")
		return
	}

	var req services.AppendRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	result, err := s.transactions.Append(r.Context(), req)
	if err != nil {
		var verr *core.ValidationError
		if errors.As(err, &verr) {
			writeValidationError(w, verr)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to append transaction", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store transaction")
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	table, err := s.dashboards.Export(r.Context(), q)
	if err != nil {
		s.writeLoadError(w, r, "export", err)
		return
	}

	data, err := excel.Export(table)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to build export workbook", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build export")
		return
	}

	filename := fmt.Sprintf("sales_export_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// writeLoadError distinguishes a corrupt workbook (bad gateway to the data
// of record) from an internal failure.
func (s *Server) writeLoadError(w http.ResponseWriter, r *http.Request, op string, err error) {
	applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to serve "+op, "error", err)
	if core.IsMalformedInput(err) {
		writeError(w, http.StatusBadGateway, "workbook data is malformed")
		return
	}
	writeError(w, http.StatusInternalServerError, "failed to load ledger data")
}
