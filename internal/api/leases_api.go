package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"slavemarket/internal/lease"
	"slavemarket/internal/metrics"
	"slavemarket/internal/model"
	"slavemarket/internal/report"
)

// MaxContractsDaysRange caps the date window of list and report requests.
const MaxContractsDaysRange = 366

// LeaseErrorView is one rejection reason in a 422 response.
type LeaseErrorView struct {
	Kind    lease.Kind `json:"kind"`
	Message string     `json:"message"`
	Hours   []string   `json:"hours,omitempty"`
}

// CreateLeaseResponse is the body of POST /api/v1/leases.
type CreateLeaseResponse struct {
	Contract *model.LeaseContract `json:"contract,omitempty"`
	Errors   []LeaseErrorView     `json:"errors,omitempty"`
}

// ContractsResponse is the body of GET /api/v1/slaves/{id}/contracts.
type ContractsResponse struct {
	SlaveID   int64                 `json:"slave_id"`
	From      string                `json:"from"`
	To        string                `json:"to"`
	Contracts []model.LeaseContract `json:"contracts"`
}

// handleCreateLease resolves and stores a lease.
// POST /api/v1/leases
func (s *HTTPServer) handleCreateLease(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("create_lease")

	var req lease.Request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.MasterID <= 0 || req.SlaveID <= 0 {
		writeError(w, http.StatusBadRequest, "master_id and slave_id are required")
		return
	}

	resp, err := s.leases.Lease(r.Context(), req)
	if err != nil {
		s.logger.Error().Err(err).Msg("create lease")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if !resp.OK() {
		views := make([]LeaseErrorView, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			view := LeaseErrorView{Kind: e.Kind, Message: e.Error()}
			for _, h := range e.Hours {
				view.Hours = append(view.Hours, h.String())
			}
			views = append(views, view)
		}
		writeJSON(w, http.StatusUnprocessableEntity, CreateLeaseResponse{Errors: views})
		return
	}

	writeJSON(w, http.StatusCreated, CreateLeaseResponse{Contract: resp.Contract})
}

// handleSlaveContracts lists stored contracts of one slave.
// GET /api/v1/slaves/{id}/contracts?from=YYYY-MM-DD&to=YYYY-MM-DD
func (s *HTTPServer) handleSlaveContracts(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("slave_contracts")

	slaveID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || slaveID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid slave id")
		return
	}

	from, to, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	contracts, err := s.leases.ContractsForSlave(r.Context(), slaveID, from, to)
	if err != nil {
		s.logger.Error().Err(err).Int64("slave_id", slaveID).Msg("list contracts")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if contracts == nil {
		contracts = []model.LeaseContract{}
	}

	writeJSON(w, http.StatusOK, ContractsResponse{
		SlaveID:   slaveID,
		From:      from,
		To:        to,
		Contracts: contracts,
	})
}

// handleContractsReport exports contracts as an xlsx workbook.
// GET /api/v1/reports/contracts.xlsx?from=YYYY-MM-DD&to=YYYY-MM-DD
func (s *HTTPServer) handleContractsReport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("contracts_report")

	from, to, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	contracts, err := s.leases.Contracts(r.Context(), from, to)
	if err != nil {
		s.logger.Error().Err(err).Msg("report contracts")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	var buf bytes.Buffer
	if err := report.WriteContracts(&buf, contracts); err != nil {
		s.logger.Error().Err(err).Msg("render report")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="contracts_`+from+`_`+to+`.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// parseDateRange reads from/to query parameters. Both default to today.
func parseDateRange(r *http.Request) (from, to string, err error) {
	today := time.Now().Format(lease.DateLayout)
	from = r.URL.Query().Get("from")
	to = r.URL.Query().Get("to")
	if from == "" {
		from = today
	}
	if to == "" {
		to = from
	}

	start, err := time.Parse(lease.DateLayout, from)
	if err != nil {
		return "", "", errInvalidFrom
	}
	end, err := time.Parse(lease.DateLayout, to)
	if err != nil {
		return "", "", errInvalidTo
	}
	if start.After(end) {
		return "", "", errRangeOrder
	}
	if end.Sub(start) > MaxContractsDaysRange*24*time.Hour {
		return "", "", errRangeTooWide
	}
	return from, to, nil
}
