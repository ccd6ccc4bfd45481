package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"slavemarket/internal/lease"
	"slavemarket/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const testAPIKey = "valid-key"

type mockLeaseService struct {
	mock.Mock
}

func (m *mockLeaseService) Lease(ctx context.Context, req lease.Request) (*lease.Response, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*lease.Response)
	return resp, args.Error(1)
}

func (m *mockLeaseService) ContractsForSlave(ctx context.Context, slaveID int64, from, to string) ([]model.LeaseContract, error) {
	args := m.Called(ctx, slaveID, from, to)
	contracts, _ := args.Get(0).([]model.LeaseContract)
	return contracts, args.Error(1)
}

func (m *mockLeaseService) Contracts(ctx context.Context, from, to string) ([]model.LeaseContract, error) {
	args := m.Called(ctx, from, to)
	contracts, _ := args.Get(0).([]model.LeaseContract)
	return contracts, args.Error(1)
}

type readiness struct{ err error }

func (r readiness) Ready(context.Context) error { return r.err }

func newTestServer(svc LeaseService, opts Options) http.Handler {
	if opts.APIKey == "" {
		opts.APIKey = testAPIKey
	}
	return NewHTTPServer(opts, svc, readiness{}, nil).Handler()
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("X-Api-Key", testAPIKey)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func sampleContract() *model.LeaseContract {
	c := model.NewLeaseContract(
		model.Master{ID: 1, Name: "Господин Боб"},
		model.Slave{ID: 2, Name: "Уродливый Фред", PricePerHour: 20},
		40,
		[]model.LeaseHour{model.MustLeaseHour("2017-01-01 01"), model.MustLeaseHour("2017-01-01 02")},
	)
	c.ID = "c-1"
	return c
}

func TestHandleCreateLease(t *testing.T) {
	req := lease.Request{MasterID: 1, SlaveID: 2, TimeFrom: "2017-01-01 01:30:00", TimeTo: "2017-01-01 02:01:00"}

	t.Run("Created", func(t *testing.T) {
		svc := new(mockLeaseService)
		svc.On("Lease", mock.Anything, req).Return(&lease.Response{Contract: sampleContract()}, nil)

		rec := do(t, newTestServer(svc, Options{}), http.MethodPost, "/api/v1/leases", req)
		require.Equal(t, http.StatusCreated, rec.Code)

		var body struct {
			Contract struct {
				ID    string   `json:"id"`
				Price float64  `json:"price"`
				Hours []string `json:"hours"`
			} `json:"contract"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "c-1", body.Contract.ID)
		assert.Equal(t, 40.0, body.Contract.Price)
		assert.Equal(t, []string{"2017-01-01 01", "2017-01-01 02"}, body.Contract.Hours)
		svc.AssertExpectations(t)
	})

	t.Run("Rejected", func(t *testing.T) {
		svc := new(mockLeaseService)
		svc.On("Lease", mock.Anything, req).Return(&lease.Response{Errors: []*lease.Error{{
			Kind:      lease.KindSlaveBusy,
			SlaveID:   2,
			SlaveName: "Уродливый Фред",
			Hours:     []model.LeaseHour{model.MustLeaseHour("2017-01-01 01")},
		}}}, nil)

		rec := do(t, newTestServer(svc, Options{}), http.MethodPost, "/api/v1/leases", req)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var body CreateLeaseResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Errors, 1)
		assert.Equal(t, lease.KindSlaveBusy, body.Errors[0].Kind)
		assert.Equal(t, `Ошибка. Раб #2 "Уродливый Фред" занят. Занятые часы: "2017-01-01 01"`, body.Errors[0].Message)
		assert.Equal(t, []string{"2017-01-01 01"}, body.Errors[0].Hours)
	})

	t.Run("InternalError", func(t *testing.T) {
		svc := new(mockLeaseService)
		svc.On("Lease", mock.Anything, req).Return(nil, errors.New("disk full"))

		rec := do(t, newTestServer(svc, Options{}), http.MethodPost, "/api/v1/leases", req)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "disk full")
	})

	t.Run("BadRequests", func(t *testing.T) {
		svc := new(mockLeaseService)
		h := newTestServer(svc, Options{})

		assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/v1/leases", "{not json").Code)
		assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/v1/leases", `{"unknown":1}`).Code)
		assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/v1/leases", lease.Request{SlaveID: 2}).Code)
		assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodGet, "/api/v1/leases", nil).Code)
		svc.AssertNotCalled(t, "Lease", mock.Anything, mock.Anything)
	})
}

func TestHandleSlaveContracts(t *testing.T) {
	svc := new(mockLeaseService)
	svc.On("ContractsForSlave", mock.Anything, int64(2), "2017-01-01", "2017-01-31").
		Return([]model.LeaseContract{*sampleContract()}, nil)
	svc.On("ContractsForSlave", mock.Anything, int64(3), "2017-01-01", "2017-01-01").
		Return(nil, nil)
	h := newTestServer(svc, Options{})

	rec := do(t, h, http.MethodGet, "/api/v1/slaves/2/contracts?from=2017-01-01&to=2017-01-31", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body ContractsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(2), body.SlaveID)
	require.Len(t, body.Contracts, 1)
	assert.Equal(t, "c-1", body.Contracts[0].ID)

	rec = do(t, h, http.MethodGet, "/api/v1/slaves/3/contracts?from=2017-01-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"contracts":[]`)

	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"bad id", "/api/v1/slaves/abc/contracts", "invalid slave id"},
		{"bad from", "/api/v1/slaves/2/contracts?from=01-01-2017", errInvalidFrom.Error()},
		{"bad to", "/api/v1/slaves/2/contracts?from=2017-01-01&to=x", errInvalidTo.Error()},
		{"reversed", "/api/v1/slaves/2/contracts?from=2017-02-01&to=2017-01-01", errRangeOrder.Error()},
		{"too wide", "/api/v1/slaves/2/contracts?from=2015-01-01&to=2017-01-01", errRangeTooWide.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.target, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestHandleContractsReport(t *testing.T) {
	svc := new(mockLeaseService)
	svc.On("Contracts", mock.Anything, "2017-01-01", "2017-01-02").
		Return([]model.LeaseContract{*sampleContract()}, nil)

	rec := do(t, newTestServer(svc, Options{}), http.MethodGet, "/api/v1/reports/contracts.xlsx?from=2017-01-01&to=2017-01-02", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "contracts_2017-01-01_2017-01-02.xlsx")

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Контракты")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestAuthAndRateLimit(t *testing.T) {
	svc := new(mockLeaseService)
	svc.On("ContractsForSlave", mock.Anything, int64(1), "2017-01-01", "2017-01-01").Return(nil, nil)
	h := newTestServer(svc, Options{RatePerSecond: 0.001, Burst: 2})

	unauth := httptest.NewRequest(http.MethodGet, "/api/v1/slaves/1/contracts?from=2017-01-01", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, unauth)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, do(t, h, http.MethodGet, "/api/v1/slaves/1/contracts?from=2017-01-01", nil).Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestHealth(t *testing.T) {
	mux := http.NewServeMux()
	RegisterHealth(mux, readiness{err: errors.New("db closed")})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	h := newTestServer(new(mockLeaseService), Options{})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
