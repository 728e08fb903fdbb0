package handler_test

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/medflow/payroll-backend/internal/payroll/domain"
	"github.com/medflow/payroll-backend/internal/payroll/export"
	"github.com/medflow/payroll-backend/internal/payroll/handler"
	"github.com/medflow/payroll-backend/internal/payroll/repository"
	"github.com/medflow/payroll-backend/internal/payroll/service"
	"github.com/medflow/payroll-backend/pkg/httputil"
	"github.com/medflow/payroll-backend/pkg/logger"
	"github.com/medflow/payroll-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type salaryResponse struct {
	Success bool                     `json:"success"`
	Data    domain.SalaryCalculation `json:"data"`
	Error   *httputil.ErrorBody      `json:"error"`
}

type salaryListResponse struct {
	Success bool                        `json:"success"`
	Data    []*domain.SalaryCalculation `json:"data"`
	Meta    *httputil.Meta              `json:"meta"`
}

func newRouter(t *testing.T) (http.Handler, *repository.MemoryStore) {
	t.Helper()

	store := repository.NewMemoryStore()
	store.AddLaborLaw(testutil.ActiveLaborLaw("law-2025", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	for _, id := range []string{"s1", "s2"} {
		store.AddStaff(repository.StaffMember{ID: id, CompanyID: "company-1", Role: "staff", Active: true})
		require.NoError(t, store.AddContract(testutil.HourlyContract(id, 10_000)))
		store.AddAttendance(testutil.WorkDays(id, 2025, time.March, "8", "0")...)
	}

	svc := service.NewSalaryService(store, service.NewRateResolver(store, time.Hour, logger.Nop()),
		nil, service.DefaultSalaryPolicy(), logger.Nop())

	r := chi.NewRouter()
	r.Use(httputil.UserHeaders)
	r.Route("/api/v1/payroll", handler.NewSalaryHandler(svc, logger.Nop()).Routes)
	return r, store
}

func calculate(t *testing.T, router http.Handler, staffID string) domain.SalaryCalculation {
	t.Helper()
	req := testutil.NewHTTPRequest(http.MethodPost, "/api/v1/payroll/salaries/calculate", map[string]any{
		"staff_id": staffID, "year": 2025, "month": 3,
	})
	rr := testutil.ExecuteRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusCreated)

	var resp salaryResponse
	testutil.ParseJSONBody(t, rr, &resp)
	require.True(t, resp.Success)
	return resp.Data
}

func TestSalaryHandler_Calculate(t *testing.T) {
	router, _ := newRouter(t)

	calc := calculate(t, router, "s1")
	assert.Equal(t, "s1", calc.StaffID)
	assert.Equal(t, domain.SalaryStatusPending, calc.Status)
	assert.Equal(t, domain.Money(1_680_000), calc.BaseSalary)
	assert.Equal(t, "law-2025", calc.LaborLawVersionID)
}

func TestSalaryHandler_CalculateValidation(t *testing.T) {
	router, _ := newRouter(t)

	req := testutil.NewHTTPRequest(http.MethodPost, "/api/v1/payroll/salaries/calculate", map[string]any{
		"staff_id": "s1", "year": 2025, "month": 13,
	})
	rr := testutil.ExecuteRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
	testutil.AssertBodyContains(t, rr, "VALIDATION_ERROR")
	testutil.AssertBodyContains(t, rr, "Month")
}

func TestSalaryHandler_CalculateWithoutContract(t *testing.T) {
	router, _ := newRouter(t)

	req := testutil.NewHTTPRequest(http.MethodPost, "/api/v1/payroll/salaries/calculate", map[string]any{
		"staff_id": "nobody", "year": 2025, "month": 3,
	})
	rr := testutil.ExecuteRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusNotFound)
	testutil.AssertBodyContains(t, rr, "CONTRACT_NOT_FOUND")
}

func TestSalaryHandler_InvalidJSON(t *testing.T) {
	router, _ := newRouter(t)

	req := testutil.NewHTTPRequest(http.MethodPost, "/api/v1/payroll/salaries/bulk", nil)
	rr := testutil.ExecuteRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
	testutil.AssertBodyContains(t, rr, "invalid JSON body")
}

func TestSalaryHandler_BulkAndList(t *testing.T) {
	router, _ := newRouter(t)

	req := testutil.NewHTTPRequest(http.MethodPost, "/api/v1/payroll/salaries/bulk", map[string]any{
		"company_id": "company-1", "year": 2025, "month": 3,
	})
	rr := testutil.ExecuteRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var bulk salaryListResponse
	testutil.ParseJSONBody(t, rr, &bulk)
	require.Len(t, bulk.Data, 2)
	assert.Equal(t, int64(2), bulk.Meta.Total)

	req = testutil.NewHTTPRequest(http.MethodGet, "/api/v1/payroll/salaries?company_id=company-1&year=2025&month=3", nil)
	rr = testutil.ExecuteRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var list salaryListResponse
	testutil.ParseJSONBody(t, rr, &list)
	require.Len(t, list.Data, 2)
	assert.Equal(t, "s1", list.Data[0].StaffID)

	req = testutil.NewHTTPRequest(http.MethodGet, "/api/v1/payroll/salaries?company_id=company-1&year=march&month=3", nil)
	rr = testutil.ExecuteRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}

// cancellingStore cancels the request context once the first record is saved
type cancellingStore struct {
	*repository.MemoryStore
	cancel context.CancelFunc
}

func (s *cancellingStore) SaveSalaryCalculation(ctx context.Context, calc *domain.SalaryCalculation) error {
	err := s.MemoryStore.SaveSalaryCalculation(ctx, calc)
	s.cancel()
	return err
}

func TestSalaryHandler_BulkInterrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mem := repository.NewMemoryStore()
	mem.AddLaborLaw(testutil.ActiveLaborLaw("law-2025", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	for _, id := range []string{"s1", "s2"} {
		mem.AddStaff(repository.StaffMember{ID: id, CompanyID: "company-1", Role: "staff", Active: true})
		require.NoError(t, mem.AddContract(testutil.HourlyContract(id, 10_000)))
		mem.AddAttendance(testutil.WorkDays(id, 2025, time.March, "8", "0")...)
	}
	store := &cancellingStore{MemoryStore: mem, cancel: cancel}

	svc := service.NewSalaryService(store, service.NewRateResolver(store, time.Hour, logger.Nop()),
		nil, service.DefaultSalaryPolicy(), logger.Nop())
	r := chi.NewRouter()
	r.Route("/api/v1/payroll", handler.NewSalaryHandler(svc, logger.Nop()).Routes)

	req := testutil.NewHTTPRequest(http.MethodPost, "/api/v1/payroll/salaries/bulk", map[string]any{
		"company_id": "company-1", "year": 2025, "month": 3,
	}).WithContext(ctx)
	rr := testutil.ExecuteRequest(r, req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var bulk salaryListResponse
	testutil.ParseJSONBody(t, rr, &bulk)
	require.Len(t, bulk.Data, 1)
	assert.Equal(t, "s1", bulk.Data[0].StaffID)
	require.NotNil(t, bulk.Meta)
	assert.True(t, bulk.Meta.Partial)
	assert.Equal(t, int64(1), bulk.Meta.Total)

	skipped, err := mem.GetSalaryCalculation(context.Background(), "s2", 2025, 3)
	require.NoError(t, err)
	assert.Nil(t, skipped)
}

func TestSalaryHandler_Lifecycle(t *testing.T) {
	router, _ := newRouter(t)
	calc := calculate(t, router, "s1")

	// confirming needs the gateway's user header
	req := testutil.NewHTTPRequest(http.MethodPost, "/api/v1/payroll/salaries/"+calc.ID+"/confirm", nil)
	rr := testutil.ExecuteRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)

	req = testutil.NewHTTPRequest(http.MethodPost, "/api/v1/payroll/salaries/"+calc.ID+"/pay", nil)
	rr = testutil.ExecuteRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusConflict)
	testutil.AssertBodyContains(t, rr, "INVALID_TRANSITION")

	req = testutil.WithUserHeaders(testutil.NewHTTPRequest(http.MethodPost, "/api/v1/payroll/salaries/"+calc.ID+"/confirm", nil), "admin-1")
	rr = testutil.ExecuteRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var confirmed salaryResponse
	testutil.ParseJSONBody(t, rr, &confirmed)
	assert.Equal(t, domain.SalaryStatusConfirmed, confirmed.Data.Status)
	require.NotNil(t, confirmed.Data.ConfirmedBy)
	assert.Equal(t, "admin-1", *confirmed.Data.ConfirmedBy)

	// a confirmed record cannot be recomputed
	req = testutil.NewHTTPRequest(http.MethodPost, "/api/v1/payroll/salaries/calculate", map[string]any{
		"staff_id": "s1", "year": 2025, "month": 3,
	})
	rr = testutil.ExecuteRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusConflict)

	req = testutil.NewHTTPRequest(http.MethodPost, "/api/v1/payroll/salaries/"+calc.ID+"/pay", nil)
	rr = testutil.ExecuteRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	req = testutil.NewHTTPRequest(http.MethodGet, "/api/v1/payroll/salaries/"+calc.ID, nil)
	rr = testutil.ExecuteRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var paid salaryResponse
	testutil.ParseJSONBody(t, rr, &paid)
	assert.Equal(t, domain.SalaryStatusPaid, paid.Data.Status)
	assert.NotNil(t, paid.Data.PaidAt)
}

func TestSalaryHandler_GetMissing(t *testing.T) {
	router, _ := newRouter(t)

	req := testutil.NewHTTPRequest(http.MethodGet, "/api/v1/payroll/salaries/does-not-exist", nil)
	rr := testutil.ExecuteRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusNotFound)
}

func TestSalaryHandler_Ledger(t *testing.T) {
	router, _ := newRouter(t)
	calculate(t, router, "s1")
	calculate(t, router, "s2")

	req := testutil.NewHTTPRequest(http.MethodGet, "/api/v1/payroll/companies/company-1/ledger.xlsx?year=2025&month=3", nil)
	rr := testutil.ExecuteRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)
	assert.Equal(t, export.ContentType, rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "payroll-company-1-2025-03.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rr.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(export.LedgerSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestSalaryHandler_LaborLaw(t *testing.T) {
	router, _ := newRouter(t)

	req := testutil.NewHTTPRequest(http.MethodGet, "/api/v1/payroll/labor-law", nil)
	rr := testutil.ExecuteRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var resp struct {
		Data handler.LaborLawResponse `json:"data"`
	}
	testutil.ParseJSONBody(t, rr, &resp)
	assert.Equal(t, "law-2025", resp.Data.LaborLaw.ID)
	assert.False(t, resp.Data.UsingBuiltInLaws)
}
