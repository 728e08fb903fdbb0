package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/medflow/payroll-backend/internal/payroll/domain"
	"github.com/medflow/payroll-backend/internal/payroll/export"
	"github.com/medflow/payroll-backend/internal/payroll/service"
	"github.com/medflow/payroll-backend/pkg/actor"
	"github.com/medflow/payroll-backend/pkg/errors"
	"github.com/medflow/payroll-backend/pkg/httputil"
	"github.com/medflow/payroll-backend/pkg/logger"
)

// SalaryHandler handles payroll endpoints
type SalaryHandler struct {
	service *service.SalaryService
	logger  *logger.Logger
}

// NewSalaryHandler creates a new salary handler
func NewSalaryHandler(svc *service.SalaryService, log *logger.Logger) *SalaryHandler {
	return &SalaryHandler{
		service: svc,
		logger:  log,
	}
}

// Routes mounts the payroll endpoints
func (h *SalaryHandler) Routes(r chi.Router) {
	r.Route("/salaries", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/calculate", h.Calculate)
		r.Post("/bulk", h.CalculateBulk)
		r.Get("/{id}", h.Get)
		r.Post("/{id}/confirm", h.Confirm)
		r.Post("/{id}/pay", h.MarkPaid)
	})
	r.Get("/companies/{companyId}/ledger.xlsx", h.Ledger)
	r.Get("/labor-law", h.LaborLaw)
}

// CalculateRequest is the request structure for computing one staff member's month
type CalculateRequest struct {
	StaffID string `json:"staff_id" validate:"required"`
	Year    int    `json:"year" validate:"gte=2000,lte=9999"`
	Month   int    `json:"month" validate:"gte=1,lte=12"`
}

// BulkRequest is the request structure for computing a company's month
type BulkRequest struct {
	CompanyID string `json:"company_id" validate:"required"`
	Year      int    `json:"year" validate:"gte=2000,lte=9999"`
	Month     int    `json:"month" validate:"gte=1,lte=12"`
}

// Calculate computes and stores a salary record
func (h *SalaryHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	calc, err := h.service.CalculateMonthlySalary(r.Context(), req.StaffID, req.Year, req.Month)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, calc)
}

// CalculateBulk computes every rostered staff member of a company
func (h *SalaryHandler) CalculateBulk(w http.ResponseWriter, r *http.Request) {
	var req BulkRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	calcs, err := h.service.CalculateBulkSalaries(r.Context(), req.CompanyID, req.Year, req.Month)
	if err != nil && (len(calcs) == 0 || r.Context().Err() == nil) {
		httputil.Error(w, err)
		return
	}

	meta := &httputil.Meta{Total: int64(len(calcs))}
	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("company_id", req.CompanyID).
			Int("persisted", len(calcs)).
			Msg("bulk salary calculation interrupted")
		meta.Partial = true
	}

	httputil.JSONWithMeta(w, http.StatusOK, calcs, meta)
}

// List lists a company's salary records for a month
func (h *SalaryHandler) List(w http.ResponseWriter, r *http.Request) {
	companyID, year, month, err := periodQuery(r, r.URL.Query().Get("company_id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	calcs, err := h.service.ListSalaries(r.Context(), companyID, year, month)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, calcs, &httputil.Meta{Total: int64(len(calcs))})
}

// Get gets a salary record by ID
func (h *SalaryHandler) Get(w http.ResponseWriter, r *http.Request) {
	calc, err := h.service.GetSalary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, calc)
}

// Confirm confirms a salary record on behalf of the calling user
func (h *SalaryHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	a := actor.FromContext(r.Context())
	if a == nil {
		httputil.Error(w, errors.Unauthorized("user identity is required to confirm a salary"))
		return
	}

	calc, err := h.service.ConfirmSalary(r.Context(), chi.URLParam(r, "id"), a.ID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	h.logger.Info().
		Str("salary_id", calc.ID).
		Str("confirmed_by", a.String()).
		Msg("salary confirmed")

	httputil.JSON(w, http.StatusOK, calc)
}

// MarkPaid marks a confirmed salary record as paid
func (h *SalaryHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	calc, err := h.service.MarkAsPaid(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, calc)
}

// Ledger downloads a company's month as an XLSX ledger
func (h *SalaryHandler) Ledger(w http.ResponseWriter, r *http.Request) {
	companyID, year, month, err := periodQuery(r, chi.URLParam(r, "companyId"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	calcs, err := h.service.ListSalaries(r.Context(), companyID, year, month)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteLedger(&buf, calcs); err != nil {
		h.logger.Error().Err(err).Str("company_id", companyID).Msg("failed to build payroll ledger")
		httputil.Error(w, err)
		return
	}

	filename := fmt.Sprintf("payroll-%s-%04d-%02d.xlsx", companyID, year, month)
	httputil.Attachment(w, export.ContentType, filename, buf.Bytes())
}

// LaborLawResponse describes the labor-law parameters in force
type LaborLawResponse struct {
	LaborLaw         domain.LaborLawVersion `json:"labor_law"`
	UsingBuiltInLaws bool                   `json:"using_built_in_defaults"`
}

// LaborLaw returns the labor-law version a calculation would use right now
func (h *SalaryHandler) LaborLaw(w http.ResponseWriter, r *http.Request) {
	law, fallback := h.service.LaborLaw(r.Context())
	httputil.JSON(w, http.StatusOK, LaborLawResponse{LaborLaw: law, UsingBuiltInLaws: fallback})
}

func periodQuery(r *http.Request, companyID string) (string, int, int, error) {
	q := r.URL.Query()

	if companyID == "" {
		return "", 0, 0, errors.BadRequest("company_id is required")
	}

	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		return "", 0, 0, errors.BadRequest("year must be a number")
	}
	month, err := strconv.Atoi(q.Get("month"))
	if err != nil {
		return "", 0, 0, errors.BadRequest("month must be a number")
	}

	return companyID, year, month, nil
}
