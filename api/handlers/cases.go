package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/linesmerrill/court-docket-api/api"
	"github.com/linesmerrill/court-docket-api/court"
	"github.com/linesmerrill/court-docket-api/models"
)

// Court exported for testing purposes
type Court struct {
	Service *court.Service
	Metrics *api.Metrics
}

// CaseRequest is the body of a case creation
type CaseRequest struct {
	DefendantName    string `json:"defendantName" validate:"required"`
	DefendantAddress string `json:"defendantAddress" validate:"required"`
	CrimeType        string `json:"crimeType" validate:"required"`
	CrimeDate        Date   `json:"crimeDate" validate:"required"`
	CrimeLocation    string `json:"crimeLocation" validate:"required"`
	ArrestingOfficer string `json:"arrestingOfficer" validate:"required"`
	ArrestDate       Date   `json:"arrestDate" validate:"required"`
	HearingDate      Date   `json:"hearingDate" validate:"required"`
}

// CaseUpdateRequest is the body of a case update. RESOLVED closes the case,
// PENDING records the summary and optionally the next hearing.
type CaseUpdateRequest struct {
	Summary         string            `json:"summary" validate:"required"`
	Status          models.CaseStatus `json:"status" validate:"required,oneof=PENDING RESOLVED"`
	NextHearingDate *Date             `json:"nextHearingDate,omitempty"`
}

// CaseResponse wraps a single case
type CaseResponse struct {
	Message string       `json:"message,omitempty"`
	Case    *models.Case `json:"case"`
}

// CasesResponse wraps a case listing
type CasesResponse struct {
	Cases []models.Case `json:"cases"`
}

// CreateCaseHandler files a new case with its first hearing
func (c Court) CreateCaseHandler(w http.ResponseWriter, r *http.Request) {
	var req CaseRequest
	if err := decodeBody(r, &req); err != nil {
		c.writeError(w, "Incorrect Data", err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	created, err := c.Service.CreateCase(ctx, api.PrincipalFrom(r.Context()), models.CaseDetails{
		DefendantName:    req.DefendantName,
		DefendantAddress: req.DefendantAddress,
		CrimeType:        req.CrimeType,
		CrimeDate:        req.CrimeDate.Time,
		CrimeLocation:    req.CrimeLocation,
		ArrestingOfficer: req.ArrestingOfficer,
		ArrestDate:       req.ArrestDate.Time,
	}, req.HearingDate.Time)
	if err != nil {
		c.writeError(w, "failed to create case", err)
		return
	}
	writeJSON(w, http.StatusCreated, CaseResponse{Message: "Case registered successfully", Case: created})
}

// UpdateCaseHandler records a hearing outcome
func (c Court) UpdateCaseHandler(w http.ResponseWriter, r *http.Request) {
	cin := mux.Vars(r)["cin"]
	var req CaseUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		c.writeError(w, "Incorrect Data", err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	p := api.PrincipalFrom(r.Context())
	var updated *models.Case
	var err error
	if req.Status == models.CaseStatusResolved {
		updated, err = c.Service.ResolveCase(ctx, p, cin, req.Summary)
	} else {
		updated, err = c.Service.UpdateStillPendingCase(ctx, p, cin, req.Summary, req.NextHearingDate.Ptr())
	}
	if err != nil {
		c.writeError(w, "failed to update case", err)
		return
	}
	writeJSON(w, http.StatusOK, CaseResponse{Message: "Case updated successfully", Case: updated})
}

// PendingCasesHandler lists pending cases, optionally started on ?date=
func (c Court) PendingCasesHandler(w http.ResponseWriter, r *http.Request) {
	window, err := dayWindow(r)
	if err != nil {
		c.writeError(w, "Incorrect Data", err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	cases, err := c.Service.ListPending(ctx, api.PrincipalFrom(r.Context()), window)
	if err != nil {
		c.writeError(w, "failed to list pending cases", err)
		return
	}
	writeJSON(w, http.StatusOK, CasesResponse{Cases: cases})
}

// ResolvedCasesHandler lists resolved cases, optionally completed on ?date=.
// Lawyers are billed for every case returned.
func (c Court) ResolvedCasesHandler(w http.ResponseWriter, r *http.Request) {
	window, err := dayWindow(r)
	if err != nil {
		c.writeError(w, "Incorrect Data", err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	cases, err := c.Service.ListResolved(ctx, api.PrincipalFrom(r.Context()), window)
	if err != nil {
		c.writeError(w, "failed to list resolved cases", err)
		return
	}
	writeJSON(w, http.StatusOK, CasesResponse{Cases: cases})
}

// CaseQueryHandler returns one case by CIN. Lawyers are billed once per case
// until their balance is cleared.
func (c Court) CaseQueryHandler(w http.ResponseWriter, r *http.Request) {
	cin := mux.Vars(r)["cin"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	found, err := c.Service.GetCase(ctx, api.PrincipalFrom(r.Context()), cin)
	if err != nil {
		c.writeError(w, "failed to get case", err)
		return
	}
	writeJSON(w, http.StatusOK, CaseResponse{Case: found})
}

// HearingDatesHandler reports which days of ?month=&year= have a hearing
func (c Court) HearingDatesHandler(w http.ResponseWriter, r *http.Request) {
	month, err := queryInt(r, "month")
	if err != nil {
		c.writeError(w, "Month and year are required", err)
		return
	}
	year, err := queryInt(r, "year")
	if err != nil {
		c.writeError(w, "Month and year are required", err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dates, err := c.Service.HearingAvailability(ctx, api.PrincipalFrom(r.Context()), time.Month(month), year)
	if err != nil {
		c.writeError(w, "failed to get hearing dates", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"dates": dates})
}
