// Package docs Court Docket API.
//
// Documentation of the Court Docket API. Every /api route expects the
// X-Principal-ID and X-Principal-Role headers set by the gateway.
//
//     Schemes: https
//     BasePath: /
//     Version: 1.0.0
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
// swagger:meta
package docs

import (
	"github.com/linesmerrill/court-docket-api/api"
	"github.com/linesmerrill/court-docket-api/api/handlers"
	"github.com/linesmerrill/court-docket-api/models"
)

// swagger:route GET /health health healthEndpointID
// Lists the healthchex of the web service api.
// responses:
//   200: healthResponse

// Shows the current health of the api. true means it is alive, false means it is not.
// swagger:response healthResponse
type healthResponseWrapper struct {
	// in:body
	Body api.HealthCheckResponse
}

// swagger:route POST /api/registrar/case-creation cases createCase
// Files a new case with its first hearing.
// responses:
//   201: caseResponse
//   409: errorResponse

// swagger:parameters createCase
type createCaseParamsWrapper struct {
	// in:body
	Body handlers.CaseRequest
}

// swagger:route PUT /api/registrar/case-updation/{cin} cases updateCase
// Records a hearing outcome. RESOLVED closes the case.
// responses:
//   200: caseResponse
//   404: errorResponse
//   409: errorResponse

// swagger:parameters updateCase
type updateCaseParamsWrapper struct {
	// in:path
	CIN string `json:"cin"`
	// in:body
	Body handlers.CaseUpdateRequest
}

// swagger:route GET /api/lawyer/cases/{cin} cases lawyerCaseByCIN
// Gets a single case, billing the lawyer once until cleared.
// responses:
//   200: caseResponse
//   403: blockedResponse

// A single case with its hearings and summaries
// swagger:response caseResponse
type caseResponseWrapper struct {
	// in:body
	Body handlers.CaseResponse
}

// Returned when the lawyer owes at least the billing threshold
// swagger:response blockedResponse
type blockedResponseWrapper struct {
	// in:body
	Body handlers.BlockedResponse
}

// swagger:route GET /api/lawyer/gate billing lawyerGate
// Reports whether the lawyer may make billable reads.
// responses:
//   200: gateResponse

// swagger:response gateResponse
type gateResponseWrapper struct {
	// in:body
	Body handlers.GateResponse
}

// swagger:response errorResponse
type errorResponseWrapper struct {
	// in:body
	Body models.ErrorMessageResponse
}
