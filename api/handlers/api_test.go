package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/linesmerrill/court-docket-api/api"
	"github.com/linesmerrill/court-docket-api/api/handlers"
	"github.com/linesmerrill/court-docket-api/config"
	"github.com/linesmerrill/court-docket-api/models"
)

const registrarID = "registrar-1"

func newApp(t *testing.T) *handlers.App {
	t.Helper()
	a := &handlers.App{Config: config.Config{StoreBackend: config.BackendMemory, Pepper: "pepper", RequestTimeout: 5 * time.Second}}
	require.NoError(t, a.Initialize())
	a.Service.Accounts.Cost = bcrypt.MinCost
	return a
}

func do(t *testing.T, a *handlers.App, method, path string, role models.Role, id string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if role != "" {
		req.Header.Set(api.PrincipalRoleHeader, string(role))
		req.Header.Set(api.PrincipalIDHeader, id)
	}
	rr := httptest.NewRecorder()
	a.Router.ServeHTTP(rr, req)
	return rr
}

func caseBody(hearing time.Time) handlers.CaseRequest {
	return handlers.CaseRequest{
		DefendantName:    "Tom Robinson",
		DefendantAddress: "Maycomb",
		CrimeType:        "assault",
		CrimeDate:        handlers.Date{Time: time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)},
		CrimeLocation:    "Maycomb",
		ArrestingOfficer: "Heck Tate",
		ArrestDate:       handlers.Date{Time: time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC)},
		HearingDate:      handlers.Date{Time: hearing},
	}
}

func fileCase(t *testing.T, a *handlers.App, hearing time.Time) models.Case {
	t.Helper()
	rr := do(t, a, "POST", "/api/registrar/case-creation", models.RoleRegistrar, registrarID, caseBody(hearing))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var resp handlers.CaseResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return *resp.Case
}

func createLawyer(t *testing.T, a *handlers.App, userName string) string {
	t.Helper()
	rr := do(t, a, "POST", "/api/registrar/create-lawyer", models.RoleRegistrar, registrarID, handlers.AccountRequest{
		Name:          "Atticus Finch",
		UserName:      userName,
		Password:      "mockingbird",
		Email:         userName + "@example.com",
		ContactNumber: "5551234567",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var resp struct {
		User models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.User.ID.Hex()
}

func TestApp_InitializeUnknownBackend(t *testing.T) {
	a := &handlers.App{Config: config.Config{StoreBackend: "sqlite"}}
	assert.Error(t, a.Initialize())
}

func TestApp_Unauthorized(t *testing.T) {
	a := newApp(t)
	rr := do(t, a, "GET", "/api/judge/cases/pending", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestApp_RouteRoleMismatch(t *testing.T) {
	a := newApp(t)
	rr := do(t, a, "POST", "/api/registrar/case-creation", models.RoleJudge, "judge-1", caseBody(time.Now()))
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestCourt_CreateCaseHandler(t *testing.T) {
	a := newApp(t)
	hearing := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)

	c := fileCase(t, a, hearing)
	assert.NotEmpty(t, c.Details.CIN)
	assert.Equal(t, models.CaseStatusPending, c.Details.Status)
	require.Len(t, c.Hearings, 1)

	rr := do(t, a, "POST", "/api/registrar/case-creation", models.RoleRegistrar, registrarID, caseBody(hearing))
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, float64(1), testutil.ToFloat64(a.Metrics.HearingConflicts))

	rr = do(t, a, "POST", "/api/registrar/case-creation", models.RoleRegistrar, registrarID, map[string]string{"defendantName": "x"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCourt_UpdateCaseHandler(t *testing.T) {
	a := newApp(t)
	c := fileCase(t, a, time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC))
	next := time.Date(2024, time.March, 8, 10, 0, 0, 0, time.UTC)
	path := "/api/registrar/case-updation/" + c.Details.CIN

	rr := do(t, a, "PUT", path, models.RoleRegistrar, registrarID, handlers.CaseUpdateRequest{
		Summary: "adjourned", Status: models.CaseStatusPending, NextHearingDate: &handlers.Date{Time: next},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp handlers.CaseResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Len(t, resp.Case.Hearings, 2)

	rr = do(t, a, "PUT", path, models.RoleRegistrar, registrarID, handlers.CaseUpdateRequest{Summary: "guilty", Status: models.CaseStatusResolved})
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, models.CaseStatusResolved, resp.Case.Details.Status)
	assert.NotNil(t, resp.Case.Details.CompletionDate)

	rr = do(t, a, "PUT", path, models.RoleRegistrar, registrarID, handlers.CaseUpdateRequest{Summary: "again", Status: models.CaseStatusResolved})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = do(t, a, "PUT", "/api/registrar/case-updation/missing", models.RoleRegistrar, registrarID, handlers.CaseUpdateRequest{Summary: "x", Status: models.CaseStatusPending})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, a, "PUT", path, models.RoleRegistrar, registrarID, map[string]string{"summary": "x", "status": "CLOSED"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCourt_JudgeQueries(t *testing.T) {
	a := newApp(t)
	c := fileCase(t, a, time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC))

	rr := do(t, a, "GET", "/api/judge/cases/pending", models.RoleJudge, "judge-1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list handlers.CasesResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Len(t, list.Cases, 1)

	rr = do(t, a, "GET", "/api/judge/cases/resolved", models.RoleJudge, "judge-1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Empty(t, list.Cases)

	rr = do(t, a, "GET", "/api/judge/case-query/"+c.Details.CIN, models.RoleJudge, "judge-1", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, a, "GET", "/api/judge/cases/pending?date=yesterday", models.RoleJudge, "judge-1", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, a, "GET", "/api/judge/cases/pending?date=1999-01-01", models.RoleJudge, "judge-1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Empty(t, list.Cases)
}

func TestCourt_HearingDatesHandler(t *testing.T) {
	a := newApp(t)
	fileCase(t, a, time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC))

	rr := do(t, a, "GET", "/api/registrar/hearing-dates?month=3&year=2024", models.RoleRegistrar, registrarID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Dates []models.HearingAvailability `json:"dates"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Dates, 31)
	assert.True(t, resp.Dates[14].Occupied)
	assert.False(t, resp.Dates[15].Occupied)

	rr = do(t, a, "GET", "/api/registrar/hearing-dates?year=2024", models.RoleRegistrar, registrarID, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCourt_AccountHandlers(t *testing.T) {
	a := newApp(t)
	createLawyer(t, a, "atticus")

	rr := do(t, a, "POST", "/api/registrar/create-lawyer", models.RoleRegistrar, registrarID, handlers.AccountRequest{
		Name: "Atticus Finch", UserName: "atticus", Password: "mockingbird", Email: "a@example.com", ContactNumber: "5551234567",
	})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = do(t, a, "POST", "/api/registrar/create-judge", models.RoleRegistrar, registrarID, handlers.AccountRequest{
		Name: "Judge Taylor", UserName: "taylor", Password: "short", Email: "t@example.com", ContactNumber: "5551234567",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, a, "DELETE", "/api/registrar/delete-judge/atticus", models.RoleRegistrar, registrarID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, a, "DELETE", "/api/registrar/delete-lawyer/atticus", models.RoleRegistrar, registrarID, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "password")
}

func TestCourt_LawyerBillingFlow(t *testing.T) {
	a := newApp(t)
	lawyerID := createLawyer(t, a, "atticus")

	var first models.Case
	for day := 1; day <= 10; day++ {
		c := fileCase(t, a, time.Date(2024, time.April, day, 10, 0, 0, 0, time.UTC))
		if day == 1 {
			first = c
		}
		rr := do(t, a, "PUT", "/api/registrar/case-updation/"+c.Details.CIN, models.RoleRegistrar, registrarID,
			handlers.CaseUpdateRequest{Summary: "dismissed", Status: models.CaseStatusResolved})
		require.Equal(t, http.StatusOK, rr.Code)
	}

	rr := do(t, a, "GET", "/api/lawyer/cases/"+first.Details.CIN, models.RoleLawyer, lawyerID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = do(t, a, "GET", "/api/lawyer/cases/"+first.Details.CIN, models.RoleLawyer, lawyerID, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, a, "GET", "/api/lawyer/bill", models.RoleLawyer, lawyerID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var bills map[string][]json.RawMessage
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &bills))
	assert.Len(t, bills["bills"], 1)

	// 10.00 owed, the listing of ten resolved cases takes it to 110.00
	rr = do(t, a, "GET", "/api/lawyer/cases/resolved", models.RoleLawyer, lawyerID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list handlers.CasesResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Len(t, list.Cases, 10)
	assert.Equal(t, float64(10), testutil.ToFloat64(a.Metrics.Charges.WithLabelValues("LISTING")))
	assert.Equal(t, float64(1), testutil.ToFloat64(a.Metrics.Charges.WithLabelValues("VIEW")))

	rr = do(t, a, "GET", "/api/lawyer/gate", models.RoleLawyer, lawyerID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var gate handlers.GateResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &gate))
	assert.False(t, gate.Allowed)
	assert.Equal(t, "110.00", gate.Outstanding)
	assert.Equal(t, "/bill", gate.Redirect)

	rr = do(t, a, "GET", "/api/lawyer/cases/"+first.Details.CIN, models.RoleLawyer, lawyerID, nil)
	require.Equal(t, http.StatusForbidden, rr.Code)
	var blocked handlers.BlockedResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &blocked))
	assert.Equal(t, "/bill", blocked.Redirect)
	assert.Equal(t, float64(1), testutil.ToFloat64(a.Metrics.GateBlocks))

	rr = do(t, a, "POST", "/api/registrar/clear-bill/atticus", models.RoleRegistrar, registrarID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), fmt.Sprintf(`"updatedCount":%d`, 11))

	rr = do(t, a, "GET", "/api/lawyer/gate", models.RoleLawyer, lawyerID, nil)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &gate))
	assert.True(t, gate.Allowed)
	assert.Equal(t, "0.00", gate.Outstanding)
}

func TestCourt_UnknownLawyer(t *testing.T) {
	a := newApp(t)
	rr := do(t, a, "GET", "/api/lawyer/bill", models.RoleLawyer, "000000000000000000000000", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCourt_CreateCaseDateOnly(t *testing.T) {
	a := newApp(t)
	body := map[string]string{
		"defendantName":    "Tom Robinson",
		"defendantAddress": "Maycomb",
		"crimeType":        "assault",
		"crimeDate":        "2024-01-02",
		"crimeLocation":    "Maycomb",
		"arrestingOfficer": "Heck Tate",
		"arrestDate":       "2024-01-03",
		"hearingDate":      "2024-03-01",
	}

	rr := do(t, a, "POST", "/api/registrar/case-creation", models.RoleRegistrar, registrarID, body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var resp handlers.CaseResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Case.Hearings, 1)
	assert.True(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC).Equal(resp.Case.Hearings[0].HearingDate))
	assert.True(t, time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC).Equal(resp.Case.Details.CrimeDate))

	rr = do(t, a, "POST", "/api/registrar/case-creation", models.RoleRegistrar, registrarID, body)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = do(t, a, "PUT", "/api/registrar/case-updation/"+resp.Case.Details.CIN, models.RoleRegistrar, registrarID,
		map[string]string{"summary": "adjourned", "status": "PENDING", "nextHearingDate": "2024-03-08"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Len(t, resp.Case.Hearings, 2)

	body["hearingDate"] = "03/01/2024"
	rr = do(t, a, "POST", "/api/registrar/case-creation", models.RoleRegistrar, registrarID, body)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	delete(body, "hearingDate")
	rr = do(t, a, "POST", "/api/registrar/case-creation", models.RoleRegistrar, registrarID, body)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDate_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    time.Time
		wantErr bool
	}{
		{name: "date only", raw: `"2024-03-01"`, want: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)},
		{name: "rfc3339", raw: `"2024-03-01T10:30:00+02:00"`, want: time.Date(2024, time.March, 1, 8, 30, 0, 0, time.UTC)},
		{name: "no zone", raw: `"2024-03-01T10:30:00"`, want: time.Date(2024, time.March, 1, 10, 30, 0, 0, time.UTC)},
		{name: "null", raw: `null`},
		{name: "slashes", raw: `"03/01/2024"`, wantErr: true},
		{name: "number", raw: `1709251200`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d handlers.Date
			err := json.Unmarshal([]byte(tt.raw), &d)
			if tt.wantErr {
				assert.True(t, errors.Is(err, models.ErrValidation))
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(d.Time), "got %s", d.Time)
		})
	}
}
