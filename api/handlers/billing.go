package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/linesmerrill/court-docket-api/api"
	"github.com/linesmerrill/court-docket-api/models"
)

// GateResponse reports whether the lawyer may make billable reads
type GateResponse struct {
	Allowed     bool   `json:"allowed"`
	Outstanding string `json:"outstanding"`
	Redirect    string `json:"redirect,omitempty"`
}

// ClearBillHandler writes off a lawyer's pending charges
func (c Court) ClearBillHandler(w http.ResponseWriter, r *http.Request) {
	userName := mux.Vars(r)["username"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	n, err := c.Service.ClearLawyerBillingByUserName(ctx, api.PrincipalFrom(r.Context()), userName)
	if err != nil {
		c.writeError(w, "failed to clear billing", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":      fmt.Sprintf("Billing cleared for lawyer %s", userName),
		"updatedCount": n,
	})
}

// BillHandler returns the calling lawyer's billing entries
func (c Court) BillHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	bills, err := c.Service.LawyerListBills(ctx, api.PrincipalFrom(r.Context()))
	if err != nil {
		c.writeError(w, "failed to get bills", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]models.BillingEntry{"bills": bills})
}

// GateHandler returns the calling lawyer's gate decision
func (c Court) GateHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	d, err := c.Service.LawyerCheckGate(ctx, api.PrincipalFrom(r.Context()))
	if err != nil {
		c.writeError(w, "failed to check billing gate", err)
		return
	}
	writeJSON(w, http.StatusOK, GateResponse{
		Allowed:     d.Allowed,
		Outstanding: d.Outstanding.StringFixed(2),
		Redirect:    d.RedirectHint,
	})
}
