package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/linesmerrill/court-docket-api/accounts"
	"github.com/linesmerrill/court-docket-api/api"
	"github.com/linesmerrill/court-docket-api/models"
)

// AccountRequest is the body of a lawyer or judge creation
type AccountRequest struct {
	Name          string `json:"name" validate:"required"`
	UserName      string `json:"userName" validate:"required"`
	Password      string `json:"password" validate:"required,min=8"`
	Email         string `json:"email" validate:"required,email"`
	ContactNumber string `json:"contactNumber" validate:"required,numeric,len=10"`
}

// CreateLawyerHandler creates a lawyer account
func (c Court) CreateLawyerHandler(w http.ResponseWriter, r *http.Request) {
	c.createAccount(w, r, models.RoleLawyer, "Lawyer created successfully")
}

// CreateJudgeHandler creates a judge account
func (c Court) CreateJudgeHandler(w http.ResponseWriter, r *http.Request) {
	c.createAccount(w, r, models.RoleJudge, "Judge created successfully")
}

// DeleteLawyerHandler deletes a lawyer account by user name
func (c Court) DeleteLawyerHandler(w http.ResponseWriter, r *http.Request) {
	c.deleteAccount(w, r, models.RoleLawyer, "Lawyer deleted successfully")
}

// DeleteJudgeHandler deletes a judge account by user name
func (c Court) DeleteJudgeHandler(w http.ResponseWriter, r *http.Request) {
	c.deleteAccount(w, r, models.RoleJudge, "Judge deleted successfully")
}

func (c Court) createAccount(w http.ResponseWriter, r *http.Request, role models.Role, message string) {
	var req AccountRequest
	if err := decodeBody(r, &req); err != nil {
		c.writeError(w, "Incorrect Data", err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	u, err := c.Service.CreateAccount(ctx, api.PrincipalFrom(r.Context()), role, accounts.NewAccount{
		Name:          req.Name,
		UserName:      req.UserName,
		Email:         req.Email,
		ContactNumber: req.ContactNumber,
		Password:      req.Password,
	})
	if err != nil {
		c.writeError(w, "failed to create account", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"message": message, "user": u})
}

func (c Court) deleteAccount(w http.ResponseWriter, r *http.Request, role models.Role, message string) {
	userName := mux.Vars(r)["userName"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	u, err := c.Service.DeleteAccount(ctx, api.PrincipalFrom(r.Context()), role, userName)
	if err != nil {
		c.writeError(w, "failed to delete account", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": message, "user": u})
}
