// Package access decides which operations a principal's role may invoke.
package access

import (
	"fmt"

	"github.com/linesmerrill/court-docket-api/models"
)

// Principal is the caller identity resolved once per request upstream
type Principal struct {
	ID   string
	Role models.Role
}

// Operation names a core entry point
type Operation string

// Operations
const (
	OpCreateCase       Operation = "case.create"
	OpResolveCase      Operation = "case.resolve"
	OpUpdateCase       Operation = "case.update"
	OpQueryCases       Operation = "case.query"
	OpHearingOccupancy Operation = "hearing.occupancy"
	OpManageAccounts   Operation = "account.manage"
	OpClearBilling     Operation = "billing.clear"
	OpLawyerBilledRead Operation = "billing.read"
	OpLawyerViewBills  Operation = "billing.list"
	OpLawyerGateStatus Operation = "billing.gate"
)

var permissions = map[models.Role]map[Operation]bool{
	models.RoleRegistrar: {
		OpCreateCase:       true,
		OpResolveCase:      true,
		OpUpdateCase:       true,
		OpQueryCases:       true,
		OpHearingOccupancy: true,
		OpManageAccounts:   true,
		OpClearBilling:     true,
	},
	models.RoleJudge: {
		OpQueryCases: true,
	},
	models.RoleLawyer: {
		OpQueryCases:       true,
		OpLawyerBilledRead: true,
		OpLawyerViewBills:  true,
		OpLawyerGateStatus: true,
	},
}

// Gate maps roles to the operations they may invoke
type Gate struct{}

// Authorize returns models.ErrForbidden unless p's role permits op
func (Gate) Authorize(p Principal, op Operation) error {
	if p.ID == "" || !permissions[p.Role][op] {
		return fmt.Errorf("%s may not %s: %w", p.Role, op, models.ErrForbidden)
	}
	return nil
}

// Allows reports whether role may invoke op
func (Gate) Allows(role models.Role, op Operation) bool {
	return permissions[role][op]
}
