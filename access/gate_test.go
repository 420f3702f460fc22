package access

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linesmerrill/court-docket-api/models"
)

func TestGate_Authorize(t *testing.T) {
	tests := []struct {
		role    models.Role
		op      Operation
		allowed bool
	}{
		{models.RoleRegistrar, OpCreateCase, true},
		{models.RoleRegistrar, OpResolveCase, true},
		{models.RoleRegistrar, OpUpdateCase, true},
		{models.RoleRegistrar, OpManageAccounts, true},
		{models.RoleRegistrar, OpClearBilling, true},
		{models.RoleRegistrar, OpHearingOccupancy, true},
		{models.RoleRegistrar, OpQueryCases, true},
		{models.RoleRegistrar, OpLawyerBilledRead, false},
		{models.RoleJudge, OpQueryCases, true},
		{models.RoleJudge, OpCreateCase, false},
		{models.RoleJudge, OpResolveCase, false},
		{models.RoleJudge, OpClearBilling, false},
		{models.RoleJudge, OpHearingOccupancy, false},
		{models.RoleLawyer, OpQueryCases, true},
		{models.RoleLawyer, OpLawyerBilledRead, true},
		{models.RoleLawyer, OpLawyerViewBills, true},
		{models.RoleLawyer, OpUpdateCase, false},
		{models.RoleLawyer, OpManageAccounts, false},
		{models.Role("CLERK"), OpQueryCases, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.op), func(t *testing.T) {
			err := Gate{}.Authorize(Principal{ID: "p1", Role: tt.role}, tt.op)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, models.ErrForbidden))
			}
		})
	}
}

func TestGate_AuthorizeRequiresPrincipalID(t *testing.T) {
	err := Gate{}.Authorize(Principal{Role: models.RoleRegistrar}, OpCreateCase)
	assert.True(t, errors.Is(err, models.ErrForbidden))
}
