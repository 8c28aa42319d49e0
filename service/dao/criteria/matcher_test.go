package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/budgetflow/model"
	"github.com/viant/budgetflow/service/dao"
)

func TestMatchRequest(t *testing.T) {
	request := &model.ExecutionRequest{Status: model.RequestPending, ProjectID: "p1", LineItemID: "l1"}

	type testCase struct {
		name       string
		parameters []*dao.Parameter
		expected   bool
	}

	tests := []testCase{
		{name: "no parameters", expected: true},
		{name: "status match", parameters: []*dao.Parameter{dao.NewParameter(dao.ParamStatus, "PENDING")}, expected: true},
		{name: "status any of", parameters: []*dao.Parameter{dao.NewParameter(dao.ParamStatus, "APPROVED", "PENDING")}, expected: true},
		{name: "status mismatch", parameters: []*dao.Parameter{dao.NewParameter(dao.ParamStatus, "REJECTED")}, expected: false},
		{name: "project and line item", parameters: []*dao.Parameter{
			dao.NewParameter(dao.ParamProjectID, "p1"),
			dao.NewParameter(dao.ParamLineItemID, "l1"),
		}, expected: true},
		{name: "line item mismatch", parameters: []*dao.Parameter{
			dao.NewParameter(dao.ParamProjectID, "p1"),
			dao.NewParameter(dao.ParamLineItemID, "l2"),
		}, expected: false},
		{name: "unknown parameter", parameters: []*dao.Parameter{dao.NewParameter("Owner", "x")}, expected: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, MatchRequest(request, tc.parameters))
		})
	}
}
