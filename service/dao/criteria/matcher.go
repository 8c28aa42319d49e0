package criteria

import (
	"github.com/viant/budgetflow/model"
	"github.com/viant/budgetflow/service/dao"
)

// MatchRequest reports whether request satisfies every parameter.  Unknown
// parameter names never match.
func MatchRequest(request *model.ExecutionRequest, parameters []*dao.Parameter) bool {
	for _, parameter := range parameters {
		var actual string
		switch parameter.Name {
		case dao.ParamStatus:
			actual = string(request.Status)
		case dao.ParamProjectID:
			actual = request.ProjectID
		case dao.ParamLineItemID:
			actual = request.LineItemID
		default:
			return false
		}
		if !matchValue(actual, parameter.Value) {
			return false
		}
	}
	return true
}

func matchValue(actual string, expected interface{}) bool {
	switch value := expected.(type) {
	case string:
		return actual == value
	case []string:
		for _, candidate := range value {
			if actual == candidate {
				return true
			}
		}
		return false
	}
	return false
}
