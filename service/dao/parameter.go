package dao

// Parameter names understood by Reader.Requests.
const (
	ParamStatus     = "Status"
	ParamProjectID  = "ProjectID"
	ParamLineItemID = "LineItemID"
)

type Parameter struct {
	Name  string
	Value interface{}
}

func NewParameter(name string, values ...string) *Parameter {
	if len(values) == 1 {
		return &Parameter{Name: name, Value: values[0]}
	}
	return &Parameter{Name: name, Value: values}
}
