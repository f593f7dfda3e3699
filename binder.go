package qgate

// Bindings maps symbolic parameter names to numeric values.
type Bindings map[string]float64

/*
Bind pairs parameter names with values by position. It never binds partially:
a length mismatch or a repeated name fails the whole call.
*/
func Bind(params []string, values []float64) (Bindings, error) {
	if len(params) != len(values) {
		return nil, newError(ErrArityMismatch, "%d parameters, %d values", len(params), len(values))
	}

	bindings := make(Bindings, len(params))
	for i, name := range params {
		if _, ok := bindings[name]; ok {
			return nil, newError(ErrDuplicateParameter, "%s", name)
		}
		bindings[name] = values[i]
	}

	return bindings, nil
}
