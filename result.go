package qgate

import "sort"

// Outcome is one shot's readout register, one character per bit.
type Outcome string

// Histogram counts how often each outcome occurred.
type Histogram map[string]int

// Total is the number of shots the histogram was built from.
func (h Histogram) Total() int {
	total := 0
	for _, n := range h {
		total += n
	}

	return total
}

// Keys returns the outcomes present, sorted.
func (h Histogram) Keys() []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

/*
ExecutionResult is the normalised result of one execute call. It has the
same shape whichever executor produced the outcomes.
*/
type ExecutionResult struct {
	Histogram   Histogram `json:"histogram"`
	Expectation float64   `json:"expectation"`
}

/*
Aggregate builds the histogram for a run and the fraction of shots that read
"1". An empty outcome list is an error rather than a NaN expectation.
*/
func Aggregate(outcomes []Outcome) (ExecutionResult, error) {
	if len(outcomes) == 0 {
		return ExecutionResult{}, newError(ErrEmptyResult, "no outcomes to aggregate")
	}

	hist := make(Histogram)
	for _, o := range outcomes {
		hist[string(o)]++
	}

	return ExecutionResult{
		Histogram:   hist,
		Expectation: float64(hist["1"]) / float64(hist.Total()),
	}, nil
}
