package harness

// Outcome records what one record/operator request produced.
type Outcome struct {
	Record   string `json:"record"`
	Operator string `json:"operator"`
	Key      string `json:"key,omitempty"`
	Rendered string `json:"rendered,omitempty"`
	Cached   bool   `json:"cached"`

	// Error holds the expansion failure, if any.
	Error string `json:"error,omitempty"`
	// Reason is the shape error reason when Error came from one.
	Reason string `json:"reason,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when the replay matched and every assertion held.
	Pass bool `json:"pass"`

	// Outcomes follow request order: declaration order, then derive order.
	Outcomes []Outcome `json:"outcomes"`

	// Output is the generated file for every successful expansion.
	Output string `json:"output"`

	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Outcomes: []Outcome{},
		Errors:   []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Find returns the outcome for a record/operator pair.
func (r *Result) Find(record, operator string) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Record == record && o.Operator == operator {
			return o, true
		}
	}
	return Outcome{}, false
}

// Expanded counts the outcomes that produced an implementation.
func (r *Result) Expanded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Error == "" {
			n++
		}
	}
	return n
}
