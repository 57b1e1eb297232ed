package harness

// TraceEvent records one applied step.
type TraceEvent struct {
	// Step is the 1-based position in the scenario.
	Step int `json:"step"`

	Op   string `json:"op"`
	Page string `json:"page,omitempty"`

	// Node is the node the step acted on, or the id it created.
	Node string `json:"node,omitempty"`

	// Removed lists the ids a delete took away, root first.
	Removed []string `json:"removed,omitempty"`

	// Error is the error code the step failed with.
	Error string `json:"error,omitempty"`

	// Noop is set when undo or redo had nothing to do.
	Noop bool `json:"noop,omitempty"`

	// Pointer is the history pointer after the step.
	Pointer int `json:"pointer"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step behaved as expected and every assertion
	// held.
	Pass bool `json:"pass"`

	// Trace holds one event per executed step.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Refs maps aliases to the ids they were bound to.
	Refs map[string]string `json:"refs,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		Refs:   make(map[string]string),
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step event.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}
