package probe

// StepResult records the outcome of a single executed (or skipped) step.
type StepResult struct {
	// Name is the step name from the suite.
	Name string `json:"name"`

	// Method and Path identify the request that was (or would have been) sent.
	Method string `json:"method"`
	Path   string `json:"path"`

	// Pass indicates the step's expectation held.
	Pass bool `json:"pass"`

	// Skipped is true for steps after the first failure in fail-fast mode.
	// Skipped steps were never sent over the network.
	Skipped bool `json:"skipped,omitempty"`

	// Status is the HTTP status code, or 0 when no response was received.
	// Transport failures deliberately leave Status at 0 and Body empty;
	// the expectation then fails the same way an error response does.
	Status int `json:"status,omitempty"`

	// Body is the raw response body text, kept for diagnostics and echo.
	Body string `json:"body,omitempty"`

	// Detail explains a failure in expected/actual terms.
	Detail string `json:"detail,omitempty"`
}

// Result is the outcome of a suite run.
type Result struct {
	// Suite is the name of the suite that ran.
	Suite string `json:"suite"`

	// BaseURL is the resolved service root the run targeted.
	BaseURL string `json:"base_url"`

	// Pass indicates overall success: every executed step passed and
	// none were skipped.
	Pass bool `json:"pass"`

	// Steps holds one entry per suite step, in suite order.
	Steps []StepResult `json:"steps"`

	// Passed, Failed and Skipped are summary counts over Steps.
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// NewResult creates an empty passing result for a suite run.
func NewResult(suiteName, baseURL string) *Result {
	return &Result{
		Suite:   suiteName,
		BaseURL: baseURL,
		Pass:    true,
		Steps:   []StepResult{},
	}
}

// Add appends a step result and updates the summary counts.
func (r *Result) Add(sr StepResult) {
	r.Steps = append(r.Steps, sr)
	switch {
	case sr.Skipped:
		r.Skipped++
		r.Pass = false
	case sr.Pass:
		r.Passed++
	default:
		r.Failed++
		r.Pass = false
	}
}

// Total returns the number of steps in the run, skipped included.
func (r *Result) Total() int {
	return len(r.Steps)
}
