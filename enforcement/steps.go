package enforcement

type StepName string

const (
	StepDeleteMessage     StepName = "delete_message"
	StepAuditNotice       StepName = "audit_notice"
	StepAddQuarantineRole StepName = "add_quarantine_role"
	StepEnterQuarantine   StepName = "enter_quarantine"
	StepDirectNotice      StepName = "direct_notice"
)

type StepStatus string

const (
	StepSucceeded StepStatus = "succeeded"
	StepFailed    StepStatus = "failed"
	StepSkipped   StepStatus = "skipped"
)

// StepResult is the outcome of one enforcement step. A failed step never
// prevents the following ones from running.
type StepResult struct {
	Step   StepName
	Status StepStatus
	Err    error
}

// EnforcementReport describes one enforcement sequence run for a message.
type EnforcementReport struct {
	Message *Message
	Match   PatternMatch
	Steps   []StepResult
}

// Step returns the result recorded for name.
func (r *EnforcementReport) Step(name StepName) (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Step == name {
			return s, true
		}
	}
	return StepResult{}, false
}

// Failed returns the steps that did not succeed because of an error.
func (r *EnforcementReport) Failed() []StepResult {
	var failed []StepResult
	for _, s := range r.Steps {
		if s.Status == StepFailed {
			failed = append(failed, s)
		}
	}
	return failed
}

func (r *EnforcementReport) record(name StepName, status StepStatus, err error) {
	r.Steps = append(r.Steps, StepResult{Step: name, Status: status, Err: err})
}
