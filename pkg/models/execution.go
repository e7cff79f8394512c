package models

// ExecutionStatus is the overall state of a pipeline run.
type ExecutionStatus string

const (
	ExecSuccess ExecutionStatus = "SUCCESS"
	ExecFailure ExecutionStatus = "FAILURE"
	ExecRunning ExecutionStatus = "RUNNING"
)

// StepStatus is the state of one step inside a run.
type StepStatus string

const (
	StepCompleted StepStatus = "COMPLETED"
	StepFailed    StepStatus = "FAILED"
	StepPending   StepStatus = "PENDING"
)

// ExecutionStep is one stage of a pipeline run. PayloadOut must pass
// through the secret policy before display.
type ExecutionStep struct {
	Name       string         `json:"name"`
	Status     StepStatus     `json:"status"`
	Timestamp  string         `json:"timestamp"`
	PayloadIn  map[string]any `json:"payloadIn,omitempty"`
	PayloadOut map[string]any `json:"payloadOut,omitempty"`
}

// ExecutionLog is the record of one pipeline run, optionally scoped to a
// tenant.
type ExecutionLog struct {
	ID        string           `json:"id"`
	TenantID  string           `json:"tenantId,omitempty"`
	SessionID string           `json:"sessionId"`
	Timestamp string           `json:"timestamp"`
	Duration  string           `json:"duration"`
	Status    ExecutionStatus  `json:"status"`
	Steps     []*ExecutionStep `json:"steps"`
}
