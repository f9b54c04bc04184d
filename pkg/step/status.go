package step

// ExecutionStatus tracks whether a step has been carried out during an
// incident response run.
type ExecutionStatus string

// Execution statuses in lifecycle order.
const (
	ExecutionPending ExecutionStatus = "pending"
	ExecutionRunning ExecutionStatus = "running"
	ExecutionSuccess ExecutionStatus = "success"
	ExecutionFailed  ExecutionStatus = "failed"
	ExecutionSkipped ExecutionStatus = "skipped"
)

// Valid reports whether s is one of the known execution statuses.
func (s ExecutionStatus) Valid() bool {
	switch s {
	case ExecutionPending, ExecutionRunning, ExecutionSuccess, ExecutionFailed, ExecutionSkipped:
		return true
	}
	return false
}

// HealthStatus records the observed health of whatever a step inspects.
type HealthStatus string

// Health statuses from no signal to hard failure.
const (
	HealthUnknown  HealthStatus = "unknown"
	HealthHealthy  HealthStatus = "healthy"
	HealthWarning  HealthStatus = "warning"
	HealthCritical HealthStatus = "critical"
	HealthError    HealthStatus = "error"
)

// Valid reports whether h is one of the known health statuses.
func (h HealthStatus) Valid() bool {
	switch h {
	case HealthUnknown, HealthHealthy, HealthWarning, HealthCritical, HealthError:
		return true
	}
	return false
}
