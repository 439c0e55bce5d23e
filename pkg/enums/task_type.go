package enums

import "fmt"

// TaskType names a background job handled by the worker.
type TaskType string

const (
	TaskTypeSendEmail       TaskType = "send_email"
	TaskTypeHeavyProcessing TaskType = "heavy_processing"
)

var validTaskTypes = []TaskType{
	TaskTypeSendEmail,
	TaskTypeHeavyProcessing,
}

// String implements fmt.Stringer.
func (t TaskType) String() string {
	return string(t)
}

// IsValid reports whether the value is known.
func (t TaskType) IsValid() bool {
	for _, candidate := range validTaskTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTaskType converts raw input into a TaskType.
func ParseTaskType(value string) (TaskType, error) {
	for _, candidate := range validTaskTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid task type %q", value)
}
