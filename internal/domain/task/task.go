// Package task defines what the work queue can carry.
package task

import (
	"encoding/json"
	"fmt"
)

// Task is a queue payload tagged with the handler it is meant for
type Task interface {
	TaskType() string
	TaskValue() ([]byte, error)
}

// Encode is the TaskValue of every JSON-serializable task
func Encode(t Task) ([]byte, error) {
	return json.Marshal(t)
}

// Decode restores a task stored under taskType and rejects a body whose own
// type disagrees with the tag it was queued under
func Decode[T Task](taskType string, data []byte) (T, error) {
	var t T
	if err := json.Unmarshal(data, &t); err != nil {
		return t, err
	}
	if got := t.TaskType(); got != taskType {
		return t, fmt.Errorf("task type %q does not match body type %q", taskType, got)
	}
	return t, nil
}
