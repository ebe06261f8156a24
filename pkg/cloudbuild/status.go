package cloudbuild

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// Status is the lifecycle state of a build
type Status int

const (
	// StatusUnknown is used for absent or unrecognized status strings
	StatusUnknown Status = iota
	Pending
	Queued
	Working
	Success
	Failure
	InternalError
	Timeout
	Cancelled
	Expired
)

func (s Status) String() string {
	return toString[s]
}

// StatusFromString parses a configured status name, case insensitively
func StatusFromString(statusString string) (Status, error) {
	if status, ok := toID[strings.ToUpper(strings.TrimSpace(statusString))]; ok {
		return status, nil
	}
	return StatusUnknown, errors.Errorf("unknown build status: %s", statusString)
}

// ParseStatuses parses a list of status names, failing on the first unknown one
func ParseStatuses(statusStrings []string) ([]Status, error) {
	var statuses []Status
	for _, s := range statusStrings {
		status, err := StatusFromString(s)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

var toString = map[Status]string{
	StatusUnknown: "STATUS_UNKNOWN",
	Pending:       "PENDING",
	Queued:        "QUEUED",
	Working:       "WORKING",
	Success:       "SUCCESS",
	Failure:       "FAILURE",
	InternalError: "INTERNAL_ERROR",
	Timeout:       "TIMEOUT",
	Cancelled:     "CANCELLED",
	Expired:       "EXPIRED",
}

var toID = map[string]Status{
	"STATUS_UNKNOWN": StatusUnknown,
	"PENDING":        Pending,
	"QUEUED":         Queued,
	"WORKING":        Working,
	"SUCCESS":        Success,
	"FAILURE":        Failure,
	"INTERNAL_ERROR": InternalError,
	"TIMEOUT":        Timeout,
	"CANCELLED":      Cancelled,
	"EXPIRED":        Expired,
}

// TerminalStatuses are the states after which a build no longer changes
func TerminalStatuses() []Status {
	return []Status{Success, Failure, InternalError, Timeout, Cancelled}
}

// MarshalJSON marshals the enum as a quoted json string
func (s Status) MarshalJSON() ([]byte, error) {
	buffer := bytes.NewBufferString(`"`)
	buffer.WriteString(toString[s])
	buffer.WriteString(`"`)
	return buffer.Bytes(), nil
}

// UnmarshalJSON unmarshalls a quoted json string to the enum value.
// Unrecognized strings and non-string values become StatusUnknown, they are filtered out later.
func (s *Status) UnmarshalJSON(b []byte) error {
	var j string
	if err := json.Unmarshal(b, &j); err != nil {
		*s = StatusUnknown
		return nil
	}
	*s = toID[j]
	return nil
}

// MarshalYAML marshals the enum as a quoted yaml string
func (s Status) MarshalYAML() (interface{}, error) {
	return toString[s], nil
}

// UnmarshalText parses configuration values, unlike UnmarshalJSON it rejects unknown names
func (s *Status) UnmarshalText(text []byte) error {
	status, err := StatusFromString(string(text))
	if err != nil {
		return err
	}
	*s = status
	return nil
}
