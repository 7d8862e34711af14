package models

import (
	"encoding/json"
	"strings"

	dErrors "landregistry/pkg/domain-errors"
)

// Status is the lifecycle state of a property record.
type Status uint8

const (
	StatusActive Status = iota
	StatusPending
	StatusDisputed
	StatusFrozen
)

var statusNames = map[Status]string{
	StatusActive:   "active",
	StatusPending:  "pending",
	StatusDisputed: "disputed",
	StatusFrozen:   "frozen",
}

// statusTransitions lists the administrative moves UpdateStatus may apply.
// Transfer and audit never consult this table: transfer keeps the status and
// audit forces the result back to active.
var statusTransitions = map[Status][]Status{
	StatusActive:   {StatusPending, StatusDisputed, StatusFrozen},
	StatusPending:  {StatusActive, StatusDisputed},
	StatusDisputed: {StatusActive, StatusFrozen},
	StatusFrozen:   {StatusActive},
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

func (s Status) IsValid() bool {
	_, ok := statusNames[s]
	return ok
}

// Transferable reports whether ownership may change hands.
func (s Status) Transferable() bool {
	return s == StatusActive
}

// Auditable reports whether a valuation audit may run.
func (s Status) Auditable() bool {
	return s == StatusActive || s == StatusPending
}

// CanTransitionTo reports whether UpdateStatus may move s to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseStatus accepts the status name case-insensitively.
func ParseStatus(v string) (Status, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	for status, name := range statusNames {
		if name == v {
			return status, nil
		}
	}
	return StatusActive, dErrors.New(dErrors.CodeBadRequest, "unknown status: "+v)
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	parsed, err := ParseStatus(v)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
