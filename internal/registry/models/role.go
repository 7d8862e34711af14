package models

import (
	"encoding/json"
	"strings"

	dErrors "landregistry/pkg/domain-errors"
)

// Role is an ordinal privilege level. Checks use "at least" comparison, so a
// higher role satisfies every check for a lower one: a NOTARY grant passes
// REGISTRAR checks.
type Role uint8

const (
	RoleNone Role = iota
	RoleRegistrar
	RoleNotary
)

var roleNames = map[Role]string{
	RoleNone:      "none",
	RoleRegistrar: "registrar",
	RoleNotary:    "notary",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

// Satisfies reports whether r is at least required.
func (r Role) Satisfies(required Role) bool {
	return r >= required
}

// ParseRole accepts the role name case-insensitively.
func ParseRole(s string) (Role, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for role, name := range roleNames {
		if name == s {
			return role, nil
		}
	}
	return RoleNone, dErrors.New(dErrors.CodeBadRequest, "unknown role: "+s)
}

func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
