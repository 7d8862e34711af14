package models

// Administrator is a role grant. Records are never removed; re-granting with a
// lower role or Active=false revokes.
type Administrator struct {
	Principal Principal `json:"principal"`
	Role      Role      `json:"role"`
	Active    bool      `json:"active"`
}

// Satisfies reports whether the grant is active and at least required.
func (a *Administrator) Satisfies(required Role) bool {
	return a != nil && a.Active && a.Role.Satisfies(required)
}

// RegistryState holds the registry scalars.
type RegistryState struct {
	NextPropertyID  PropertyID `json:"next_property_id"`
	TotalProperties uint64     `json:"total_properties"`
	Paused          bool       `json:"paused"`
}

// InitialState is the state of an empty registry.
func InitialState() RegistryState {
	return RegistryState{NextPropertyID: 1}
}
