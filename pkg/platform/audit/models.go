package audit

import "time"

// EventCategory classifies audit events by their primary purpose so sinks can
// apply different retention.
type EventCategory string

const (
	// CategoryCompliance covers events with legal significance: every change
	// to ownership, valuation, status or administrator grants.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers denied operations and pause toggles.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity that can be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted by the registry service after an invocation commits or is
// denied. It is transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string
	Category  EventCategory
	Timestamp time.Time
	// Height is the logical timestamp of the invocation.
	Height    uint64
	Principal string
	// Subject is the entity acted on: a property id or an administrator.
	Subject   string
	Action    string
	Decision  string
	Reason    string
	RequestID string
}

type AuditEvent string

const (
	EventRegistryBootstrapped AuditEvent = "registry_bootstrapped"
	EventAdministratorGranted AuditEvent = "administrator_granted"
	EventRegistryPaused       AuditEvent = "registry_paused"
	EventRegistryResumed      AuditEvent = "registry_resumed"

	EventPropertyRegistered    AuditEvent = "property_registered"
	EventPropertyTransferred   AuditEvent = "property_transferred"
	EventPropertyAudited       AuditEvent = "property_audited"
	EventPropertyStatusChanged AuditEvent = "property_status_changed"

	EventOperationDenied AuditEvent = "operation_denied"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventAdministratorGranted:  CategoryCompliance,
	EventPropertyRegistered:    CategoryCompliance,
	EventPropertyTransferred:   CategoryCompliance,
	EventPropertyAudited:       CategoryCompliance,
	EventPropertyStatusChanged: CategoryCompliance,

	EventRegistryPaused:  CategorySecurity,
	EventRegistryResumed: CategorySecurity,
	EventOperationDenied: CategorySecurity,

	EventRegistryBootstrapped: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}
