package models

// TransferRecord is one append-only audit trail entry, keyed by
// (PropertyID, Timestamp). From == To marks a valuation audit rather than an
// ownership change.
type TransferRecord struct {
	PropertyID PropertyID `json:"property_id"`
	Timestamp  uint64     `json:"timestamp"`
	From       Principal  `json:"from"`
	To         Principal  `json:"to"`
	Price      uint64     `json:"price"`
	Notarized  bool       `json:"notarized"`
}

// IsAudit reports whether the record is a valuation event.
func (r *TransferRecord) IsAudit() bool {
	return r.From == r.To
}

// AuditSummary is returned by a successful audit. CoordinatesValid and
// OwnerVerified are always true: both gate the audit effect.
type AuditSummary struct {
	Timestamp        uint64    `json:"timestamp"`
	Value            uint64    `json:"value"`
	Notary           Principal `json:"notary"`
	Status           Status    `json:"status"`
	CoordinatesValid bool      `json:"coordinates_valid"`
	OwnerVerified    bool      `json:"owner_verified"`
}
