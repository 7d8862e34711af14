package models

import (
	"landregistry/internal/registry/validation"
	dErrors "landregistry/pkg/domain-errors"
)

// Coordinates is a fixed-point (lat, lng) pair in micro-degrees.
type Coordinates struct {
	Lat int64 `json:"lat"`
	Lng int64 `json:"lng"`
}

func (c Coordinates) Valid() bool {
	return validation.ValidCoordinates(c.Lat, c.Lng)
}

// Property is one registered parcel.
//
// Invariants:
//   - ID is allocated once and never reused
//   - Coordinates stay within bounds
//   - AreaSqFt > 0
//   - RegisteredAt <= LastTransferAt; both are logical timestamps
type Property struct {
	ID             PropertyID  `json:"id"`
	Owner          Principal   `json:"owner"`
	RegisteredAt   uint64      `json:"registered_at"`
	LastTransferAt uint64      `json:"last_transfer_at"`
	Status         Status      `json:"status"`
	Value          uint64      `json:"value"`
	Coordinates    Coordinates `json:"coordinates"`
	AreaSqFt       uint64      `json:"area_sq_ft"`
}

// NewProperty builds an active property owned by owner.
func NewProperty(id PropertyID, owner Principal, coords Coordinates, areaSqFt, value, height uint64) (*Property, error) {
	if id == 0 {
		return nil, dErrors.New(dErrors.CodeInternal, "property id must be allocated")
	}
	if owner.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "owner is required")
	}
	if !coords.Valid() {
		return nil, dErrors.New(dErrors.CodeInvalidCoordinates, "coordinates out of range")
	}
	if !validation.PositiveQuantity(areaSqFt) {
		return nil, dErrors.New(dErrors.CodeInvalidArea, "area must be positive")
	}
	return &Property{
		ID:             id,
		Owner:          owner,
		RegisteredAt:   height,
		LastTransferAt: height,
		Status:         StatusActive,
		Value:          value,
		Coordinates:    coords,
		AreaSqFt:       areaSqFt,
	}, nil
}

// IsOwnedBy reports whether p is the current owner.
func (p *Property) IsOwnedBy(principal Principal) bool {
	return p.Owner == principal
}

// ApplyTransfer changes ownership. Status and every other field are kept.
// Callers check owner, recipient and status first.
func (p *Property) ApplyTransfer(recipient Principal, height uint64) {
	p.Owner = recipient
	p.LastTransferAt = height
}

// ApplyAudit records a valuation. The status is forced back to active.
func (p *Property) ApplyAudit(price, height uint64) {
	p.Value = price
	p.Status = StatusActive
	p.LastTransferAt = height
}

// ApplyStatus moves the record to next. Callers check CanTransitionTo first.
func (p *Property) ApplyStatus(next Status) {
	p.Status = next
}

// Metadata is the descriptive record stored 1:1 with a Property.
type Metadata struct {
	PropertyID       PropertyID `json:"property_id"`
	LegalDescription string     `json:"legal_description"`
	PropertyType     string     `json:"property_type"`
	ZoningCode       string     `json:"zoning_code"`
	TaxID            string     `json:"tax_id"`
}

// Validate checks the bounded text fields.
func (m *Metadata) Validate() error {
	checks := []struct {
		field string
		value string
		max   int
	}{
		{"legal description", m.LegalDescription, validation.MaxLegalDescriptionLength},
		{"property type", m.PropertyType, validation.MaxPropertyTypeLength},
		{"zoning code", m.ZoningCode, validation.MaxZoningCodeLength},
		{"tax id", m.TaxID, validation.MaxTaxIDLength},
	}
	for _, c := range checks {
		if err := validation.ValidText(c.field, c.value, c.max); err != nil {
			return dErrors.Wrap(err, dErrors.CodeBadRequest, err.Error())
		}
	}
	return nil
}
