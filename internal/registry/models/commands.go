package models

// RegisterCommand carries the inputs of a registration.
type RegisterCommand struct {
	Coordinates      Coordinates
	AreaSqFt         uint64
	Value            uint64
	LegalDescription string
	PropertyType     string
	ZoningCode       string
	TaxID            string
}

// Metadata builds the metadata record for id.
func (c RegisterCommand) Metadata(id PropertyID) *Metadata {
	return &Metadata{
		PropertyID:       id,
		LegalDescription: c.LegalDescription,
		PropertyType:     c.PropertyType,
		ZoningCode:       c.ZoningCode,
		TaxID:            c.TaxID,
	}
}
