package handler

import (
	"strings"

	"landregistry/internal/registry/models"
	dErrors "landregistry/pkg/domain-errors"
)

type AddAdministratorRequest struct {
	Principal string `json:"principal"`
	Role      string `json:"role"`
	Active    *bool  `json:"active,omitempty"`

	principal models.Principal
	role      models.Role
}

func (r *AddAdministratorRequest) Normalize() {
	r.Principal = strings.TrimSpace(r.Principal)
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
	if r.Active == nil {
		active := true
		r.Active = &active
	}
}

func (r *AddAdministratorRequest) Validate() error {
	p, err := models.ParsePrincipal(r.Principal)
	if err != nil {
		return err
	}
	role, err := models.ParseRole(r.Role)
	if err != nil {
		return err
	}
	r.principal, r.role = p, role
	return nil
}

type PauseRequest struct {
	Paused bool `json:"paused"`
}

func (r *PauseRequest) Normalize()      {}
func (r *PauseRequest) Validate() error { return nil }

// RegisterPropertyRequest only checks what the coordinator does not: the
// metadata text bounds. Coordinates and area are judged by the coordinator so
// its check order holds.
type RegisterPropertyRequest struct {
	Lat              int64  `json:"lat"`
	Lng              int64  `json:"lng"`
	AreaSqFt         uint64 `json:"area_sq_ft"`
	Value            uint64 `json:"value"`
	LegalDescription string `json:"legal_description"`
	PropertyType     string `json:"property_type"`
	ZoningCode       string `json:"zoning_code"`
	TaxID            string `json:"tax_id"`
}

func (r *RegisterPropertyRequest) Normalize() {
	r.LegalDescription = strings.TrimSpace(r.LegalDescription)
	r.PropertyType = strings.TrimSpace(r.PropertyType)
	r.ZoningCode = strings.ToUpper(strings.TrimSpace(r.ZoningCode))
	r.TaxID = strings.TrimSpace(r.TaxID)
}

func (r *RegisterPropertyRequest) Validate() error {
	return r.command().Metadata(0).Validate()
}

func (r *RegisterPropertyRequest) command() models.RegisterCommand {
	return models.RegisterCommand{
		Coordinates:      models.Coordinates{Lat: r.Lat, Lng: r.Lng},
		AreaSqFt:         r.AreaSqFt,
		Value:            r.Value,
		LegalDescription: r.LegalDescription,
		PropertyType:     r.PropertyType,
		ZoningCode:       r.ZoningCode,
		TaxID:            r.TaxID,
	}
}

// TransferRequest leaves an empty or self recipient to the coordinator,
// which reports it as invalid_recipient after the ownership check.
type TransferRequest struct {
	Recipient string `json:"recipient"`
}

func (r *TransferRequest) Normalize() {
	r.Recipient = strings.TrimSpace(r.Recipient)
}

func (r *TransferRequest) Validate() error {
	if len(r.Recipient) > models.MaxPrincipalLength {
		return dErrors.New(dErrors.CodeBadRequest, "recipient exceeds max length")
	}
	return nil
}

type AuditRequest struct {
	Price  uint64 `json:"price"`
	Notary string `json:"notary"`
}

func (r *AuditRequest) Normalize() {
	r.Notary = strings.TrimSpace(r.Notary)
}

func (r *AuditRequest) Validate() error {
	if len(r.Notary) > models.MaxPrincipalLength {
		return dErrors.New(dErrors.CodeBadRequest, "notary exceeds max length")
	}
	return nil
}

type StatusRequest struct {
	Status string `json:"status"`

	status models.Status
}

func (r *StatusRequest) Normalize() {
	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
}

func (r *StatusRequest) Validate() error {
	s, err := models.ParseStatus(r.Status)
	if err != nil {
		return err
	}
	r.status = s
	return nil
}

type RegisterPropertyResponse struct {
	ID models.PropertyID `json:"id"`
}

type PropertyResponse struct {
	Found    bool             `json:"found"`
	Property *models.Property `json:"property,omitempty"`
}

type MetadataResponse struct {
	Found    bool             `json:"found"`
	Metadata *models.Metadata `json:"metadata,omitempty"`
}

type OwnershipResponse struct {
	PropertyID models.PropertyID `json:"property_id"`
	Owner      models.Principal  `json:"owner"`
	Verified   bool              `json:"verified"`
}

type HistoryResponse struct {
	PropertyID models.PropertyID        `json:"property_id"`
	Records    []*models.TransferRecord `json:"records"`
}

type AdministratorResponse struct {
	Found         bool                  `json:"found"`
	Administrator *models.Administrator `json:"administrator,omitempty"`
}

type AdministratorsResponse struct {
	Administrators []*models.Administrator `json:"administrators"`
}

type StatsResponse struct {
	models.RegistryState
}
