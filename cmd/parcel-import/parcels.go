package main

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"

	"landregistry/internal/registry/handler"
	"landregistry/internal/registry/validation"
)

// microDegrees is the fixed-point scale the registry stores coordinates in.
const microDegrees = 1_000_000

var errNoGeometry = errors.New("row has no geometry")

// columns names the .dbf attributes that feed a registration.
type columns struct {
	Area   string
	Value  string
	Legal  string
	Type   string
	Zoning string
	TaxID  string
}

func defaultColumns() columns {
	return columns{
		Area:   "AREA_SQFT",
		Value:  "VALUE",
		Legal:  "LEGAL_DESC",
		Type:   "PROP_TYPE",
		Zoning: "ZONING",
		TaxID:  "TAX_ID",
	}
}

// parcel is one shapefile row: its centre in WGS-84 degrees plus attributes.
type parcel struct {
	Row   int
	Lat   float64
	Lng   float64
	Attrs map[string]string
	err   error
}

// readParcels loads every row; rows without geometry carry an error instead
// of being dropped so the caller can report them.
func readParcels(path string) ([]parcel, error) {
	r, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open shapefile %s: %w", path, err)
	}
	defer r.Close()

	fields := r.Fields()

	var parcels []parcel
	for r.Next() {
		idx, shape := r.Shape()

		attrs := make(map[string]string, len(fields))
		for i, f := range fields {
			attrs[strings.ToUpper(f.String())] = strings.TrimSpace(strings.Trim(r.ReadAttribute(idx, i), "\x00"))
		}

		p := parcel{Row: idx, Attrs: attrs}
		p.Lat, p.Lng, p.err = centre(shape)
		parcels = append(parcels, p)
	}
	if err := r.Err(); err != nil {
		return parcels, fmt.Errorf("read shapefile %s: %w", path, err)
	}
	return parcels, nil
}

// centre returns a point's position or the bounding-box centre of any other
// geometry, as lat/lng.
func centre(shape shp.Shape) (float64, float64, error) {
	switch s := shape.(type) {
	case nil, *shp.Null:
		return 0, 0, errNoGeometry
	case *shp.Point:
		return s.Y, s.X, nil
	default:
		box := s.BBox()
		return (box.MinY + box.MaxY) / 2, (box.MinX + box.MaxX) / 2, nil
	}
}

// toRequest converts a parcel into a registration body. Values the registry
// would reject are caught here so one bad row does not cost a round trip.
func toRequest(p parcel, cols columns) (*handler.RegisterPropertyRequest, error) {
	if p.err != nil {
		return nil, p.err
	}

	lat := toMicroDegrees(p.Lat)
	lng := toMicroDegrees(p.Lng)
	if !validation.ValidCoordinates(lat, lng) {
		return nil, fmt.Errorf("coordinates out of range: %f,%f", p.Lat, p.Lng)
	}

	area, err := parseQuantity(p.Attrs[strings.ToUpper(cols.Area)])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cols.Area, err)
	}
	if !validation.PositiveQuantity(area) {
		return nil, fmt.Errorf("%s: must be positive", cols.Area)
	}
	value, err := parseQuantity(p.Attrs[strings.ToUpper(cols.Value)])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cols.Value, err)
	}

	req := &handler.RegisterPropertyRequest{
		Lat:              lat,
		Lng:              lng,
		AreaSqFt:         area,
		Value:            value,
		LegalDescription: p.Attrs[strings.ToUpper(cols.Legal)],
		PropertyType:     p.Attrs[strings.ToUpper(cols.Type)],
		ZoningCode:       p.Attrs[strings.ToUpper(cols.Zoning)],
		TaxID:            p.Attrs[strings.ToUpper(cols.TaxID)],
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

func toMicroDegrees(deg float64) int64 {
	return int64(math.Round(deg * microDegrees))
}

// parseQuantity accepts integral or decimal dbf numbers; fractions are
// rounded to the nearest whole unit.
func parseQuantity(raw string) (uint64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errors.New("missing")
	}
	if n, err := strconv.ParseUint(raw, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 || math.IsNaN(f) || f > math.MaxUint64 {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	return uint64(math.Round(f)), nil
}
