// Package sheet imports audit workbooks: a "properties" sheet with one
// property per row and an optional "documents" sheet. The first row of each
// sheet is a header; columns are matched by name and may appear in any order.
package sheet

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/indigoandlavender/agenz2-willow-morocco/internal/model"
	"github.com/indigoandlavender/agenz2-willow-morocco/internal/validate"
)

// Sheet names.
const (
	PropertiesSheet = "properties"
	DocumentsSheet  = "documents"
)

const dateLayout = "2006-01-02"

// RowError describes a rejected row. Row is 1-based as shown in a
// spreadsheet editor.
type RowError struct {
	Sheet string
	Row   int
	Err   error
}

func (e RowError) Error() string {
	return fmt.Sprintf("%s row %d: %v", e.Sheet, e.Row, e.Err)
}

// Workbook is the parsed content of an audit workbook.
type Workbook struct {
	Properties []*model.Property
	Documents  []model.ForensicDocument
	Rejected   []RowError
}

// Import reads the workbook at path. Malformed rows are collected in
// Rejected instead of failing the import; only a missing file or a missing
// properties sheet is an error.
func Import(path string) (*Workbook, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "sheet: open file")
	}

	props, ok := f.Sheet[PropertiesSheet]
	if !ok {
		return nil, eris.Errorf("sheet: %q sheet not found", PropertiesSheet)
	}

	wb := &Workbook{}
	for rowNum, rec := range records(props) {
		p, err := parseProperty(rec)
		if err == nil {
			err = validate.Property(p)
		}
		if err != nil {
			wb.Rejected = append(wb.Rejected, RowError{Sheet: PropertiesSheet, Row: rowNum, Err: err})
			continue
		}
		wb.Properties = append(wb.Properties, p)
	}

	if docs, ok := f.Sheet[DocumentsSheet]; ok {
		for rowNum, rec := range records(docs) {
			d, err := parseDocument(rec)
			if err == nil {
				err = validate.Document(&d)
			}
			if err != nil {
				wb.Rejected = append(wb.Rejected, RowError{Sheet: DocumentsSheet, Row: rowNum, Err: err})
				continue
			}
			wb.Documents = append(wb.Documents, d)
		}
	}
	return wb, nil
}

// record maps a lower-cased header name to the cell text of one row.
type record map[string]string

// records yields each non-empty data row keyed by header, with its 1-based
// row number.
func records(s *xlsx.Sheet) func(yield func(int, record) bool) {
	return func(yield func(int, record) bool) {
		if len(s.Rows) == 0 {
			return
		}
		header := rowToStrings(s.Rows[0])
		for i := range header {
			header[i] = strings.ToLower(strings.TrimSpace(header[i]))
		}
		for i, row := range s.Rows[1:] {
			cells := rowToStrings(row)
			rec := make(record, len(header))
			empty := true
			for j, name := range header {
				if j < len(cells) && name != "" {
					v := strings.TrimSpace(cells[j])
					rec[name] = v
					if v != "" {
						empty = false
					}
				}
			}
			if empty {
				continue
			}
			if !yield(i+2, rec) {
				return
			}
		}
	}
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}

func parseProperty(r record) (*model.Property, error) {
	asset, ok := model.ParseAssetType(r["asset_type"])
	if !ok {
		return nil, eris.Errorf("unknown asset_type %q", r["asset_type"])
	}
	p := &model.Property{
		ID:           r["id"],
		Title:        r["title"],
		AssetType:    asset,
		Address:      r["address"],
		Neighborhood: r["neighborhood"],
		AuditNotes:   r["audit_notes"],
	}
	if z := r["zoning_code"]; z != "" {
		code, ok := model.ParseZoningCode(z)
		if !ok {
			return nil, eris.Errorf("unknown zoning_code %q", z)
		}
		p.ZoningCode = &code
	}

	var err error
	floats := []struct {
		col string
		dst **float64
	}{
		{"latitude", &p.Latitude},
		{"longitude", &p.Longitude},
		{"terrain_area", &p.TerrainArea},
		{"built_area", &p.BuiltArea},
		{"market_price", &p.MarketPrice},
		{"humidity_score", &p.Structural.HumidityScore},
		{"foundation_depth_m", &p.Structural.FoundationDepthM},
		{"roof_remaining_years", &p.Structural.RoofRemainingYears},
		{"overall_score", &p.Structural.OverallScore},
		{"distance_to_transit_km", &p.DistanceToTransitKm},
		{"distance_to_stadium_km", &p.DistanceToStadiumKm},
		{"distance_to_airport_km", &p.DistanceToAirportKm},
	}
	for _, f := range floats {
		if *f.dst, err = optFloat(r, f.col); err != nil {
			return nil, err
		}
	}
	ints := []struct {
		col string
		dst **int
	}{
		{"floors", &p.Floors},
		{"rooms", &p.Rooms},
		{"bathrooms", &p.Bathrooms},
		{"year_built", &p.YearBuilt},
	}
	for _, f := range ints {
		if *f.dst, err = optInt(r, f.col); err != nil {
			return nil, err
		}
	}
	if p.Structural.SeismicChaining, err = optBool(r, "seismic_chaining"); err != nil {
		return nil, err
	}
	for col, dst := range map[string]*bool{
		"rps2000_compliant":              &p.Structural.RPS2000Compliant,
		"rps2011_compliant":              &p.Structural.RPS2011Compliant,
		"deadline_flag":                  &p.DeadlineFlag,
		"foreign_authorization_required": &p.ForeignAuthorizationRequired,
		"tax_gate_passed":                &p.TaxGatePassed,
		"verified":                       &p.Verified,
	} {
		b, err := optBool(r, col)
		if err != nil {
			return nil, err
		}
		*dst = b != nil && *b
	}
	if p.VerifiedAt, err = optDate(r, "verified_at"); err != nil {
		return nil, err
	}
	p.VerifiedBy = r["verified_by"]
	return p, nil
}

func parseDocument(r record) (model.ForensicDocument, error) {
	typ, ok := model.ParseDocumentType(r["type"])
	if !ok {
		return model.ForensicDocument{}, eris.Errorf("unknown document type %q", r["type"])
	}
	d := model.ForensicDocument{
		ID:         r["id"],
		PropertyID: r["property_id"],
		Type:       typ,
		Status:     model.DocStatusPending,
		Reference:  r["reference"],
	}
	switch s := model.DocumentStatus(strings.ToLower(r["status"])); s {
	case "":
	case model.DocStatusPending, model.DocStatusVerified, model.DocStatusRejected:
		d.Status = s
	default:
		return model.ForensicDocument{}, eris.Errorf("unknown document status %q", r["status"])
	}

	qr, err := optBool(r, "qr_verified")
	if err != nil {
		return model.ForensicDocument{}, err
	}
	d.QRVerified = qr != nil && *qr

	for col, dst := range map[string]**time.Time{
		"issued_at":     &d.IssuedAt,
		"registered_at": &d.RegisteredAt,
		"expires_at":    &d.ExpiresAt,
	} {
		if *dst, err = optDate(r, col); err != nil {
			return model.ForensicDocument{}, err
		}
	}
	return d, nil
}

func optFloat(r record, col string) (*float64, error) {
	s := strings.ReplaceAll(r[col], ",", "")
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, eris.Errorf("%s: invalid number %q", col, r[col])
	}
	return &v, nil
}

func optInt(r record, col string) (*int, error) {
	f, err := optFloat(r, col)
	if err != nil || f == nil {
		return nil, err
	}
	v := int(*f)
	if float64(v) != *f {
		return nil, eris.Errorf("%s: not a whole number %q", col, r[col])
	}
	return &v, nil
}

func optBool(r record, col string) (*bool, error) {
	switch strings.ToLower(r[col]) {
	case "":
		return nil, nil
	case "1", "true", "yes", "y", "oui":
		return model.Bool(true), nil
	case "0", "false", "no", "n", "non":
		return model.Bool(false), nil
	}
	return nil, eris.Errorf("%s: invalid boolean %q", col, r[col])
}

func optDate(r record, col string) (*time.Time, error) {
	if r[col] == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, r[col])
	if err != nil {
		return nil, eris.Errorf("%s: invalid date %q, want YYYY-MM-DD", col, r[col])
	}
	return &t, nil
}
