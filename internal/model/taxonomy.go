// Package model defines the property records, reference entities and result
// types shared by the valuation and compliance engine.
package model

import "strings"

// AssetType is the category of a property.
type AssetType string

const (
	AssetApartment AssetType = "apartment"
	AssetVilla     AssetType = "villa"
	AssetLand      AssetType = "land"
)

// AssetTypes lists every recognized asset type.
var AssetTypes = []AssetType{AssetApartment, AssetVilla, AssetLand}

// ParseAssetType returns the asset type for s. The second value is false
// when s is not a recognized type.
func ParseAssetType(s string) (AssetType, bool) {
	v := AssetType(strings.ToLower(strings.TrimSpace(s)))
	return v, v.Valid()
}

// Valid reports whether a is a recognized asset type.
func (a AssetType) Valid() bool {
	switch a {
	case AssetApartment, AssetVilla, AssetLand:
		return true
	}
	return false
}

// ZoningCode is a Marrakech urban-plan zoning designation.
type ZoningCode string

const (
	ZoneR2       ZoningCode = "R+2"      // collective housing, ground + 2
	ZoneR4       ZoningCode = "R+4"      // collective housing, ground + 4
	ZoneVilla    ZoningCode = "VILLA"    // detached villas
	ZoneHotel    ZoningCode = "HOTEL"    // tourism and hospitality
	ZoneRural    ZoningCode = "RURAL"    // rural outside the urban perimeter
	ZoneAgricole ZoningCode = "AGRICOLE" // agricultural land
)

// ZoningCodes lists every recognized zoning code.
var ZoningCodes = []ZoningCode{ZoneR2, ZoneR4, ZoneVilla, ZoneHotel, ZoneRural, ZoneAgricole}

// ParseZoningCode returns the zoning code for s.
func ParseZoningCode(s string) (ZoningCode, bool) {
	v := ZoningCode(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", "")))
	return v, v.Valid()
}

// Valid reports whether z is one of the six recognized codes.
func (z ZoningCode) Valid() bool {
	switch z {
	case ZoneR2, ZoneR4, ZoneVilla, ZoneHotel, ZoneRural, ZoneAgricole:
		return true
	}
	return false
}

// IsRural reports whether the code classifies land as rural for foreign
// acquisition purposes.
func (z ZoningCode) IsRural() bool {
	return z == ZoneRural || z == ZoneAgricole
}

// IsAgricultural reports whether the code is agricultural zoning.
func (z ZoningCode) IsAgricultural() bool {
	return z == ZoneAgricole
}

// DocumentType is one of the canonical verification documents.
type DocumentType string

const (
	DocTitreFoncier      DocumentType = "titre_foncier"      // land title
	DocPlanCadastral     DocumentType = "plan_cadastral"     // cadastral plan
	DocPermisConstruire  DocumentType = "permis_construire"  // building permit
	DocPermisHabiter     DocumentType = "permis_habiter"     // occupancy certificate
	DocQuitusFiscal      DocumentType = "quitus_fiscal"      // tax clearance
	DocCertificatVNA     DocumentType = "certificat_vna"     // non-agricultural vocation certificate
	DocNoteRenseignement DocumentType = "note_renseignement" // urban-planning information note
)

// DocumentTypes lists the seven canonical document types.
var DocumentTypes = []DocumentType{
	DocTitreFoncier, DocPlanCadastral, DocPermisConstruire, DocPermisHabiter,
	DocQuitusFiscal, DocCertificatVNA, DocNoteRenseignement,
}

// ParseDocumentType returns the document type for s.
func ParseDocumentType(s string) (DocumentType, bool) {
	v := DocumentType(strings.ToLower(strings.TrimSpace(s)))
	return v, v.Valid()
}

// Valid reports whether d is one of the seven canonical types.
func (d DocumentType) Valid() bool {
	for _, t := range DocumentTypes {
		if d == t {
			return true
		}
	}
	return false
}

// DocumentStatus is the verification state of a document.
type DocumentStatus string

const (
	DocStatusPending  DocumentStatus = "pending"
	DocStatusVerified DocumentStatus = "verified"
	DocStatusRejected DocumentStatus = "rejected"
)

// InfrastructureCategory classifies an infrastructure point.
type InfrastructureCategory string

const (
	InfraTransit    InfrastructureCategory = "transit"
	InfraStadium    InfrastructureCategory = "stadium"
	InfraHighway    InfrastructureCategory = "highway"
	InfraAirport    InfrastructureCategory = "airport"
	InfraIndustrial InfrastructureCategory = "industrial"
)

// ParseInfrastructureCategory returns the category for s.
func ParseInfrastructureCategory(s string) (InfrastructureCategory, bool) {
	v := InfrastructureCategory(strings.ToLower(strings.TrimSpace(s)))
	switch v {
	case InfraTransit, InfraStadium, InfraHighway, InfraAirport, InfraIndustrial:
		return v, true
	}
	return v, false
}

// RiskGrade summarizes aggregate risk, A best and F worst.
type RiskGrade string

const (
	GradeA RiskGrade = "A"
	GradeB RiskGrade = "B"
	GradeC RiskGrade = "C"
	GradeD RiskGrade = "D"
	GradeE RiskGrade = "E"
	GradeF RiskGrade = "F"
)

// Rank returns 1 for A through 6 for F, and 0 for an unset grade.
func (g RiskGrade) Rank() int {
	switch g {
	case GradeA:
		return 1
	case GradeB:
		return 2
	case GradeC:
		return 3
	case GradeD:
		return 4
	case GradeE:
		return 5
	case GradeF:
		return 6
	}
	return 0
}

// ComplianceStatus is the overall verdict of a compliance audit.
type ComplianceStatus string

const (
	StatusCompliant     ComplianceStatus = "compliant"
	StatusPendingReview ComplianceStatus = "pending_review"
	StatusNonCompliant  ComplianceStatus = "non_compliant"
	StatusExpired       ComplianceStatus = "expired"
)

// Severity grades a compliance flag.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// GapVerdict compares a market price to a forensic price.
type GapVerdict string

const (
	VerdictOverpriced  GapVerdict = "overpriced"
	VerdictUnderpriced GapVerdict = "underpriced"
	VerdictFair        GapVerdict = "fair"
)

// ListingVerdict is the five-tier verdict used for scraped listings.
type ListingVerdict string

const (
	ListingSeverelyOverpriced  ListingVerdict = "severely_overpriced"
	ListingOverpriced          ListingVerdict = "overpriced"
	ListingFair                ListingVerdict = "fair"
	ListingUnderpriced         ListingVerdict = "underpriced"
	ListingSeverelyUnderpriced ListingVerdict = "severely_underpriced"
)
