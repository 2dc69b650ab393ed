// Package compliance evaluates the regulatory checks applied to a Marrakech
// property transaction and aggregates them into an audit verdict.
package compliance

import (
	"math"
	"slices"
	"strings"
	"time"

	"github.com/indigoandlavender/agenz2-willow-morocco/internal/model"
	"github.com/indigoandlavender/agenz2-willow-morocco/internal/structural"
)

// ExemptNationality is the ISO country code of buyers who need no foreign
// acquisition authorization.
const ExemptNationality = "MA"

const (
	landDeadlineYears     = 5
	approachingWindowDays = 180

	authorizationDelayMonths      = 12
	authorizationFee              = 200_000.0
	agriculturalDelayMonths       = 18
	agriculturalAuthorizationFee  = 250_000.0
	seismicNoChainingPenalty      = 15
	seismicUnknownChainingPenalty = 8
)

// CheckLandDeadline applies the five-year development rule to undeveloped
// land. Without a purchase date the property's recorded deadline flag is
// carried through.
func CheckLandDeadline(p *model.Property, purchaseDate *time.Time, now time.Time) model.LandDeadlineCheck {
	if p == nil || !p.IsLand() {
		return model.LandDeadlineCheck{}
	}
	check := model.LandDeadlineCheck{Applicable: true}
	if purchaseDate == nil {
		check.Flagged = p.DeadlineFlag
		return check
	}

	purchased := *purchaseDate
	deadline := purchased.AddDate(landDeadlineYears, 0, 0)
	days := int(math.Floor(deadline.Sub(now).Hours() / 24))

	check.PurchaseDate = &purchased
	check.Deadline = &deadline
	check.DaysRemaining = &days
	check.Flagged = now.After(deadline)
	return check
}

// CheckForeignAuthorization reports whether a buyer of the given nationality
// needs an acquisition authorization for p. Only land with rural-classified
// zoning triggers the requirement; built property on rural zoning does not.
// An empty nationality is treated as unknown and never requires one.
func CheckForeignAuthorization(p *model.Property, nationality string) model.ForeignAuthorizationCheck {
	nat := strings.ToUpper(strings.TrimSpace(nationality))
	check := model.ForeignAuthorizationCheck{Nationality: nat}
	if p == nil || nat == "" || nat == ExemptNationality {
		return check
	}
	if !p.IsLand() || p.ZoningCode == nil || !p.ZoningCode.IsRural() {
		return check
	}

	check.Required = true
	check.DelayMonths = authorizationDelayMonths
	check.EstimatedFee = authorizationFee
	if p.ZoningCode.IsAgricultural() {
		check.DelayMonths = agriculturalDelayMonths
		check.EstimatedFee = agriculturalAuthorizationFee
	}
	return check
}

// AuthorizationOnFile reports whether docs include a verified authorization
// certificate.
func AuthorizationOnFile(docs []model.ForensicDocument) bool {
	for _, d := range docs {
		if d.Type == model.DocCertificatVNA && d.Status == model.DocStatusVerified {
			return true
		}
	}
	return false
}

// CheckTaxGate is high-risk unless a tax clearance document is present and
// QR verified. Rejected documents do not count.
func CheckTaxGate(docs []model.ForensicDocument) model.TaxGateCheck {
	var check model.TaxGateCheck
	for _, d := range docs {
		if d.Type != model.DocQuitusFiscal || d.Status == model.DocStatusRejected {
			continue
		}
		check.DocumentPresent = true
		if d.QRVerified {
			check.QRVerified = true
		}
	}
	check.HighRisk = !(check.DocumentPresent && check.QRVerified)
	return check
}

// CheckSeismic summarizes seismic code compliance. The penalty is 15% for
// pre-code buildings without chaining, 8% when chaining is unknown, 0
// otherwise. Land is not applicable.
func CheckSeismic(p *model.Property) model.SeismicCheck {
	if p == nil || p.IsLand() {
		return model.SeismicCheck{}
	}
	s := p.Structural
	check := model.SeismicCheck{
		Applicable:       true,
		PreCode:          structural.PreCode(p),
		SeismicChaining:  s.SeismicChaining,
		RPS2000Compliant: s.RPS2000Compliant,
		RPS2011Compliant: s.RPS2011Compliant,
	}
	if check.PreCode {
		switch {
		case s.SeismicChaining == nil:
			check.PenaltyPercent = seismicUnknownChainingPenalty
		case !*s.SeismicChaining:
			check.PenaltyPercent = seismicNoChainingPenalty
		}
	}
	return check
}

// CheckDocumentExpiry returns a label for every document whose expiry date
// is before now: its ID, or its type when the ID is empty.
func CheckDocumentExpiry(docs []model.ForensicDocument, now time.Time) []string {
	var expired []string
	for _, d := range docs {
		if !d.Expired(now) {
			continue
		}
		label := d.ID
		if label == "" {
			label = string(d.Type)
		}
		expired = append(expired, label)
	}
	return expired
}

// CheckRequiredDocuments returns the required document types for p's asset
// type that have no non-rejected document in docs, in rule order.
func CheckRequiredDocuments(p *model.Property, docs []model.ForensicDocument, rules map[model.AssetType][]model.DocumentType) []model.DocumentType {
	if p == nil {
		return nil
	}
	have := make(map[model.DocumentType]bool, len(docs))
	for _, d := range docs {
		if d.Status != model.DocStatusRejected {
			have[d.Type] = true
		}
	}
	var missing []model.DocumentType
	for _, t := range rules[p.AssetType] {
		if !have[t] && !slices.Contains(missing, t) {
			missing = append(missing, t)
		}
	}
	return missing
}
