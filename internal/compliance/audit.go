package compliance

import (
	"fmt"
	"strings"
	"time"

	"github.com/indigoandlavender/agenz2-willow-morocco/internal/model"
	"github.com/indigoandlavender/agenz2-willow-morocco/internal/reference"
)

// Flag codes raised by Audit.
const (
	FlagLandDeadlineExceeded         = "LAND_DEADLINE_EXCEEDED"
	FlagLandDeadlineApproaching      = "LAND_DEADLINE_APPROACHING"
	FlagForeignAuthorizationRequired = "FOREIGN_AUTHORIZATION_REQUIRED"
	FlagForeignAuthorizationOnFile   = "FOREIGN_AUTHORIZATION_ON_FILE"
	FlagTaxClearanceMissing          = "TAX_CLEARANCE_MISSING"
	FlagSeismicPreCodeNoChaining     = "SEISMIC_PRE_CODE_NO_CHAINING"
	FlagSeismicRetrofitUnknown       = "SEISMIC_RETROFIT_UNKNOWN"
	FlagDocumentExpired              = "DOCUMENT_EXPIRED"
	FlagDocumentMissing              = "DOCUMENT_MISSING"
)

// Input is everything an audit needs. Now is required; Tables defaults to
// reference.Default when nil.
type Input struct {
	Property     *model.Property
	Documents    []model.ForensicDocument
	PurchaseDate *time.Time
	Nationality  string
	Now          time.Time
	Tables       *reference.Tables
}

// Audit runs every check and derives the overall status. Status precedence:
// any expired document, then any critical flag, then any warning.
func Audit(in Input) model.ComplianceResult {
	tables := in.Tables
	if tables == nil {
		tables = reference.Default()
	}
	p := in.Property
	if p == nil {
		p = &model.Property{}
	}

	res := model.ComplianceResult{
		PropertyID:           p.ID,
		LandDeadline:         CheckLandDeadline(p, in.PurchaseDate, in.Now),
		ForeignAuthorization: CheckForeignAuthorization(p, in.Nationality),
		TaxGate:              CheckTaxGate(in.Documents),
		Seismic:              CheckSeismic(p),
		ExpiredDocuments:     CheckDocumentExpiry(in.Documents, in.Now),
		MissingDocuments:     CheckRequiredDocuments(p, in.Documents, tables.DocumentRules),
		Flags:                []model.ComplianceFlag{},
		Recommendations:      []string{},
		AuditedAt:            in.Now,
	}
	if res.ForeignAuthorization.Required {
		res.ForeignAuthorization.Satisfied = AuthorizationOnFile(in.Documents)
	}

	a := &auditor{res: &res}
	a.landDeadline()
	a.foreignAuthorization()
	a.taxGate()
	a.seismic()
	a.documents()
	res.Status = status(res)
	return res
}

type auditor struct {
	res *model.ComplianceResult
}

func (a *auditor) flag(code string, sev model.Severity, title, desc string, impact *float64, rec string) {
	a.res.Flags = append(a.res.Flags, model.ComplianceFlag{
		Code:          code,
		Severity:      sev,
		Title:         title,
		Description:   desc,
		ImpactPercent: impact,
	})
	if rec != "" {
		a.res.Recommendations = append(a.res.Recommendations, rec)
	}
}

func (a *auditor) landDeadline() {
	c := a.res.LandDeadline
	if !c.Applicable {
		return
	}
	if c.Flagged {
		desc := "Undeveloped land held beyond the five-year construction deadline."
		if c.Deadline != nil {
			desc = fmt.Sprintf("Construction deadline passed on %s.", c.Deadline.Format(time.DateOnly))
		}
		a.flag(FlagLandDeadlineExceeded, model.SeverityCritical, "Land development deadline exceeded", desc,
			model.Float(20), "Start construction or negotiate a permit extension before the undeveloped-land surtax applies.")
		return
	}
	if c.DaysRemaining != nil && *c.DaysRemaining <= approachingWindowDays {
		a.flag(FlagLandDeadlineApproaching, model.SeverityWarning, "Land development deadline approaching",
			fmt.Sprintf("%d days remain before the construction deadline.", *c.DaysRemaining),
			nil, "File a building permit application before the deadline.")
	}
}

func (a *auditor) foreignAuthorization() {
	c := a.res.ForeignAuthorization
	if !c.Required {
		return
	}
	if c.Satisfied {
		a.flag(FlagForeignAuthorizationOnFile, model.SeverityInfo, "Foreign acquisition authorization on file",
			"A verified non-agricultural vocation certificate covers this acquisition.", nil, "")
		return
	}
	a.flag(FlagForeignAuthorizationRequired, model.SeverityWarning, "Foreign acquisition authorization required",
		fmt.Sprintf("Buyers from %s need an authorization for rural land: about %d months and %.0f MAD.",
			c.Nationality, c.DelayMonths, c.EstimatedFee),
		model.Float(5), fmt.Sprintf("Apply for the VNA certificate now and plan for a %d-month delay.", c.DelayMonths))
}

func (a *auditor) taxGate() {
	c := a.res.TaxGate
	if !c.HighRisk {
		return
	}
	desc := "No tax clearance (quitus fiscal) on file."
	rec := "Request the quitus fiscal from the seller before signing."
	if c.DocumentPresent {
		desc = "Tax clearance present but not QR verified."
		rec = "Verify the quitus fiscal QR code with the tax administration."
	}
	a.flag(FlagTaxClearanceMissing, model.SeverityCritical, "Tax clearance not verified", desc, model.Float(10), rec)
}

func (a *auditor) seismic() {
	switch a.res.Seismic.PenaltyPercent {
	case seismicNoChainingPenalty:
		a.flag(FlagSeismicPreCodeNoChaining, model.SeverityCritical, "Pre-code building without seismic chaining",
			"Built before the 2023 seismic code with no chaining.", model.Float(seismicNoChainingPenalty),
			"Commission a structural engineer to price a seismic retrofit.")
	case seismicUnknownChainingPenalty:
		a.flag(FlagSeismicRetrofitUnknown, model.SeverityWarning, "Seismic retrofit status unknown",
			"Built before the 2023 seismic code; chaining has not been inspected.", model.Float(seismicUnknownChainingPenalty),
			"Schedule a structural inspection to confirm seismic chaining.")
	}
}

func (a *auditor) documents() {
	for _, label := range a.res.ExpiredDocuments {
		a.flag(FlagDocumentExpired, model.SeverityCritical, "Document expired",
			fmt.Sprintf("Document %s is past its expiry date.", label), nil,
			fmt.Sprintf("Renew document %s.", label))
	}
	for _, t := range a.res.MissingDocuments {
		a.flag(FlagDocumentMissing, model.SeverityInfo, "Document missing",
			fmt.Sprintf("No %s on file.", strings.ReplaceAll(string(t), "_", " ")), nil, "")
	}
}

func status(res model.ComplianceResult) model.ComplianceStatus {
	if len(res.ExpiredDocuments) > 0 {
		return model.StatusExpired
	}
	var warning bool
	for _, f := range res.Flags {
		switch f.Severity {
		case model.SeverityCritical:
			return model.StatusNonCompliant
		case model.SeverityWarning:
			warning = true
		}
	}
	if warning {
		return model.StatusPendingReview
	}
	return model.StatusCompliant
}

// ApplyFlags copies the audit outcome onto the property's compliance flags.
func ApplyFlags(p *model.Property, res model.ComplianceResult) {
	p.DeadlineFlag = res.LandDeadline.Flagged
	p.ForeignAuthorizationRequired = res.ForeignAuthorization.Required && !res.ForeignAuthorization.Satisfied
	p.TaxGatePassed = !res.TaxGate.HighRisk
}
