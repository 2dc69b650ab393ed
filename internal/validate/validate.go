// Package validate rejects malformed records before they reach the
// valuation engine: negative areas or prices, out-of-range scores and
// coordinates, and unknown taxonomy values.
package validate

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"

	"github.com/indigoandlavender/agenz2-willow-morocco/internal/model"
)

var (
	once     sync.Once
	instance *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		_ = v.RegisterValidation("asset_type", func(fl validator.FieldLevel) bool {
			return model.AssetType(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("zoning_code", func(fl validator.FieldLevel) bool {
			return model.ZoningCode(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("document_type", func(fl validator.FieldLevel) bool {
			return model.DocumentType(fl.Field().String()).Valid()
		})
		instance = v
	})
	return instance
}

// FieldErrors maps a struct field path to the rule it failed.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, fe[k]))
	}
	return strings.Join(parts, "; ")
}

// Fields returns the per-field failures carried by err, or nil.
func Fields(err error) FieldErrors {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe
	}
	return nil
}

func check(s any, what string) error {
	err := get().Struct(s)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return eris.Wrapf(err, "validate: %s", what)
	}
	fe := make(FieldErrors, len(ves))
	for _, ve := range ves {
		path := ve.Namespace()
		if i := strings.IndexByte(path, '.'); i >= 0 {
			path = path[i+1:]
		}
		rule := ve.Tag()
		if ve.Param() != "" {
			rule += "=" + ve.Param()
		}
		fe[path] = rule
	}
	return eris.Wrapf(fe, "validate: %s", what)
}

// Property checks a property record.
func Property(p *model.Property) error {
	if p == nil {
		return eris.New("validate: property is nil")
	}
	if p.Latitude != nil && p.Longitude == nil || p.Latitude == nil && p.Longitude != nil {
		return eris.Wrapf(FieldErrors{"Latitude": "pair", "Longitude": "pair"}, "validate: property %s", p.ID)
	}
	return check(p, "property "+p.ID)
}

// Document checks a forensic document.
func Document(d *model.ForensicDocument) error {
	if d == nil {
		return eris.New("validate: document is nil")
	}
	return check(d, "document "+d.ID)
}

// Listing checks a scraped listing.
func Listing(l *model.ScrapedListing) error {
	if l == nil {
		return eris.New("validate: listing is nil")
	}
	return check(l, "listing "+l.URL)
}
