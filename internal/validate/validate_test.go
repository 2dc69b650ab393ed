package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indigoandlavender/agenz2-willow-morocco/internal/model"
)

func validProperty() *model.Property {
	return &model.Property{
		ID:          "p1",
		AssetType:   model.AssetVilla,
		Latitude:    model.Float(31.63),
		Longitude:   model.Float(-8.01),
		TerrainArea: model.Float(800),
		BuiltArea:   model.Float(300),
		YearBuilt:   model.Int(2015),
		MarketPrice: model.Float(4_500_000),
		ZoningCode:  model.Zoning(model.ZoneVilla),
		Structural: model.StructuralHealthScore{
			HumidityScore: model.Float(4),
			OverallScore:  model.Float(72),
		},
	}
}

func TestProperty_Valid(t *testing.T) {
	assert.NoError(t, Property(validProperty()))
	assert.NoError(t, Property(&model.Property{AssetType: model.AssetLand}))
}

func TestProperty_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *model.Property)
		field  string
	}{
		{"unknown asset type", func(p *model.Property) { p.AssetType = "castle" }, "AssetType"},
		{"missing asset type", func(p *model.Property) { p.AssetType = "" }, "AssetType"},
		{"negative terrain", func(p *model.Property) { p.TerrainArea = model.Float(-5) }, "TerrainArea"},
		{"negative price", func(p *model.Property) { p.MarketPrice = model.Float(-1) }, "MarketPrice"},
		{"latitude range", func(p *model.Property) { p.Latitude = model.Float(91) }, "Latitude"},
		{"humidity range", func(p *model.Property) { p.Structural.HumidityScore = model.Float(11) }, "Structural.HumidityScore"},
		{"overall range", func(p *model.Property) { p.Structural.OverallScore = model.Float(101) }, "Structural.OverallScore"},
		{"unknown zoning", func(p *model.Property) { p.ZoningCode = model.Zoning("R+9") }, "ZoningCode"},
		{"half coordinates", func(p *model.Property) { p.Longitude = nil }, "Longitude"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProperty()
			tt.mutate(p)
			err := Property(p)
			require.Error(t, err)
			fe := Fields(err)
			require.NotNil(t, fe, err.Error())
			assert.Contains(t, fe, tt.field)
		})
	}
}

func TestProperty_Nil(t *testing.T) {
	err := Property(nil)
	require.Error(t, err)
	assert.Nil(t, Fields(err))
}

func TestDocument(t *testing.T) {
	assert.NoError(t, Document(&model.ForensicDocument{PropertyID: "p1", Type: model.DocQuitusFiscal}))

	err := Document(&model.ForensicDocument{PropertyID: "p1", Type: "passport"})
	require.Error(t, err)
	assert.Equal(t, "document_type", Fields(err)["Type"])

	err = Document(&model.ForensicDocument{Type: model.DocTitreFoncier})
	require.Error(t, err)
	assert.Equal(t, "required", Fields(err)["PropertyID"])
}

func TestListing(t *testing.T) {
	ok := &model.ScrapedListing{Portal: "avito", URL: "https://www.avito.ma/1", AskingPrice: 1, SizeSqm: 1}
	assert.NoError(t, Listing(ok))

	bad := &model.ScrapedListing{Portal: "avito", URL: "not a url", AskingPrice: 0, SizeSqm: 10}
	err := Listing(bad)
	require.Error(t, err)
	fe := Fields(err)
	assert.Equal(t, "url", fe["URL"])
	assert.Equal(t, "gt=0", fe["AskingPrice"])
}

func TestFieldErrors_Error(t *testing.T) {
	fe := FieldErrors{"b": "gt=0", "a": "required"}
	assert.Equal(t, "a: required; b: gt=0", fe.Error())
}
