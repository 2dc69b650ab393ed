package reference

import (
	"os"
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/indigoandlavender/agenz2-willow-morocco/internal/model"
)

// overlayFile is the on-disk YAML layout for reference overrides.
type overlayFile struct {
	DefaultPricePerSqm    float64                     `yaml:"default_price_per_sqm"`
	Neighborhoods         map[string]float64          `yaml:"neighborhoods"`
	Zoning                []model.ZoningCodeInfo      `yaml:"zoning"`
	CategoryWeights       map[string]float64          `yaml:"category_weights"`
	Infrastructure        []model.InfrastructurePoint `yaml:"infrastructure"`
	ReplaceInfrastructure bool                        `yaml:"replace_infrastructure"`
}

// LoadFile reads a YAML overlay and applies it on top of Default. Entries
// with unknown zoning codes or categories are skipped.
func LoadFile(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "reference: read %s", path)
	}
	return Parse(data)
}

// Parse applies a YAML overlay document to Default.
func Parse(data []byte) (*Tables, error) {
	var f overlayFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "reference: parse yaml")
	}

	t := Default()
	if f.DefaultPricePerSqm > 0 {
		t.DefaultPrice = f.DefaultPricePerSqm
	}
	for name, price := range f.Neighborhoods {
		if price <= 0 {
			zap.L().Warn("reference: skipping non-positive neighborhood price", zap.String("neighborhood", name))
			continue
		}
		t.NeighborhoodPrices[NormalizeNeighborhood(name)] = price
	}
	for _, z := range f.Zoning {
		code, ok := model.ParseZoningCode(string(z.Code))
		if !ok {
			zap.L().Warn("reference: skipping unknown zoning code", zap.String("code", string(z.Code)))
			continue
		}
		z.Code = code
		t.Zoning[code] = z
	}
	for name, w := range f.CategoryWeights {
		cat, ok := model.ParseInfrastructureCategory(name)
		if !ok {
			zap.L().Warn("reference: skipping unknown infrastructure category", zap.String("category", name))
			continue
		}
		t.CategoryWeights[cat] = w
	}

	points := validPoints(f.Infrastructure)
	if f.ReplaceInfrastructure {
		t.Infrastructure = points
	} else {
		t.Infrastructure = append(t.Infrastructure, points...)
	}

	return t, nil
}

func validPoints(in []model.InfrastructurePoint) []model.InfrastructurePoint {
	out := make([]model.InfrastructurePoint, 0, len(in))
	for _, p := range in {
		if p.RadiusKm <= 0 {
			zap.L().Warn("reference: skipping infrastructure point without radius", zap.String("name", p.Name))
			continue
		}
		if cat, ok := model.ParseInfrastructureCategory(string(p.Category)); ok {
			p.Category = cat
		}
		out = append(out, p)
	}
	return out
}

// LoadInfrastructureShapefile reads infrastructure points from a point
// shapefile. Expected DBF columns: NAME, CATEGORY, STATUS, YEAR, RADIUS_KM,
// MULTIPLIER. Non-point shapes and rows without a positive radius are skipped.
func LoadInfrastructureShapefile(path string) ([]model.InfrastructurePoint, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "reference: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fieldIdx := make(map[string]int)
	for i, f := range reader.Fields() {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToUpper(strings.TrimSpace(name))] = i
	}
	attr := func(name string) string {
		idx, ok := fieldIdx[name]
		if !ok {
			return ""
		}
		return strings.TrimSpace(strings.TrimRight(reader.Attribute(idx), "\x00"))
	}

	var points []model.InfrastructurePoint
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()
		pt, ok := toGeomPoint(shape)
		if !ok {
			skipped++
			continue
		}

		radius, _ := strconv.ParseFloat(attr("RADIUS_KM"), 64)
		if radius <= 0 {
			skipped++
			continue
		}
		mult, err := strconv.ParseFloat(attr("MULTIPLIER"), 64)
		if err != nil || mult <= 0 {
			mult = 1
		}
		year, _ := strconv.Atoi(attr("YEAR"))
		cat, _ := model.ParseInfrastructureCategory(attr("CATEGORY"))

		points = append(points, model.InfrastructurePoint{
			Name:           attr("NAME"),
			Category:       cat,
			Latitude:       pt.Y(),
			Longitude:      pt.X(),
			Status:         attr("STATUS"),
			CompletionYear: year,
			RadiusKm:       radius,
			Multiplier:     mult,
		})
	}

	if skipped > 0 {
		zap.L().Debug("reference: skipped shapefile records",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}

	return points, nil
}

func toGeomPoint(shape shp.Shape) (*geom.Point, bool) {
	switch s := shape.(type) {
	case *shp.Point:
		return geom.NewPointFlat(geom.XY, []float64{s.X, s.Y}).SetSRID(4326), true
	case *shp.PointZ:
		return geom.NewPointFlat(geom.XY, []float64{s.X, s.Y}).SetSRID(4326), true
	case *shp.PointM:
		return geom.NewPointFlat(geom.XY, []float64{s.X, s.Y}).SetSRID(4326), true
	}
	return nil, false
}
