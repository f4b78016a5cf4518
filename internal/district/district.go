// Package district resolves coordinates to named administrative or
// neighborhood boundaries loaded from a shapefile, so community needs can be
// labeled with the area they fall in.
package district

import (
	"strings"
	"unicode"

	shp "github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	geom "github.com/twpayne/go-geom"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// District is one named boundary.
type District struct {
	Name     string
	boundary *geom.MultiPolygon
}

// Set holds loaded districts and answers point-in-district queries.
type Set struct {
	districts []District
	byFolded  map[string]*District
}

// nameFields are the shapefile attribute names probed for a district label,
// in order. Neighborhood exports vary in their schema.
var nameFields = []string{"name", "namelsad", "district", "ntaname", "label"}

// Load reads districts from a polygon shapefile.
func Load(path string) (*Set, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "district: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	nameIdx := -1
	for _, want := range nameFields {
		for i, f := range fields {
			name := strings.ToLower(strings.TrimRight(f.String(), "\x00"))
			if name == want {
				nameIdx = i
				break
			}
		}
		if nameIdx >= 0 {
			break
		}
	}
	if nameIdx < 0 {
		return nil, eris.Errorf("district: no name attribute found in %s", path)
	}

	set := &Set{byFolded: make(map[string]*District)}
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}
		boundary := polygonToMultiPolygon(poly)
		if boundary == nil {
			skipped++
			continue
		}

		name := strings.TrimSpace(strings.TrimRight(reader.Attribute(nameIdx), "\x00"))
		if name == "" {
			skipped++
			continue
		}

		set.districts = append(set.districts, District{Name: name, boundary: boundary})
		d := &set.districts[len(set.districts)-1]
		set.byFolded[foldName(name)] = d
	}

	if skipped > 0 {
		zap.L().Debug("district: skipped unusable shapes",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	if len(set.districts) == 0 {
		return nil, eris.Errorf("district: no usable polygons in %s", path)
	}

	zap.L().Info("district: boundaries loaded",
		zap.String("path", path),
		zap.Int("count", len(set.districts)),
	)
	return set, nil
}

// Locate returns the name of the first district containing the coordinate.
func (s *Set) Locate(lat, lon float64) (string, bool) {
	for i := range s.districts {
		if containsPoint(s.districts[i].boundary, lon, lat) {
			return s.districts[i].Name, true
		}
	}
	return "", false
}

// Find looks a district up by name, ignoring case and accents.
func (s *Set) Find(name string) (*District, bool) {
	d, ok := s.byFolded[foldName(name)]
	return d, ok
}

// Len returns the number of loaded districts.
func (s *Set) Len() int { return len(s.districts) }

// foldName lowercases and strips diacritics so "São Paulo" matches
// "sao paulo".
func foldName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	return strings.ToLower(strings.TrimSpace(folded))
}
