package district

import (
	shp "github.com/jonas-p/go-shp"
	geom "github.com/twpayne/go-geom"
)

// polygonToMultiPolygon converts a shapefile Polygon to a geom.MultiPolygon.
// Shapefile polygons store rings as flat part offsets into one point list.
func polygonToMultiPolygon(p *shp.Polygon) *geom.MultiPolygon {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}
		if len(flat) < 8 { // a closed ring needs at least 4 points
			continue
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			continue
		}
		if err := mp.Push(poly); err != nil {
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// containsPoint tests whether (x, y) falls inside any polygon of mp,
// treating only the outer ring of each polygon (holes are rare in
// neighborhood exports and not worth the complexity here).
func containsPoint(mp *geom.MultiPolygon, x, y float64) bool {
	for i := 0; i < mp.NumPolygons(); i++ {
		poly := mp.Polygon(i)

		b := poly.Bounds()
		if x < b.Min(0) || x > b.Max(0) || y < b.Min(1) || y > b.Max(1) {
			continue
		}
		if poly.NumLinearRings() == 0 {
			continue
		}
		if pointInRing(poly.LinearRing(0).FlatCoords(), x, y) {
			return true
		}
	}
	return false
}

// pointInRing is a standard even-odd ray cast over a flat XY coordinate
// list.
func pointInRing(flat []float64, x, y float64) bool {
	inside := false
	n := len(flat) / 2
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := flat[i*2], flat[i*2+1]
		xj, yj := flat[j*2], flat[j*2+1]
		if (yi > y) != (yj > y) &&
			x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}
