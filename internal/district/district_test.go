package district

import (
	"path/filepath"
	"testing"

	shp "github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// squarePolygon returns a closed unit-square ring offset to (x, y).
func squarePolygon(x, y float64) *shp.Polygon {
	return &shp.Polygon{
		NumParts: 1,
		Parts:    []int32{0},
		Points: []shp.Point{
			{X: x, Y: y},
			{X: x, Y: y + 1},
			{X: x + 1, Y: y + 1},
			{X: x + 1, Y: y},
			{X: x, Y: y},
		},
	}
}

func testSet(t *testing.T, names ...string) *Set {
	t.Helper()
	set := &Set{byFolded: make(map[string]*District)}
	for i, name := range names {
		boundary := polygonToMultiPolygon(squarePolygon(float64(i*10), 0))
		require.NotNil(t, boundary)
		set.districts = append(set.districts, District{Name: name, boundary: boundary})
		d := &set.districts[len(set.districts)-1]
		set.byFolded[foldName(name)] = d
	}
	return set
}

func TestLocate(t *testing.T) {
	set := testSet(t, "Gulshan", "Mirpur")

	name, ok := set.Locate(0.5, 0.5)
	require.True(t, ok)
	assert.Equal(t, "Gulshan", name)

	name, ok = set.Locate(0.5, 10.5)
	require.True(t, ok)
	assert.Equal(t, "Mirpur", name)

	_, ok = set.Locate(0.5, 5.0)
	assert.False(t, ok)
}

func TestLocateFirstMatchWins(t *testing.T) {
	// Two districts covering the same square: registration order decides.
	set := &Set{byFolded: make(map[string]*District)}
	for _, name := range []string{"Inner", "Outer"} {
		set.districts = append(set.districts, District{
			Name:     name,
			boundary: polygonToMultiPolygon(squarePolygon(0, 0)),
		})
	}

	name, ok := set.Locate(0.5, 0.5)
	require.True(t, ok)
	assert.Equal(t, "Inner", name)
}

func TestFind(t *testing.T) {
	set := testSet(t, "São Paulo", "Gulshan")

	d, ok := set.Find("sao paulo")
	require.True(t, ok)
	assert.Equal(t, "São Paulo", d.Name)

	d, ok = set.Find("  GULSHAN ")
	require.True(t, ok)
	assert.Equal(t, "Gulshan", d.Name)

	_, ok = set.Find("banani")
	assert.False(t, ok)

	assert.Equal(t, 2, set.Len())
}

func TestFoldName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"São Paulo", "sao paulo"},
		{"Zürich", "zurich"},
		{"MÉXICO", "mexico"},
		{"  Plain  ", "plain"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, foldName(tt.in))
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.shp"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open shapefile")
}

func TestPolygonToMultiPolygon(t *testing.T) {
	mp := polygonToMultiPolygon(squarePolygon(0, 0))
	require.NotNil(t, mp)
	assert.Equal(t, 1, mp.NumPolygons())

	// Two parts become two polygons.
	multi := &shp.Polygon{
		NumParts: 2,
		Parts:    []int32{0, 5},
		Points: append(squarePolygon(0, 0).Points,
			squarePolygon(10, 0).Points...),
	}
	mp = polygonToMultiPolygon(multi)
	require.NotNil(t, mp)
	assert.Equal(t, 2, mp.NumPolygons())

	assert.Nil(t, polygonToMultiPolygon(nil))
	assert.Nil(t, polygonToMultiPolygon(&shp.Polygon{}))

	// A degenerate part with under four points is dropped.
	degenerate := &shp.Polygon{
		NumParts: 1,
		Parts:    []int32{0},
		Points:   []shp.Point{{X: 0, Y: 0}, {X: 1, Y: 1}},
	}
	assert.Nil(t, polygonToMultiPolygon(degenerate))
}

func TestContainsPoint(t *testing.T) {
	mp := polygonToMultiPolygon(squarePolygon(0, 0))
	require.NotNil(t, mp)

	assert.True(t, containsPoint(mp, 0.5, 0.5))
	assert.False(t, containsPoint(mp, 1.5, 0.5))
	assert.False(t, containsPoint(mp, 0.5, -0.5))
	// Outside the bounding box entirely.
	assert.False(t, containsPoint(mp, 100, 100))
}

func TestPointInRing(t *testing.T) {
	// Unit square as flat XY pairs.
	ring := []float64{0, 0, 0, 1, 1, 1, 1, 0, 0, 0}

	assert.True(t, pointInRing(ring, 0.5, 0.5))
	assert.True(t, pointInRing(ring, 0.01, 0.99))
	assert.False(t, pointInRing(ring, -0.5, 0.5))
	assert.False(t, pointInRing(ring, 0.5, 1.5))

	// Concave L-shape: the notch is outside.
	l := []float64{0, 0, 0, 2, 1, 2, 1, 1, 2, 1, 2, 0, 0, 0}
	assert.True(t, pointInRing(l, 0.5, 1.5))
	assert.False(t, pointInRing(l, 1.5, 1.5))
	assert.True(t, pointInRing(l, 1.5, 0.5))
}
