package locator

import (
	"testing"

	"ridetrace/internal/model"
	"ridetrace/internal/service/gazetteer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGazetteer() *gazetteer.Gazetteer {
	return gazetteer.New(map[string]model.GeoPoint{
		"W 21 St & 6 Ave":       {Lat: 40.74238, Lon: -73.99744},
		"W 52 St & 6 Ave":       {Lat: 40.76269, Lon: -73.98658},
		"Bleecker St & 7 Ave S": {Lat: 40.73265, Lon: -74.00315},
		"Broadway & E 14 St":    {Lat: 40.73455, Lon: -73.99074},
	})
}

func TestLocateExactMatch(t *testing.T) {
	l := New(testGazetteer())

	m, ok := l.Locate("Bleecker St & 7 Ave S")
	require.True(t, ok)
	assert.Equal(t, 100, m.Score)
	assert.Equal(t, "Bleecker St & 7 Ave S", m.Name)
	assert.Equal(t, model.GeoPoint{Lat: 40.73265, Lon: -74.00315}, m.Geo)
}

func TestLocateUnescapesEntities(t *testing.T) {
	l := New(testGazetteer())

	m, ok := l.Locate("Broadway &amp; E 14 St")
	require.True(t, ok)
	assert.Equal(t, "Broadway & E 14 St", m.Name)
	assert.Equal(t, "Broadway & E 14 St", m.Query)
}

func TestLocateThresholdBoundary(t *testing.T) {
	tests := []struct {
		name  string
		score int
		ok    bool
	}{
		{"below", 89, false},
		{"at threshold", 90, true},
		{"above", 95, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixed := func(a, b string) int { return tt.score }
			l := New(testGazetteer(), WithScorer(fixed))

			m, ok := l.Locate("anything")
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.score, m.Score)
		})
	}
}

func TestLocateTieTakesFirstKey(t *testing.T) {
	fixed := func(a, b string) int { return 95 }
	l := New(testGazetteer(), WithScorer(fixed))

	m, ok := l.Locate("whatever")
	require.True(t, ok)
	assert.Equal(t, "Bleecker St & 7 Ave S", m.Name)
}

func TestLocateCustomThreshold(t *testing.T) {
	fixed := func(a, b string) int { return 80 }
	l := New(testGazetteer(), WithScorer(fixed), WithMinScore(75))

	assert.Equal(t, 75, l.MinScore())
	_, ok := l.Locate("x")
	assert.True(t, ok)
}

func TestLocateUnrelatedString(t *testing.T) {
	l := New(testGazetteer())

	m, ok := l.Locate("Totally Unrelated Place Name")
	assert.False(t, ok)
	assert.NotEmpty(t, m.Name)
	assert.Less(t, m.Score, DefaultMinScore)
}

func TestLocateEmptyGazetteer(t *testing.T) {
	l := New(gazetteer.New(nil))

	m, ok := l.Locate("W 21 St & 6 Ave")
	assert.False(t, ok)
	assert.Empty(t, m.Name)
}

func TestScorersIgnoreDiacriticsAndCase(t *testing.T) {
	assert.Equal(t, 100, WeightedScorer("Café  Plaza", "cafe plaza"))
	assert.Equal(t, 100, RatioScorer("Cafe Plaza", "Cafe Plaza"))
	assert.Less(t, RatioScorer("Cafe Plaza", "Pier 40"), 50)
}
