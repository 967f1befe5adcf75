package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	c := Default()
	assert.Equal(t, ":8080", c.Port)
	assert.Equal(t, 0.8, c.CircularityMin)
	assert.Equal(t, 90, c.FuzzyMatchMin)
	assert.Equal(t, 25, c.AsciiWidth)
	assert.Equal(t, 10*time.Second, c.FetchTimeout)
	require.NoError(t, c.Validate())

	r, err := c.RouteRange()
	require.NoError(t, err)
	assert.Equal(t, HSVRange{Low: HSV{130, 50, 50}, High: HSV{170, 255, 255}}, r)

	m, err := c.MarkerRange()
	require.NoError(t, err)
	assert.Equal(t, HSV{145, 50, 50}, m.Low)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	Default()
	t.Setenv("APP_ENV", "test-none")
	t.Setenv("CIRCULARITY_MIN", "0.65")
	t.Setenv("FUZZY_MATCH_MIN", "85")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 0.65, c.CircularityMin)
	assert.Equal(t, 85, c.FuzzyMatchMin)
}

func TestParseHSV(t *testing.T) {
	tests := []struct {
		in      string
		want    HSV
		wantErr bool
	}{
		{"130,50,50", HSV{130, 50, 50}, false},
		{" 0, 0 ,255", HSV{0, 0, 255}, false},
		{"181,0,0", HSV{}, true},
		{"10,256,0", HSV{}, true},
		{"10,20", HSV{}, true},
		{"a,b,c", HSV{}, true},
	}
	for _, tt := range tests {
		got, err := ParseHSV(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	c := Default()
	c.CircularityMin = 1.5
	assert.Error(t, c.Validate())

	c = Default()
	c.FuzzyMatchMin = 101
	assert.Error(t, c.Validate())

	c = Default()
	c.RouteHSVLow = "nope"
	assert.Error(t, c.Validate())
}

func TestHSVRangeContains(t *testing.T) {
	r := HSVRange{Low: HSV{130, 50, 50}, High: HSV{170, 255, 255}}
	assert.True(t, r.Contains(HSV{150, 200, 200}))
	assert.True(t, r.Contains(HSV{130, 50, 50}))
	assert.False(t, r.Contains(HSV{129, 200, 200}))
	assert.False(t, r.Contains(HSV{150, 49, 200}))
}
