package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds process-wide settings. Policy constants of the reconstruction
// pipeline live here so they can be tuned without code changes.
type Config struct {
	Port     string `mapstructure:"PORT"`
	DBUrl    string `mapstructure:"DB_URL"`
	RedisUrl string `mapstructure:"REDIS_URL"`

	StationsPath string `mapstructure:"STATIONS_PATH"`
	LogLevel     string `mapstructure:"LOG_LEVEL"`
	LogFormat    string `mapstructure:"LOG_FORMAT"`

	CircularityMin float64 `mapstructure:"CIRCULARITY_MIN"`
	FuzzyMatchMin  int     `mapstructure:"FUZZY_MATCH_MIN"`

	RouteHSVLow   string `mapstructure:"ROUTE_HSV_LOW"`
	RouteHSVHigh  string `mapstructure:"ROUTE_HSV_HIGH"`
	MarkerHSVLow  string `mapstructure:"MARKER_HSV_LOW"`
	MarkerHSVHigh string `mapstructure:"MARKER_HSV_HIGH"`

	SegmenterBackend string `mapstructure:"SEGMENTER_BACKEND"`

	AsciiWidth  int `mapstructure:"ASCII_WIDTH"`
	AsciiHeight int `mapstructure:"ASCII_HEIGHT"`

	Workers      int           `mapstructure:"WORKERS"`
	FetchTimeout time.Duration `mapstructure:"FETCH_TIMEOUT"`
	CacheTTL     time.Duration `mapstructure:"CACHE_TTL"`
}

// HSV is an OpenCV-convention color: H in [0,180], S and V in [0,255].
type HSV struct {
	H, S, V uint8
}

// HSVRange is an inclusive threshold box.
type HSVRange struct {
	Low, High HSV
}

// Contains reports whether c lies inside the range on every channel.
func (r HSVRange) Contains(c HSV) bool {
	return c.H >= r.Low.H && c.H <= r.High.H &&
		c.S >= r.Low.S && c.S <= r.High.S &&
		c.V >= r.Low.V && c.V <= r.High.V
}

func setDefaults() {
	viper.SetDefault("PORT", ":8080")
	viper.SetDefault("DB_URL", "")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("STATIONS_PATH", "data/stations.json")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "console")
	viper.SetDefault("CIRCULARITY_MIN", 0.8)
	viper.SetDefault("FUZZY_MATCH_MIN", 90)
	viper.SetDefault("ROUTE_HSV_LOW", "130,50,50")
	viper.SetDefault("ROUTE_HSV_HIGH", "170,255,255")
	viper.SetDefault("MARKER_HSV_LOW", "145,50,50")
	viper.SetDefault("MARKER_HSV_HIGH", "175,255,255")
	viper.SetDefault("SEGMENTER_BACKEND", "native")
	viper.SetDefault("ASCII_WIDTH", 25)
	viper.SetDefault("ASCII_HEIGHT", 25)
	viper.SetDefault("WORKERS", 1)
	viper.SetDefault("FETCH_TIMEOUT", 10*time.Second)
	viper.SetDefault("CACHE_TTL", 24*time.Hour)
}

// Default returns the configuration with only built-in defaults applied.
func Default() Config {
	viper.Reset()
	setDefaults()
	var c Config
	_ = viper.Unmarshal(&c)
	return c
}

func LoadConfig() (c Config, err error) {
	// Get environment type from ENV variable or use development as default
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	setDefaults()

	// Load environment file
	viper.SetConfigName(fmt.Sprintf(".env.%s", env))
	viper.SetConfigType("env")
	viper.AddConfigPath(".") // Look in the project root directory

	// Environment variables take precedence over config file
	viper.AutomaticEnv()

	// Try to read config file
	if err := viper.ReadInConfig(); err != nil {
		// Continue even if file is not found
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return c, err
		}
	}

	// Map the values to the Config struct
	if err = viper.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, c.Validate()
}

// Validate checks the policy values that would otherwise fail deep inside the pipeline.
func (c Config) Validate() error {
	if c.CircularityMin < 0 || c.CircularityMin > 1 {
		return fmt.Errorf("CIRCULARITY_MIN must be within [0,1], got %v", c.CircularityMin)
	}
	if c.FuzzyMatchMin < 0 || c.FuzzyMatchMin > 100 {
		return fmt.Errorf("FUZZY_MATCH_MIN must be within [0,100], got %d", c.FuzzyMatchMin)
	}
	if c.AsciiWidth < 2 || c.AsciiHeight < 2 {
		return fmt.Errorf("ascii grid must be at least 2x2, got %dx%d", c.AsciiWidth, c.AsciiHeight)
	}
	if _, err := c.RouteRange(); err != nil {
		return err
	}
	if _, err := c.MarkerRange(); err != nil {
		return err
	}
	return nil
}

// RouteRange returns the HSV threshold for the route line.
func (c Config) RouteRange() (HSVRange, error) {
	return parseRange(c.RouteHSVLow, c.RouteHSVHigh)
}

// MarkerRange returns the HSV threshold for the destination marker.
func (c Config) MarkerRange() (HSVRange, error) {
	return parseRange(c.MarkerHSVLow, c.MarkerHSVHigh)
}

func parseRange(low, high string) (HSVRange, error) {
	lo, err := ParseHSV(low)
	if err != nil {
		return HSVRange{}, err
	}
	hi, err := ParseHSV(high)
	if err != nil {
		return HSVRange{}, err
	}
	return HSVRange{Low: lo, High: hi}, nil
}

// ParseHSV parses "h,s,v" with h in [0,180] and s, v in [0,255].
func ParseHSV(s string) (HSV, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return HSV{}, fmt.Errorf("invalid HSV triple %q", s)
	}
	var vals [3]uint8
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return HSV{}, fmt.Errorf("invalid HSV triple %q: %w", s, err)
		}
		limit := 255
		if i == 0 {
			limit = 180
		}
		if n < 0 || n > limit {
			return HSV{}, fmt.Errorf("invalid HSV triple %q: component %d out of range", s, i)
		}
		vals[i] = uint8(n)
	}
	return HSV{H: vals[0], S: vals[1], V: vals[2]}, nil
}
