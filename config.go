package urlfixtures

import (
	"math/rand"
	"time"

	"github.com/apex/log"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
)

const (
	// URLsFileName is the name of the plain URL fixture.
	URLsFileName = "urls_100k.txt"
	// DuplicatesFileName is the name of the fixture with near-duplicates injected.
	DuplicatesFileName = "urls_with_duplicates.txt"
	// DefaultDir is where fixtures are written relative to the working directory.
	DefaultDir = "tests/fixtures"
	// DefaultDuplicateSuffix marks a near-duplicate line.
	DefaultDuplicateSuffix = "&ref=copy"
)

// Config holds all generator configuration.
type Config struct {
	Domains        []string
	Paths          []string
	TrackingParams []string
	Total          int

	DuplicateProbability float64
	DuplicateSuffix      string

	// Seed of 0 picks a time-derived seed, so output differs between runs.
	Seed int64

	Logger   log.Interface
	Progress *progressbar.ProgressBar
}

// DefaultConfig returns the configuration the fixtures have always been generated with.
func DefaultConfig() *Config {
	return &Config{
		Domains:              []string{"example.com", "test.org", "site.net"},
		Paths:                []string{"page", "article", "post", "item"},
		TrackingParams:       []string{"utm_source=google", "fbclid=123", ""},
		Total:                100000,
		DuplicateProbability: 0.2,
		DuplicateSuffix:      DefaultDuplicateSuffix,
	}
}

// Validate reports configuration that cannot produce a fixture.
func (c *Config) Validate() error {
	if len(c.Domains) == 0 {
		return errors.New("at least one domain is required")
	}
	if len(c.Paths) == 0 {
		return errors.New("at least one path keyword is required")
	}
	if c.Total < 0 {
		return errors.Errorf("total must not be negative, got %d", c.Total)
	}
	if c.DuplicateProbability < 0 || c.DuplicateProbability > 1 {
		return errors.Errorf("duplicate probability must be within [0, 1], got %v", c.DuplicateProbability)
	}
	return nil
}

func (c *Config) logger() log.Interface {
	if c.Logger == nil {
		return log.Log
	}
	return c.Logger
}

func (c *Config) trackingParams() []string {
	if len(c.TrackingParams) == 0 {
		return []string{""}
	}
	return c.TrackingParams
}

func (c *Config) duplicateSuffix() string {
	if c.DuplicateSuffix == "" {
		return DefaultDuplicateSuffix
	}
	return c.DuplicateSuffix
}

// newRand returns the random source for one generation run and the seed behind it.
func (c *Config) newRand() (*rand.Rand, int64) {
	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed)), seed
}
