package urlfixtures

import (
	"os"
	"strings"
	"testing"

	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"
)

func testLogger() log.Interface {
	return &log.Logger{Handler: discard.Default, Level: log.DebugLevel}
}

func tinyConfig() *Config {
	return &Config{
		Domains:              []string{"a.com"},
		Paths:                []string{"p"},
		TrackingParams:       []string{""},
		Total:                3,
		DuplicateProbability: 1,
		DuplicateSuffix:      DefaultDuplicateSuffix,
		Seed:                 1,
		Logger:               testLogger(),
	}
}

func lines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "\n")
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return lines(string(contents))
}

func tempFixture(t *testing.T, contents string) *FixtureFile {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "fixture-*.txt")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString(contents); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })
	return &FixtureFile{File: f}
}
