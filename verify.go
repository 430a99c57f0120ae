package urlfixtures

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const urlScheme = "https://"

// VerifyError points at the first fixture line that breaks the fixture format.
type VerifyError struct {
	File   string
	Line   int
	Reason string
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Reason)
}

// Report summarises a verified pair of fixtures.
type Report struct {
	URLs       int
	Lines      int
	Duplicates int
}

// DuplicateRatio is the share of original lines that were followed by a near-duplicate.
func (r *Report) DuplicateRatio() float64 {
	if r.URLs == 0 {
		return 0
	}
	return float64(r.Duplicates) / float64(r.URLs)
}

// CheckURL reports why line is not the URL the generator would have written at index, or nil.
func (c *Config) CheckURL(line string, index int) error {
	rest := strings.TrimPrefix(line, urlScheme)
	if rest == line {
		return errors.Errorf("missing %q scheme", urlScheme)
	}

	slash := strings.IndexByte(rest, '/')
	if slash < 0 {
		return errors.New("missing path")
	}
	if domain := rest[:slash]; !contains(c.Domains, domain) {
		return errors.Errorf("unknown domain %q", domain)
	}
	rest = rest[slash+1:]

	param := ""
	if q := strings.IndexByte(rest, '?'); q >= 0 {
		rest, param = rest[:q], rest[q+1:]
		if param == "" {
			return errors.New("empty query string")
		}
	}
	if !contains(c.trackingParams(), param) {
		return errors.Errorf("unknown tracking parameter %q", param)
	}

	suffix := strconv.Itoa(index)
	if !strings.HasSuffix(rest, suffix) {
		return errors.Errorf("path %q does not end in index %d", rest, index)
	}
	if path := strings.TrimSuffix(rest, suffix); !contains(c.Paths, path) {
		return errors.Errorf("unknown path keyword %q", path)
	}
	return nil
}

// VerifyURLs checks a URL fixture on its own and returns its line count.
func VerifyURLs(cfg *Config, urls io.Reader) (int, error) {
	scanner := newLineScanner(urls)
	index := 0
	for scanner.Scan() {
		if err := cfg.CheckURL(scanner.Text(), index); err != nil {
			return index, &VerifyError{File: URLsFileName, Line: index + 1, Reason: err.Error()}
		}
		index++
	}
	if err := scanner.Err(); err != nil {
		return index, errors.Wrap(err, "reading urls")
	}
	if index != cfg.Total {
		return index, &VerifyError{
			File:   URLsFileName,
			Line:   index,
			Reason: fmt.Sprintf("expected %d urls, found %d", cfg.Total, index),
		}
	}
	return index, nil
}

// Verify checks a URL fixture against the near-duplicate fixture derived from it.
// Both readers are consumed in lockstep, so neither fixture is held in memory.
func Verify(cfg *Config, urls, dups io.Reader) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	suffix := cfg.duplicateSuffix()
	report := &Report{}
	urlScanner := newLineScanner(urls)
	dupScanner := newLineScanner(dups)

	var (
		previous    string
		hasPrevious bool
	)
	for dupScanner.Scan() {
		line := dupScanner.Text()
		report.Lines++

		if strings.HasSuffix(line, suffix) {
			if !hasPrevious || line != strings.TrimSpace(previous)+suffix {
				return report, &VerifyError{
					File:   DuplicatesFileName,
					Line:   report.Lines,
					Reason: "near-duplicate does not match the preceding line",
				}
			}
			report.Duplicates++
			hasPrevious = false
			continue
		}

		original, err := nextURL(cfg, urlScanner, report.URLs)
		if err != nil {
			return report, err
		}
		if original == nil {
			return report, &VerifyError{
				File:   DuplicatesFileName,
				Line:   report.Lines,
				Reason: fmt.Sprintf("line %q has no counterpart in %s", line, URLsFileName),
			}
		}
		report.URLs++
		if line != *original {
			return report, &VerifyError{
				File:   DuplicatesFileName,
				Line:   report.Lines,
				Reason: fmt.Sprintf("expected %q, found %q", *original, line),
			}
		}
		previous, hasPrevious = line, true
	}
	if err := dupScanner.Err(); err != nil {
		return report, errors.Wrap(err, "reading duplicates")
	}

	original, err := nextURL(cfg, urlScanner, report.URLs)
	if err != nil {
		return report, err
	}
	if original != nil {
		return report, &VerifyError{
			File:   DuplicatesFileName,
			Line:   report.Lines,
			Reason: fmt.Sprintf("missing %q", *original),
		}
	}

	if report.URLs != cfg.Total {
		return report, &VerifyError{
			File:   URLsFileName,
			Line:   report.URLs,
			Reason: fmt.Sprintf("expected %d urls, found %d", cfg.Total, report.URLs),
		}
	}
	return report, nil
}

// nextURL reads and checks the URL at index, returning nil once the fixture is exhausted.
func nextURL(cfg *Config, scanner *bufio.Scanner, index int) (*string, error) {
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, errors.Wrap(err, "reading urls")
		}
		return nil, nil
	}
	line := scanner.Text()
	if err := cfg.CheckURL(line, index); err != nil {
		return nil, &VerifyError{File: URLsFileName, Line: index + 1, Reason: err.Error()}
	}
	return &line, nil
}

func contains(options []string, value string) bool {
	for _, option := range options {
		if option == value {
			return true
		}
	}
	return false
}
