package urlfixtures

import (
	"bufio"
	"context"
	"io"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/pkg/errors"
)

const fixturePerm = 0644

// Generator writes URL fixtures using the combination of inputs specified in the config.
// A single Generator draws every choice from one random source, so a fixed seed reproduces both files.
type Generator struct {
	*Config

	rng  *rand.Rand
	seed int64
}

// Stats describes a near-duplicate pass.
type Stats struct {
	Lines      int
	Duplicates int
}

// Result describes the files written by Generate.
type Result struct {
	URLsPath       string
	DuplicatesPath string
	URLs           int
	Stats
	Seed int64
}

// FormatURL builds a single fixture URL.
func FormatURL(domain, path string, index int, param string) string {
	var b strings.Builder
	b.WriteString("https://")
	b.WriteString(domain)
	b.WriteByte('/')
	b.WriteString(path)
	b.WriteString(strconv.Itoa(index))
	if param != "" {
		b.WriteByte('?')
		b.WriteString(param)
	}
	return b.String()
}

// ResolvedSeed returns the seed behind the generator's random source.
func (g *Generator) ResolvedSeed() int64 {
	g.random()
	return g.seed
}

func (g *Generator) random() *rand.Rand {
	if g.rng == nil {
		g.rng, g.seed = g.newRand()
	}
	return g.rng
}

func (g *Generator) choose(options []string) string {
	return options[g.random().Intn(len(options))]
}

// WriteURLs writes Total URL lines, the i-th of which carries index i in its path.
func (g *Generator) WriteURLs(w io.Writer) (int, error) {
	if err := g.Validate(); err != nil {
		return 0, err
	}

	params := g.trackingParams()
	bw := bufio.NewWriter(w)
	for i := 0; i < g.Total; i++ {
		domain := g.choose(g.Domains)
		path := g.choose(g.Paths)
		param := g.choose(params)

		bw.WriteString(FormatURL(domain, path, i, param))
		if err := bw.WriteByte('\n'); err != nil {
			return i, errors.Wrap(err, "writing url")
		}
		if g.Progress != nil {
			g.Progress.Add(1)
		}
	}

	if err := bw.Flush(); err != nil {
		return g.Total, errors.Wrap(err, "flushing urls")
	}
	return g.Total, nil
}

// WriteDuplicates copies every line of r to w in order.
// After each line it may also write the trimmed line with the duplicate suffix appended.
// Lines longer than 1MB are rejected with bufio.ErrTooLong.
func (g *Generator) WriteDuplicates(r io.Reader, w io.Writer) (Stats, error) {
	var stats Stats
	if err := g.Validate(); err != nil {
		return stats, err
	}

	suffix := g.duplicateSuffix()
	scanner := newLineScanner(r)
	bw := bufio.NewWriter(w)
	for scanner.Scan() {
		if err := g.writeLine(bw, scanner.Text(), suffix, &stats); err != nil {
			return stats, err
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, errors.Wrap(err, "reading urls")
	}

	if err := bw.Flush(); err != nil {
		return stats, errors.Wrap(err, "flushing duplicates")
	}
	return stats, nil
}

// WriteDuplicatesFrom is WriteDuplicates reading from a fixture stream.
// The stream is cancelled if writing fails, leaving the fixture free for Count and further streams.
func (g *Generator) WriteDuplicatesFrom(ctx context.Context, fixture *FixtureFile, w io.Writer) (Stats, error) {
	var stats Stats
	if err := g.Validate(); err != nil {
		return stats, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	suffix := g.duplicateSuffix()
	bw := bufio.NewWriter(w)
	for line := range fixture.Stream(ctx) {
		if err := g.writeLine(bw, line, suffix, &stats); err != nil {
			return stats, err
		}
	}
	if err := fixture.Err(); err != nil {
		return stats, errors.Wrap(err, "reading urls")
	}

	if err := bw.Flush(); err != nil {
		return stats, errors.Wrap(err, "flushing duplicates")
	}
	return stats, nil
}

func (g *Generator) writeLine(bw *bufio.Writer, line, suffix string, stats *Stats) error {
	bw.WriteString(line)
	if err := bw.WriteByte('\n'); err != nil {
		return errors.Wrap(err, "writing url")
	}
	stats.Lines++

	if g.random().Float64() >= g.DuplicateProbability {
		return nil
	}
	bw.WriteString(strings.TrimSpace(line))
	bw.WriteString(suffix)
	if err := bw.WriteByte('\n'); err != nil {
		return errors.Wrap(err, "writing duplicate")
	}
	stats.Duplicates++
	return nil
}

// Generate writes both fixtures into dir.
// The URL fixture is closed before it is read back to derive the duplicates fixture.
// dir must already exist.
func (g *Generator) Generate(dir string) (*Result, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	result := &Result{Seed: g.ResolvedSeed()}
	result.URLsPath, result.DuplicatesPath = FixturePaths(dir)
	logger := g.logger().WithFields(log.Fields{
		"dir":  dir,
		"seed": result.Seed,
	})

	logger.Debugf("domains %v, paths %v, tracking params %q, duplicate probability %v",
		g.Domains, g.Paths, g.trackingParams(), g.DuplicateProbability)
	logger.Infof("writing %d urls to %s", g.Total, result.URLsPath)
	urls, err := writeFile(result.URLsPath, func(w io.Writer) (int, error) {
		return g.WriteURLs(w)
	})
	if err != nil {
		return nil, err
	}
	result.URLs = urls

	src, err := OpenFixture(result.URLsPath)
	if err != nil {
		return nil, errors.Wrap(err, "reopening urls")
	}
	defer src.Close()

	logger.Infof("writing near-duplicates to %s", result.DuplicatesPath)
	_, err = writeFile(result.DuplicatesPath, func(w io.Writer) (int, error) {
		stats, err := g.WriteDuplicatesFrom(context.Background(), src, w)
		result.Stats = stats
		return stats.Lines, err
	})
	if err != nil {
		return nil, err
	}

	logger.WithFields(log.Fields{
		"urls":       result.URLs,
		"lines":      result.Lines,
		"duplicates": result.Duplicates,
	}).Info("fixtures written")
	return result, nil
}

// writeFile creates path, hands it to write and closes it, keeping the first error.
func writeFile(path string, write func(io.Writer) (int, error)) (int, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, fixturePerm)
	if err != nil {
		return 0, errors.Wrapf(err, "creating %s", path)
	}

	n, err := write(f)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = errors.Wrapf(cerr, "closing %s", path)
	}
	return n, err
}
