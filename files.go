package urlfixtures

import (
	"io/fs"
	"path/filepath"

	"github.com/pkg/errors"
)

// Fixtures is a pair of fixture files on disk.
// Duplicates is nil when only the URL fixture exists.
type Fixtures struct {
	URLs       *FixtureFile
	Duplicates *FixtureFile
}

// FixturePaths returns where the two fixtures live inside dir.
func FixturePaths(dir string) (urls, duplicates string) {
	return filepath.Join(dir, URLsFileName), filepath.Join(dir, DuplicatesFileName)
}

// FixturesFromDirectory opens the fixtures in dir.
// The URL fixture is required, the duplicates fixture is opened if present.
func FixturesFromDirectory(dir string) (*Fixtures, error) {
	urlsPath, dupsPath := FixturePaths(dir)
	urls, err := OpenFixture(urlsPath)
	if err != nil {
		return nil, err
	}

	dups, err := OpenFixture(dupsPath)
	if errors.Is(err, fs.ErrNotExist) {
		return &Fixtures{URLs: urls}, nil
	}
	if err != nil {
		urls.Close()
		return nil, err
	}
	return &Fixtures{URLs: urls, Duplicates: dups}, nil
}

// Verify checks the fixtures against cfg.
// Without a duplicates fixture only the URL fixture is checked.
func (f *Fixtures) Verify(cfg *Config) (*Report, error) {
	if f.Duplicates == nil {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		count, err := VerifyURLs(cfg, f.URLs.File)
		if err != nil {
			return nil, errors.Wrap(err, "verifying urls")
		}
		return &Report{URLs: count, Lines: count}, nil
	}

	report, err := Verify(cfg, f.URLs.File, f.Duplicates.File)
	if err != nil {
		return report, errors.Wrap(err, "verifying fixtures")
	}
	return report, nil
}

// Close closes the files, returning the first error.
func (f *Fixtures) Close() error {
	err := f.URLs.Close()
	if f.Duplicates == nil {
		return err
	}
	if derr := f.Duplicates.Close(); err == nil {
		err = derr
	}
	return err
}
