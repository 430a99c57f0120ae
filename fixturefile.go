package urlfixtures

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"
)

const maxLineSize = 1024 * 1024

// FixtureFile is a stream of the lines in a generated fixture.
type FixtureFile struct {
	File *os.File
	mux  sync.Mutex
	err  error
}

// OpenFixture opens a fixture for reading.
func OpenFixture(path string) (*FixtureFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	return &FixtureFile{File: f}, nil
}

// Stream returns a <- chan string that receives lines as they come from the fixture, starting at the current offset.
// The channel closes at end of file or once ctx is done, so a consumer that stops early must cancel ctx.
// Err reports what ended the stream once the channel is closed. Lines longer than 1MB end the stream with an error.
func (f *FixtureFile) Stream(ctx context.Context) <-chan string {
	lines := make(chan string)

	// Only one stream can run at a time per fixture.
	f.mux.Lock()
	go func(lines chan<- string) {
		defer f.mux.Unlock()
		defer close(lines)

		scanner := newLineScanner(f.File)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				f.err = ctx.Err()
				return
			}
		}
		f.err = scanner.Err()
	}(lines)
	return lines
}

// Err returns the error, if any, that ended the last Stream.
func (f *FixtureFile) Err() error {
	f.mux.Lock()
	defer f.mux.Unlock()
	return f.err
}

// Count returns the number of lines in the whole fixture and rewinds it.
// A final line without a trailing newline still counts.
func (f *FixtureFile) Count() (int, error) {
	// We don't want to start a count in the middle of a stream.
	f.mux.Lock()
	defer f.mux.Unlock()

	if _, err := f.File.Seek(0, io.SeekStart); err != nil {
		return 0, errors.Wrap(err, "rewinding fixture")
	}

	const lineBreak = '\n'
	count := 0
	last := byte(lineBreak)
	buf := make([]byte, 32*1024)
	for {
		n, err := f.File.Read(buf)
		if n > 0 {
			count += bytes.Count(buf[:n], []byte{lineBreak})
			last = buf[n-1]
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, errors.Wrap(err, "counting lines")
		}
	}
	if last != lineBreak {
		count++
	}

	// Move back to the head of the file
	if _, err := f.File.Seek(0, io.SeekStart); err != nil {
		return count, errors.Wrap(err, "rewinding fixture")
	}
	return count, nil
}

// Close closes the underlying file.
func (f *FixtureFile) Close() error {
	return f.File.Close()
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineSize)
	return scanner
}
