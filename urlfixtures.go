// Package urlfixtures generates the URL fixtures used to exercise URL deduplication.
// It writes a file of synthetic URLs with tracking noise, then derives a second file from it in which roughly a fifth of the lines are followed by a near-duplicate carrying an extra ref parameter.
// Both files are streamed line-by-line, so the fixture size is bounded by disk rather than memory.
package urlfixtures
