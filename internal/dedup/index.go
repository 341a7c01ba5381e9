package dedup

import (
	"bytes"
	"errors"
	"fmt"
)

// ErrHashCollision is returned when two different contents produce the same
// fingerprint. Deduplication identity rests on fingerprints being unique per
// content, so a collision is an unrecoverable integrity failure.
var ErrHashCollision = errors.New("fingerprint collision between distinct contents")

// Index maps fingerprints to the files that produced them, detecting hash
// collisions and tracking the original-vs-unique counts behind the
// deduplication metrics.
//
// Index is not safe for concurrent use; the simulation is single-threaded and
// each Index is owned by exactly one simulation instance.
type Index struct {
	labels   map[Fingerprint]string // fingerprint -> first file label seen
	contents map[Fingerprint][]byte // fingerprint -> content, for collision checks
	original int                    // cumulative count of ingested files
}

// NewIndex creates an empty deduplication index.
func NewIndex() *Index {
	return &Index{
		labels:   make(map[Fingerprint]string),
		contents: make(map[Fingerprint][]byte),
	}
}

// Add ingests one file and returns its fingerprint.
//
// The boolean result is true when the content was not seen before (a new
// unique block). Re-adding known content is counted against the original file
// total but introduces no new block; the first label observed for a
// fingerprint remains its representative.
//
// Returns ErrHashCollision (wrapped with both labels) if the fingerprint is
// already bound to different content bytes.
func (ix *Index) Add(label string, content []byte) (Fingerprint, bool, error) {
	fp := Hash(content)

	if prev, ok := ix.contents[fp]; ok {
		if !bytes.Equal(prev, content) {
			return fp, false, fmt.Errorf("%w: %q vs %q (fingerprint %s)",
				ErrHashCollision, ix.labels[fp], label, fp.Short())
		}
		ix.original++
		return fp, false, nil
	}

	stored := make([]byte, len(content))
	copy(stored, content)
	ix.contents[fp] = stored
	ix.labels[fp] = label
	ix.original++
	return fp, true, nil
}

// Label returns the representative file label for a fingerprint, or "" if the
// fingerprint has never been ingested.
func (ix *Index) Label(fp Fingerprint) string {
	return ix.labels[fp]
}

// OriginalCount returns the cumulative number of files ingested, duplicates
// included.
func (ix *Index) OriginalCount() int {
	return ix.original
}

// UniqueCount returns the number of distinct content blocks ingested.
func (ix *Index) UniqueCount() int {
	return len(ix.labels)
}
