// Package hash provides hashing utilities used by the content-hash
// validation check.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
)

// SHA256 computes the SHA256 hash of data and returns it as a hex string.
func SHA256(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// SHA256String computes the SHA256 hash of a string.
func SHA256String(s string) string {
	return SHA256([]byte(s))
}

// SHA256Short returns the first n characters of a SHA256 hash.
func SHA256Short(data []byte, n int) string {
	h := SHA256(data)
	if n > len(h) {
		return h
	}
	return h[:n]
}

// DocumentFields is the subset of a document's fields the content-hash check
// serializes. Callers pass the fields rather than a concrete document type so
// this package stays free of a dependency on internal/model.
type DocumentFields struct {
	ID              string
	Title           string
	Summary         string
	Body            string
	Tags            []string
	Category        string
	Author          string
	PublishedAt     string
	PopularityScore float64
}

// SerializeDocument produces the canonical pipe-delimited serialization the
// content-hash check feeds into SHA-256:
// id|title|summary_or_empty|body|sorted_tags_comma_joined|category|author|publishedAt|popularityScore
func SerializeDocument(d DocumentFields) string {
	tags := make([]string, len(d.Tags))
	copy(tags, d.Tags)
	sort.Strings(tags)

	var b strings.Builder
	b.WriteString(d.ID)
	b.WriteByte('|')
	b.WriteString(d.Title)
	b.WriteByte('|')
	b.WriteString(d.Summary)
	b.WriteByte('|')
	b.WriteString(d.Body)
	b.WriteByte('|')
	b.WriteString(strings.Join(tags, ","))
	b.WriteByte('|')
	b.WriteString(d.Category)
	b.WriteByte('|')
	b.WriteString(d.Author)
	b.WriteByte('|')
	b.WriteString(d.PublishedAt)
	b.WriteByte('|')
	b.WriteString(strconv.FormatFloat(d.PopularityScore, 'g', -1, 64))
	return b.String()
}

// RunningDigest accumulates a SHA-256 digest across a paged, ascending-id
// scan without holding every document in memory at once.
type RunningDigest struct {
	h     [32]byte
	count int
}

// NewRunningDigest returns an empty running digest.
func NewRunningDigest() *RunningDigest {
	return &RunningDigest{}
}

// Add feeds one document's canonical serialization into the digest.
func (r *RunningDigest) Add(fields DocumentFields) {
	serialized := SerializeDocument(fields)
	combined := append([]byte(hex.EncodeToString(r.h[:])), []byte(serialized)...)
	r.h = sha256.Sum256(combined)
	r.count++
}

// Sum returns the accumulated digest as a hex string and the number of
// documents fed into it.
func (r *RunningDigest) Sum() (digest string, count int) {
	return hex.EncodeToString(r.h[:]), r.count
}
