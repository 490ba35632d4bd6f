// Package wire implements the key=value&key=value body encoding the Snap
// client speaks: one record per space-separated group, pairs &-joined,
// values percent-encoded.
package wire

import (
	"net/url"
	"strings"
)

// Pair is a single key=value field.
type Pair struct {
	Key   string
	Value string
}

// Record is an ordered field list. Order matters: clients parse
// positionally in places, so fields are emitted in the order given.
type Record []Pair

// Escape percent-encodes a value. Spaces must become %20, never "+":
// a "+" would survive the record split but decode wrong, and a literal
// space would split the record.
func Escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Encode serializes one record.
func (r Record) Encode() string {
	var b strings.Builder
	for i, p := range r {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(Escape(p.Key))
		b.WriteByte('=')
		b.WriteString(Escape(p.Value))
	}
	return b.String()
}

// EncodeList serializes records joined by single spaces.
func EncodeList(records []Record) string {
	parts := make([]string, len(records))
	for i, r := range records {
		parts[i] = r.Encode()
	}
	return strings.Join(parts, " ")
}
