package project

import (
	"strings"
	"unicode"

	"github.com/snapcloud/snapcloud-server/internal/models"
)

// searchFields is the fixed set of searchable project fields. Anything
// else in a field:value query is silently ignored.
var searchFields = []string{"name", "user", "origin", "notes"}

// Clause is a case-insensitive substring match on one field.
type Clause struct {
	Field string
	Value string
}

// Query is a parsed gallery search: every All clause must match, or at
// least one Any clause. A zero Query matches everything.
type Query struct {
	All []Clause
	Any []Clause
}

func validSearchField(f string) bool {
	for _, s := range searchFields {
		if f == s {
			return true
		}
	}
	return false
}

// ParseSearch turns gallery search text into a Query. Text without a
// colon is one substring OR'd across all searchable fields. Text with
// colons is alternating field:value pairs; in a middle segment the
// trailing word names the next field and the rest is the value.
func ParseSearch(text string) Query {
	var q Query
	if text == "" {
		return q
	}

	if !strings.Contains(text, ":") {
		for _, f := range searchFields {
			q.Any = append(q.Any, Clause{Field: f, Value: text})
		}
		return q
	}

	segs := strings.Split(text, ":")
	for i := range segs {
		segs[i] = strings.TrimSpace(segs[i])
	}

	field := strings.ToLower(segs[0])
	for i := 1; i < len(segs); i++ {
		value := segs[i]
		next := ""
		if i < len(segs)-1 {
			if j := strings.LastIndexFunc(value, unicode.IsSpace); j >= 0 {
				next = strings.ToLower(strings.TrimSpace(value[j+1:]))
				value = strings.TrimSpace(value[:j])
			} else {
				next = strings.ToLower(value)
				value = ""
			}
		}
		if validSearchField(field) && value != "" {
			q.All = append(q.All, Clause{Field: field, Value: value})
		}
		field = next
	}
	return q
}

func projectField(p *models.Project, field string) string {
	switch field {
	case "name":
		return p.Name
	case "user":
		return p.User
	case "origin":
		return p.Origin
	case "notes":
		return p.Notes
	}
	return ""
}

func (c Clause) matches(p *models.Project) bool {
	return strings.Contains(
		strings.ToLower(projectField(p, c.Field)),
		strings.ToLower(c.Value),
	)
}

// Matches evaluates the query against one project. The Mongo repo
// translates the query into $regex filters instead; this in-memory form
// keeps the grammar testable without a backend.
func (q Query) Matches(p *models.Project) bool {
	for _, c := range q.All {
		if !c.matches(p) {
			return false
		}
	}
	if len(q.Any) == 0 {
		return true
	}
	for _, c := range q.Any {
		if c.matches(p) {
			return true
		}
	}
	return false
}
