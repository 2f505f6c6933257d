package search

import (
	"regexp"
	"strings"
)

// Query is a parsed search query. A raw query mixes plain keywords
// with @person and #topic markers:
//
//	"@alice beach sunset #travel"
//
// People drive tag matching, keywords drive semantic matching, and
// topics are carried through for callers that want them.
type Query struct {
	// Raw is the query as the user typed it.
	Raw string
	// People holds @-marker values with the marker stripped.
	People []string
	// Topics holds #-marker values with the marker stripped.
	Topics []string
	// Keywords is the query text with all markers removed.
	Keywords string
}

var markerPattern = regexp.MustCompile(`([@#])([\p{L}\p{N}_-]+)`)

// Parse splits a raw query into people, topics, and keyword text.
func Parse(raw string) Query {
	q := Query{Raw: raw}

	for _, m := range markerPattern.FindAllStringSubmatch(raw, -1) {
		switch m[1] {
		case "@":
			q.People = append(q.People, m[2])
		case "#":
			q.Topics = append(q.Topics, m[2])
		}
	}

	stripped := markerPattern.ReplaceAllString(raw, "")
	q.Keywords = strings.Join(strings.Fields(stripped), " ")

	return q
}

// HasPeople reports whether the query names any people.
func (q Query) HasPeople() bool { return len(q.People) > 0 }

// HasKeywords reports whether any free text remains after stripping markers.
func (q Query) HasKeywords() bool { return q.Keywords != "" }
