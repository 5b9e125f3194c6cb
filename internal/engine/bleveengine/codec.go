package bleveengine

import (
	"strings"
	"time"

	"github.com/Junhan0037/SearchFoundry/internal/model"
)

// docToFields flattens a Document into the map bleve indexes, deriving
// titleAutocomplete for the suggest endpoint's prefix query.
func docToFields(d model.Document) map[string]any {
	return map[string]any{
		"id":                d.DocumentID(),
		"title":             d.Title,
		"titleAutocomplete": strings.ToLower(d.Title),
		"summary":           d.Summary,
		"body":              d.Body,
		"tags":              d.Tags,
		"category":          d.Category,
		"author":            d.Author,
		"publishedAt":       d.PublishedAt.UTC().Format(time.RFC3339),
		"popularityScore":   d.PopularityScore,
	}
}

// docFromFields reconstructs a Document from a bleve hit's stored fields.
func docFromFields(id string, fields map[string]any) model.Document {
	d := model.Document{
		ID:       id,
		Title:    fieldString(fields, "title"),
		Summary:  fieldString(fields, "summary"),
		Body:     fieldString(fields, "body"),
		Tags:     fieldStringSlice(fields, "tags"),
		Category: fieldString(fields, "category"),
		Author:   fieldString(fields, "author"),
	}
	if ts := fieldString(fields, "publishedAt"); ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			d.PublishedAt = t
		}
	}
	d.PopularityScore = fieldFloat(fields, "popularityScore")
	return d
}

func fieldString(fields map[string]any, key string) string {
	v, ok := fields[key]
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func fieldFloat(fields map[string]any, key string) float64 {
	v, ok := fields[key]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	}
	return 0
}

// fieldStringSlice handles bleve's tendency to return a single string for a
// one-element array field and a []interface{} otherwise.
func fieldStringSlice(fields map[string]any, key string) []string {
	v, ok := fields[key]
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case string:
		return []string{t}
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return t
	}
	return nil
}
