// Package bleveengine implements the engine.Port against an in-memory
// bleve/v2 index per generation. It backs local development and the test
// suite; a production deployment speaks to a real engine through
// httpengine instead.
package bleveengine

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
)

func buildIndexMapping() mapping.IndexMapping {
	textField := bleve.NewTextFieldMapping()

	dateField := bleve.NewDateTimeFieldMapping()

	numField := bleve.NewNumericFieldMapping()

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("id", textField)
	doc.AddFieldMappingsAt("title", textField)
	doc.AddFieldMappingsAt("titleAutocomplete", textField)
	doc.AddFieldMappingsAt("summary", textField)
	doc.AddFieldMappingsAt("body", textField)
	doc.AddFieldMappingsAt("tags", textField)
	doc.AddFieldMappingsAt("category", textField)
	doc.AddFieldMappingsAt("author", textField)
	doc.AddFieldMappingsAt("publishedAt", dateField)
	doc.AddFieldMappingsAt("popularityScore", numField)

	im := bleve.NewIndexMapping()
	im.DefaultMapping = doc
	return im
}
