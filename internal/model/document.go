// Package model defines the core entities shared across the reindex,
// evaluation, and query composition subsystems.
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/Junhan0037/SearchFoundry/internal/pkg/errors"
)

// documentNamespace seeds the deterministic UUID v5 derivation for documents
// ingested without an explicit id.
var documentNamespace = uuid.MustParse("6f9619ff-8b86-d011-b42d-00cf4fc964ff")

// Document is a single indexable unit.
type Document struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Summary         string    `json:"summary,omitempty"`
	Body            string    `json:"body"`
	Tags            []string  `json:"tags"`
	Category        string    `json:"category"`
	Author          string    `json:"author"`
	PublishedAt     time.Time `json:"publishedAt"`
	PopularityScore float64   `json:"popularityScore"`
}

// Validate enforces the Document invariants: title/body/category/author
// non-empty, popularityScore non-negative. It does not require ID to be
// set — callers that omit it should call DocumentID() to derive one.
func (d *Document) Validate() error {
	if d.Title == "" {
		return apperrors.BadRequestError("document title must not be empty")
	}
	if d.Body == "" {
		return apperrors.BadRequestError("document body must not be empty")
	}
	if d.Category == "" {
		return apperrors.BadRequestError("document category must not be empty")
	}
	if d.Author == "" {
		return apperrors.BadRequestError("document author must not be empty")
	}
	if d.PopularityScore < 0 {
		return apperrors.BadRequestError("document popularityScore must be non-negative")
	}
	return nil
}

// DocumentID returns the document's id, deriving a deterministic UUID v5
// from title+author when none was supplied so re-ingesting the same seed
// dataset is idempotent.
func (d *Document) DocumentID() string {
	if d.ID != "" {
		return d.ID
	}
	seed := fmt.Sprintf("%s|%s", d.Title, d.Author)
	return uuid.NewSHA1(documentNamespace, []byte(seed)).String()
}
