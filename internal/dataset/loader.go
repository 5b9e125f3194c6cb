// Package dataset loads and validates query sets and judgement sets from
// the on-disk evaluation fixtures.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Junhan0037/SearchFoundry/internal/model"
	apperrors "github.com/Junhan0037/SearchFoundry/internal/pkg/errors"
	"github.com/Junhan0037/SearchFoundry/internal/pkg/security"
)

// Loader resolves query-set and judgement-set files beneath a fixed root
// directory, per the {querysets,judgements} layout.
type Loader struct {
	RootDir string
}

// NewLoader returns a Loader rooted at dir (typically the configured
// datasets root directory).
func NewLoader(dir string) *Loader {
	return &Loader{RootDir: dir}
}

func (l *Loader) queryPath(datasetID string) string {
	return filepath.Join(l.RootDir, "querysets", datasetID+"_queries.json")
}

func (l *Loader) judgementPath(datasetID string) string {
	return filepath.Join(l.RootDir, "judgements", datasetID+"_judgements.json")
}

// validateDatasetID rejects the path-traversal, null-byte, and absolute-path
// shapes before datasetID is joined into a filesystem path.
func validateDatasetID(datasetID string) error {
	if err := security.ValidatePath(datasetID); err != nil {
		return apperrors.BadRequestError(fmt.Sprintf("invalid dataset id %q: %v", security.SanitizeForLog(datasetID), err))
	}
	return nil
}

// LoadQuerySet reads and validates the query set for datasetID.
func (l *Loader) LoadQuerySet(datasetID string) (*model.QuerySet, error) {
	if err := validateDatasetID(datasetID); err != nil {
		return nil, err
	}
	path := l.queryPath(datasetID)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NotFoundError(fmt.Sprintf("query set for dataset %q", datasetID))
		}
		return nil, apperrors.InternalError("reading query set file", err)
	}

	var qs model.QuerySet
	if err := json.Unmarshal(data, &qs); err != nil {
		return nil, apperrors.BadRequestError(fmt.Sprintf("parsing query set %s: %v", path, err))
	}
	if qs.DatasetID == "" {
		qs.DatasetID = datasetID
	}
	if err := qs.Validate(); err != nil {
		return nil, err
	}
	if len(qs.Queries) == 0 {
		return nil, apperrors.BadRequestError(fmt.Sprintf("query set %q is empty", datasetID))
	}
	return &qs, nil
}

// LoadJudgementSet reads and validates the judgement set for datasetID
// against its paired query set.
func (l *Loader) LoadJudgementSet(datasetID string, qs *model.QuerySet) (*model.JudgementSet, error) {
	if err := validateDatasetID(datasetID); err != nil {
		return nil, err
	}
	path := l.judgementPath(datasetID)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NotFoundError(fmt.Sprintf("judgement set for dataset %q", datasetID))
		}
		return nil, apperrors.InternalError("reading judgement set file", err)
	}

	var js model.JudgementSet
	if err := json.Unmarshal(data, &js); err != nil {
		return nil, apperrors.BadRequestError(fmt.Sprintf("parsing judgement set %s: %v", path, err))
	}
	if js.DatasetID == "" {
		js.DatasetID = datasetID
	}
	if err := js.Validate(qs); err != nil {
		return nil, err
	}
	return &js, nil
}

// LoadDataset loads and cross-validates both halves of a dataset.
func (l *Loader) LoadDataset(datasetID string) (*model.QuerySet, *model.JudgementSet, error) {
	qs, err := l.LoadQuerySet(datasetID)
	if err != nil {
		return nil, nil, err
	}
	js, err := l.LoadJudgementSet(datasetID, qs)
	if err != nil {
		return nil, nil, err
	}
	return qs, js, nil
}
