// Package validate implements the Reindex Validator: up to three
// independent, individually toggleable checks (document count, sample-query
// top-K overlap, content hash) gating a blue/green migration's alias
// switch.
package validate

import (
	"context"
	"fmt"
	"sort"

	"github.com/Junhan0037/SearchFoundry/internal/config"
	"github.com/Junhan0037/SearchFoundry/internal/engine"
	"github.com/Junhan0037/SearchFoundry/internal/model"
	"github.com/Junhan0037/SearchFoundry/internal/pkg/hash"
	"github.com/Junhan0037/SearchFoundry/internal/query"
)

// ResolvedOptions is ValidationOptions with every pointer/zero field filled
// in from config defaults.
type ResolvedOptions struct {
	EnableCountValidation       bool
	EnableSampleQueryValidation bool
	EnableHashValidation        bool
	SampleQueries               []string
	SampleTopK                  int
	MinJaccard                  float64
	HashMaxDocs                 int
	HashPageSize                int
}

// ResolveOptions overlays a request's ValidationOptions atop cfg's defaults;
// a nil pointer field falls back to config, an explicit pointer always wins.
func ResolveOptions(opts model.ValidationOptions, cfg config.ValidationConfig) ResolvedOptions {
	r := ResolvedOptions{
		EnableCountValidation:       cfg.EnableCountValidation,
		EnableSampleQueryValidation: cfg.EnableSampleQueryValidation,
		EnableHashValidation:        cfg.EnableHashValidation,
		SampleQueries:               opts.SampleQueries,
		SampleTopK:                  cfg.SampleTopK,
		MinJaccard:                  cfg.MinJaccard,
		HashMaxDocs:                 cfg.HashMaxDocs,
		HashPageSize:                cfg.HashPageSize,
	}
	if opts.EnableCountValidation != nil {
		r.EnableCountValidation = *opts.EnableCountValidation
	}
	if opts.EnableSampleQueryValidation != nil {
		r.EnableSampleQueryValidation = *opts.EnableSampleQueryValidation
	}
	if opts.EnableHashValidation != nil {
		r.EnableHashValidation = *opts.EnableHashValidation
	}
	if opts.SampleTopK > 0 {
		r.SampleTopK = opts.SampleTopK
	}
	if opts.MinJaccard != nil {
		r.MinJaccard = *opts.MinJaccard
	}
	if opts.HashMaxDocs > 0 {
		r.HashMaxDocs = opts.HashMaxDocs
	}
	if opts.HashPageSize > 0 {
		r.HashPageSize = opts.HashPageSize
	}
	return r
}

// Validator runs the three checks against an engine.Port.
type Validator struct {
	port engine.Port
}

// New wraps port in a Validator.
func New(port engine.Port) *Validator {
	return &Validator{port: port}
}

// Validate runs every check enabled in opts against source and target
// indices (concrete index names, never aliases), and combines their
// outcomes.
func (v *Validator) Validate(ctx context.Context, source, target string, opts ResolvedOptions) (model.ValidationResult, error) {
	result := model.ValidationResult{Passed: true}

	if opts.EnableCountValidation {
		r, err := v.checkCount(ctx, source, target)
		if err != nil {
			return model.ValidationResult{}, err
		}
		result.Count = &r
		if !r.Passed {
			result.Passed = false
			result.FailureReasons = append(result.FailureReasons,
				fmt.Sprintf("count mismatch: source=%d target=%d", r.SourceCount, r.TargetCount))
		}
	}

	if opts.EnableSampleQueryValidation {
		r, err := v.checkSampleQueries(ctx, source, target, opts)
		if err != nil {
			return model.ValidationResult{}, err
		}
		result.SampleQuery = &r
		if !r.Passed {
			result.Passed = false
			for _, d := range r.Diffs {
				if !d.Passed {
					result.FailureReasons = append(result.FailureReasons,
						fmt.Sprintf("sample query %q jaccard %.4f below threshold %.4f", d.Query, d.Jaccard, opts.MinJaccard))
				}
			}
		}
	}

	if opts.EnableHashValidation {
		r, err := v.checkHash(ctx, source, target, opts)
		if err != nil {
			return model.ValidationResult{}, err
		}
		result.Hash = &r
		if !r.Passed {
			result.Passed = false
			result.FailureReasons = append(result.FailureReasons,
				fmt.Sprintf("content hash mismatch after scanning %d documents", r.ScannedCount))
		}
	}

	return result, nil
}

func (v *Validator) checkCount(ctx context.Context, source, target string) (model.CountCheckResult, error) {
	srcCount, err := v.port.Count(ctx, source)
	if err != nil {
		return model.CountCheckResult{}, fmt.Errorf("counting %s: %w", source, err)
	}
	tgtCount, err := v.port.Count(ctx, target)
	if err != nil {
		return model.CountCheckResult{}, fmt.Errorf("counting %s: %w", target, err)
	}
	return model.CountCheckResult{
		SourceCount: srcCount,
		TargetCount: tgtCount,
		Passed:      srcCount == tgtCount,
	}, nil
}

func (v *Validator) checkSampleQueries(ctx context.Context, source, target string, opts ResolvedOptions) (model.SampleCheckResult, error) {
	result := model.SampleCheckResult{Passed: true}

	for _, q := range opts.SampleQueries {
		tree := query.Compose(model.SearchRequest{
			Query:          q,
			Sort:           model.SortRelevance,
			MultiMatchType: model.MultiMatchBestFields,
			Size:           opts.SampleTopK,
		})

		srcIDs, err := v.topIDs(ctx, source, tree)
		if err != nil {
			return model.SampleCheckResult{}, err
		}
		tgtIDs, err := v.topIDs(ctx, target, tree)
		if err != nil {
			return model.SampleCheckResult{}, err
		}

		jaccard, missingInTarget, missingInSource := jaccardSimilarity(srcIDs, tgtIDs)
		passed := jaccard >= opts.MinJaccard
		if !passed {
			result.Passed = false
		}
		result.Diffs = append(result.Diffs, model.SampleQueryDiff{
			Query:           q,
			Jaccard:         jaccard,
			Passed:          passed,
			MissingInTarget: missingInTarget,
			MissingInSource: missingInSource,
		})
	}

	return result, nil
}

func (v *Validator) topIDs(ctx context.Context, target string, tree query.Tree) ([]string, error) {
	result, err := v.port.Search(ctx, target, tree)
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", target, err)
	}
	ids := make([]string, 0, len(result.Hits))
	for _, h := range result.Hits {
		ids = append(ids, h.Document.DocumentID())
	}
	return ids, nil
}

// jaccardSimilarity returns |intersection|/|union| between a and b (1.0 if
// the union is empty), plus the ids present in only one side.
func jaccardSimilarity(a, b []string) (similarity float64, missingInB, missingInA []string) {
	setA := toSet(a)
	setB := toSet(b)

	union := make(map[string]bool, len(setA)+len(setB))
	intersection := 0
	for id := range setA {
		union[id] = true
		if setB[id] {
			intersection++
		} else {
			missingInB = append(missingInB, id)
		}
	}
	for id := range setB {
		union[id] = true
		if !setA[id] {
			missingInA = append(missingInA, id)
		}
	}
	sort.Strings(missingInB)
	sort.Strings(missingInA)

	if len(union) == 0 {
		return 1.0, nil, nil
	}
	return float64(intersection) / float64(len(union)), missingInB, missingInA
}

func toSet(ids []string) map[string]bool {
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}

func (v *Validator) checkHash(ctx context.Context, source, target string, opts ResolvedOptions) (model.HashCheckResult, error) {
	srcDigest, srcCount, err := v.digestIndex(ctx, source, opts)
	if err != nil {
		return model.HashCheckResult{}, err
	}
	tgtDigest, tgtCount, err := v.digestIndex(ctx, target, opts)
	if err != nil {
		return model.HashCheckResult{}, err
	}

	return model.HashCheckResult{
		SourceDigest: srcDigest,
		TargetDigest: tgtDigest,
		ScannedCount: srcCount,
		Passed:       srcDigest == tgtDigest && srcCount == tgtCount,
	}, nil
}

func (v *Validator) digestIndex(ctx context.Context, index string, opts ResolvedOptions) (string, int, error) {
	digest := hash.NewRunningDigest()
	scanned := 0
	from := 0

	for scanned < opts.HashMaxDocs {
		pageSize := opts.HashPageSize
		if remaining := opts.HashMaxDocs - scanned; remaining < pageSize {
			pageSize = remaining
		}

		docs, err := v.port.Scan(ctx, index, from, pageSize)
		if err != nil {
			return "", 0, fmt.Errorf("scanning %s: %w", index, err)
		}
		if len(docs) == 0 {
			break
		}

		for _, d := range docs {
			digest.Add(hash.DocumentFields{
				ID:              d.DocumentID(),
				Title:           d.Title,
				Summary:         d.Summary,
				Body:            d.Body,
				Tags:            d.Tags,
				Category:        d.Category,
				Author:          d.Author,
				PublishedAt:     d.PublishedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
				PopularityScore: d.PopularityScore,
			})
		}

		scanned += len(docs)
		from += len(docs)
		if len(docs) < pageSize {
			break
		}
	}

	sum, _ := digest.Sum()
	return sum, scanned, nil
}
