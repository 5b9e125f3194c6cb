package bleveengine

import (
	"math"
	"time"

	"github.com/Junhan0037/SearchFoundry/internal/model"
	"github.com/Junhan0037/SearchFoundry/internal/query"
)

// scoredHit is an intermediate (document, score) pair used while applying
// the function_score wrapper client-side.
type scoredHit struct {
	doc   model.Document
	score float64
}

// applyFunctions re-scores hits per the tree's function_score node, since
// bleve has no native decay/field-value-factor/rank-feature support. Every
// function contributes additively (the only score_mode/boost_mode this
// backend implements is SUM, which matches the composer's defaults).
func applyFunctions(n query.Node, hits []scoredHit) []scoredHit {
	if n.Kind != query.NodeFunctionScore || n.FunctionScore == nil {
		return hits
	}

	for i := range hits {
		for _, fn := range n.FunctionScore.Functions {
			switch {
			case fn.Recency != nil:
				hits[i].score += recencyScore(fn.Recency, hits[i].doc.PublishedAt)
			case fn.FieldValueFactor != nil:
				hits[i].score += fieldValueFactorScore(fn.FieldValueFactor, hits[i].doc.PopularityScore)
			case fn.RankFeature != nil:
				hits[i].score += rankFeatureScore(fn.RankFeature, hits[i].doc.PopularityScore)
			}
		}
	}
	return hits
}

// recencyScore evaluates a Gaussian decay with origin=now at call time, per
// the composer's declaration that the clock is always engine-side.
func recencyScore(f *query.RecencyFunction, publishedAt time.Time) float64 {
	scale := parseScaleDuration(f.Scale)
	if scale <= 0 {
		return 0
	}
	age := time.Since(publishedAt)
	if age < 0 {
		age = 0
	}
	decay := f.Decay
	if decay <= 0 || decay >= 1 {
		decay = 0.5
	}
	sigma := float64(scale) / math.Sqrt(-2*math.Log(decay))
	t := float64(age)
	return f.Weight * math.Exp(-(t*t)/(2*sigma*sigma))
}

func parseScaleDuration(scale string) time.Duration {
	if scale == "" {
		return 0
	}
	if d, err := time.ParseDuration(scale); err == nil {
		return d
	}
	// support a bare "{n}d" day suffix, since Go's ParseDuration doesn't.
	if len(scale) > 1 && scale[len(scale)-1] == 'd' {
		if d, err := time.ParseDuration(scale[:len(scale)-1] + "h"); err == nil {
			return d * 24
		}
	}
	return 0
}

func fieldValueFactorScore(f *query.FieldValueFactorFunction, value float64) float64 {
	v := value
	if v == 0 {
		v = f.Missing
	}
	switch f.Modifier {
	case "log1p":
		v = math.Log1p(v)
	case "ln":
		if v > 0 {
			v = math.Log(v)
		}
	case "sqrt":
		if v >= 0 {
			v = math.Sqrt(v)
		}
	}
	return f.Weight * v
}

func rankFeatureScore(f *query.RankFeatureClause, value float64) float64 {
	if f.Pivot <= 0 {
		return 0
	}
	saturation := value / (value + f.Pivot)
	return f.Boost * saturation
}
