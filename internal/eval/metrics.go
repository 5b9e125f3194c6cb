package eval

import (
	"math"
	"sort"
)

// relevanceThreshold is the minimum grade counted as relevant for
// precision/recall/MRR purposes; grades are on the [0,3] scale.
const relevanceThreshold = 1

// computeQueryMetrics derives precision/recall/MRR/nDCG at K from one
// query's top-K evaluated hits (as judged grades, 0 for unjudged) and the
// full set of positive grades that query's judgement set contains.
//
// ndcg's ideal ordering is computed from allPositiveGrades, the complete
// judgement set for the query, not merely the grades attached to the
// retrieved hits — truncating IDCG to what was retrieved would let a
// system that retrieves nothing relevant still score a perfect nDCG.
func computeQueryMetrics(hitGrades []int, allPositiveGrades []int, k int) (precisionAtK, recallAtK, mrr, ndcgAtK float64, relevantRetrieved int) {
	retrieved := len(hitGrades)
	if retrieved > k {
		retrieved = k
	}
	if retrieved < 1 {
		retrieved = 1
	}

	for i, g := range hitGrades {
		if i >= k {
			break
		}
		if g > 0 {
			relevantRetrieved++
		}
	}
	precisionAtK = float64(relevantRetrieved) / float64(retrieved)

	totalRelevant := 0
	for _, g := range allPositiveGrades {
		if g > 0 {
			totalRelevant++
		}
	}
	if totalRelevant > 0 {
		recallAtK = float64(relevantRetrieved) / float64(totalRelevant)
	}

	for i, g := range hitGrades {
		if i >= k {
			break
		}
		if g >= relevanceThreshold {
			mrr = 1.0 / float64(i+1)
			break
		}
	}

	dcg := dcgAt(hitGrades, k)
	idcg := dcgAt(idealOrdering(allPositiveGrades), k)
	if idcg > 0 {
		ndcgAtK = dcg / idcg
	}

	return precisionAtK, recallAtK, mrr, ndcgAtK, relevantRetrieved
}

// dcgAt computes Σ (2^grade-1)/log2(i+2) over the first k grades (missing
// or zero grades contribute 0).
func dcgAt(grades []int, k int) float64 {
	var sum float64
	for i, g := range grades {
		if i >= k {
			break
		}
		if g <= 0 {
			continue
		}
		sum += (math.Exp2(float64(g)) - 1) / math.Log2(float64(i+2))
	}
	return sum
}

// idealOrdering returns the descending-sorted positive grades from a
// judgement set, the best-possible retrieval order for IDCG.
func idealOrdering(allGrades []int) []int {
	positive := make([]int, 0, len(allGrades))
	for _, g := range allGrades {
		if g > 0 {
			positive = append(positive, g)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(positive)))
	return positive
}
