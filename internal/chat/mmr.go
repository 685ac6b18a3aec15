package chat

import (
	"math"

	"github.com/memomind/memomind/internal/vectorstore"
)

// maximalMarginalRelevance picks up to k candidates balancing relevance
// to the query against redundancy among the picks. lambda near 1 favors
// relevance, near 0 favors diversity. Candidates must carry vectors;
// any without one fall back on their store score alone.
func maximalMarginalRelevance(query []float32, candidates []vectorstore.Match, k int, lambda float64) []vectorstore.Match {
	if k <= 0 || len(candidates) == 0 {
		return nil
	}
	if k > len(candidates) {
		k = len(candidates)
	}

	relevance := make([]float64, len(candidates))
	for i, c := range candidates {
		if len(c.Vector) > 0 {
			relevance[i] = cosine(query, c.Vector)
		} else {
			relevance[i] = c.Score
		}
	}

	selected := make([]int, 0, k)
	remaining := make(map[int]struct{}, len(candidates))
	for i := range candidates {
		remaining[i] = struct{}{}
	}

	for len(selected) < k {
		best := -1
		bestScore := math.Inf(-1)
		for i := range remaining {
			redundancy := 0.0
			for _, j := range selected {
				if len(candidates[i].Vector) == 0 || len(candidates[j].Vector) == 0 {
					continue
				}
				if sim := cosine(candidates[i].Vector, candidates[j].Vector); sim > redundancy {
					redundancy = sim
				}
			}
			score := lambda*relevance[i] - (1-lambda)*redundancy
			if score > bestScore {
				bestScore = score
				best = i
			}
		}
		if best < 0 {
			break
		}
		selected = append(selected, best)
		delete(remaining, best)
	}

	out := make([]vectorstore.Match, 0, len(selected))
	for _, i := range selected {
		out = append(out, candidates[i])
	}
	return out
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
