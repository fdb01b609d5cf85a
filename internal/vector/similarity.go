package vector

import (
	"math"
	"sort"
)

// CosineSimilarity returns a value in [-1, 1]. Vectors of different length or
// zero norm score 0.
func CosineSimilarity(vec1, vec2 []float32) float32 {
	if len(vec1) != len(vec2) {
		return 0
	}

	var dotProduct, norm1, norm2 float64
	for i := range vec1 {
		dotProduct += float64(vec1[i]) * float64(vec2[i])
		norm1 += float64(vec1[i]) * float64(vec1[i])
		norm2 += float64(vec2[i]) * float64(vec2[i])
	}

	if norm1 == 0 || norm2 == 0 {
		return 0
	}

	return float32(dotProduct / (math.Sqrt(norm1) * math.Sqrt(norm2)))
}

// rank orders results by score, breaking ties by chunk index, and keeps topK
func rank(results []Result, topK int) []Result {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Index < results[j].Index
	})
	if topK >= 0 && len(results) > topK {
		results = results[:topK]
	}
	return results
}
