package search

import "sort"

// minMaxNormalize rescales scores to [0, 1]. When the list holds a single
// element, or all scores are equal, every element gets the full weight.
func minMaxNormalize(items []ScoredItem) []ScoredItem {
	if len(items) == 0 {
		return nil
	}

	min, max := items[0].Score, items[0].Score
	for _, it := range items[1:] {
		if it.Score < min {
			min = it.Score
		}
		if it.Score > max {
			max = it.Score
		}
	}

	normalized := make([]ScoredItem, len(items))
	if max == min {
		for i, it := range items {
			normalized[i] = ScoredItem{ID: it.ID, Score: 1.0}
		}
		return normalized
	}

	span := max - min
	for i, it := range items {
		normalized[i] = ScoredItem{ID: it.ID, Score: (it.Score - min) / span}
	}
	return normalized
}

// sortScoredItems orders by descending score, ascending id on ties, so
// fusion output is deterministic.
func sortScoredItems(items []ScoredItem) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].ID < items[j].ID
	})
}

// truncate caps the list at limit; limit < 0 means no cap.
func truncate(items []ScoredItem, limit int) []ScoredItem {
	if limit >= 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

// Fuse combines a lexical and a semantic result list: each list is min-max
// normalized, weighted by lexicalWeight and its complement, summed per id,
// sorted descending and truncated. When one side is empty the other passes
// through normalization untouched by weighting.
func Fuse(lexical, semantic []ScoredItem, lexicalWeight float64, limit int) []ScoredItem {
	if len(lexical) == 0 && len(semantic) == 0 {
		return []ScoredItem{}
	}
	if len(lexical) == 0 {
		out := minMaxNormalize(semantic)
		sortScoredItems(out)
		return truncate(out, limit)
	}
	if len(semantic) == 0 {
		out := minMaxNormalize(lexical)
		sortScoredItems(out)
		return truncate(out, limit)
	}

	fused := make(map[int32]float32)
	for _, it := range minMaxNormalize(lexical) {
		fused[it.ID] += it.Score * float32(lexicalWeight)
	}
	for _, it := range minMaxNormalize(semantic) {
		fused[it.ID] += it.Score * float32(1.0-lexicalWeight)
	}

	out := make([]ScoredItem, 0, len(fused))
	for id, score := range fused {
		out = append(out, ScoredItem{ID: id, Score: score})
	}
	sortScoredItems(out)
	return truncate(out, limit)
}

// MergeCollections combines per-collection semantic result lists, each
// weighted by 1/n, summed per id, sorted descending and truncated.
func MergeCollections(lists [][]ScoredItem, limit int) []ScoredItem {
	nonEmpty := make([][]ScoredItem, 0, len(lists))
	for _, l := range lists {
		if len(l) > 0 {
			nonEmpty = append(nonEmpty, l)
		}
	}
	if len(nonEmpty) == 0 {
		return []ScoredItem{}
	}
	if len(nonEmpty) == 1 {
		out := make([]ScoredItem, len(nonEmpty[0]))
		copy(out, nonEmpty[0])
		sortScoredItems(out)
		return truncate(out, limit)
	}

	weight := 1.0 / float32(len(nonEmpty))
	merged := make(map[int32]float32)
	for _, l := range nonEmpty {
		for _, it := range l {
			merged[it.ID] += it.Score * weight
		}
	}

	out := make([]ScoredItem, 0, len(merged))
	for id, score := range merged {
		out = append(out, ScoredItem{ID: id, Score: score})
	}
	sortScoredItems(out)
	return truncate(out, limit)
}
