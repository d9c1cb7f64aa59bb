package align

import "sort"

// MergeSpans merges overlapping or touching spans into a sorted, disjoint
// set. The input is not modified; an already-disjoint sorted input comes
// back unchanged in content.
func MergeSpans(spans []Span) []Span {
	if len(spans) == 0 {
		return nil
	}
	sorted := make([]Span, len(spans))
	copy(sorted, spans)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	merged := sorted[:1]
	for _, s := range sorted[1:] {
		last := &merged[len(merged)-1]
		if s.Start > last.End {
			merged = append(merged, s)
		} else if s.End > last.End {
			last.End = s.End
		}
	}
	return merged
}

// Coverage reports the fraction of a markdown text of markdownLen bytes that
// is covered by the given spans. Spans may overlap; they are merged before
// summing. A zero-length text has coverage 0.
func Coverage(markdownLen int, spans []Span) float64 {
	if markdownLen == 0 {
		return 0
	}
	covered := 0
	for _, s := range MergeSpans(spans) {
		covered += s.Len()
	}
	return float64(covered) / float64(markdownLen)
}
