// Package align matches OCR text fragments against generated markdown and
// renders the result as positionally annotated markdown.
//
// Two independently produced artifacts describe the same document: a markdown
// transcription produced by a generative model, which follows the source text
// closely but not character-for-character, and a list of text fragments with
// page numbers and bounding rectangles produced by a structured OCR engine.
// Neither artifact says how it maps onto the other. This package reconciles
// them.
//
// The package provides:
//
// - Locate: approximate substring search for one fragment in the markdown
// - Aligner: per-fragment matching with ambiguity and overlap rejection
// - Annotate / Strip: non-destructive positional markup of accepted spans
// - Coverage: the fraction of markdown text explained by accepted spans
//
// All operations are pure functions over their inputs with no shared state,
// so they are safe to call from any number of goroutines over disjoint inputs.
//
// Matching is local: each fragment is placed independently given the full
// markdown text, with no global re-optimization across fragments. Fragments
// the generator dropped, reworded beyond recognition, or was told to suppress
// (repeated headers, page numbers) simply do not appear in the output
// alignment. That is expected behavior, not an error.
package align

import "fmt"

// Aligner matches fragments against markdown text under configured
// rejection policies.
type Aligner struct {
	uniqueness float64 // how strongly the best match must dominate the runner-up
	minOverlap float64 // minimum fraction of the fragment the span must cover
}

// DefaultUniquenessThreshold and DefaultMinOverlap are the standard
// rejection policy parameters.
const (
	DefaultUniquenessThreshold = 0.5
	DefaultMinOverlap          = 0.9
)

// NewAligner validates the policy parameters and returns an Aligner.
// Both thresholds must lie in [0, 1]; anything else is a caller error.
func NewAligner(uniquenessThreshold, minOverlap float64) (*Aligner, error) {
	if uniquenessThreshold < 0 || uniquenessThreshold > 1 {
		return nil, fmt.Errorf("uniqueness threshold must be in [0, 1], got %v", uniquenessThreshold)
	}
	if minOverlap < 0 || minOverlap > 1 {
		return nil, fmt.Errorf("min overlap must be in [0, 1], got %v", minOverlap)
	}
	return &Aligner{
		uniqueness: uniquenessThreshold,
		minOverlap: minOverlap,
	}, nil
}

// Align locates each fragment in the markdown and returns the accepted
// placements keyed by fragment ordinal. Fragments are processed in the
// given order, which is expected to reflect document reading order.
//
// A fragment is dropped, silently, when no candidate span is found, when the
// matched span covers too small a fraction of the fragment's text, or when
// the best match does not dominate the second-best strongly enough to be
// considered unambiguous.
func (a *Aligner) Align(markdown string, fragments []Fragment) Alignment {
	result := make(Alignment)
	doc := normalize(markdown) // shared across fragments, Locate would redo it per call
	for i, frag := range fragments {
		m, ok := locateIn(doc, frag.Text)
		if !ok {
			continue
		}
		if m.Score*a.minOverlap > m.Overlap {
			continue
		}
		if m.RunnerUpScore >= m.Score*(1-a.uniqueness) {
			continue
		}
		result[i] = Placement{Fragment: frag, Span: m.Span}
	}
	return result
}
