package align

import "fmt"

// Rect is a normalized bounding rectangle with coordinates in [0, 1000]
// All four values are scaled to the page dimensions, independent of DPI
type Rect struct {
	Top    int // Top coordinate (y-min)
	Left   int // Left coordinate (x-min)
	Bottom int // Bottom coordinate (y-max)
	Right  int // Right coordinate (x-max)
}

// String renders the rectangle as "top,left,bottom,right", the form used
// in the data-bbox attribute of annotation markers
func (r Rect) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", r.Top, r.Left, r.Bottom, r.Right)
}

// Fragment is a single OCR-detected text unit with its page and rectangle
// Fragments are immutable values; two fragments with identical fields are
// structurally equal
type Fragment struct {
	Text string // The detected text content
	Page int    // Absolute page number (0-based)
	Rect Rect   // Bounding rectangle on the page
}

// Span is a half-open byte interval [Start, End) into the markdown text
type Span struct {
	Start int // Offset of the first byte
	End   int // Offset one past the last byte
}

// Len returns the number of bytes covered by the span
func (s Span) Len() int { return s.End - s.Start }

// Placement records where a fragment landed in the markdown
type Placement struct {
	Fragment Fragment // The OCR fragment
	Span     Span     // Its matched span in the markdown
}

// Alignment maps fragments to their matched spans.
// Keys are fragment ordinals assigned in ingestion order, so two OCR
// detections with identical text, page and rectangle remain distinct entries.
// Fragments the engine rejected are simply absent.
type Alignment map[int]Placement

// Spans collects all matched spans in the alignment, in no particular order
func (a Alignment) Spans() []Span {
	spans := make([]Span, 0, len(a))
	for _, p := range a {
		spans = append(spans, p.Span)
	}
	return spans
}

// Result is the externally visible output of the alignment pipeline
type Result struct {
	MarkdownContent string    // The concatenated, page-renumbered markdown
	Boxes           Alignment // Accepted fragment placements
	CoveragePercent float64   // Fraction of the markdown explained by accepted spans, in [0,1]
}

// Annotate renders the markdown with positional markers for every accepted span
func (r *Result) Annotate() string {
	return Annotate(r.MarkdownContent, r.Boxes)
}
