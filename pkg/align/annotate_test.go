package align

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placement(span Span, page int) Placement {
	return Placement{
		Fragment: Fragment{Text: "x", Page: page, Rect: Rect{Top: 1, Left: 2, Bottom: 3, Right: 4}},
		Span:     span,
	}
}

func TestAnnotateNesting(t *testing.T) {
	markdown := "AB"
	a := Alignment{
		0: placement(Span{Start: 0, End: 1}, 1),
		1: placement(Span{Start: 0, End: 2}, 1),
	}

	out := Annotate(markdown, a)

	// The length-2 span is outer: its open marker comes first and its close
	// marker last.
	outer := openMarker(a[1])
	inner := openMarker(a[0])
	want := outer + inner + "A" + closeMarker + "B" + closeMarker
	assert.Equal(t, want, out)
}

func TestAnnotateMarkerContents(t *testing.T) {
	a := Alignment{
		0: Placement{
			Fragment: Fragment{Text: "hi", Page: 7, Rect: Rect{Top: 10, Left: 20, Bottom: 30, Right: 40}},
			Span:     Span{Start: 0, End: 2},
		},
	}

	out := Annotate("hi", a)
	assert.Equal(t, `<span class="ocr_bbox" data-bbox="10,20,30,40" data-page="7">hi</span>`, out)
}

func TestAnnotateAdjacentSpans(t *testing.T) {
	markdown := "abcd"
	a := Alignment{
		0: placement(Span{Start: 0, End: 2}, 0),
		1: placement(Span{Start: 2, End: 4}, 0),
	}

	out := Annotate(markdown, a)

	// At the shared boundary the close of the first span precedes the open
	// of the second.
	want := openMarker(a[0]) + "ab" + closeMarker + openMarker(a[1]) + "cd" + closeMarker
	assert.Equal(t, want, out)
}

func TestAnnotateIdenticalSpansNest(t *testing.T) {
	markdown := "dup"
	a := Alignment{
		0: placement(Span{Start: 0, End: 3}, 0),
		1: placement(Span{Start: 0, End: 3}, 0),
	}

	out := Annotate(markdown, a)
	want := openMarker(a[0]) + openMarker(a[1]) + "dup" + closeMarker + closeMarker
	assert.Equal(t, want, out)
}

func TestAnnotateEmptyAlignment(t *testing.T) {
	assert.Equal(t, "unchanged", Annotate("unchanged", Alignment{}))
	assert.Equal(t, "", Annotate("", nil))
}

func TestAnnotateRoundTrip(t *testing.T) {
	markdown := "<!--page: 3-->\n# Title & More\n\nBody with a < b and <em>markup</em>.\n"
	a := Alignment{
		0: placement(Span{Start: 15, End: 29}, 3),
		1: placement(Span{Start: 31, End: 35}, 3),
		2: placement(Span{Start: 15, End: len(markdown)}, 3),
	}

	out := Annotate(markdown, a)
	assert.Equal(t, markdown, Strip(out), "stripping markers must reproduce the original markdown exactly")
}

func TestStripLeavesForeignSpansAlone(t *testing.T) {
	text := `before <span class="other">kept</span> after`
	assert.Equal(t, text, Strip(text))
}

func TestAnnotateWellFormedNesting(t *testing.T) {
	markdown := strings.Repeat("word ", 20)
	// Pairwise non-crossing spans: disjoint or nested.
	a := Alignment{
		0: placement(Span{Start: 0, End: 50}, 0),
		1: placement(Span{Start: 0, End: 20}, 0),
		2: placement(Span{Start: 5, End: 15}, 0),
		3: placement(Span{Start: 25, End: 40}, 0),
		4: placement(Span{Start: 60, End: 80}, 0),
	}

	out := Annotate(markdown, a)

	depth := 0
	for rest := out; ; {
		open := strings.Index(rest, `<span class="ocr_bbox"`)
		cls := strings.Index(rest, closeMarker)
		if open == -1 && cls == -1 {
			break
		}
		if cls == -1 || (open != -1 && open < cls) {
			depth++
			rest = rest[open+1:]
		} else {
			depth--
			require.GreaterOrEqual(t, depth, 0, "close marker without a matching open")
			rest = rest[cls+len(closeMarker):]
		}
	}
	assert.Zero(t, depth, "every open marker needs a matching close")

	assert.Equal(t, markdown, Strip(out))
}
