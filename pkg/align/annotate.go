package align

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// markerClass identifies the annotation markers this package inserts,
// both in generated open tags and when stripping them back out.
const markerClass = "ocr_bbox"

// closeMarker closes an annotation span.
const closeMarker = "</span>"

// openMarker builds the opening tag for a placement. The tag is
// self-describing: it carries the four rectangle coordinates and the
// absolute page number.
func openMarker(p Placement) string {
	return fmt.Sprintf(`<span class=%q data-bbox=%q data-page="%d">`,
		markerClass, p.Fragment.Rect.String(), p.Fragment.Page)
}

// insertion is one marker to be spliced into the markdown.
type insertion struct {
	pos    int    // byte offset in the markdown
	close  bool   // closing marker
	length int    // length of the owning span
	id     int    // fragment ordinal, final ordering tiebreak
	text   string // marker text
}

// Annotate renders the markdown with an opening marker at each accepted
// span's start and a closing marker at its end. Overlapping spans nest
// deterministically: at any shared position the longer (outer) span's
// markers sit outside the shorter (inner) span's, and closing markers
// precede opening ones, so non-crossing span sets always produce
// well-formed nested markup. Crossing spans (overlap without containment)
// render without error but are not valid nesting.
//
// Stripping all markers from the output reproduces markdown exactly.
func Annotate(markdown string, a Alignment) string {
	if len(a) == 0 {
		return markdown
	}

	insertions := make([]insertion, 0, 2*len(a))
	for id, p := range a {
		insertions = append(insertions,
			insertion{pos: p.Span.Start, close: false, length: p.Span.Len(), id: id, text: openMarker(p)},
			insertion{pos: p.Span.End, close: true, length: p.Span.Len(), id: id, text: closeMarker},
		)
	}

	// Left-to-right emission order: by position; at the same position closing
	// markers before opening ones; closes innermost (shortest) first, opens
	// outermost (longest) first. Equal-length spans pair up by ordinal.
	sort.Slice(insertions, func(i, j int) bool {
		a, b := insertions[i], insertions[j]
		if a.pos != b.pos {
			return a.pos < b.pos
		}
		if a.close != b.close {
			return a.close
		}
		if a.length != b.length {
			if a.close {
				return a.length < b.length
			}
			return a.length > b.length
		}
		if a.close {
			return a.id > b.id
		}
		return a.id < b.id
	})

	var b strings.Builder
	b.Grow(len(markdown) + len(insertions)*len(closeMarker))
	last := 0
	for _, ins := range insertions {
		b.WriteString(markdown[last:ins.pos])
		b.WriteString(ins.text)
		last = ins.pos
	}
	b.WriteString(markdown[last:])
	return b.String()
}

// Strip removes every annotation marker from previously annotated markdown,
// reproducing the original text byte for byte. Only span tags carrying the
// marker class are removed, together with their matching closers; any other
// markup in the text (page-marker comments, HTML the generator emitted)
// passes through untouched via the tokenizer's raw bytes.
func Strip(annotated string) string {
	z := html.NewTokenizer(strings.NewReader(annotated))
	var b strings.Builder
	b.Grow(len(annotated))
	depth := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// On EOF any unconsumed tail is still in the raw buffer.
			b.Write(z.Raw())
			return b.String()
		}
		switch tt {
		case html.StartTagToken:
			raw := z.Raw()
			if isMarkerTag(z) {
				depth++
				continue
			}
			b.Write(raw)
		case html.EndTagToken:
			raw := z.Raw()
			name, _ := z.TagName()
			if string(name) == "span" && depth > 0 {
				depth--
				continue
			}
			b.Write(raw)
		default:
			b.Write(z.Raw())
		}
	}
}

// isMarkerTag reports whether the tokenizer's current start tag is one of
// our annotation markers.
func isMarkerTag(z *html.Tokenizer) bool {
	name, hasAttr := z.TagName()
	if string(name) != "span" || !hasAttr {
		return false
	}
	for {
		key, val, more := z.TagAttr()
		if string(key) == "class" && string(val) == markerClass {
			return true
		}
		if !more {
			return false
		}
	}
}
