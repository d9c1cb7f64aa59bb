package docai

import (
	"strings"

	"cloud.google.com/go/documentai/apiv1/documentaipb"

	"github.com/gardar/ocralign/pkg/align"
)

// Fragments converts a Document AI OCR response into alignment fragments,
// one per detected text line, in page order then detection order within the
// page. Page numbers are relative to the processed document (0-based); the
// caller rebases them to absolute pages when the document was a chunk.
func Fragments(doc *documentaipb.Document) []align.Fragment {
	if doc == nil {
		return nil
	}
	runes := []rune(doc.Text)

	var out []align.Fragment
	for i, page := range doc.Pages {
		pageNum := i
		if page.PageNumber > 0 {
			pageNum = int(page.PageNumber) - 1
		}
		for _, line := range page.Lines {
			text := cleanLineText(textFromLayout(line.Layout, runes))
			if text == "" {
				continue
			}
			out = append(out, align.Fragment{
				Text: text,
				Page: pageNum,
				Rect: rectFromLayout(line.Layout),
			})
		}
	}
	return out
}

// textFromLayout extracts text from a layout's text anchor segments.
func textFromLayout(layout *documentaipb.Document_Page_Layout, runes []rune) string {
	if layout == nil || layout.TextAnchor == nil {
		return ""
	}
	result := strings.Builder{}
	totalRunes := len(runes)

	for _, seg := range layout.TextAnchor.TextSegments {
		start := int(seg.StartIndex)
		end := int(seg.EndIndex)
		if start < 0 {
			start = 0
		}
		if end > totalRunes {
			end = totalRunes
		}
		if start > end {
			start = end
		}
		result.WriteString(string(runes[start:end]))
	}
	return result.String()
}

// cleanLineText flattens the line breaks Document AI keeps inside line text.
func cleanLineText(text string) string {
	text = strings.ReplaceAll(text, "\r", "")
	text = strings.ReplaceAll(text, "\n", " ")
	return strings.TrimSpace(text)
}

// rectFromLayout converts a layout's normalized bounding polygon (vertex
// coordinates in [0, 1]) into the [0, 1000] integer rectangle used for
// annotation markers.
func rectFromLayout(layout *documentaipb.Document_Page_Layout) align.Rect {
	if layout == nil || layout.BoundingPoly == nil || len(layout.BoundingPoly.NormalizedVertices) < 4 {
		return align.Rect{}
	}
	vertices := layout.BoundingPoly.NormalizedVertices
	return align.Rect{
		Top:    scaleCoord(vertices[0].Y),
		Left:   scaleCoord(vertices[0].X),
		Bottom: scaleCoord(vertices[2].Y),
		Right:  scaleCoord(vertices[2].X),
	}
}

func scaleCoord(v float32) int {
	n := int(v*1000 + 0.5)
	if n < 0 {
		return 0
	}
	if n > 1000 {
		return 1000
	}
	return n
}
