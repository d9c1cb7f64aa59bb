package mdgen

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/documentai/apiv1/documentaipb"

	"github.com/gardar/ocralign/pkg/docai"
	"github.com/gardar/ocralign/pkg/docsplit"
)

// layoutGenerator produces markdown from the Document AI layout parser's
// structured block output.
type layoutGenerator struct {
	cfg Config
}

func (g *layoutGenerator) GenerateMarkdown(ctx context.Context, chunk docsplit.Chunk) (string, error) {
	doc, err := docai.Process(ctx, g.cfg.DocAI, g.cfg.LayoutProcessorID, chunk.Data, chunk.MimeType)
	if err != nil {
		return "", fmt.Errorf("layout parsing failed: %w", err)
	}
	return layoutMarkdown(doc), nil
}

// layoutMarkdown flattens a layout parser response into markdown. Blocks
// arrive in reading order; headings map to markdown heading levels, list
// entries to bullet items and tables to pipe tables. A `<!--page: N-->`
// marker is emitted whenever the block page span advances, with the same
// chunk-relative 0-based numbering the Gemini prompt asks for.
func layoutMarkdown(doc *documentaipb.Document) string {
	layout := doc.GetDocumentLayout()
	if layout == nil {
		return ""
	}
	w := &layoutWriter{page: -1}
	w.blocks(layout.GetBlocks())
	return strings.TrimRight(w.b.String(), "\n") + "\n"
}

type layoutWriter struct {
	b    strings.Builder
	page int // last emitted 0-based page marker
}

func (w *layoutWriter) blocks(blocks []*documentaipb.Document_DocumentLayout_DocumentLayoutBlock) {
	for _, block := range blocks {
		w.pageMarker(block)
		switch {
		case block.GetTextBlock() != nil:
			w.textBlock(block.GetTextBlock())
		case block.GetListBlock() != nil:
			w.listBlock(block.GetListBlock())
		case block.GetTableBlock() != nil:
			w.tableBlock(block.GetTableBlock())
		}
	}
}

func (w *layoutWriter) pageMarker(block *documentaipb.Document_DocumentLayout_DocumentLayoutBlock) {
	span := block.GetPageSpan()
	if span == nil {
		return
	}
	page := int(span.GetPageStart()) - 1
	if page >= 0 && page > w.page {
		w.page = page
		fmt.Fprintf(&w.b, "<!--page: %d-->\n\n", page)
	}
}

func (w *layoutWriter) textBlock(tb *documentaipb.Document_DocumentLayout_DocumentLayoutBlock_LayoutTextBlock) {
	text := strings.TrimSpace(tb.GetText())
	if text != "" {
		if prefix := headingPrefix(tb.GetType()); prefix != "" {
			w.b.WriteString(prefix)
		}
		w.b.WriteString(text)
		w.b.WriteString("\n\n")
	}
	w.blocks(tb.GetBlocks())
}

func (w *layoutWriter) listBlock(lb *documentaipb.Document_DocumentLayout_DocumentLayoutBlock_LayoutListBlock) {
	for _, entry := range lb.GetListEntries() {
		text := strings.TrimSpace(blocksText(entry.GetBlocks()))
		if text != "" {
			fmt.Fprintf(&w.b, "* %s\n", text)
		}
	}
	w.b.WriteString("\n")
}

func (w *layoutWriter) tableBlock(tb *documentaipb.Document_DocumentLayout_DocumentLayoutBlock_LayoutTableBlock) {
	header := tb.GetHeaderRows()
	body := tb.GetBodyRows()

	cols := 0
	for _, row := range header {
		w.tableRow(row)
		if len(row.GetCells()) > cols {
			cols = len(row.GetCells())
		}
	}
	if cols > 0 {
		w.b.WriteString("|" + strings.Repeat(" --- |", cols) + "\n")
	}
	for _, row := range body {
		w.tableRow(row)
	}
	w.b.WriteString("\n")
}

func (w *layoutWriter) tableRow(row *documentaipb.Document_DocumentLayout_DocumentLayoutBlock_LayoutTableRow) {
	w.b.WriteString("|")
	for _, cell := range row.GetCells() {
		fmt.Fprintf(&w.b, " %s |", strings.TrimSpace(blocksText(cell.GetBlocks())))
	}
	w.b.WriteString("\n")
}

// blocksText flattens nested blocks to plain text, for list entries and
// table cells where markdown structure cannot nest.
func blocksText(blocks []*documentaipb.Document_DocumentLayout_DocumentLayoutBlock) string {
	var parts []string
	for _, block := range blocks {
		if tb := block.GetTextBlock(); tb != nil {
			if text := strings.TrimSpace(tb.GetText()); text != "" {
				parts = append(parts, text)
			}
			if nested := strings.TrimSpace(blocksText(tb.GetBlocks())); nested != "" {
				parts = append(parts, nested)
			}
		}
	}
	return strings.Join(parts, " ")
}

// headingPrefix maps layout block types to markdown heading markers.
func headingPrefix(blockType string) string {
	switch blockType {
	case "title":
		return "# "
	case "subtitle":
		return "## "
	}
	if level, ok := strings.CutPrefix(blockType, "heading-"); ok && len(level) == 1 && level[0] >= '1' && level[0] <= '6' {
		return strings.Repeat("#", int(level[0]-'0')) + " "
	}
	return ""
}
