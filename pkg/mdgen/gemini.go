package mdgen

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/googleai/vertex"

	"github.com/gardar/ocralign/pkg/docsplit"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// DefaultPrompt instructs the model to transcribe a document chunk into
// markdown that visually mimics the source layout. It is the fallback when
// no prompt is configured.
const DefaultPrompt = `
Carefully transcribe the text for this pdf into a text file with
markdown annotations.

**The final output must be formatted as text that visually
mimics in markdown the layout and hierarchy of the original PDF
when rendered.**

* Do not include headers or footers that are repeated on each page.
* Do not include page numbers.
* Preserve the reading order of the text as it appears in the PDF.
* Remove hyphens that break words at the end of lines.
  * e.g. "uti- lized" -> "utilized"
* Use Markdown headings (` + "`#`, `##`, `###`" + `) to reflect the size and
  hierarchy of titles and subtitles in the PDF.
* Ensure that there are blank lines before and after headings, lists,
  tables, and images.
* End each paragraph with a blank line.
* Do not break lines within paragraphs or headings.
* Render bullet points and numbered lettered lists as markdown lists.
  * It is ok to remove brackets and other consistent punctuation around
    list identifiers
    * e.g. "a)" -> "a."
* Use blockquotes for any sidebars or highlighted text.
* Bold all words and phrases that appear bolded in the original
  source material. Similarly, italicise all text in italics.
* Render tables as markdown, paying particular attention to copying
  identifiers exactly.
* Break text into paragraphs and lists exactly as they appear in
  the PDF.
* Replace any images with a text description of their content.
  * Convert bar charts into markdown tables.
* Convert tables contained in images into markdown.
* Insert markers at the start of each page of the form ` + "`<!--page: {num}-->`" + ` starting at page 0
* Surround tables and figure descriptions with markers, where {num} is
  determined by the document:
  * ` + "`<!--table: {num}-->` ... `<!--end-->`" + `
  * ` + "`<!--figure: {num}-->` ... `<!--end-->`" + `
`

// geminiGenerator transcribes chunks with a Gemini vision model via Vertex AI.
type geminiGenerator struct {
	llm    llms.Model
	prompt string
}

func newGeminiGenerator(ctx context.Context, cfg Config) (*geminiGenerator, error) {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	llm, err := vertex.New(ctx,
		googleai.WithCloudProject(cfg.DocAI.ProjectID),
		googleai.WithCloudLocation(cfg.DocAI.Location),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}

	prompt := cfg.Prompt
	if prompt == "" {
		prompt = DefaultPrompt
	}
	return &geminiGenerator{llm: llm, prompt: prompt}, nil
}

// GenerateMarkdown sends the chunk bytes and the transcription prompt as a
// single vision message and returns the model's text.
func (g *geminiGenerator) GenerateMarkdown(ctx context.Context, chunk docsplit.Chunk) (string, error) {
	resp, err := g.llm.GenerateContent(ctx, []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.BinaryPart(chunk.MimeType, chunk.Data),
				llms.TextPart(g.prompt),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("gemini returned no choices")
	}
	return resp.Choices[0].Content, nil
}
