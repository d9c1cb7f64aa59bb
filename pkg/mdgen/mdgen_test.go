package mdgen

import (
	"context"
	"fmt"
	"testing"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/gardar/ocralign/pkg/docsplit"
)

func TestParseMode(t *testing.T) {
	m, err := ParseMode("gemini")
	require.NoError(t, err)
	assert.Equal(t, ModeGemini, m)

	m, err = ParseMode("documentai")
	require.NoError(t, err)
	assert.Equal(t, ModeDocumentAI, m)

	_, err = ParseMode("docling")
	assert.ErrorContains(t, err, "unknown generation mode")
}

func TestNewDocumentAIRequiresProcessor(t *testing.T) {
	_, err := New(context.Background(), ModeDocumentAI, Config{})
	assert.ErrorContains(t, err, "layout processor")
}

func textBlock(text, blockType string, page int32) *documentaipb.Document_DocumentLayout_DocumentLayoutBlock {
	return &documentaipb.Document_DocumentLayout_DocumentLayoutBlock{
		Block: &documentaipb.Document_DocumentLayout_DocumentLayoutBlock_TextBlock{
			TextBlock: &documentaipb.Document_DocumentLayout_DocumentLayoutBlock_LayoutTextBlock{
				Text: text,
				Type: blockType,
			},
		},
		PageSpan: &documentaipb.Document_DocumentLayout_DocumentLayoutBlock_LayoutPageSpan{
			PageStart: page,
			PageEnd:   page,
		},
	}
}

func TestLayoutMarkdown(t *testing.T) {
	doc := &documentaipb.Document{
		DocumentLayout: &documentaipb.Document_DocumentLayout{
			Blocks: []*documentaipb.Document_DocumentLayout_DocumentLayoutBlock{
				textBlock("The Title", "heading-1", 1),
				textBlock("Some paragraph text.", "paragraph", 1),
				textBlock("On the next page.", "paragraph", 2),
			},
		},
	}

	md := layoutMarkdown(doc)
	want := "<!--page: 0-->\n\n# The Title\n\nSome paragraph text.\n\n<!--page: 1-->\n\nOn the next page.\n"
	assert.Equal(t, want, md)
}

func TestLayoutMarkdownList(t *testing.T) {
	doc := &documentaipb.Document{
		DocumentLayout: &documentaipb.Document_DocumentLayout{
			Blocks: []*documentaipb.Document_DocumentLayout_DocumentLayoutBlock{
				{
					Block: &documentaipb.Document_DocumentLayout_DocumentLayoutBlock_ListBlock{
						ListBlock: &documentaipb.Document_DocumentLayout_DocumentLayoutBlock_LayoutListBlock{
							ListEntries: []*documentaipb.Document_DocumentLayout_DocumentLayoutBlock_LayoutListEntry{
								{Blocks: []*documentaipb.Document_DocumentLayout_DocumentLayoutBlock{textBlock("first", "paragraph", 1)}},
								{Blocks: []*documentaipb.Document_DocumentLayout_DocumentLayoutBlock{textBlock("second", "paragraph", 1)}},
							},
						},
					},
				},
			},
		},
	}

	assert.Equal(t, "* first\n* second\n", layoutMarkdown(doc))
}

func TestLayoutMarkdownEmpty(t *testing.T) {
	assert.Equal(t, "", layoutMarkdown(&documentaipb.Document{}))
}

func TestHeadingPrefix(t *testing.T) {
	assert.Equal(t, "# ", headingPrefix("title"))
	assert.Equal(t, "## ", headingPrefix("subtitle"))
	assert.Equal(t, "### ", headingPrefix("heading-3"))
	assert.Equal(t, "", headingPrefix("paragraph"))
	assert.Equal(t, "", headingPrefix("heading-9"))
}

// fakeModel records the messages it receives and returns a canned response.
type fakeModel struct {
	messages []llms.MessageContent
	reply    string
	err      error
}

func (f *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	f.messages = messages
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: f.reply}},
	}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	resp, err := f.GenerateContent(ctx, []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)}, options...)
	if err != nil {
		return "", err
	}
	return resp.Choices[0].Content, nil
}

func TestGeminiGeneratorMessageShape(t *testing.T) {
	fake := &fakeModel{reply: "<!--page: 0-->\n# Out"}
	g := &geminiGenerator{llm: fake, prompt: DefaultPrompt}

	chunk := docsplit.Chunk{Data: []byte("%PDF-fake"), MimeType: "application/pdf"}
	out, err := g.GenerateMarkdown(context.Background(), chunk)
	require.NoError(t, err)
	assert.Equal(t, "<!--page: 0-->\n# Out", out)

	require.Len(t, fake.messages, 1)
	msg := fake.messages[0]
	assert.Equal(t, llms.ChatMessageTypeHuman, msg.Role)
	require.Len(t, msg.Parts, 2)

	bin, ok := msg.Parts[0].(llms.BinaryContent)
	require.True(t, ok, "first part carries the chunk bytes")
	assert.Equal(t, "application/pdf", bin.MIMEType)
	assert.Equal(t, []byte("%PDF-fake"), bin.Data)

	txt, ok := msg.Parts[1].(llms.TextContent)
	require.True(t, ok, "second part carries the prompt")
	assert.Equal(t, DefaultPrompt, txt.Text)
}

func TestGeminiGeneratorErrors(t *testing.T) {
	g := &geminiGenerator{llm: &fakeModel{err: fmt.Errorf("quota")}, prompt: "p"}
	_, err := g.GenerateMarkdown(context.Background(), docsplit.Chunk{})
	assert.ErrorContains(t, err, "quota")
}
