// Package mdgen generates markdown transcriptions of document chunks.
//
// Two backends implement the same Generator capability and are selected
// once via configuration: a Gemini vision model prompted to transcribe the
// chunk into layout-mimicking markdown, and the Document AI layout parser
// whose structured block output is flattened into markdown.
//
// Generated markdown carries `<!--page: N-->` markers with chunk-relative
// page numbers; rebasing them to absolute pages is the pipeline's job.
package mdgen

import (
	"context"
	"fmt"

	"github.com/gardar/ocralign/pkg/docai"
	"github.com/gardar/ocralign/pkg/docsplit"
)

// Mode selects the markdown generation backend.
type Mode string

const (
	// ModeGemini transcribes chunks with a Gemini vision model.
	ModeGemini Mode = "gemini"
	// ModeDocumentAI flattens Document AI layout parser output.
	ModeDocumentAI Mode = "documentai"
)

// ParseMode validates a mode string from configuration.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeGemini, ModeDocumentAI:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown generation mode %q (want %q or %q)", s, ModeGemini, ModeDocumentAI)
}

// Generator produces a markdown transcription for a single document chunk.
type Generator interface {
	GenerateMarkdown(ctx context.Context, chunk docsplit.Chunk) (string, error)
}

// Config holds the backend settings shared by all generators.
type Config struct {
	DocAI             docai.Config // GCP project and location
	LayoutProcessorID string       // Document AI layout parser processor
	Model             string       // Gemini model name
	Prompt            string       // Transcription prompt; DefaultPrompt when empty
}

// New builds the generator for the configured mode.
func New(ctx context.Context, mode Mode, cfg Config) (Generator, error) {
	switch mode {
	case ModeGemini:
		return newGeminiGenerator(ctx, cfg)
	case ModeDocumentAI:
		if cfg.LayoutProcessorID == "" {
			return nil, fmt.Errorf("documentai mode requires a layout processor ID")
		}
		return &layoutGenerator{cfg: cfg}, nil
	}
	return nil, fmt.Errorf("unknown generation mode %q", mode)
}
