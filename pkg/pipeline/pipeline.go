// Package pipeline runs a document end to end: split into page chunks,
// generate markdown and fetch OCR text concurrently, then align OCR
// fragments against the markdown to produce annotated output.
package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/gardar/ocralign/pkg/align"
	"github.com/gardar/ocralign/pkg/docai"
	"github.com/gardar/ocralign/pkg/docsplit"
	"github.com/gardar/ocralign/pkg/mdgen"
	"github.com/gardar/ocralign/pkg/ocrcache"
)

// FragmentSource produces positioned OCR fragments for one document chunk.
// Pages in the returned fragments are relative to the chunk.
type FragmentSource interface {
	Fragments(ctx context.Context, chunk docsplit.Chunk) ([]align.Fragment, error)
}

// Pipeline orchestrates markdown generation and OCR alignment for a document.
type Pipeline struct {
	cfg    Config
	gen    mdgen.Generator
	source FragmentSource
	cache  *ocrcache.Cache
}

// New wires a pipeline against the real Gemini and Document AI backends.
func New(ctx context.Context, cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	mode, _ := mdgen.ParseMode(cfg.Mode)
	genProject := cfg.Project
	if mode == mdgen.ModeDocumentAI {
		genProject = cfg.docaiProjectID()
	}
	gen, err := mdgen.New(ctx, mode, mdgen.Config{
		DocAI:             docai.Config{ProjectID: genProject, Location: cfg.Location},
		LayoutProcessorID: cfg.LayoutProcessorID,
		Model:             cfg.GeminiModel,
		Prompt:            cfg.Prompt,
	})
	if err != nil {
		return nil, err
	}
	cache := ocrcache.New(cfg.CacheDir)
	var source FragmentSource
	if cfg.IncludeBBoxes {
		source = &docaiSource{
			cfg:         docai.Config{ProjectID: cfg.docaiProjectID(), Location: cfg.Location},
			processorID: cfg.OCRProcessorID,
			cache:       cache,
		}
	}
	return newPipeline(cfg, gen, source, cache), nil
}

func newPipeline(cfg Config, gen mdgen.Generator, source FragmentSource, cache *ocrcache.Cache) *Pipeline {
	return &Pipeline{cfg: cfg, gen: gen, source: source, cache: cache}
}

// Process runs the full pipeline on the document at path.
func (p *Pipeline) Process(ctx context.Context, path string) (*align.Result, error) {
	return p.ProcessWithMarkdown(ctx, path, "")
}

// ProcessWithMarkdown is Process with a pre-existing markdown transcription.
// When markdown is non-empty the generation step is skipped and the given
// text is aligned as-is.
func (p *Pipeline) ProcessWithMarkdown(ctx context.Context, path, markdown string) (*align.Result, error) {
	chunks, err := docsplit.Chunks(path, p.cfg.PageBatchSize)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"input":  path,
		"chunks": len(chunks),
		"jobs":   p.cfg.NumJobs,
	}).Info("Processing document")

	mdParts := make([]string, len(chunks))
	fragParts := make([][]align.Fragment, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.NumJobs)
	for i, chunk := range chunks {
		g.Go(func() error {
			if markdown == "" {
				md, err := p.chunkMarkdown(gctx, chunk)
				if err != nil {
					return fmt.Errorf("markdown for pages %d-%d: %w", chunk.StartPage, chunk.EndPage, err)
				}
				mdParts[i] = rebasePageMarkers(md, chunk.StartPage)
			}
			if p.source != nil {
				frags, err := p.chunkFragments(gctx, chunk)
				if err != nil {
					return fmt.Errorf("OCR for pages %d-%d: %w", chunk.StartPage, chunk.EndPage, err)
				}
				fragParts[i] = frags
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if markdown == "" {
		markdown = strings.Join(mdParts, "\n")
	}
	var fragments []align.Fragment
	for _, part := range fragParts {
		fragments = append(fragments, part...)
	}

	aligner, err := align.NewAligner(p.cfg.UniquenessThreshold, p.cfg.MinOverlap)
	if err != nil {
		return nil, err
	}
	boxes := aligner.Align(markdown, fragments)
	coverage := align.Coverage(len(markdown), boxes.Spans())
	log.WithFields(log.Fields{
		"fragments": len(fragments),
		"matched":   len(boxes),
		"coverage":  fmt.Sprintf("%.1f%%", coverage*100),
	}).Info("Alignment complete")

	return &align.Result{
		MarkdownContent: markdown,
		Boxes:           boxes,
		CoveragePercent: coverage,
	}, nil
}

// chunkMarkdown generates markdown for one chunk, going through the cache.
func (p *Pipeline) chunkMarkdown(ctx context.Context, chunk docsplit.Chunk) (string, error) {
	key := ocrcache.Key("markdown", p.cfg.Mode, p.cfg.GeminiModel, p.cfg.LayoutProcessorID, p.cfg.Prompt, chunk.DocumentSHA256)
	name := fmt.Sprintf("%s_%d_%d.md", key, chunk.StartPage, chunk.EndPage)
	if data, ok := p.cache.Get(name); ok {
		return string(data), nil
	}
	md, err := p.gen.GenerateMarkdown(ctx, chunk)
	if err != nil {
		return "", err
	}
	if err := p.cache.Put(name, []byte(md)); err != nil {
		log.Warnf("Failed to cache markdown: %v", err)
	}
	return md, nil
}

// chunkFragments fetches OCR fragments for one chunk and rebases their page
// numbers from chunk-relative to document-absolute.
func (p *Pipeline) chunkFragments(ctx context.Context, chunk docsplit.Chunk) ([]align.Fragment, error) {
	frags, err := p.source.Fragments(ctx, chunk)
	if err != nil {
		return nil, err
	}
	for i := range frags {
		frags[i].Page += chunk.StartPage
	}
	return frags, nil
}

// docaiSource fetches fragments from a Document AI OCR processor, caching
// raw Document responses as protojson so reruns skip the API entirely.
type docaiSource struct {
	cfg         docai.Config
	processorID string
	cache       *ocrcache.Cache
}

func (s *docaiSource) Fragments(ctx context.Context, chunk docsplit.Chunk) ([]align.Fragment, error) {
	key := ocrcache.Key("ocr", s.processorID, chunk.DocumentSHA256)
	name := fmt.Sprintf("%s_%d_%d.json", key, chunk.StartPage, chunk.EndPage)
	if data, ok := s.cache.Get(name); ok {
		var doc documentaipb.Document
		if err := protojson.Unmarshal(data, &doc); err == nil {
			return docai.Fragments(&doc), nil
		}
		log.Warnf("Discarding unreadable cached OCR response %s", name)
	}
	doc, err := docai.Process(ctx, s.cfg, s.processorID, chunk.Data, chunk.MimeType)
	if err != nil {
		return nil, err
	}
	if data, err := protojson.Marshal(doc); err == nil {
		if err := s.cache.Put(name, data); err != nil {
			log.Warnf("Failed to cache OCR response: %v", err)
		}
	}
	return docai.Fragments(doc), nil
}

// pageMarkerRe matches page comments emitted by the markdown generators,
// tolerating the three-dash form Gemini sometimes produces.
var pageMarkerRe = regexp.MustCompile(`<!-{2,3}\s*page:\s*(\d+)\s*-->`)

// rebasePageMarkers renumbers chunk-relative page markers to absolute page
// numbers and canonicalizes the marker form.
func rebasePageMarkers(markdown string, startPage int) string {
	return pageMarkerRe.ReplaceAllStringFunc(markdown, func(m string) string {
		rel, err := strconv.Atoi(pageMarkerRe.FindStringSubmatch(m)[1])
		if err != nil {
			return m
		}
		return fmt.Sprintf("<!--page: %d-->", startPage+rel)
	})
}
