// ocralign is a command-line tool for transcribing documents to markdown
// with the text annotated by OCR bounding boxes.
//
// The tool splits a PDF (or takes a single image) into page batches, generates
// a markdown transcription for each batch with Gemini or with a Document AI
// layout parser, runs a Document AI OCR processor over the same pages, and
// aligns every OCR line against the markdown. Matched lines are wrapped in
// positional markers carrying their page number and bounding rectangle.
//
// Configuration:
//
// The tool reads an optional YAML configuration file:
//
//	project: "your-vertex-project-id"
//	location: "us-central1"
//	gcp_project_id: "your-documentai-project-id"
//	layout_processor_id: "your-layout-processor-id"
//	ocr_processor_id: "your-ocr-processor-id"
//	mode: "gemini"
//	gemini_model: "gemini-2.5-flash"
//	uniqueness_threshold: 0.5
//	min_overlap: 0.9
//	include_bboxes: true
//	page_batch_size: 10
//	num_jobs: 10
//	cache_dir: ".docai_cache"
//
// Every file setting has a flag or environment variable counterpart; flags
// win over the file, the file wins over the environment. A .env file in the
// working directory is loaded first. Recognized environment variables:
//
//	GOOGLE_CLOUD_PROJECT                      Vertex AI project
//	GCP_PROJECT_ID                            Document AI project
//	DOCUMENTAI_LAYOUT_PARSER_PROCESSOR_ID     Layout parser processor
//	DOCUMENTAI_OCR_PROCESSOR_ID               OCR processor
//	GOOGLE_APPLICATION_CREDENTIALS            Service account credentials
//
// Usage:
//
//	ocralign -input document.pdf [options]
//
// Options:
//
//	-config string      Path to the YAML configuration file
//	-input string       Path to the input PDF or image (required)
//	-output string      Path to save the annotated markdown (default: stdout)
//	-mode string        Markdown backend: "gemini" or "documentai"
//	-cache-dir string   Directory for cached API responses ("" disables)
//	-no-bbox            Skip OCR and emit plain markdown
//	-page-batch int     Pages per processing batch
//	-jobs int           Maximum concurrent API calls
//	-verbose            Enable debug logging
//
// Example:
//
//	export GOOGLE_APPLICATION_CREDENTIALS=/path/to/credentials.json
//	ocralign -config config.yml -input report.pdf -output report.md
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/gardar/ocralign/pkg/pipeline"
)

// loadConfig layers the YAML file (if any) over the defaults, then fills
// still-empty identity fields from the environment.
func loadConfig(path string) (pipeline.Config, error) {
	cfg := pipeline.DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	fillFromEnv(&cfg.Project, "GOOGLE_CLOUD_PROJECT")
	fillFromEnv(&cfg.GCPProjectID, "GCP_PROJECT_ID")
	fillFromEnv(&cfg.LayoutProcessorID, "DOCUMENTAI_LAYOUT_PARSER_PROCESSOR_ID")
	fillFromEnv(&cfg.OCRProcessorID, "DOCUMENTAI_OCR_PROCESSOR_ID")
	return cfg, nil
}

func fillFromEnv(dst *string, key string) {
	if *dst == "" {
		*dst = os.Getenv(key)
	}
}

func main() {
	configPath := flag.String("config", "", "Path to the config YAML file")
	inputPath := flag.String("input", "", "Path to the input PDF or image file (required)")
	outputPath := flag.String("output", "", "Path to save the annotated markdown (default: stdout)")
	mode := flag.String("mode", "", "Markdown backend: \"gemini\" or \"documentai\"")
	cacheDir := flag.String("cache-dir", "", "Directory for cached API responses (empty keeps the config value)")
	noBBox := flag.Bool("no-bbox", false, "Skip OCR and emit plain markdown without bounding boxes")
	pageBatch := flag.Int("page-batch", 0, "Pages per processing batch (0 keeps the config value)")
	jobs := flag.Int("jobs", 0, "Maximum concurrent API calls (0 keeps the config value)")
	verbose := flag.Bool("verbose", false, "Enable debug logging")

	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -input flag is required")
		fmt.Fprintln(os.Stderr, "Usage:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Optional .env for local development credentials.
	if err := godotenv.Load(); err == nil {
		log.Debug("Loaded environment from .env")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *mode != "" {
		cfg.Mode = *mode
	}
	if *cacheDir != "" {
		cfg.CacheDir = *cacheDir
	}
	if *noBBox {
		cfg.IncludeBBoxes = false
	}
	if *pageBatch != 0 {
		cfg.PageBatchSize = *pageBatch
	}
	if *jobs != 0 {
		cfg.NumJobs = *jobs
	}

	ctx := context.Background()
	p, err := pipeline.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize pipeline: %v", err)
	}

	result, err := p.Process(ctx, *inputPath)
	if err != nil {
		log.Fatalf("Error processing document: %v", err)
	}

	content := result.MarkdownContent
	if cfg.IncludeBBoxes {
		content = result.Annotate()
		log.Infof("Bounding box coverage: %.1f%%", result.CoveragePercent*100)
	}

	if *outputPath == "" {
		fmt.Print(content)
		return
	}
	if err := os.WriteFile(*outputPath, []byte(content), 0644); err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}
	fmt.Println("Annotated markdown saved to:", *outputPath)
}
