package pipeline

import (
	"fmt"

	"github.com/gardar/ocralign/pkg/align"
	"github.com/gardar/ocralign/pkg/mdgen"
)

// Config holds every setting of an OCR pipeline run. Fields map one to one
// onto the YAML configuration file read by the CLI.
type Config struct {
	Project           string `yaml:"project"`             // Vertex AI project
	Location          string `yaml:"location"`            // GCP location, e.g. "us-central1"
	GCPProjectID      string `yaml:"gcp_project_id"`      // Document AI project, defaults to Project
	LayoutProcessorID string `yaml:"layout_processor_id"` // Document AI layout parser processor
	OCRProcessorID    string `yaml:"ocr_processor_id"`    // Document AI OCR processor for bounding boxes

	Mode        string `yaml:"mode"`         // Markdown generation backend: "gemini" or "documentai"
	GeminiModel string `yaml:"gemini_model"` // Gemini model name
	Prompt      string `yaml:"prompt"`       // Transcription prompt override

	UniquenessThreshold float64 `yaml:"uniqueness_threshold"` // Ambiguity rejection, in [0,1]
	MinOverlap          float64 `yaml:"min_overlap"`          // Partial-match rejection, in [0,1]

	IncludeBBoxes bool   `yaml:"include_bboxes"`  // Run bounding box alignment
	PageBatchSize int    `yaml:"page_batch_size"` // Pages per chunk; <= 0 keeps the document whole
	NumJobs       int    `yaml:"num_jobs"`        // Max concurrent external calls
	CacheDir      string `yaml:"cache_dir"`       // API response cache; empty disables
}

// DefaultConfig returns the standard pipeline settings. Project and
// processor IDs have no defaults and must be filled in by the caller.
func DefaultConfig() Config {
	return Config{
		Location:            "us-central1",
		Mode:                string(mdgen.ModeGemini),
		GeminiModel:         mdgen.DefaultModel,
		UniquenessThreshold: align.DefaultUniquenessThreshold,
		MinOverlap:          align.DefaultMinOverlap,
		IncludeBBoxes:       true,
		PageBatchSize:       10,
		NumJobs:             10,
		CacheDir:            ".docai_cache",
	}
}

// Validate rejects configurations the pipeline cannot run with. It fails
// fast so no external calls happen under a bad configuration.
func (c *Config) Validate() error {
	if c.Project == "" {
		return fmt.Errorf("project is required")
	}
	if _, err := mdgen.ParseMode(c.Mode); err != nil {
		return err
	}
	if c.Mode == string(mdgen.ModeDocumentAI) && c.LayoutProcessorID == "" {
		return fmt.Errorf("layout_processor_id is required in documentai mode")
	}
	if c.IncludeBBoxes && c.OCRProcessorID == "" {
		return fmt.Errorf("ocr_processor_id is required when bounding boxes are enabled")
	}
	if c.UniquenessThreshold < 0 || c.UniquenessThreshold > 1 {
		return fmt.Errorf("uniqueness_threshold must be in [0, 1], got %v", c.UniquenessThreshold)
	}
	if c.MinOverlap < 0 || c.MinOverlap > 1 {
		return fmt.Errorf("min_overlap must be in [0, 1], got %v", c.MinOverlap)
	}
	if c.NumJobs <= 0 {
		return fmt.Errorf("num_jobs must be positive, got %d", c.NumJobs)
	}
	return nil
}

// docaiProjectID returns the Document AI project, which may differ from the
// Vertex AI project.
func (c *Config) docaiProjectID() string {
	if c.GCPProjectID != "" {
		return c.GCPProjectID
	}
	return c.Project
}
