// Package docai wraps the Google Document AI API for the OCR pipeline.
//
// It provides the raw ProcessDocument call against a configured processor
// and the conversion of Document AI responses into the coordinate-tagged
// text fragments the alignment engine consumes.
//
// Authentication uses the GOOGLE_APPLICATION_CREDENTIALS environment
// variable, falling back to application default credentials.
package docai

import (
	"context"
	"fmt"
	"os"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"
)

// Config holds the Google Cloud settings shared by all Document AI calls.
type Config struct {
	ProjectID string // GCP project ID
	Location  string // Processor location, e.g. "us" or "eu"
}

// Endpoint returns the regional API endpoint for the configured location.
// Processors created in "us-central1" live on the multi-region "us" endpoint.
func (c Config) Endpoint() string {
	location := c.Location
	if location == "us-central1" {
		location = "us"
	}
	return fmt.Sprintf("%s-documentai.googleapis.com:443", location)
}

// Process sends document bytes to the given Document AI processor and
// returns the raw Document proto response.
func Process(ctx context.Context, cfg Config, processorID string, data []byte, mimeType string) (*documentaipb.Document, error) {
	opts := []option.ClientOption{option.WithEndpoint(cfg.Endpoint())}
	if creds := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); creds != "" {
		opts = append(opts, option.WithCredentialsFile(creds))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Document AI client: %w", err)
	}
	defer client.Close()

	location := cfg.Location
	if location == "us-central1" {
		location = "us"
	}
	name := fmt.Sprintf(
		"projects/%s/locations/%s/processors/%s",
		cfg.ProjectID, location, processorID,
	)

	req := &documentaipb.ProcessRequest{
		Name: name,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  data,
				MimeType: mimeType,
			},
		},
		SkipHumanReview: true,
	}

	resp, err := client.ProcessDocument(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to process document: %w", err)
	}

	return resp.Document, nil
}
