// Package docsplit splits a source document into the page-range chunks the
// OCR pipeline dispatches to the external services.
//
// PDFs are cut into fixed-size page ranges with pdfcpu; image files pass
// through as a single chunk. Every chunk carries the SHA-256 of the original
// document so downstream response caching can key on content rather than
// file paths.
package docsplit

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Chunk is a contiguous page range extracted from a source document.
type Chunk struct {
	DocumentSHA256 string // Hash of the whole original document
	StartPage      int    // First page of this chunk in the original (0-based)
	EndPage        int    // One past the last page of this chunk
	Data           []byte // Raw chunk bytes (PDF or image)
	MimeType       string // MIME type of Data
}

// Chunks reads the document at path and splits it into chunks of at most
// pageCount pages. Image files become a single chunk regardless of
// pageCount; a pageCount <= 0 keeps a PDF whole. Anything that is neither
// a PDF nor an image is rejected.
func Chunks(path string, pageCount int) ([]Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	sum := sha256.Sum256(data)
	docHash := hex.EncodeToString(sum[:])

	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if strings.HasPrefix(mimeType, "image/") {
		return []Chunk{{
			DocumentSHA256: docHash,
			Data:           data,
			MimeType:       mimeType,
		}}, nil
	}
	if mimeType != "application/pdf" {
		return nil, fmt.Errorf("unsupported file type: %q", mimeType)
	}

	conf := model.NewDefaultConfiguration()
	total, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("failed to count PDF pages: %w", err)
	}

	if pageCount <= 0 {
		return []Chunk{{
			DocumentSHA256: docHash,
			StartPage:      0,
			EndPage:        total,
			Data:           data,
			MimeType:       "application/pdf",
		}}, nil
	}

	var chunks []Chunk
	for start := 0; start < total; start += pageCount {
		end := start + pageCount
		if end > total {
			end = total
		}

		var buf bytes.Buffer
		pages := []string{fmt.Sprintf("%d-%d", start+1, end)}
		if err := api.Trim(bytes.NewReader(data), &buf, pages, conf); err != nil {
			return nil, fmt.Errorf("failed to extract pages %d-%d: %w", start+1, end, err)
		}

		chunks = append(chunks, Chunk{
			DocumentSHA256: docHash,
			StartPage:      start,
			EndPage:        end,
			Data:           buf.Bytes(),
			MimeType:       "application/pdf",
		})
	}
	return chunks, nil
}
