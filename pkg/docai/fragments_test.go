package docai

import (
	"testing"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardar/ocralign/pkg/align"
)

func lineFor(start, end int64, verts [4][2]float32) *documentaipb.Document_Page_Line {
	nv := make([]*documentaipb.NormalizedVertex, 4)
	for i, v := range verts {
		nv[i] = &documentaipb.NormalizedVertex{X: v[0], Y: v[1]}
	}
	return &documentaipb.Document_Page_Line{
		Layout: &documentaipb.Document_Page_Layout{
			TextAnchor: &documentaipb.Document_TextAnchor{
				TextSegments: []*documentaipb.Document_TextAnchor_TextSegment{
					{StartIndex: start, EndIndex: end},
				},
			},
			BoundingPoly: &documentaipb.BoundingPoly{NormalizedVertices: nv},
		},
	}
}

func TestFragments(t *testing.T) {
	text := "First line\nSecond line\n"
	doc := &documentaipb.Document{
		Text: text,
		Pages: []*documentaipb.Document_Page{
			{
				PageNumber: 1,
				Lines: []*documentaipb.Document_Page_Line{
					lineFor(0, 11, [4][2]float32{{0.1, 0.05}, {0.9, 0.05}, {0.9, 0.1}, {0.1, 0.1}}),
					lineFor(11, 23, [4][2]float32{{0.1, 0.12}, {0.9, 0.12}, {0.9, 0.2}, {0.1, 0.2}}),
				},
			},
		},
	}

	frags := Fragments(doc)
	require.Len(t, frags, 2)

	assert.Equal(t, "First line", frags[0].Text, "trailing newline is stripped")
	assert.Equal(t, 0, frags[0].Page, "proto page numbers are 1-based")
	assert.Equal(t, align.Rect{Top: 50, Left: 100, Bottom: 100, Right: 900}, frags[0].Rect)

	assert.Equal(t, "Second line", frags[1].Text)
	assert.Equal(t, align.Rect{Top: 120, Left: 100, Bottom: 200, Right: 900}, frags[1].Rect)
}

func TestFragmentsSkipsEmptyLines(t *testing.T) {
	doc := &documentaipb.Document{
		Text: "  \n",
		Pages: []*documentaipb.Document_Page{
			{
				PageNumber: 1,
				Lines: []*documentaipb.Document_Page_Line{
					lineFor(0, 3, [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}),
				},
			},
		},
	}
	assert.Empty(t, Fragments(doc))
}

func TestFragmentsNilDocument(t *testing.T) {
	assert.Nil(t, Fragments(nil))
}

func TestFragmentsMissingBoundingPoly(t *testing.T) {
	doc := &documentaipb.Document{
		Text: "word",
		Pages: []*documentaipb.Document_Page{
			{
				PageNumber: 1,
				Lines: []*documentaipb.Document_Page_Line{
					{
						Layout: &documentaipb.Document_Page_Layout{
							TextAnchor: &documentaipb.Document_TextAnchor{
								TextSegments: []*documentaipb.Document_TextAnchor_TextSegment{
									{StartIndex: 0, EndIndex: 4},
								},
							},
						},
					},
				},
			},
		},
	}

	frags := Fragments(doc)
	require.Len(t, frags, 1)
	assert.Equal(t, align.Rect{}, frags[0].Rect, "missing geometry degrades to the zero rectangle")
}

func TestConfigEndpoint(t *testing.T) {
	assert.Equal(t, "us-documentai.googleapis.com:443", Config{Location: "us"}.Endpoint())
	assert.Equal(t, "eu-documentai.googleapis.com:443", Config{Location: "eu"}.Endpoint())
	assert.Equal(t, "us-documentai.googleapis.com:443", Config{Location: "us-central1"}.Endpoint(),
		"us-central1 processors live on the us multi-region endpoint")
}
