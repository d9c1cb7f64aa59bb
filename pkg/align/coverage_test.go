package align

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeSpans(t *testing.T) {
	tests := []struct {
		name string
		in   []Span
		want []Span
	}{
		{"empty", nil, nil},
		{
			"disjoint sorted input is a no-op",
			[]Span{{0, 2}, {4, 6}, {8, 10}},
			[]Span{{0, 2}, {4, 6}, {8, 10}},
		},
		{
			"overlapping",
			[]Span{{0, 5}, {3, 8}},
			[]Span{{0, 8}},
		},
		{
			"touching intervals merge",
			[]Span{{0, 3}, {3, 6}},
			[]Span{{0, 6}},
		},
		{
			"unsorted input",
			[]Span{{5, 7}, {0, 2}, {6, 9}},
			[]Span{{0, 2}, {5, 9}},
		},
		{
			"contained span",
			[]Span{{0, 10}, {2, 4}},
			[]Span{{0, 10}},
		},
		{
			"identical spans",
			[]Span{{1, 4}, {1, 4}},
			[]Span{{1, 4}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MergeSpans(tt.in))
		})
	}
}

func TestMergeSpansDoesNotMutateInput(t *testing.T) {
	in := []Span{{5, 7}, {0, 2}}
	MergeSpans(in)
	assert.Equal(t, []Span{{5, 7}, {0, 2}}, in)
}

func TestCoverage(t *testing.T) {
	assert.Equal(t, 0.0, Coverage(0, nil), "empty text")
	assert.Equal(t, 0.0, Coverage(100, nil), "no spans")
	assert.Equal(t, 1.0, Coverage(10, []Span{{0, 10}}), "full cover")
	assert.Equal(t, 1.0, Coverage(10, []Span{{0, 6}, {4, 10}}), "overlapping full cover")
	assert.InDelta(t, 0.5, Coverage(10, []Span{{0, 3}, {3, 5}}), 1e-9)
}

func TestCoverageBounds(t *testing.T) {
	spans := []Span{{0, 4}, {2, 9}, {20, 30}, {25, 40}}
	cov := Coverage(40, spans)
	assert.GreaterOrEqual(t, cov, 0.0)
	assert.LessOrEqual(t, cov, 1.0)
}
