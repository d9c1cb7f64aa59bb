package align

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Match describes the best candidate span found for a fragment.
type Match struct {
	Span          Span    // Best-scoring span in the markdown
	Score         float64 // Similarity score of the best candidate, in (0, 1]
	RunnerUpScore float64 // Score of the second-best candidate, 0 if none
	Overlap       float64 // Fraction of the fragment's text covered by the match
}

// Locate performs an approximate substring search for fragmentText in
// markdown. It reports the best-scoring candidate span together with the
// runner-up score the caller needs for ambiguity rejection, or ok=false when
// no candidate exists at all.
//
// Matching runs over a normalized view of both strings: runes are NFKC
// decomposed, lowercased, whitespace runs collapse to a single space and
// punctuation is dropped. A byte-exact occurrence scores 1.0; occurrences
// that only agree after normalization score below 1.0 in proportion to the
// characters normalization had to discard.
//
// The search itself is a single Rabin-Karp rolling-hash pass over the
// normalized runes, so the cost is linear in the markdown length plus the
// verification cost of the candidate occurrences.
func Locate(markdown, fragmentText string) (Match, bool) {
	return locateIn(normalize(markdown), fragmentText)
}

func locateIn(doc normText, fragmentText string) (Match, bool) {
	frag := normalize(fragmentText)
	if len(frag.runes) == 0 || len(frag.runes) > len(doc.runes) {
		return Match{}, false
	}

	positions := rollingSearch(doc.runes, frag.runes)
	if len(positions) == 0 {
		return Match{}, false
	}

	fragRunes := utf8.RuneCountInString(fragmentText)
	overlap := float64(len(frag.runes)) / float64(fragRunes)
	if overlap > 1 {
		overlap = 1
	}

	var best, runnerUp float64
	var bestSpan Span
	for _, p := range positions {
		span := doc.spanAt(p, len(frag.runes))
		spanRunes := utf8.RuneCountInString(doc.src[span.Start:span.End])
		score := 2 * float64(len(frag.runes)) / float64(fragRunes+spanRunes)
		if score > 1 {
			score = 1
		}
		// Earlier occurrences win ties, keeping results deterministic.
		if score > best {
			runnerUp = best
			best = score
			bestSpan = span
		} else if score > runnerUp {
			runnerUp = score
		}
	}

	return Match{
		Span:          bestSpan,
		Score:         best,
		RunnerUpScore: runnerUp,
		Overlap:       overlap,
	}, true
}

// normText is a normalized view of a string. Each normalized rune remembers
// the byte offset of the original rune it came from, so normalized match
// positions can be mapped back to spans over the source text.
type normText struct {
	src    string
	runes  []rune
	starts []int // starts[i] is the byte offset in src where runes[i] begins
}

// normalize lowercases, NFKC-decomposes, collapses whitespace runs to a
// single space and drops punctuation and symbol runes. Leading and trailing
// whitespace produces no normalized rune at all.
func normalize(s string) normText {
	nt := normText{src: s}
	pendingSpace := -1 // offset of the first whitespace in the current run
	for i, r := range s {
		for _, d := range norm.NFKC.String(string(r)) {
			switch {
			case unicode.IsSpace(d):
				if pendingSpace < 0 {
					pendingSpace = i
				}
			case unicode.IsPunct(d) || unicode.IsSymbol(d):
				// Dropped; an adjacent match may still absorb it, see spanAt.
			default:
				if pendingSpace >= 0 && len(nt.runes) > 0 {
					nt.runes = append(nt.runes, ' ')
					nt.starts = append(nt.starts, pendingSpace)
				}
				pendingSpace = -1
				nt.runes = append(nt.runes, unicode.ToLower(d))
				nt.starts = append(nt.starts, i)
			}
		}
	}
	return nt
}

// spanAt maps a match of m normalized runes starting at normalized position p
// back to a byte span over the source text. The span extends through any
// dropped punctuation immediately following the match ("test document"
// against "This is a test document." yields a span including the final
// period), but never across whitespace.
func (nt normText) spanAt(p, m int) Span {
	start := nt.starts[p]
	lastStart := nt.starts[p+m-1]
	_, w := utf8.DecodeRuneInString(nt.src[lastStart:])
	end := lastStart + w
	for end < len(nt.src) {
		r, w := utf8.DecodeRuneInString(nt.src[end:])
		if !droppedRune(r) {
			break
		}
		end += w
	}
	return Span{Start: start, End: end}
}

// droppedRune reports whether normalization discards r entirely.
func droppedRune(r rune) bool {
	for _, d := range norm.NFKC.String(string(r)) {
		if !unicode.IsPunct(d) && !unicode.IsSymbol(d) {
			return false
		}
	}
	return true
}

// rollingBase is the multiplier for the Rabin-Karp window hash.
const rollingBase uint64 = 1099511628211

// rollingSearch returns the start indices of every occurrence of pat in
// text. Hash collisions are filtered with a direct comparison, so reported
// positions are always true matches.
func rollingSearch(text, pat []rune) []int {
	n, m := len(text), len(pat)
	if m == 0 || m > n {
		return nil
	}

	var patHash, winHash uint64
	pow := uint64(1)
	for i := 0; i < m; i++ {
		patHash = patHash*rollingBase + uint64(pat[i])
		winHash = winHash*rollingBase + uint64(text[i])
		if i > 0 {
			pow *= rollingBase
		}
	}

	var out []int
	for i := 0; ; i++ {
		if winHash == patHash && runesEqual(text[i:i+m], pat) {
			out = append(out, i)
		}
		if i+m == n {
			break
		}
		winHash = (winHash-uint64(text[i])*pow)*rollingBase + uint64(text[i+m])
	}
	return out
}

func runesEqual(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
