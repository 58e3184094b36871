package quotes

import (
	"math"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"github.com/kearry/mca/internal/types"
)

// Config tunes the matcher. Zero values fall back to defaults, so
// Matcher{} is usable as-is.
type Config struct {
	// WindowSize is the base number of consecutive segments considered as
	// one candidate; w+5 and w-5 are also tried.
	WindowSize int
	// ContextPadding widens an accepted match on both sides, in seconds.
	ContextPadding float64
}

type Matcher struct {
	cfg Config
}

func New(cfg Config) Matcher {
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = 20
	}
	return Matcher{cfg: cfg}
}

// Find locates the segment window most similar to quote. Matching is a
// pure function of its inputs: identical segments, quote, and config
// always produce the identical result.
func (m Matcher) Find(segs []types.Segment, quote string) types.MatchResult {
	target := normalizeText(quote)
	if target == "" || len(segs) == 0 {
		return types.MatchResult{}
	}

	targetWords := strings.Fields(target)
	if len(targetWords) < 2 {
		return m.findExact(segs, target)
	}

	// Every prefix of every window is a candidate, so a quote spanning
	// fewer segments than the window size still matches tightly.
	best := types.MatchResult{}
	for _, size := range windowSizes(m.cfg.WindowSize, len(segs)) {
		for i := range segs {
			var parts []string
			for j := i; j < len(segs) && j-i < size; j++ {
				if t := strings.TrimSpace(segs[j].Text); t != "" {
					parts = append(parts, t)
				}
				text := strings.Join(parts, " ")
				norm := normalizeText(text)
				if norm == "" {
					continue
				}
				score := blendedScore(target, targetWords, norm)
				if score > best.Score {
					best = types.MatchResult{
						Found:   true,
						Start:   segs[i].Start,
						End:     segs[j].End,
						Snippet: text,
						Score:   score,
					}
				}
			}
		}
	}

	if !best.Found || best.Score < acceptThreshold(len(targetWords)) {
		return types.MatchResult{}
	}
	return m.pad(best)
}

func (m Matcher) findExact(segs []types.Segment, target string) types.MatchResult {
	for _, s := range segs {
		if strings.Contains(normalizeText(s.Text), target) {
			return m.pad(types.MatchResult{
				Found:   true,
				Start:   s.Start,
				End:     s.End,
				Snippet: strings.TrimSpace(s.Text),
				Score:   1.0,
			})
		}
	}
	return types.MatchResult{}
}

func (m Matcher) pad(r types.MatchResult) types.MatchResult {
	r.Start = math.Max(0, r.Start-m.cfg.ContextPadding)
	r.End += m.cfg.ContextPadding
	return r
}

// Shorter quotes need a stricter floor: partial overlap with a short
// phrase is far more likely to be coincidental.
func acceptThreshold(quoteWords int) float64 {
	switch {
	case quoteWords < 5:
		return 0.75
	case quoteWords < 10:
		return 0.65
	default:
		return 0.55
	}
}

func windowSizes(base, segments int) []int {
	var out []int
	for _, w := range []int{base, base + 5, base - 5} {
		if w <= 0 {
			continue
		}
		if w > segments {
			w = segments
		}
		seen := false
		for _, e := range out {
			if e == w {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, w)
		}
	}
	return out
}

func blendedScore(target string, targetWords []string, candidate string) float64 {
	candWords := strings.Fields(candidate)

	seq := sequenceSimilarity(target, candidate)
	overlap := wordOverlap(targetWords, candWords)
	keyword := keywordMatch(targetWords, candWords)

	score := 0.3*seq + 0.4*overlap + 0.3*keyword
	return score * lengthBonus(len(candWords), len(targetWords))
}

// sequenceSimilarity is a character-level alignment ratio in [0,1].
func sequenceSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 1
	}
	d := levenshtein.ComputeDistance(a, b)
	return 1 - float64(d)/float64(longest)
}

// wordOverlap blends Jaccard similarity with coverage of the quote's
// words. Coverage dominates: a good window should contain most of the
// quote even when it carries extra surrounding words.
func wordOverlap(quote, candidate []string) float64 {
	qs := wordSet(quote)
	cs := wordSet(candidate)
	if len(qs) == 0 || len(cs) == 0 {
		return 0
	}
	inter := 0
	for w := range qs {
		if cs[w] {
			inter++
		}
	}
	union := len(qs) + len(cs) - inter
	jaccard := float64(inter) / float64(union)
	coverage := float64(inter) / float64(len(qs))
	return 0.4*jaccard + 0.6*coverage
}

func keywordMatch(quote, candidate []string) float64 {
	qk := keywords(quote)
	if len(qk) == 0 {
		return 0
	}
	ck := keywords(candidate)
	hits := 0
	for w := range qk {
		if ck[w] {
			hits++
		}
	}
	return float64(hits) / float64(len(qk))
}

// lengthBonus is >= 1 and peaks when the candidate is about as long as
// the quote, penalizing windows much longer or shorter.
func lengthBonus(candWords, quoteWords int) float64 {
	if quoteWords == 0 || candWords == 0 {
		return 1
	}
	ratio := float64(candWords) / float64(quoteWords)
	if ratio > 1 {
		ratio = 1 / ratio
	}
	return 1 + 0.2*ratio
}

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "her": true,
	"was": true, "one": true, "our": true, "out": true, "his": true,
	"has": true, "had": true, "how": true, "man": true, "new": true,
	"now": true, "old": true, "see": true, "two": true, "way": true,
	"who": true, "did": true, "get": true, "may": true, "say": true,
	"she": true, "use": true, "that": true, "with": true, "have": true,
	"this": true, "will": true, "your": true, "from": true, "they": true,
	"been": true, "were": true, "what": true, "when": true, "there": true,
	"their": true, "would": true, "about": true, "which": true,
}

func keywords(words []string) map[string]bool {
	out := make(map[string]bool, len(words))
	for _, w := range words {
		if len(w) >= 3 && !stopWords[w] {
			out[w] = true
		}
	}
	return out
}

func wordSet(words []string) map[string]bool {
	out := make(map[string]bool, len(words))
	for _, w := range words {
		out[w] = true
	}
	return out
}

// normalizeText lowercases, strips punctuation except apostrophes inside
// contractions, and collapses whitespace.
func normalizeText(s string) string {
	s = strings.ToLower(s)
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range runes {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '\'' || r == '’':
			if i > 0 && i+1 < len(runes) && unicode.IsLetter(runes[i-1]) && unicode.IsLetter(runes[i+1]) {
				b.WriteRune('\'')
			}
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
