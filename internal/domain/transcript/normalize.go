package transcript

import (
	"strings"

	"github.com/kearry/mca/internal/types"
)

const (
	// Timing synthesis for segments whose backend reported no timestamps.
	wordsPerSecond  = 2.5
	minSynthesized  = 1.0
	synthesizedGap  = 0.1

	// Merge policy for fragmentary transcripts.
	shortSegmentAvg = 3.0
	minChunkSec     = 5.0
	maxChunkSec     = 15.0
	minEmitSec      = 1.0
)

// Normalize cleans a raw segment sequence: empty-text segments are
// dropped, zero/zero timestamps are synthesized from text length, and
// very short consecutive segments are merged into coherent chunks.
// It never fails; whatever can be salvaged passes through. Normalizing
// already-normalized output yields the same result.
func Normalize(segs []types.Segment) []types.Segment {
	accepted := repairTimestamps(segs)
	if len(accepted) == 0 {
		return nil
	}
	if avgDuration(accepted) >= shortSegmentAvg {
		return accepted
	}
	return mergeShort(accepted)
}

func repairTimestamps(segs []types.Segment) []types.Segment {
	out := make([]types.Segment, 0, len(segs))
	current := 0.0
	for _, s := range segs {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		start, end := s.Start, s.End
		if start == 0 && end == 0 {
			// Backend omitted real timestamps: continue from the previous
			// accepted segment, estimating duration from word count.
			est := float64(len(strings.Fields(text))) / wordsPerSecond
			if est < minSynthesized {
				est = minSynthesized
			}
			start = current
			end = current + est
			current = end + synthesizedGap
		} else {
			if end < start {
				end = start
			}
			if end > current {
				current = end
			}
		}
		out = append(out, types.Segment{Start: start, End: end, Text: text})
	}
	return out
}

func avgDuration(segs []types.Segment) float64 {
	if len(segs) == 0 {
		return 0
	}
	total := 0.0
	for _, s := range segs {
		total += s.End - s.Start
	}
	return total / float64(len(segs))
}

func mergeShort(segs []types.Segment) []types.Segment {
	var out []types.Segment
	i := 0
	for i < len(segs) {
		chunk := segs[i]
		parts := []string{chunk.Text}
		j := i + 1
		for j < len(segs) {
			next := segs[j]
			if next.End-chunk.Start > maxChunkSec {
				break
			}
			if chunk.End-chunk.Start >= minChunkSec && naturalBreak(chunk.Text, next.Text) {
				break
			}
			parts = append(parts, next.Text)
			// Out-of-order timings must never shrink the chunk.
			if next.End > chunk.End {
				chunk.End = next.End
			}
			chunk.Text = strings.Join(parts, " ")
			j++
		}
		if chunk.End-chunk.Start >= minEmitSec {
			out = append(out, chunk)
		}
		i = j
	}
	return out
}

var discourseMarkers = map[string]bool{
	"so": true, "now": true, "but": true, "okay": true,
	"well": true, "alright": true, "anyway": true,
}

func naturalBreak(tail, next string) bool {
	tail = strings.TrimSpace(tail)
	if tail != "" {
		switch tail[len(tail)-1] {
		case '.', '!', '?':
			return true
		}
	}
	next = strings.TrimSpace(next)
	if next == "" {
		return false
	}
	if next[0] == '-' || next[0] == '*' || strings.HasPrefix(next, "•") {
		return true
	}
	first := strings.ToLower(strings.TrimRight(strings.Fields(next)[0], ",.!?"))
	return discourseMarkers[first]
}
