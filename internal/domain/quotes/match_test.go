package quotes

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kearry/mca/internal/types"
)

func interviewSegments() []types.Segment {
	return []types.Segment{
		{Start: 0, End: 2, Text: "We started digging in the old river bed"},
		{Start: 2, End: 4, Text: "and then we found gold early in the morning"},
		{Start: 4, End: 6, Text: "so everyone came back the next day"},
		{Start: 6, End: 8, Text: "with shovels and buckets and hope"},
	}
}

func TestFind_ExactPhrase(t *testing.T) {
	t.Parallel()

	m := New(Config{})
	res := m.Find(interviewSegments(), "We started digging in the old river bed")

	require.True(t, res.Found)
	require.Equal(t, 0.0, res.Start)
	require.Equal(t, 2.0, res.End)
	require.Contains(t, res.Snippet, "river bed")
	require.Greater(t, res.Score, 1.0)
}

func TestFind_QuoteSpanningTwoSegments(t *testing.T) {
	t.Parallel()

	segs := []types.Segment{
		{Start: 0, End: 1, Text: "The quick brown fox"},
		{Start: 1, End: 2, Text: "jumps over the lazy dog"},
	}
	m := New(Config{})
	res := m.Find(segs, "quick brown fox jumps over the lazy dog")

	require.True(t, res.Found)
	require.Equal(t, 0.0, res.Start)
	require.Equal(t, 2.0, res.End)
	require.Contains(t, res.Snippet, "quick brown fox")
	require.Contains(t, res.Snippet, "lazy dog")
}

func TestFind_Paraphrase(t *testing.T) {
	t.Parallel()

	m := New(Config{})
	res := m.Find(interviewSegments(), "then we found gold in the morning")

	require.True(t, res.Found)
	require.Equal(t, 2.0, res.Start)
	require.Equal(t, 4.0, res.End)
	require.Contains(t, res.Snippet, "found gold")
}

func TestFind_RejectsUnrelatedQuote(t *testing.T) {
	t.Parallel()

	m := New(Config{})
	res := m.Find(interviewSegments(), "completely unrelated astrophysics lecture about quasars")

	require.False(t, res.Found)
	require.Equal(t, types.MatchResult{}, res)
}

func TestFind_SingleWordUsesExactSubstring(t *testing.T) {
	t.Parallel()

	m := New(Config{})
	res := m.Find(interviewSegments(), "gold")

	require.True(t, res.Found)
	require.Equal(t, 2.0, res.Start)
	require.Equal(t, 4.0, res.End)
	require.Equal(t, 1.0, res.Score)

	require.False(t, m.Find(interviewSegments(), "platinum").Found)
}

func TestFind_ContextPaddingClampsAtZero(t *testing.T) {
	t.Parallel()

	m := New(Config{ContextPadding: 2.0})
	res := m.Find(interviewSegments(), "We started digging in the old river bed")

	require.True(t, res.Found)
	require.Equal(t, 0.0, res.Start)
	require.Equal(t, 4.0, res.End)
}

func TestFind_Deterministic(t *testing.T) {
	t.Parallel()

	m := New(Config{})
	a := m.Find(interviewSegments(), "then we found gold in the morning")
	b := m.Find(interviewSegments(), "then we found gold in the morning")
	require.Equal(t, a, b)
}

func TestFind_EmptyInputs(t *testing.T) {
	t.Parallel()

	m := New(Config{})
	require.False(t, m.Find(nil, "anything").Found)
	require.False(t, m.Find(interviewSegments(), "").Found)
	require.False(t, m.Find(interviewSegments(), " !!! ").Found)
}

func TestNormalizeText(t *testing.T) {
	t.Parallel()

	require.Equal(t, "don't stop believing", normalizeText("  Don’t   STOP, believing!  "))
	require.Equal(t, "it's 5 o'clock", normalizeText("It's 5 o'clock?"))
	require.Equal(t, "", normalizeText("?!,."))
}

func TestAcceptThreshold(t *testing.T) {
	t.Parallel()

	require.Equal(t, 0.75, acceptThreshold(4))
	require.Equal(t, 0.65, acceptThreshold(5))
	require.Equal(t, 0.65, acceptThreshold(9))
	require.Equal(t, 0.55, acceptThreshold(10))
}
