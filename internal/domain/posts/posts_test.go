package posts

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kearry/mca/internal/types"
)

type scriptedModel struct {
	replies []string
	err     error
	calls   int
	users   []string
}

func (s *scriptedModel) Complete(_ context.Context, _, user string, _ float64, _ int) (string, error) {
	s.users = append(s.users, user)
	if s.err != nil {
		return "", s.err
	}
	reply := s.replies[s.calls%len(s.replies)]
	s.calls++
	return reply, nil
}

func TestGenerate_ShortInputSingleCall(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{replies: []string{
		`[{"post_text": "p1", "source_quote": "q1"}, {"post_text": "p2", "source_quote": "q2"}]`,
	}}
	g := NewGenerator(model, nil)

	out, err := g.Generate(context.Background(), "a short transcript about gold", "video")
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, 1, model.calls)
	require.Contains(t, model.users[0], "video")
	require.Contains(t, model.users[0], "a short transcript about gold")
}

func TestGenerate_SkipsUnparseableChunk(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{replies: []string{"sorry, I cannot produce JSON today"}}
	g := NewGenerator(model, nil)

	out, err := g.Generate(context.Background(), "some text", "text")
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestGenerate_ModelErrorIsFatal(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{err: errors.New("backend unreachable")}
	g := NewGenerator(model, nil)

	_, err := g.Generate(context.Background(), "some text", "text")
	require.Error(t, err)
	require.Contains(t, err.Error(), "backend unreachable")
}

func TestGenerate_DeduplicatesAcrossChunks(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{replies: []string{
		`[{"post_text": "p1", "source_quote": "same"}, {"post_text": "p2", "source_quote": "same"}]`,
	}}
	g := NewGenerator(model, nil)

	out, err := g.Generate(context.Background(), "some text", "text")
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "p1", out[0].Text)
}

func TestDeduplicate(t *testing.T) {
	t.Parallel()

	in := []types.Post{
		{Text: "a", SourceQuote: "q1"},
		{Text: "b", SourceQuote: "q2"},
		{Text: "c", SourceQuote: "q1"},
		{Text: "d", SourceQuote: ""},
		{Text: "e", SourceQuote: ""},
	}
	out := Deduplicate(in)
	require.Len(t, out, 4)
	require.Equal(t, "a", out[0].Text)
	require.Equal(t, "b", out[1].Text)
	// Posts without a source quote are never treated as duplicates.
	require.Equal(t, "d", out[2].Text)
	require.Equal(t, "e", out[3].Text)
}
