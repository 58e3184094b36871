package ytdlp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseJSON3(t *testing.T) {
	t.Parallel()

	data := []byte(`{
		"events": [
			{"tStartMs": 0, "dDurationMs": 2500, "segs": [{"utf8": "hello "}, {"utf8": "there"}]},
			{"tStartMs": 2500, "dDurationMs": 1000},
			{"tStartMs": 3500, "dDurationMs": 500, "segs": [{"utf8": "\n"}]},
			{"tStartMs": 4000, "dDurationMs": 2000, "segs": [{"utf8": "general kenobi"}]}
		]
	}`)
	tr, err := ParseJSON3(data)
	require.NoError(t, err)
	require.Len(t, tr.Segments, 2)

	require.Equal(t, 0.0, tr.Segments[0].Start)
	require.Equal(t, 2.5, tr.Segments[0].End)
	require.Equal(t, "hello there", tr.Segments[0].Text)

	require.Equal(t, 4.0, tr.Segments[1].Start)
	require.Equal(t, 6.0, tr.Segments[1].End)
	require.Equal(t, "hello there general kenobi", tr.Text)
}

func TestParseJSON3_Empty(t *testing.T) {
	t.Parallel()

	tr, err := ParseJSON3([]byte(`{"events": []}`))
	require.NoError(t, err)
	require.Empty(t, tr.Segments)
	require.Empty(t, tr.Text)

	_, err = ParseJSON3([]byte("not json"))
	require.Error(t, err)
}
