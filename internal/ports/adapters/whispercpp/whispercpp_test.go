package whispercpp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseOutput_TranscriptionKeyWithOffsets(t *testing.T) {
	t.Parallel()

	data := []byte(`{
		"transcription": [
			{"offsets": {"from": 0, "to": 2500}, "text": " Hello there."},
			{"offsets": {"from": 2500, "to": 5000}, "text": " General Kenobi."}
		]
	}`)
	tr, err := ParseOutput(data)
	require.NoError(t, err)
	require.Len(t, tr.Segments, 2)
	require.Equal(t, 0.0, tr.Segments[0].Start)
	require.Equal(t, 2.5, tr.Segments[0].End)
	require.Equal(t, "Hello there.", tr.Segments[0].Text)
	require.Equal(t, "Hello there. General Kenobi.", tr.Text)
}

func TestParseOutput_ClockTimestamps(t *testing.T) {
	t.Parallel()

	data := []byte(`{
		"transcription": [
			{"timestamps": {"from": "00:01:02,500", "to": "00:01:04,000"}, "text": "clocked"}
		]
	}`)
	tr, err := ParseOutput(data)
	require.NoError(t, err)
	require.Len(t, tr.Segments, 1)
	require.InDelta(t, 62.5, tr.Segments[0].Start, 1e-9)
	require.InDelta(t, 64.0, tr.Segments[0].End, 1e-9)
}

func TestParseOutput_BareArray(t *testing.T) {
	t.Parallel()

	data := []byte(`[{"start": 1.5, "end": 3.0, "text": "bare"}]`)
	tr, err := ParseOutput(data)
	require.NoError(t, err)
	require.Len(t, tr.Segments, 1)
	require.Equal(t, 1.5, tr.Segments[0].Start)
	require.Equal(t, 3.0, tr.Segments[0].End)
}

func TestParseOutput_SegmentsKey(t *testing.T) {
	t.Parallel()

	data := []byte(`{"segments": [{"start": 0, "end": 1, "text": "s"}]}`)
	tr, err := ParseOutput(data)
	require.NoError(t, err)
	require.Len(t, tr.Segments, 1)
}

func TestParseOutput_SkipsEmptyText(t *testing.T) {
	t.Parallel()

	data := []byte(`{"transcription": [
		{"offsets": {"from": 0, "to": 1000}, "text": "  "},
		{"offsets": {"from": 1000, "to": 2000}, "text": "kept"}
	]}`)
	tr, err := ParseOutput(data)
	require.NoError(t, err)
	require.Len(t, tr.Segments, 1)
	require.Equal(t, "kept", tr.Segments[0].Text)
}

func TestParseOutput_Garbage(t *testing.T) {
	t.Parallel()

	_, err := ParseOutput([]byte("not json"))
	require.Error(t, err)

	_, err = ParseOutput([]byte(`{"something_else": 42}`))
	require.Error(t, err)
}

func TestClockSeconds(t *testing.T) {
	t.Parallel()

	require.InDelta(t, 3723.25, clockSeconds("01:02:03,250"), 1e-9)
	require.InDelta(t, 62.0, clockSeconds("01:02,000"), 1e-9)
	require.Equal(t, 0.0, clockSeconds("garbage"))
}
