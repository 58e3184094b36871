package clip

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kearry/mca/internal/ports"
	"github.com/kearry/mca/internal/types"
)

type fakeCutter struct {
	err   error
	cuts  int
	spans [][2]float64
}

func (f *fakeCutter) Cut(_ context.Context, _ string, start, end float64, out string, _ ports.CutOptions) error {
	f.cuts++
	f.spans = append(f.spans, [2]float64{start, end})
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(out, []byte("mp4"), 0o644)
}

type fakeVerifier struct {
	results []types.Verification
	calls   int
}

func (f *fakeVerifier) Verify(_ context.Context, _, _, _ string) types.Verification {
	v := f.results[f.calls%len(f.results)]
	f.calls++
	return v
}

func requireNoScratchFiles(t *testing.T, dir string) {
	t.Helper()
	leftovers, err := filepath.Glob(filepath.Join(dir, ".scratch-*"))
	require.NoError(t, err)
	require.Empty(t, leftovers)
}

func TestExtract_EscalatesUntilVerified(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cutter := &fakeCutter{}
	verifier := &fakeVerifier{results: []types.Verification{
		{Passed: false, Confidence: 0.3, Bucket: types.ConfidenceLow},
		{Passed: false, Confidence: 0.45, Bucket: types.ConfidenceLow},
		{Passed: true, Confidence: 0.8, Bucket: types.ConfidenceHigh},
	}}
	o := NewOrchestrator(cutter, verifier, nil)

	out := filepath.Join(dir, "clip.mp4")
	res := o.Extract(context.Background(), Request{
		Source:     "in.mp4",
		OutputPath: out,
		Start:      10,
		End:        15,
		Quote:      "found gold",
	})

	require.True(t, res.Success)
	require.Equal(t, "wide-5s", res.Strategy)
	require.Equal(t, 0.8, res.Confidence)
	require.Equal(t, types.ConfidenceHigh, res.Bucket)
	require.Equal(t, 5.0, res.Start)
	require.Equal(t, 20.0, res.End)
	require.Empty(t, res.DebugPath)

	require.Equal(t, 3, cutter.cuts)
	require.FileExists(t, out)
	requireNoScratchFiles(t, dir)
}

func TestExtract_DebugFallbackWhenExhausted(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cutter := &fakeCutter{}
	verifier := &fakeVerifier{results: []types.Verification{
		{Passed: false, Confidence: 0.2, Bucket: types.ConfidenceLow},
	}}
	o := NewOrchestrator(cutter, verifier, nil)

	out := filepath.Join(dir, "clip.mp4")
	res := o.Extract(context.Background(), Request{
		Source:     "in.mp4",
		OutputPath: out,
		Start:      10,
		End:        15,
	})

	require.False(t, res.Success)
	require.Equal(t, "debug", res.Strategy)
	require.Equal(t, out, res.DebugPath)
	require.Equal(t, 0.0, res.Start)
	require.Equal(t, 45.0, res.End)

	// Five strategies plus the debug cut.
	require.Equal(t, 6, cutter.cuts)
	require.Equal(t, 5, verifier.calls)
	require.FileExists(t, out)
	requireNoScratchFiles(t, dir)
}

func TestExtract_CutterAlwaysFails(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cutter := &fakeCutter{err: errors.New("ffmpeg exploded")}
	verifier := &fakeVerifier{results: []types.Verification{{Passed: true, Confidence: 1}}}
	o := NewOrchestrator(cutter, verifier, nil)

	out := filepath.Join(dir, "clip.mp4")
	res := o.Extract(context.Background(), Request{Source: "in.mp4", OutputPath: out, Start: 0, End: 5})

	require.Equal(t, types.ClipOutcome{}, res)
	require.Zero(t, verifier.calls)
	require.NoFileExists(t, out)
	requireNoScratchFiles(t, dir)
}

func TestExtract_OffsetsNeverGoNegative(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cutter := &fakeCutter{}
	verifier := &fakeVerifier{results: []types.Verification{{Passed: false}}}
	o := NewOrchestrator(cutter, verifier, nil)

	out := filepath.Join(dir, "clip.mp4")
	o.Extract(context.Background(), Request{Source: "in.mp4", OutputPath: out, Start: 1, End: 3})

	for _, span := range cutter.spans {
		require.GreaterOrEqual(t, span[0], 0.0)
		require.Greater(t, span[1], span[0])
	}
}

func TestStrategies_OrderedByAggressiveness(t *testing.T) {
	t.Parallel()

	ss := Strategies()
	require.Len(t, ss, 5)
	require.Equal(t, "exact", ss[0].Name)
	require.Equal(t, "wide-30s", ss[len(ss)-1].Name)
	for i := 1; i < len(ss); i++ {
		require.Less(t, ss[i].PriorWeight, ss[i-1].PriorWeight)
		require.GreaterOrEqual(t, ss[i].EndOffset, ss[i-1].EndOffset)
	}
	require.Equal(t, 1.0, ss[0].PriorWeight)
}
