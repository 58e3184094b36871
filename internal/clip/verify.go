package clip

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/kearry/mca/internal/types"
)

const (
	minPlausibleSec = 2.0
	// Anything below ~16KiB/s of encoded video+audio is almost certainly
	// a broken or empty container.
	minBytesPerSec = 16 * 1024
	passFloor      = 0.5
)

// Prober is the subset of the video tool the verifier needs.
type Prober interface {
	ProbeDuration(ctx context.Context, in string) (float64, error)
	HasAudioStream(ctx context.Context, in string) (bool, error)
}

// Verifier applies cheap structural checks to an extracted artifact.
// It is a heuristic proxy: it does not confirm the quote's words are
// audible in the clip.
type Verifier struct {
	probe Prober
	log   *zap.Logger
}

func NewVerifier(probe Prober, log *zap.Logger) Verifier {
	if log == nil {
		log = zap.NewNop()
	}
	return Verifier{probe: probe, log: log}
}

// Verify scores path against the strategy that produced it. Confidence
// is the strategy's prior weight scaled by the fraction of checks that
// passed; the outcome passes at confidence >= 0.5.
func (v Verifier) Verify(ctx context.Context, path, quote, strategy string) types.Verification {
	var checks []types.Check

	dur, err := v.probe.ProbeDuration(ctx, path)
	durOK := err == nil && dur >= minPlausibleSec
	checks = append(checks, types.Check{
		Name:   "duration",
		Passed: durOK,
		Detail: durationDetail(dur, err),
	})

	audioOK := false
	if hasAudio, err := v.probe.HasAudioStream(ctx, path); err == nil && hasAudio {
		audioOK = true
	}
	checks = append(checks, types.Check{Name: "audio_stream", Passed: audioOK})

	sizeOK := false
	var size int64
	if fi, err := os.Stat(path); err == nil {
		size = fi.Size()
		floor := int64(minBytesPerSec)
		if durOK {
			floor = int64(dur * minBytesPerSec)
		}
		sizeOK = size >= floor
	}
	checks = append(checks, types.Check{
		Name:   "file_size",
		Passed: sizeOK,
		Detail: fmt.Sprintf("%d bytes", size),
	})

	passed := 0
	for _, c := range checks {
		if c.Passed {
			passed++
		}
	}
	confidence := priorWeight(strategy) * float64(passed) / float64(len(checks))

	out := types.Verification{
		Passed:     confidence >= passFloor,
		Bucket:     bucket(confidence),
		Confidence: confidence,
		Checks:     checks,
	}
	v.log.Debug("clip verified",
		zap.String("path", path),
		zap.String("strategy", strategy),
		zap.Float64("confidence", confidence),
		zap.Bool("passed", out.Passed))
	return out
}

func bucket(confidence float64) types.ConfidenceBucket {
	switch {
	case confidence >= 0.8:
		return types.ConfidenceHigh
	case confidence >= 0.6:
		return types.ConfidenceMedium
	default:
		return types.ConfidenceLow
	}
}

func durationDetail(dur float64, err error) string {
	if err != nil {
		return err.Error()
	}
	return fmt.Sprintf("%.2fs", dur)
}
