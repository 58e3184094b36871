package clip

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kearry/mca/internal/ports"
	"github.com/kearry/mca/internal/types"
)

const debugSpanSec = 30.0

// Cutter cuts a time range of the source into out. A non-nil error is an
// ordinary attempt failure for the orchestrator, never fatal.
type Cutter interface {
	Cut(ctx context.Context, in string, start, end float64, out string, opts ports.CutOptions) error
}

// ClipVerifier scores an extracted artifact.
type ClipVerifier interface {
	Verify(ctx context.Context, path, quote, strategy string) types.Verification
}

type Request struct {
	Source        string
	OutputPath    string
	Start         float64
	End           float64
	Quote         string
	BasePadding   float64
	WatermarkPath string
}

// Orchestrator drives the ordered strategy catalog against the extractor
// and verifier until one attempt passes or everything is exhausted.
// Attempts run strictly in order, one at a time; callers must serialize
// requests that share an output path.
type Orchestrator struct {
	cutter     Cutter
	verifier   ClipVerifier
	strategies []types.Strategy
	log        *zap.Logger
}

func NewOrchestrator(cutter Cutter, verifier ClipVerifier, log *zap.Logger) Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return Orchestrator{
		cutter:     cutter,
		verifier:   verifier,
		strategies: Strategies(),
		log:        log,
	}
}

// Extract cuts the requested range into req.OutputPath. Each strategy
// writes to a uniquely named scratch file that is renamed into place only
// after verification passes, so exactly one artifact, or none, ever lands
// at the caller-visible path.
func (o Orchestrator) Extract(ctx context.Context, req Request) types.ClipOutcome {
	for _, s := range o.strategies {
		start := math.Max(0, req.Start+s.StartOffset)
		end := req.End + s.EndOffset
		opts := ports.CutOptions{
			WatermarkPath: req.WatermarkPath,
			Padding:       req.BasePadding + s.ExtraPadding,
		}

		scratch := o.scratchPath(req.OutputPath)
		if err := o.cutter.Cut(ctx, req.Source, start, end, scratch, opts); err != nil {
			o.log.Info("extraction attempt failed",
				zap.String("strategy", s.Name), zap.Error(err))
			discard(scratch)
			continue
		}

		v := o.verifier.Verify(ctx, scratch, req.Quote, s.Name)
		if !v.Passed {
			o.log.Info("verification failed",
				zap.String("strategy", s.Name),
				zap.Float64("confidence", v.Confidence))
			discard(scratch)
			continue
		}

		if err := os.Rename(scratch, req.OutputPath); err != nil {
			o.log.Warn("rename into place failed", zap.Error(err))
			discard(scratch)
			continue
		}
		return types.ClipOutcome{
			Success:    true,
			Strategy:   s.Name,
			Start:      start,
			End:        end,
			Confidence: v.Confidence,
			Bucket:     v.Bucket,
		}
	}

	return o.debugExtract(ctx, req)
}

// debugExtract is the safety net once every strategy is exhausted: one
// wide, unverified cut around the original target, always preferred over
// returning nothing.
func (o Orchestrator) debugExtract(ctx context.Context, req Request) types.ClipOutcome {
	start := math.Max(0, req.Start-debugSpanSec)
	end := req.End + debugSpanSec

	scratch := o.scratchPath(req.OutputPath)
	opts := ports.CutOptions{WatermarkPath: req.WatermarkPath, Padding: req.BasePadding}
	if err := o.cutter.Cut(ctx, req.Source, start, end, scratch, opts); err != nil {
		o.log.Error("debug extraction failed", zap.Error(err))
		discard(scratch)
		return types.ClipOutcome{}
	}
	if err := os.Rename(scratch, req.OutputPath); err != nil {
		o.log.Error("debug rename failed", zap.Error(err))
		discard(scratch)
		return types.ClipOutcome{}
	}
	o.log.Warn("returning unverified debug clip",
		zap.Float64("start", start), zap.Float64("end", end))
	return types.ClipOutcome{
		Success:   false,
		Strategy:  "debug",
		Start:     start,
		End:       end,
		DebugPath: req.OutputPath,
	}
}

func (o Orchestrator) scratchPath(out string) string {
	dir := filepath.Dir(out)
	return filepath.Join(dir, fmt.Sprintf(".scratch-%s.mp4", uuid.NewString()))
}

func discard(path string) {
	_ = os.Remove(path)
}
