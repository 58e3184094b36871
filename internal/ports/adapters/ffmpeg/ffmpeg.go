package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/kearry/mca/internal/ports"
)

// endEpsilon keeps the padded end strictly inside the source so the
// encoder never reads past the last frame.
const endEpsilon = 0.1

var ErrEmptyRange = errors.New("ffmpeg: non-positive clip duration")

type Adapter struct {
	ffmpeg      string
	ffprobe     string
	execTimeout time.Duration
}

func New(ffmpegPath, ffprobePath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath, execTimeout: 5 * time.Minute}
}

// Cut seeks to the padded start and encodes exactly the computed duration
// into out. The padded end is clamped to the source duration; a range
// that collapses to nothing fails before ffmpeg is invoked.
func (a *Adapter) Cut(ctx context.Context, in string, start, end float64, out string, opts ports.CutOptions) error {
	total, err := a.ProbeDuration(ctx, in)
	if err != nil {
		return err
	}

	cutStart, cutDur, ok := CutWindow(start, end, opts.Padding, total)
	if !ok {
		return ErrEmptyRange
	}

	args := []string{
		"-ss", fmtSeconds(cutStart),
		"-i", in,
	}
	if opts.WatermarkPath != "" {
		if _, err := os.Stat(opts.WatermarkPath); err == nil {
			args = append(args,
				"-i", opts.WatermarkPath,
				"-filter_complex", "[1:v]scale=400:-1[wm];[0:v][wm]overlay=0:0",
				"-map", "0:a?",
			)
		}
	}
	args = append(args,
		"-t", fmtSeconds(cutDur),
		"-c:v", "libx264",
		"-c:a", "aac",
		"-preset", "fast",
		"-crf", "23",
		"-movflags", "+faststart",
		"-avoid_negative_ts", "make_zero",
		"-y", out,
	)

	execCtx, cancel := context.WithTimeout(ctx, a.execTimeout)
	defer cancel()
	cmd := exec.CommandContext(execCtx, a.ffmpeg, args...)
	if b, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg cut: %w\n%s", err, string(b))
	}
	return nil
}

// CutWindow resolves the padded (start, duration) for a cut, clamping
// the end to the source duration minus a small epsilon. ok is false when
// the resulting duration is not positive.
func CutWindow(start, end, padding, total float64) (cutStart, cutDur float64, ok bool) {
	cutStart = start - padding
	if cutStart < 0 {
		cutStart = 0
	}
	cutEnd := end + padding
	if total > 0 && cutEnd > total-endEpsilon {
		cutEnd = total - endEpsilon
	}
	cutDur = cutEnd - cutStart
	if cutDur <= 0 {
		return 0, 0, false
	}
	return cutStart, cutDur, true
}

func (a *Adapter) ProbeDuration(ctx context.Context, in string) (float64, error) {
	execCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	cmd := exec.CommandContext(execCtx, a.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		in,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w\n%s", err, string(b))
	}
	s := strings.TrimSpace(string(b))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return sec, nil
}

func (a *Adapter) HasAudioStream(ctx context.Context, in string) (bool, error) {
	execCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	cmd := exec.CommandContext(execCtx, a.ffprobe,
		"-v", "error",
		"-select_streams", "a",
		"-show_entries", "stream=codec_type",
		"-of", "default=noprint_wrappers=1:nokey=1",
		in,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return false, fmt.Errorf("ffprobe audio streams: %w\n%s", err, string(b))
	}
	return strings.Contains(string(b), "audio"), nil
}

func (a *Adapter) ExtractAudioMono16k(ctx context.Context, in, outWav string) error {
	execCtx, cancel := context.WithTimeout(ctx, a.execTimeout)
	defer cancel()
	cmd := exec.CommandContext(execCtx, a.ffmpeg,
		"-y",
		"-i", in,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		outWav,
	)
	if b, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg extract audio: %w\n%s", err, string(b))
	}
	return nil
}

func fmtSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}
