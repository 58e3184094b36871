package ports

import (
	"context"

	"github.com/kearry/mca/internal/types"
)

type CutOptions struct {
	// WatermarkPath, when set and existing, is composited over the video
	// at a fixed scale in the top-left corner.
	WatermarkPath string
	// Padding widens the cut on both sides, in seconds.
	Padding float64
}

type VideoTool interface {
	Cut(ctx context.Context, in string, start, end float64, out string, opts CutOptions) error
	ProbeDuration(ctx context.Context, in string) (float64, error)
	HasAudioStream(ctx context.Context, in string) (bool, error)
	ExtractAudioMono16k(ctx context.Context, in, outWav string) error
}

type ASR interface {
	Transcribe(ctx context.Context, wavPath, cacheDir string) (types.Transcript, error)
}

type ChatModel interface {
	Complete(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error)
}

type Downloader interface {
	Download(ctx context.Context, url, outPath string) error
}

// CaptionSource fetches a platform-provided transcript for a video URL.
// An empty transcript with a nil error means none is available.
type CaptionSource interface {
	FetchCaptions(ctx context.Context, url, cacheDir string) (types.Transcript, error)
}

type DocExtractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
	// ExtractImages writes each embedded page image to a file named after
	// outPrefix and reports which page it came from.
	ExtractImages(ctx context.Context, path, outPrefix string) ([]types.PageImage, error)
}
