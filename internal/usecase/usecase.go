package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/kearry/mca/internal/clip"
	"github.com/kearry/mca/internal/domain/quotes"
	"github.com/kearry/mca/internal/domain/transcript"
	"github.com/kearry/mca/internal/ports"
	"github.com/kearry/mca/internal/store"
	"github.com/kearry/mca/internal/types"
)

// Caller-visible failures. Everything else is absorbed internally by
// strategy advancement or degraded handling.
var (
	ErrInputMissing     = errors.New("required files not found")
	ErrNoMatch          = errors.New("quote not found in transcript")
	ErrExtractionFailed = errors.New("clip extraction and verification failed")
	ErrEmptyTranscript  = errors.New("transcription failed or media contains no speech")
)

// ExtractionError carries the debug artifact produced by the fallback
// extraction when every strategy failed verification.
type ExtractionError struct {
	DebugPath string
}

func (e *ExtractionError) Error() string {
	if e.DebugPath == "" {
		return ErrExtractionFailed.Error()
	}
	return fmt.Sprintf("%s (unverified debug clip at %s)", ErrExtractionFailed, e.DebugPath)
}

func (e *ExtractionError) Unwrap() error { return ErrExtractionFailed }

type ClipExtractor interface {
	Extract(ctx context.Context, req clip.Request) types.ClipOutcome
}

type PostGenerator interface {
	Generate(ctx context.Context, text, sourceType string) ([]types.Post, error)
}

type Repo interface {
	SaveTranscript(ctx context.Context, jobID, transcript string) error
	SavePosts(ctx context.Context, jobID string, posts []types.Post) error
	LoadPosts(ctx context.Context, jobID string) ([]types.Post, error)
}

type Deps struct {
	Video    ports.VideoTool
	ASR      ports.ASR
	Download ports.Downloader
	Captions ports.CaptionSource
	Doc      ports.DocExtractor
	Posts    PostGenerator
	Clips    ClipExtractor
	Repo     Repo
	Media    store.Media
	Matcher  quotes.Matcher
	Log      *zap.Logger
}

type Usecase struct {
	d Deps
}

func New(d Deps) Usecase {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return Usecase{d: d}
}

type ClipInput struct {
	JobID         string
	PostID        string
	Quote         string
	BasePadding   float64
	WatermarkPath string
}

// Clip locates the quote in the job's transcript and cuts a verified
// clip for it. Segments are re-read and re-matched on every call; only
// the final artifact persists.
func (u Usecase) Clip(ctx context.Context, in ClipInput) (types.ClipResponse, error) {
	segPath := u.d.Media.SegmentsPath(in.JobID)
	videoPath := u.d.Media.VideoPath(in.JobID)
	if !fileExists(segPath) || !fileExists(videoPath) {
		return types.ClipResponse{}, ErrInputMissing
	}

	raw, err := u.d.Media.ReadSegments(in.JobID)
	if err != nil {
		return types.ClipResponse{}, fmt.Errorf("%w: %v", ErrInputMissing, err)
	}
	segs := transcript.Normalize(raw)

	match := u.d.Matcher.Find(segs, in.Quote)
	if !match.Found {
		return types.ClipResponse{}, ErrNoMatch
	}
	u.d.Log.Info("quote matched",
		zap.String("job", in.JobID),
		zap.Float64("start", match.Start),
		zap.Float64("end", match.End),
		zap.Float64("score", match.Score))

	outPath := u.d.Media.ClipPath(in.PostID)
	outcome := u.d.Clips.Extract(ctx, clip.Request{
		Source:        videoPath,
		OutputPath:    outPath,
		Start:         match.Start,
		End:           match.End,
		Quote:         in.Quote,
		BasePadding:   in.BasePadding,
		WatermarkPath: in.WatermarkPath,
	})
	if !outcome.Success {
		return types.ClipResponse{}, &ExtractionError{DebugPath: outcome.DebugPath}
	}

	return types.ClipResponse{
		Status:       "complete",
		MediaPath:    u.d.Media.PublicURL(outPath),
		StartTime:    outcome.Start,
		EndTime:      outcome.End,
		QuoteSnippet: match.Snippet,
		Verification: &types.ClipVerification{
			Strategy:       outcome.Strategy,
			Confidence:     outcome.Confidence,
			TimingAdjusted: outcome.Strategy != "exact",
		},
	}, nil
}

const sweepAge = 30 * 24 * time.Hour

// Process ingests a source (youtube URL, pdf, or text file), persists
// the transcript and segments, and generates posts. Existing results for
// the job are reused untouched.
func (u Usecase) Process(ctx context.Context, kind, input, jobID string) (types.ProcessResponse, error) {
	existing, err := u.d.Repo.LoadPosts(ctx, jobID)
	if err == nil && (len(existing) > 0 || u.d.Media.HasArtifacts(jobID)) {
		u.d.Log.Info("reusing existing results", zap.String("job", jobID))
		return types.ProcessResponse{Status: "complete", Posts: existing}, nil
	}

	if n, err := u.d.Media.Sweep(sweepAge); err == nil && n > 0 {
		u.d.Log.Info("swept stale artifacts", zap.Int("removed", n))
	}

	var (
		text       string
		sourceType string
		images     []types.PageImage
	)
	switch kind {
	case "youtube":
		text, err = u.processYouTube(ctx, input, jobID)
		sourceType = "YouTube video"
	case "pdf":
		text, err = u.d.Doc.ExtractText(ctx, input)
		sourceType = "PDF document"
		if err == nil {
			images = u.extractPageImages(ctx, input, jobID)
		}
	case "text":
		var b []byte
		b, err = os.ReadFile(input)
		text = string(b)
		sourceType = "text document"
	default:
		return types.ProcessResponse{}, fmt.Errorf("unknown input type %q", kind)
	}
	if err != nil {
		return types.ProcessResponse{}, err
	}

	generated, err := u.d.Posts.Generate(ctx, text, sourceType)
	if err != nil {
		return types.ProcessResponse{}, err
	}
	u.attachPageImages(generated, images)

	u.saveTranscript(ctx, jobID, text)
	if err := u.d.Repo.SavePosts(ctx, jobID, generated); err != nil {
		u.d.Log.Warn("persisting posts failed", zap.Error(err))
	}

	return types.ProcessResponse{Status: "complete", Posts: generated}, nil
}

func (u Usecase) processYouTube(ctx context.Context, url, jobID string) (string, error) {
	tr := u.fetchCaptions(ctx, url)

	// The source video is needed for clip extraction regardless of where
	// the transcript comes from.
	videoPath := u.d.Media.VideoPath(jobID)
	u.d.Log.Info("downloading video", zap.String("url", url))
	if err := u.d.Download.Download(ctx, url, videoPath); err != nil {
		return "", err
	}

	if len(tr.Segments) == 0 {
		wavPath := u.d.Media.AudioPath(jobID)
		if err := u.d.Video.ExtractAudioMono16k(ctx, videoPath, wavPath); err != nil {
			return "", err
		}

		u.d.Log.Info("transcribing audio", zap.String("wav", wavPath))
		var err error
		tr, err = u.d.ASR.Transcribe(ctx, wavPath, u.d.Media.Dir())
		if err != nil {
			return "", err
		}
	}
	if len(tr.Text) == 0 || len(tr.Segments) == 0 {
		return "", ErrEmptyTranscript
	}

	segs := transcript.Normalize(tr.Segments)
	if err := u.d.Media.WriteSegments(jobID, segs); err != nil {
		return "", err
	}
	return tr.Text, nil
}

// fetchCaptions asks the platform for an existing transcript so the
// whisper path can be skipped. Any failure just means transcribing
// locally.
func (u Usecase) fetchCaptions(ctx context.Context, url string) types.Transcript {
	if u.d.Captions == nil {
		return types.Transcript{}
	}
	tr, err := u.d.Captions.FetchCaptions(ctx, url, u.d.Media.Dir())
	if err != nil {
		u.d.Log.Debug("caption fetch failed", zap.Error(err))
		return types.Transcript{}
	}
	if len(tr.Segments) > 0 {
		u.d.Log.Info("using platform captions", zap.Int("segments", len(tr.Segments)))
	}
	return tr
}

// extractPageImages is best-effort: posts still generate without media
// when the PDF has no images or the tool is missing.
func (u Usecase) extractPageImages(ctx context.Context, pdfPath, jobID string) []types.PageImage {
	images, err := u.d.Doc.ExtractImages(ctx, pdfPath, u.d.Media.PageImagePrefix(jobID))
	if err != nil {
		u.d.Log.Warn("page image extraction failed", zap.Error(err))
		return nil
	}
	return images
}

// attachPageImages gives each post citing a page the first image from
// that page as its media.
func (u Usecase) attachPageImages(posts []types.Post, images []types.PageImage) {
	if len(images) == 0 {
		return
	}
	for i := range posts {
		if posts[i].PageNumber == 0 || posts[i].MediaPath != "" {
			continue
		}
		for _, img := range images {
			if img.Page == posts[i].PageNumber {
				posts[i].MediaPath = u.d.Media.PublicURL(img.Path)
				break
			}
		}
	}
}

func (u Usecase) saveTranscript(ctx context.Context, jobID, text string) {
	if err := u.d.Repo.SaveTranscript(ctx, jobID, text); err != nil {
		u.d.Log.Warn("saving transcript to db failed", zap.Error(err))
	}
	// Plain-text backup next to the media artifacts.
	path := u.d.Media.TranscriptPath(jobID)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		u.d.Log.Warn("writing transcript backup failed", zap.Error(err))
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
