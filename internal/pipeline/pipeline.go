package pipeline

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"lukechampine.com/blake3"

	"github.com/kearry/mca/internal/clip"
	"github.com/kearry/mca/internal/domain/posts"
	"github.com/kearry/mca/internal/domain/quotes"
	"github.com/kearry/mca/internal/ports"
	"github.com/kearry/mca/internal/ports/adapters/ffmpeg"
	"github.com/kearry/mca/internal/ports/adapters/gemini"
	"github.com/kearry/mca/internal/ports/adapters/llamaserver"
	"github.com/kearry/mca/internal/ports/adapters/pdftotext"
	"github.com/kearry/mca/internal/ports/adapters/whispercpp"
	"github.com/kearry/mca/internal/ports/adapters/ytdlp"
	"github.com/kearry/mca/internal/store"
	"github.com/kearry/mca/internal/types"
	"github.com/kearry/mca/internal/usecase"
)

type Config struct {
	// PublicDir holds every generated artifact: source videos, segments
	// files, transcripts, and cut clips.
	PublicDir     string
	DBPath        string
	WatermarkPath string

	FFmpegPath    string
	FFprobePath   string
	WhisperBin    string
	WhisperModel  string
	YtdlpPath     string
	YtdlpFormat   string
	CookieFile    string
	PdftotextPath string
	PdfimagesPath string

	// Backend selects the post generation model: "gemini" or anything
	// else for the local llama.cpp server.
	Backend      string
	GeminiAPIKey string
	GeminiModel  string
	LLMModel     string
	LLMBaseURL   string

	BasePadding float64

	Log *zap.Logger
}

func (c Config) Validate() error {
	if c.PublicDir == "" {
		return errors.New("public dir is empty")
	}
	if c.DBPath == "" {
		return errors.New("db path is empty")
	}
	if c.Backend == "gemini" && c.GeminiAPIKey == "" {
		return errors.New("GOOGLE_API_KEY is required for the gemini backend")
	}
	return nil
}

// Clip cuts a verified clip for one (job, post, quote) request.
func Clip(ctx context.Context, cfg Config, jobID, postID, quote string) (types.ClipResponse, error) {
	uc, db, err := build(cfg)
	if err != nil {
		return types.ClipResponse{}, err
	}
	defer db.Close()

	return uc.Clip(ctx, usecase.ClipInput{
		JobID:         jobID,
		PostID:        postID,
		Quote:         quote,
		BasePadding:   cfg.BasePadding,
		WatermarkPath: cfg.WatermarkPath,
	})
}

// Process ingests a source and generates posts for it.
func Process(ctx context.Context, cfg Config, kind, input, jobID string) (types.ProcessResponse, error) {
	uc, db, err := build(cfg)
	if err != nil {
		return types.ProcessResponse{}, err
	}
	defer db.Close()

	return uc.Process(ctx, kind, input, jobID)
}

func build(cfg Config) (usecase.Usecase, store.SQLite, error) {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}

	media := store.NewMedia(cfg.PublicDir)
	if err := media.EnsureDir(); err != nil {
		return usecase.Usecase{}, store.SQLite{}, err
	}
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return usecase.Usecase{}, store.SQLite{}, err
	}

	video := ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath)
	verifier := clip.NewVerifier(video, log)
	orchestrator := clip.NewOrchestrator(video, verifier, log)

	downloader := ytdlp.New(cfg.YtdlpPath, cfg.YtdlpFormat, cfg.CookieFile)
	uc := usecase.New(usecase.Deps{
		Video:    video,
		ASR:      whispercpp.New(cfg.WhisperBin, cfg.WhisperModel),
		Download: downloader,
		Captions: downloader,
		Doc:      pdftotext.New(cfg.PdftotextPath, cfg.PdfimagesPath),
		Posts:    posts.NewGenerator(chatModel(cfg), log),
		Clips:    orchestrator,
		Repo:     db,
		Media:    media,
		Matcher:  quotes.New(quotes.Config{ContextPadding: 2.0}),
		Log:      log,
	})
	return uc, db, nil
}

func chatModel(cfg Config) ports.ChatModel {
	if cfg.Backend == "gemini" {
		return gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel, "")
	}
	return llamaserver.New(cfg.LLMModel, cfg.LLMBaseURL)
}

// JobIDFromFile derives a stable content-addressed job ID, so repeated
// submissions of the same source reuse earlier results.
func JobIDFromFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("hash input: %w", err)
	}
	defer f.Close()

	h := blake3.New(32, nil)
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash input: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil))[:16], nil
}

// JobIDFromString hashes non-file inputs such as URLs.
func JobIDFromString(s string) string {
	sum := blake3.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:16]
}

// ensure adapters implement ports
var (
	_ ports.VideoTool     = (*ffmpeg.Adapter)(nil)
	_ ports.ASR           = (*whispercpp.Adapter)(nil)
	_ ports.Downloader    = (*ytdlp.Adapter)(nil)
	_ ports.CaptionSource = (*ytdlp.Adapter)(nil)
	_ ports.DocExtractor  = (*pdftotext.Adapter)(nil)
	_ ports.ChatModel     = (*gemini.Adapter)(nil)
	_ ports.ChatModel     = (*llamaserver.Adapter)(nil)
)
