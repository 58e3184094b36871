package cli

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kearry/mca/internal/logging"
	"github.com/kearry/mca/internal/pipeline"
)

func newClipCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clip <job-id> <post-id> <quote>",
		Short: "Cut a verified clip for a quote from an ingested job",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := baseConfig(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Minute)
			defer cancel()

			res, err := pipeline.Clip(ctx, cfg, args[0], args[1], args[2])
			if err != nil {
				return err
			}
			return printResult(res)
		},
	}
	cmd.Flags().Float64("padding", 1.0, "Base padding seconds around the matched range")
	return cmd
}

func newProcessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process <youtube|pdf|text> <input> [job-id]",
		Short: "Ingest a source, transcribe it, and generate posts",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := baseConfig(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			kind, input := args[0], args[1]
			jobID := ""
			if len(args) == 3 {
				jobID = args[2]
			}
			if jobID == "" {
				if kind == "youtube" {
					jobID = pipeline.JobIDFromString(input)
				} else {
					jobID, err = pipeline.JobIDFromFile(input)
					if err != nil {
						return err
					}
				}
			}
			log.Info("processing", zap.String("kind", kind), zap.String("job", jobID))

			ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Hour)
			defer cancel()

			res, err := pipeline.Process(ctx, cfg, kind, input, jobID)
			if err != nil {
				return err
			}
			return printResult(res)
		},
	}
	cmd.Flags().String("backend", getenvDefault("LLM_BACKEND", "phi"), "Post generation backend (phi or gemini)")
	return cmd
}

func baseConfig(cmd *cobra.Command) (pipeline.Config, *zap.Logger, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonLogs, _ := cmd.Flags().GetBool("json-logs")
	log, err := logging.New(logging.Options{Verbose: verbose, JSON: jsonLogs})
	if err != nil {
		return pipeline.Config{}, nil, err
	}

	publicDir, _ := cmd.Flags().GetString("public-dir")
	dbPath, _ := cmd.Flags().GetString("db")
	backend, _ := cmd.Flags().GetString("backend")
	padding, _ := cmd.Flags().GetFloat64("padding")
	if padding == 0 {
		padding = 1.0
	}

	cfg := pipeline.Config{
		PublicDir:     publicDir,
		DBPath:        dbPath,
		WatermarkPath: os.Getenv("WATERMARK_PATH"),

		FFmpegPath:    getenvDefault("FFMPEG_PATH", "ffmpeg"),
		FFprobePath:   getenvDefault("FFPROBE_PATH", "ffprobe"),
		WhisperBin:    getenvDefault("WHISPER_BIN", "whisper-cli"),
		WhisperModel:  os.Getenv("WHISPER_MODEL_PATH"),
		YtdlpPath:     getenvDefault("YTDLP_PATH", "yt-dlp"),
		YtdlpFormat:   os.Getenv("YTDLP_VIDEO_FORMAT"),
		CookieFile:    os.Getenv("YTDLP_COOKIE_FILE"),
		PdftotextPath: getenvDefault("PDFTOTEXT_PATH", "pdftotext"),
		PdfimagesPath: getenvDefault("PDFIMAGES_PATH", "pdfimages"),

		Backend:      backend,
		GeminiAPIKey: os.Getenv("GOOGLE_API_KEY"),
		GeminiModel:  os.Getenv("GEMINI_MODEL"),
		LLMModel:     os.Getenv("LLM_MODEL"),
		LLMBaseURL:   os.Getenv("LLM_BASE_URL"),

		BasePadding: padding,
		Log:         log,
	}
	if err := cfg.Validate(); err != nil {
		return pipeline.Config{}, nil, err
	}
	return cfg, log, nil
}
