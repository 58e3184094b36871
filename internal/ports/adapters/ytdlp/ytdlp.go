package ytdlp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/kearry/mca/internal/types"
)

const defaultFormat = "bestvideo[height<=720]+bestaudio/best[height<=720]"

type Adapter struct {
	bin        string
	format     string
	cookieFile string
}

func New(binPath, format, cookieFile string) *Adapter {
	if binPath == "" {
		binPath = "yt-dlp"
	}
	if format == "" {
		format = defaultFormat
	}
	return &Adapter{bin: binPath, format: format, cookieFile: cookieFile}
}

func (a *Adapter) Download(ctx context.Context, url, outPath string) error {
	args := []string{
		"-f", a.format,
		"--merge-output-format", "mp4",
		"--no-warnings",
		"-o", outPath,
	}
	if a.cookieFile != "" {
		if _, err := os.Stat(a.cookieFile); err == nil {
			args = append(args, "--cookies", a.cookieFile)
		}
	}
	args = append(args, url)

	execCtx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()
	cmd := exec.CommandContext(execCtx, a.bin, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		msg := string(b)
		if strings.Contains(msg, "Sign in to confirm") {
			msg += "\nset YTDLP_COOKIE_FILE to a browser-exported cookies file so yt-dlp can authenticate"
		}
		return fmt.Errorf("yt-dlp download: %w\n%s", err, msg)
	}
	return nil
}

// FetchCaptions asks the platform for an existing transcript, preferring
// manual subtitles over auto-generated ones. An empty transcript with a
// nil error means the video has none; callers fall back to local
// transcription.
func (a *Adapter) FetchCaptions(ctx context.Context, url, cacheDir string) (types.Transcript, error) {
	outPrefix := filepath.Join(cacheDir, "captions")
	args := []string{
		"--skip-download",
		"--write-subs",
		"--write-auto-subs",
		"--sub-langs", "en",
		"--sub-format", "json3",
		"--no-warnings",
		"-o", outPrefix,
	}
	if a.cookieFile != "" {
		if _, err := os.Stat(a.cookieFile); err == nil {
			args = append(args, "--cookies", a.cookieFile)
		}
	}
	args = append(args, url)

	execCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()
	cmd := exec.CommandContext(execCtx, a.bin, args...)
	if b, err := cmd.CombinedOutput(); err != nil {
		return types.Transcript{}, fmt.Errorf("yt-dlp captions: %w\n%s", err, string(b))
	}

	data, err := os.ReadFile(outPrefix + ".en.json3")
	if err != nil {
		if os.IsNotExist(err) {
			return types.Transcript{}, nil
		}
		return types.Transcript{}, err
	}
	defer os.Remove(outPrefix + ".en.json3")
	return ParseJSON3(data)
}

// ParseJSON3 converts the platform's json3 caption format into a
// Transcript. Events without text payloads (styling, window moves) are
// skipped.
func ParseJSON3(data []byte) (types.Transcript, error) {
	var raw struct {
		Events []struct {
			StartMs    float64 `json:"tStartMs"`
			DurationMs float64 `json:"dDurationMs"`
			Segs       []struct {
				UTF8 string `json:"utf8"`
			} `json:"segs"`
		} `json:"events"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return types.Transcript{}, fmt.Errorf("parse captions: %w", err)
	}

	var tr types.Transcript
	var full strings.Builder
	for _, ev := range raw.Events {
		var b strings.Builder
		for _, s := range ev.Segs {
			b.WriteString(s.UTF8)
		}
		text := strings.Join(strings.Fields(b.String()), " ")
		if text == "" {
			continue
		}
		start := ev.StartMs / 1000
		end := (ev.StartMs + ev.DurationMs) / 1000
		tr.Segments = append(tr.Segments, types.Segment{Start: start, End: end, Text: text})
		if full.Len() > 0 {
			full.WriteByte(' ')
		}
		full.WriteString(text)
	}
	tr.Text = full.String()
	return tr, nil
}
