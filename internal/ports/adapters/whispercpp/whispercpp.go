package whispercpp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kearry/mca/internal/types"
)

type Adapter struct {
	bin   string
	model string
}

func New(binPath, modelPath string) *Adapter {
	return &Adapter{bin: binPath, model: modelPath}
}

func (a *Adapter) Transcribe(ctx context.Context, wavPath, cacheDir string) (types.Transcript, error) {
	outPrefix := filepath.Join(cacheDir, "whisper")
	args := []string{
		"-m", a.model,
		"-f", wavPath,
		"-oj",
		"-of", outPrefix,
		"--no-prints",
	}
	execCtx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()
	cmd := exec.CommandContext(execCtx, a.bin, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return types.Transcript{}, fmt.Errorf("whisper.cpp failed: %w\n%s", err, string(b))
	}

	jb, err := os.ReadFile(outPrefix + ".json")
	if err != nil {
		return types.Transcript{}, err
	}
	return ParseOutput(jb)
}

// rawSegment tolerates the timestamp shapes different whisper.cpp
// versions emit: plain start/end seconds, offsets in milliseconds, or
// clock-style timestamp strings.
type rawSegment struct {
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Text       string  `json:"text"`
	Timestamps *struct {
		From string `json:"from"`
		To   string `json:"to"`
	} `json:"timestamps"`
	Offsets *struct {
		From float64 `json:"from"`
		To   float64 `json:"to"`
	} `json:"offsets"`
}

// ParseOutput converts whisper.cpp JSON into a Transcript. The tool has
// shipped several container shapes over the years; all of them carry an
// array of segments under one of a few well-known keys.
func ParseOutput(data []byte) (types.Transcript, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		// Some builds emit a bare array.
		var list []rawSegment
		if err2 := json.Unmarshal(data, &list); err2 != nil {
			return types.Transcript{}, fmt.Errorf("parse whisper output: %w", err)
		}
		return fromRaw(list), nil
	}

	for _, key := range []string{"transcription", "segments", "result"} {
		raw, ok := root[key]
		if !ok {
			continue
		}
		var list []rawSegment
		if err := json.Unmarshal(raw, &list); err != nil {
			continue
		}
		return fromRaw(list), nil
	}
	return types.Transcript{}, fmt.Errorf("parse whisper output: no segment list found")
}

func fromRaw(list []rawSegment) types.Transcript {
	var tr types.Transcript
	var full strings.Builder
	for _, r := range list {
		text := strings.TrimSpace(r.Text)
		if text == "" {
			continue
		}
		start, end := r.Start, r.End
		if r.Offsets != nil {
			start = r.Offsets.From / 1000
			end = r.Offsets.To / 1000
		} else if r.Timestamps != nil {
			start = clockSeconds(r.Timestamps.From)
			end = clockSeconds(r.Timestamps.To)
		}
		tr.Segments = append(tr.Segments, types.Segment{Start: start, End: end, Text: text})
		if full.Len() > 0 {
			full.WriteByte(' ')
		}
		full.WriteString(text)
	}
	tr.Text = full.String()
	return tr
}

// clockSeconds parses "HH:MM:SS,mmm" style timestamps. Unparseable
// values collapse to zero and are repaired downstream by the segment
// normalizer.
func clockSeconds(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	parts := strings.Split(s, ":")
	total := 0.0
	for _, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0
		}
		total = total*60 + f
	}
	return total
}
