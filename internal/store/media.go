package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kearry/mca/internal/types"
)

// Media resolves job and post identifiers to artifact paths inside a
// single generated-files directory and owns the segments file format.
// The clip flow only ever reads the source artifacts it resolves.
type Media struct {
	dir string
}

func NewMedia(dir string) Media {
	return Media{dir: dir}
}

func (m Media) Dir() string {
	return m.dir
}

func (m Media) EnsureDir() error {
	return os.MkdirAll(m.dir, 0o755)
}

func (m Media) VideoPath(jobID string) string {
	return filepath.Join(m.dir, jobID+"_full.mp4")
}

func (m Media) AudioPath(jobID string) string {
	return filepath.Join(m.dir, jobID+"_audio.wav")
}

func (m Media) SegmentsPath(jobID string) string {
	return filepath.Join(m.dir, jobID+"_segments.json")
}

func (m Media) TranscriptPath(jobID string) string {
	return filepath.Join(m.dir, jobID+"_transcript.txt")
}

func (m Media) ClipPath(postID string) string {
	return filepath.Join(m.dir, postID+".mp4")
}

// PageImagePrefix is the output prefix for page images extracted from a
// job's PDF source; the extractor appends page and image numbers.
func (m Media) PageImagePrefix(jobID string) string {
	return filepath.Join(m.dir, jobID+"_page")
}

// HasArtifacts reports whether any generated file for the job exists,
// which marks the job as already processed even when the database rows
// are gone.
func (m Media) HasArtifacts(jobID string) bool {
	matches, err := filepath.Glob(filepath.Join(m.dir, jobID+"_*"))
	return err == nil && len(matches) > 0
}

// PublicURL maps an artifact inside the store to the path the serving
// layer exposes it under.
func (m Media) PublicURL(path string) string {
	return "/generated/" + filepath.Base(path)
}

func (m Media) WriteSegments(jobID string, segs []types.Segment) error {
	b, err := json.Marshal(segs)
	if err != nil {
		return fmt.Errorf("marshal segments: %w", err)
	}
	if err := os.WriteFile(m.SegmentsPath(jobID), b, 0o644); err != nil {
		return fmt.Errorf("write segments: %w", err)
	}
	return nil
}

func (m Media) ReadSegments(jobID string) ([]types.Segment, error) {
	b, err := os.ReadFile(m.SegmentsPath(jobID))
	if err != nil {
		return nil, err
	}
	var segs []types.Segment
	if err := json.Unmarshal(b, &segs); err != nil {
		return nil, fmt.Errorf("parse segments: %w", err)
	}
	return segs, nil
}

// Sweep removes generated artifacts older than maxAge. Orphaned scratch
// files from crashed extraction attempts are cleaned up here too.
func (m Media) Sweep(maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if os.Remove(filepath.Join(m.dir, e.Name())) == nil {
				removed++
			}
		}
	}
	return removed, nil
}
