package pdftotext

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kearry/mca/internal/types"
)

type Adapter struct {
	bin       string
	imagesBin string
}

func New(binPath, imagesBinPath string) *Adapter {
	if binPath == "" {
		binPath = "pdftotext"
	}
	if imagesBinPath == "" {
		imagesBinPath = "pdfimages"
	}
	return &Adapter{bin: binPath, imagesBin: imagesBinPath}
}

// ExtractText converts a PDF to plain text with per-page markers so the
// post generator can attribute quotes to page numbers. pdftotext emits a
// form feed between pages; those become the markers.
func (a *Adapter) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	execCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()
	cmd := exec.CommandContext(execCtx, a.bin, "-layout", pdfPath, "-")
	b, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}

	pages := strings.Split(string(b), "\f")
	var out strings.Builder
	for i, page := range pages {
		if strings.TrimSpace(page) == "" {
			continue
		}
		fmt.Fprintf(&out, "\n\n--- Page %d ---\n\n", i+1)
		out.WriteString(page)
	}
	return out.String(), nil
}

// ExtractImages pulls embedded images out of the PDF with pdfimages. The
// -p flag puts the page number in each output name, which is how images
// get joined back to posts citing that page.
func (a *Adapter) ExtractImages(ctx context.Context, pdfPath, outPrefix string) ([]types.PageImage, error) {
	execCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()
	cmd := exec.CommandContext(execCtx, a.imagesBin, "-p", "-png", pdfPath, outPrefix)
	if b, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdfimages: %w\n%s", err, string(b))
	}

	files, err := filepath.Glob(outPrefix + "-*.png")
	if err != nil {
		return nil, err
	}
	return imagesFromFiles(outPrefix, files), nil
}

// imagesFromFiles maps pdfimages output names ("<prefix>-PPP-NNN.png")
// back to page numbers. Files that do not follow the pattern are skipped.
func imagesFromFiles(prefix string, files []string) []types.PageImage {
	var out []types.PageImage
	for _, f := range files {
		rest := strings.TrimSuffix(strings.TrimPrefix(f, prefix+"-"), ".png")
		parts := strings.Split(rest, "-")
		if len(parts) != 2 {
			continue
		}
		page, err := strconv.Atoi(parts[0])
		if err != nil || page < 1 {
			continue
		}
		out = append(out, types.PageImage{Path: f, Page: page})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Page != out[j].Page {
			return out[i].Page < out[j].Page
		}
		return out[i].Path < out[j].Path
	})
	return out
}
