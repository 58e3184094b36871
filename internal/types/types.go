package types

type Transcript struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
}

type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// MatchResult locates a quote inside a segment sequence. Found is false
// when no candidate window cleared the acceptance threshold.
type MatchResult struct {
	Found   bool
	Start   float64
	End     float64
	Snippet string
	Score   float64
}

// Strategy is one timing parametrization tried by the clip orchestrator.
// Offsets are seconds relative to the matched window; PriorWeight is the
// verifier's prior that a cut with this timing is centered correctly.
type Strategy struct {
	Name         string
	StartOffset  float64
	EndOffset    float64
	ExtraPadding float64
	PriorWeight  float64
}

type ConfidenceBucket string

const (
	ConfidenceHigh   ConfidenceBucket = "high"
	ConfidenceMedium ConfidenceBucket = "medium"
	ConfidenceLow    ConfidenceBucket = "low"
)

type Check struct {
	Name   string
	Passed bool
	Detail string
}

type Verification struct {
	Passed     bool
	Bucket     ConfidenceBucket
	Confidence float64
	Checks     []Check
}

// ClipOutcome is the orchestrator's final word on one clip request. On
// total failure Success is false and DebugPath is empty; when the debug
// fallback produced an artifact, DebugPath points at it.
type ClipOutcome struct {
	Success    bool
	Strategy   string
	Start      float64
	End        float64
	Confidence float64
	Bucket     ConfidenceBucket
	DebugPath  string
}

// PageImage is an image extracted from one page of a PDF source,
// attachable to posts that cite that page.
type PageImage struct {
	Path string
	Page int
}

type Post struct {
	Text         string  `json:"post_text"`
	SourceQuote  string  `json:"source_quote"`
	MediaPath    string  `json:"media_path,omitempty"`
	QuoteSnippet string  `json:"quote_snippet,omitempty"`
	StartTime    float64 `json:"start_time,omitempty"`
	EndTime      float64 `json:"end_time,omitempty"`
	PageNumber   int     `json:"page_number,omitempty"`
}

type ClipResponse struct {
	Status       string            `json:"status"`
	MediaPath    string            `json:"media_path"`
	StartTime    float64           `json:"start_time"`
	EndTime      float64           `json:"end_time"`
	QuoteSnippet string            `json:"quote_snippet,omitempty"`
	Verification *ClipVerification `json:"verification,omitempty"`
}

type ClipVerification struct {
	Strategy       string  `json:"strategy"`
	Confidence     float64 `json:"confidence"`
	TimingAdjusted bool    `json:"timing_adjusted"`
}

type ProcessResponse struct {
	Status string `json:"status"`
	Posts  []Post `json:"posts"`
}
