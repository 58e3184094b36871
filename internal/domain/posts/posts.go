package posts

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kearry/mca/internal/ports"
	"github.com/kearry/mca/internal/types"
)

const systemPrompt = `You are creating authentic, engaging social media posts from source material.

Your posts should:
- Sound natural and conversational (avoid "mind-blowing" or "game-changing" clichés)
- Vary in style - some can be questions, observations, quick tips, or thought starters
- Stay under 280 characters total
- Use minimal emojis (0-2 max, only when they add value)
- Feel like something a real person would share, not marketing copy

You MUST provide your output as a valid JSON array of objects with ONLY the JSON text.
Each object must have:
- "post_text": The complete social media post (under 280 chars)
- "source_quote": The exact phrase from source that inspired this post
- Each source_quote must be unique

For PDFs with page markers, also include:
- "page_number": The page number as an integer`

const (
	charsPerToken     = 4
	outputTokenBuffer = 1024
	baseContextTokens = 8192
)

// Generator turns source text into candidate posts through a chat model,
// chunking long inputs to fit the model's context budget.
type Generator struct {
	llm ports.ChatModel
	log *zap.Logger
}

func NewGenerator(llm ports.ChatModel, log *zap.Logger) Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return Generator{llm: llm, log: log}
}

func (g Generator) Generate(ctx context.Context, text, sourceType string) ([]types.Post, error) {
	maxContextTokens := baseContextTokens - (len(systemPrompt)/charsPerToken + outputTokenBuffer)
	maxChunkChars := maxContextTokens * charsPerToken

	var all []types.Post
	runes := []rune(text)
	for i := 0; i < len(runes); i += maxChunkChars {
		end := i + maxChunkChars
		if end > len(runes) {
			end = len(runes)
		}
		chunk := string(runes[i:end])

		user := fmt.Sprintf(
			"Extract the most VIRAL quotes from this %s. Focus on controversial, surprising, or valuable insights that people will want to share:\n\n%s",
			sourceType, chunk,
		)
		content, err := g.llm.Complete(ctx, systemPrompt, user, 0.4, outputTokenBuffer)
		if err != nil {
			return nil, fmt.Errorf("generate posts: %w", err)
		}

		chunkPosts, err := ParsePosts(content)
		if err != nil {
			// A malformed chunk should not lose the rest of the document.
			g.log.Warn("skipping unparseable chunk", zap.Error(err))
			continue
		}
		all = append(all, chunkPosts...)
		g.log.Debug("chunk processed", zap.Int("posts", len(chunkPosts)))
	}

	final := Deduplicate(all)
	g.log.Info("post generation complete",
		zap.Int("raw", len(all)), zap.Int("final", len(final)))
	return final, nil
}

// Deduplicate drops posts that repeat an earlier post's source quote.
func Deduplicate(in []types.Post) []types.Post {
	seen := make(map[string]bool, len(in))
	out := make([]types.Post, 0, len(in))
	for _, p := range in {
		if p.SourceQuote != "" && seen[p.SourceQuote] {
			continue
		}
		if p.SourceQuote != "" {
			seen[p.SourceQuote] = true
		}
		out = append(out, p)
	}
	return out
}
