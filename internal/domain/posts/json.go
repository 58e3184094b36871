package posts

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/kearry/mca/internal/types"
)

var thinkBlockRE = regexp.MustCompile(`(?s)<think>.*?</think>`)

// ParsePosts recovers a post list from raw model output. Models wrap
// their JSON in reasoning tags, code fences, or a single-key object; all
// of those are tolerated, as is a lone post object.
func ParsePosts(content string) ([]types.Post, error) {
	v, err := ExtractJSON(content)
	if err != nil {
		return nil, err
	}

	var items []any
	switch x := v.(type) {
	case []any:
		items = x
	case map[string]any:
		if _, ok := x["post_text"]; ok {
			items = []any{x}
			break
		}
		if len(x) == 1 {
			for _, inner := range x {
				if list, ok := inner.([]any); ok {
					items = list
				}
			}
		}
		if items == nil {
			return nil, errors.New("json object does not contain expected structure")
		}
	default:
		return nil, errors.New("json output must be a list of objects")
	}

	out := make([]types.Post, 0, len(items))
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			return nil, errors.New("json array must contain objects")
		}
		text, _ := m["post_text"].(string)
		quote, _ := m["source_quote"].(string)
		if text == "" || quote == "" {
			// Partially formed entries are dropped, not fatal.
			continue
		}
		p := types.Post{Text: text, SourceQuote: quote}
		if page, ok := m["page_number"].(float64); ok {
			p.PageNumber = int(page)
		}
		out = append(out, p)
	}
	return out, nil
}

// ExtractJSON finds the most plausible JSON value embedded in text: the
// decodable object or array that consumes the most input.
func ExtractJSON(text string) (any, error) {
	text = strings.TrimSpace(text)
	text = thinkBlockRE.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "<think>", "")
	text = strings.ReplaceAll(text, "</think>", "")
	text = stripCodeFence(strings.TrimSpace(text))

	var best any
	bestLen := -1
	for i, ch := range text {
		if ch != '[' && ch != '{' {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(text[i:]))
		var v any
		if err := dec.Decode(&v); err != nil {
			continue
		}
		if n := int(dec.InputOffset()); n > bestLen {
			best = v
			bestLen = n
		}
	}
	if bestLen < 0 {
		return nil, fmt.Errorf("no JSON value found in model output")
	}
	return best, nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:]
	}
	if strings.HasSuffix(s, "```") {
		s = s[:len(s)-3]
	}
	return strings.TrimSpace(s)
}
