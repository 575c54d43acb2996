package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseResults decodes the model's raw text into classification results.
// Models sometimes wrap JSON in markdown fences or surround it with prose
// despite instructions; parsing tolerates both.
func parseResults(raw string) ([]Result, error) {
	clean := cleanModelJSON(raw)
	if clean == "" {
		return nil, fmt.Errorf("empty response from model")
	}

	var results []Result
	if err := json.Unmarshal([]byte(clean), &results); err != nil {
		return nil, fmt.Errorf("failed to parse model response: %w", err)
	}

	out := make([]Result, 0, len(results))
	for _, r := range results {
		if r.ID == "" {
			continue
		}
		if r.Confidence < 0 {
			r.Confidence = 0
		}
		if r.Confidence > 1 {
			r.Confidence = 1
		}
		out = append(out, r)
	}
	return out, nil
}

// cleanModelJSON strips markdown fences and keeps only the outermost JSON
// array.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "["); start != -1 {
		if end := strings.LastIndex(s, "]"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}
