package usecase

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

var codeFencePattern = regexp.MustCompile("```(?:json)?\n?")

// decodeRepairable parses completion-service output that should be pure JSON
// but may arrive wrapped in Markdown code fences or truncated mid-stream.
// Recovery only handles trailing truncation by cutting back to the last
// closing brace; interior corruption is not repaired. Callers substitute
// their own context-appropriate fallback when an error is returned.
func decodeRepairable(text string, out any) error {
	text = strings.TrimSpace(codeFencePattern.ReplaceAllString(strings.TrimSpace(text), ""))

	firstErr := json.Unmarshal([]byte(text), out)
	if firstErr == nil {
		return nil
	}

	if !strings.HasSuffix(text, "}") {
		if idx := strings.LastIndex(text, "}"); idx > 0 {
			if err := json.Unmarshal([]byte(text[:idx+1]), out); err == nil {
				return nil
			}
		}
	}

	return goerr.Wrap(firstErr, "failed to parse completion response", goerr.V("response_head", head(text, 500)))
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
