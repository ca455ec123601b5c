package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"splitinvoice/internal/recognition"
)

// parseResult decodes the model's JSON answer. Models occasionally wrap
// the payload in a markdown code fence even when asked for raw JSON, so
// fences are stripped before decoding. Anything that still fails to decode
// is a malformed-response failure, never a partial result.
func parseResult(text string) (recognition.Result, error) {
	cleaned := stripFences(text)

	var result recognition.Result
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return recognition.Result{}, fmt.Errorf("%w: %v", recognition.ErrMalformed, err)
	}
	for i := range result.LineItems {
		result.LineItems[i].Description = strings.TrimSpace(result.LineItems[i].Description)
	}
	return result, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
