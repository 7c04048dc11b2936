package responder

import (
	"fmt"
	"strings"
)

const (
	responseMarker = "AI response:"
	noResponseText = "No response generated"
	promptTemplate = "Journal entry: %s\n\n" + responseMarker
)

// BuildPrompt wraps a journal entry in the completion prompt.
func BuildPrompt(entry string) string {
	return fmt.Sprintf(promptTemplate, entry)
}

// ExtractResponse returns the text following the response marker in the
// generated output, up to any repeated marker. Output without the marker, or
// with nothing after it, yields "No response generated".
func ExtractResponse(generated string) string {
	parts := strings.Split(generated, responseMarker)
	if len(parts) < 2 {
		return noResponseText
	}
	if s := strings.TrimSpace(parts[1]); s != "" {
		return s
	}
	return noResponseText
}
