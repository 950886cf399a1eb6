// Package sanitize strips reasoning markup from model output and pulls
// structured payloads out of free text.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	thinkBlock    = regexp.MustCompile(`(?s)<think>.*?</think>`)
	thinkOpen     = regexp.MustCompile(`(?s)<think.*?>`)
	thinkClose    = regexp.MustCompile(`(?s)</think.*?>`)
	anyTag        = regexp.MustCompile(`(?s)<.*?>`)
	jsonFence     = regexp.MustCompile("(?s)```json(.*?)```")
	plainFence    = regexp.MustCompile("(?s)```(.*?)```")
	payloadLabels = []string{"JSON response:", "JSON:"}
)

// Clean removes reasoning blocks, markup tags, code-fence delimiters and JSON
// labels, then trims. Fenced content is kept. Clean(Clean(x)) == Clean(x).
func Clean(raw string) string {
	text := cleanOnce(raw)
	// a pass can expose a new match ("<<a>b>"), and every pass that changes
	// the text shortens it, so this terminates
	for {
		next := cleanOnce(text)
		if next == text {
			return text
		}
		text = next
	}
}

func cleanOnce(text string) string {
	out := thinkBlock.ReplaceAllString(text, "")
	out = thinkOpen.ReplaceAllString(out, "")
	out = thinkClose.ReplaceAllString(out, "")
	out = anyTag.ReplaceAllString(out, "")
	out = jsonFence.ReplaceAllString(out, "$1")
	out = plainFence.ReplaceAllString(out, "$1")
	for _, label := range payloadLabels {
		out = strings.ReplaceAll(out, label, "")
	}
	return strings.TrimSpace(out)
}
