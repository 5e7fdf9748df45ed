package summary

import (
	"strings"
	"unicode/utf8"
)

// fallbackDigest builds a deterministic one-line digest of the turns when no
// LLM summary is available. It mentions the first few exchanges so the
// rolling summary still carries signal after an outage.
func fallbackDigest(turns []Turn) *Result {
	var fragments []string
	for _, turn := range turns {
		content := strings.TrimSpace(turn.Content)
		if content == "" {
			continue
		}
		fragments = append(fragments, truncateRunes(content, 30))
		if len(fragments) == 3 {
			break
		}
	}
	if len(fragments) == 0 {
		return &Result{Source: "fallback_truncate"}
	}

	return &Result{
		Summary: "User asked about video analysis. Discussed: " + strings.Join(fragments, "; ") + "...",
		Source:  "fallback_digest",
	}
}

// truncateRunes cuts s to at most maxLen runes without splitting a rune.
func truncateRunes(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen])
}
