// femtoclaw - multi-channel AI agent gateway
// License: MIT

package channels

import "strings"

// splitMessage splits content into chunks of at most maxLen runes, preferring
// line boundaries and keeping fenced code blocks balanced by closing and
// re-opening a fence around the split point.
func splitMessage(content string, maxLen int) []string {
	if maxLen <= 0 || len([]rune(content)) <= maxLen {
		return []string{content}
	}

	// Room for the closing "\n```" appended when a split lands inside a
	// fenced block.
	budget := maxLen - 4
	if budget < 16 {
		budget = maxLen
	}

	var chunks []string
	var lines []string
	currentLen := 0
	openFence := ""

	flush := func() {
		if len(lines) == 0 {
			return
		}
		chunk := strings.Join(lines, "\n")
		if openFence != "" {
			chunk += "\n```"
		}
		chunks = append(chunks, chunk)
		lines = lines[:0]
		currentLen = 0
		if openFence != "" {
			lines = append(lines, openFence)
			currentLen = len([]rune(openFence)) + 1
		}
	}

	push := func(line string) {
		lineLen := len([]rune(line)) + 1
		if currentLen > 0 && currentLen+lineLen > budget {
			flush()
		}
		lines = append(lines, line)
		currentLen += lineLen
	}

	for _, line := range strings.Split(content, "\n") {
		// Lines longer than the budget are split hard.
		for len([]rune(line)) > budget {
			lr := []rune(line)
			push(string(lr[:budget]))
			flush()
			line = string(lr[budget:])
		}
		push(line)

		// Toggle fences after the line lands, so a flush triggered by the
		// fence line itself sees the state of the text already in the chunk.
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if openFence == "" {
				openFence = strings.TrimSpace(line)
			} else {
				openFence = ""
			}
		}
	}

	openFence = ""
	flush()

	return chunks
}
