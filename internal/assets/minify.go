package assets

import "strings"

// MinifyCSS applies basic CSS minification: comment removal and whitespace
// collapsing. For heavier optimization plug a dedicated minifier into the
// pipeline.
func MinifyCSS(content string) string {
	content = stripBlockComments(content)

	content = strings.ReplaceAll(content, "\n", " ")
	content = strings.ReplaceAll(content, "\t", " ")
	for strings.Contains(content, "  ") {
		content = strings.ReplaceAll(content, "  ", " ")
	}

	// Spaces around punctuation carry no meaning in CSS.
	for _, p := range []string{"{", "}", ":", ";", ","} {
		content = strings.ReplaceAll(content, " "+p, p)
		content = strings.ReplaceAll(content, p+" ", p)
	}

	return strings.TrimSpace(content)
}

// MinifyJS applies conservative JavaScript minification: full-line comments,
// block comments, and leading/trailing whitespace are removed, one statement
// line per line kept. Semantics-preserving for code that does not rely on
// automatic semicolon insertion across removed newlines.
func MinifyJS(content string) string {
	content = stripBlockComments(content)

	var minified strings.Builder
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") {
			continue
		}

		if minified.Len() > 0 {
			minified.WriteString("\n")
		}
		minified.WriteString(trimmed)
	}

	return minified.String()
}

// stripBlockComments removes /* ... */ comments, including multi-line ones.
func stripBlockComments(content string) string {
	var b strings.Builder
	b.Grow(len(content))

	for {
		start := strings.Index(content, "/*")
		if start < 0 {
			b.WriteString(content)
			break
		}
		end := strings.Index(content[start+2:], "*/")
		if end < 0 {
			// Unterminated comment: drop the rest.
			b.WriteString(content[:start])
			break
		}
		b.WriteString(content[:start])
		content = content[start+2+end+2:]
	}

	return b.String()
}
