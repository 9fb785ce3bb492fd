package verse

import (
	"regexp"
	"strings"
)

// HeaderScanLines bounds how far into a text a header rule line is looked for.
const HeaderScanLines = 60

// Line is a body line with its 1-based line number in the original content.
type Line struct {
	Number int
	Text   string
}

// Body is a corpus text with its header block removed.
type Body struct {
	Header []string
	Lines  []Line
}

var (
	ruleLine     = regexp.MustCompile(`^\s*(-{3,}|={3,}|\*{3,})\s*$`)
	metadataLine = regexp.MustCompile(`(?i)^\s*(title|author|source|editor|edition|data entry|contribution|contributor|date|version|text|language|translator|publisher|license|input|notes|revision|header|description|url|encoding)\s*:`)
)

// isCommentLine reports lines that are never verse text: "#" and "%" comments.
func isCommentLine(trimmed string) bool {
	return strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "%")
}

// SplitHeader separates the header/title block from the body of content.
//
// A rule line (---, ===, ***) within the first HeaderScanLines lines closes the
// header when no verse marker precedes it. Otherwise leading blank, comment and
// "Key: value" metadata lines form the header. Comment lines are dropped from
// the body wherever they appear; blank lines are dropped as well.
func SplitHeader(content string) Body {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(content, "\n")

	start := 0
	for i := 0; i < len(lines) && i < HeaderScanLines; i++ {
		if ruleLine.MatchString(lines[i]) {
			start = i + 1
			break
		}
		if _, ok := findMarker(lines[i]); ok {
			break
		}
	}
	if start == 0 {
		for start < len(lines) {
			trimmed := strings.TrimSpace(lines[start])
			if trimmed != "" && !isCommentLine(trimmed) && !metadataLine.MatchString(trimmed) {
				break
			}
			start++
		}
	}

	var body Body
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if i < start {
			if trimmed != "" {
				body.Header = append(body.Header, trimmed)
			}
			continue
		}
		if trimmed == "" || isCommentLine(trimmed) {
			continue
		}
		body.Lines = append(body.Lines, Line{Number: i + 1, Text: trimmed})
	}
	return body
}

// Text joins the body lines with newlines.
func (b Body) Text() string {
	var sb strings.Builder
	for i, l := range b.Lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(l.Text)
	}
	return sb.String()
}
