package utils

import "strings"

// TrimStrToRect cuts s down to at most maxHeight lines of at most maxWidth
// bytes each, marking every cut with "[...]".
func TrimStrToRect(s string, maxHeight int, maxWidth int) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
		lines = append(lines, "[...]")
	}
	var res strings.Builder
	for i, line := range lines {
		if i > 0 {
			res.WriteByte('\n')
		}
		if len(line) > maxWidth {
			res.WriteString(line[:maxWidth])
			res.WriteString("[...]")
		} else {
			res.WriteString(line)
		}
	}
	return res.String()
}
