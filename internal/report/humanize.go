package report

import (
	"strings"
	"unicode"
)

// Humanize turns a tag suffix like "FinalFantasy7" into a display title
// ("Final Fantasy 7"). Tokens without any lowercase letter are only trimmed,
// so acronyms such as "RPG" stay intact.
func Humanize(name string) string {
	s := strings.TrimSpace(name)
	if !strings.ContainsFunc(s, unicode.IsLower) {
		return s
	}

	var sb strings.Builder
	var prev rune
	for i, r := range s {
		if i > 0 {
			if unicode.IsUpper(r) && !unicode.IsSpace(prev) && !unicode.IsUpper(prev) {
				sb.WriteByte(' ')
			}
			if unicode.IsDigit(r) && !unicode.IsSpace(prev) && !unicode.IsDigit(prev) {
				sb.WriteByte(' ')
			}
		}
		if r == '_' {
			sb.WriteByte(' ')
		} else {
			sb.WriteRune(r)
		}
		prev = r
	}
	return strings.TrimSpace(sb.String())
}
