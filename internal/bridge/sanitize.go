package bridge

import "strings"

var sanitizer = strings.NewReplacer(
	`\`, `\\`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
	`"`, `\"`,
	`'`, `\'`,
)

// Sanitize escapes s for transport through a quoted script string.
func Sanitize(s string) string {
	return sanitizer.Replace(s)
}

// Desanitize reverses Sanitize. Unknown escape sequences and a trailing
// backslash are kept as they are.
func Desanitize(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i == len(s)-1 {
			sb.WriteByte(c)
			continue
		}

		switch s[i+1] {
		case '\\':
			sb.WriteByte('\\')
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '"':
			sb.WriteByte('"')
		case '\'':
			sb.WriteByte('\'')
		default:
			sb.WriteByte('\\')
			sb.WriteByte(s[i+1])
		}
		i++
	}
	return sb.String()
}
