package tex

import "strings"

// StripComments removes every unescaped % and the remainder of its line.
// The line break itself is kept, and \% survives as a literal percent.
func StripComments(text string) string {
	if !strings.Contains(text, "%") {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))

	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '%' && (i == 0 || text[i-1] != '\\') {
			nl := strings.IndexByte(text[i:], '\n')
			if nl < 0 {
				break
			}
			i += nl - 1
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
