package slug

import (
	"strings"
	"unicode"
)

const maxLen = 40

// Generate turns a task title into a short, file-name safe slug. Runs of
// anything other than ASCII letters and digits collapse into one hyphen.
func Generate(s string) string {
	var b strings.Builder
	pendingHyphen := false

	for _, r := range strings.ToLower(s) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			if b.Len() >= maxLen {
				break
			}
			continue
		}
		pendingHyphen = true
	}

	out := b.String()
	if len(out) > maxLen {
		out = out[:maxLen]
	}
	out = strings.TrimRight(out, "-")
	if out == "" {
		return "untitled"
	}
	return out
}
