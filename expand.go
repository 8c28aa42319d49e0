package budgetflow

import (
	"os"
	"strings"
	"unicode"
)

const envPrefix = "${env."

// expandEnv substitutes ${env.KEY} expressions in a config document with the
// value of the KEY environment variable.  Unset variables expand to "".
// Expressions with an unterminated brace or a key outside [A-Za-z0-9_] are
// copied verbatim.
func expandEnv(text string) string {
	if !strings.Contains(text, envPrefix) {
		return text
	}
	var sb strings.Builder
	for {
		start := strings.Index(text, envPrefix)
		if start < 0 {
			sb.WriteString(text)
			return sb.String()
		}
		sb.WriteString(text[:start])
		rest := text[start+len(envPrefix):]
		end := strings.IndexByte(rest, '}')
		if end < 0 {
			sb.WriteString(text[start:])
			return sb.String()
		}
		key := rest[:end]
		if !isEnvKey(key) {
			// keep scanning after the prefix so nested expressions still expand
			sb.WriteString(envPrefix)
			text = rest
			continue
		}
		sb.WriteString(os.Getenv(key))
		text = rest[end+1:]
	}
}

func isEnvKey(key string) bool {
	for _, r := range key {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}
