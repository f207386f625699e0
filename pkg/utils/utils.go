package utils

import (
	"strings"
	"unicode"
)

// SanitizeObjectKey converts an object key to a form that survives presigned
// URL assembly unchanged: ASCII only, no whitespace, no query/fragment
// metacharacters. The signing engine uses the key verbatim in both the URL
// path and the canonical request, so characters that a URL parser would
// reinterpret must never reach it.
func SanitizeObjectKey(key string) string {
	if key == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(key))

	for _, r := range key {
		switch {
		case r == '?' || r == '#' || r == '\\':
			result.WriteRune('-')
		case unicode.IsSpace(r):
			result.WriteRune('-')
		case r < 128 && unicode.IsPrint(r):
			result.WriteRune(r)
		case unicode.Is(unicode.Latin, r):
			result.WriteRune(stripDiacritic(r))
		default:
			result.WriteRune('-')
		}
	}

	// A leading slash would double up against the path separator the URL
	// assembler inserts.
	return strings.TrimLeft(result.String(), "/")
}

func stripDiacritic(r rune) rune {
	switch {
	case r >= 'À' && r <= 'Å':
		return 'A'
	case r >= 'à' && r <= 'å':
		return 'a'
	case r >= 'È' && r <= 'Ë':
		return 'E'
	case r >= 'è' && r <= 'ë':
		return 'e'
	case r >= 'Ì' && r <= 'Ï':
		return 'I'
	case r >= 'ì' && r <= 'ï':
		return 'i'
	case r >= 'Ò' && r <= 'Ö':
		return 'O'
	case r >= 'ò' && r <= 'ö':
		return 'o'
	case r >= 'Ù' && r <= 'Ü':
		return 'U'
	case r >= 'ù' && r <= 'ü':
		return 'u'
	case r == 'Ç':
		return 'C'
	case r == 'ç':
		return 'c'
	case r == 'Ñ':
		return 'N'
	case r == 'ñ':
		return 'n'
	}
	return '-'
}
