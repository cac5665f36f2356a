package media

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// SecureFilename ne garde que des caractères ASCII sûrs ([A-Za-z0-9_.-]).
// Le résultat peut être vide.
func SecureFilename(name string) string {
	var b strings.Builder
	for _, r := range norm.NFKD.String(name) {
		if r > unicode.MaxASCII {
			continue
		}
		switch r {
		case '/', '\\':
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}

	parts := strings.Fields(b.String())
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '_', r == '.', r == '-':
			return r
		}
		return -1
	}, strings.Join(parts, "_"))

	return strings.Trim(cleaned, "._")
}

// UniqueName préfixe le nom d'un UUID v4 pour éviter toute collision.
func UniqueName(filename string) string {
	return uuid.NewString() + "_" + filename
}
