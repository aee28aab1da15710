package importer

import "strings"

var namePrefixes = []string{
	"Money added from ",
	"Money added via transfer",
	"From ",
	"To ",
}

// SanitizeName strips boilerplate prefixes from a ledger description and
// restricts it to the statement character set. '/' becomes '.', anything
// else outside the set becomes '?'.
func SanitizeName(name string) string {
	name = trimNamePrefixes(name)
	return strings.Map(func(r rune) rune {
		switch {
		case r == '/':
			return '.'
		case isNameRune(r):
			return r
		default:
			return '?'
		}
	}, name)
}

// trimNamePrefixes removes listed prefixes until none match, so that
// SanitizeName(SanitizeName(x)) == SanitizeName(x).
func trimNamePrefixes(name string) string {
	for {
		trimmed := false
		for _, p := range namePrefixes {
			if strings.HasPrefix(name, p) {
				name = name[len(p):]
				trimmed = true
				break
			}
		}
		if !trimmed {
			return name
		}
	}
}

func isNameRune(r rune) bool {
	if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
		return true
	}
	return strings.ContainsRune("-?:().,'+ ", r)
}

// sanitizeHeader keeps printable ASCII and trims surrounding whitespace.
// Drops byte-order marks and other invisible characters some exports prepend.
func sanitizeHeader(h string) string {
	h = strings.Map(func(r rune) rune {
		if r >= 0x20 && r < 0x7f || strings.ContainsRune("\t\n\r\v\f", r) {
			return r
		}
		return -1
	}, h)
	return strings.TrimSpace(h)
}
