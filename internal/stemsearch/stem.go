// Package stemsearch implements the stemmed TF-IDF retrieval mode: light
// suffix-stripping stemmers for English and Russian, dual exact/stemmed term
// frequency indexes over a token file, and log-weighted TF-IDF scoring with
// an exact-match bonus.
package stemsearch

import "strings"

// normalizeToken keeps ASCII letters, digits, underscore, and all bytes
// >= 0x80 (multi-byte UTF-8 passes through), drops everything else, and
// ASCII-lowercases the result.
func normalizeToken(in string) string {
	var b strings.Builder
	b.Grow(len(in))
	for i := 0; i < len(in); i++ {
		c := in[i]
		switch {
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c + 'a' - 'A')
		case (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_' || c >= 0x80:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// looksASCIIWord reports whether the term is pure ASCII with at least one
// letter.
func looksASCIIWord(s string) bool {
	hasAlpha := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x80 {
			return false
		}
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			hasAlpha = true
		}
	}
	return hasAlpha
}

// looksCyrillic reports whether the term contains any non-ASCII bytes; after
// normalizeToken those are Cyrillic for this corpus.
func looksCyrillic(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return true
		}
	}
	return false
}

// stemEnLight strips one common English suffix from words of at least four
// characters, keeping a guard so short stems survive.
func stemEnLight(w string) string {
	if len(w) < 4 {
		return w
	}
	endsWith := func(suf string) bool {
		return len(w) > len(suf)+1 && strings.HasSuffix(w, suf)
	}
	switch {
	case endsWith("ing"):
		w = w[:len(w)-3]
	case endsWith("ed"):
		w = w[:len(w)-2]
	case endsWith("ly"):
		w = w[:len(w)-2]
	case endsWith("es"):
		w = w[:len(w)-2]
	case endsWith("s"):
		w = w[:len(w)-1]
	}
	return w
}

// ruSuffixes is ordered longest-first; byte lengths, not rune counts, drive
// the guards below.
var ruSuffixes = []string{
	"иями", "ями", "ами", "иям", "ием", "иях",
	"ого", "ему", "ыми", "ими", "ее", "ое", "ая", "яя",
	"ов", "ев", "ей", "ам", "ям", "ах", "ях", "ом", "ем",
	"ы", "и", "а", "я", "о", "е", "у", "ю",
}

// stemRuLight strips the first matching Russian suffix from terms of at
// least eight bytes, keeping more than four bytes of stem.
func stemRuLight(w string) string {
	if len(w) < 8 {
		return w
	}
	for _, suf := range ruSuffixes {
		if len(w) > len(suf)+4 && strings.HasSuffix(w, suf) {
			return w[:len(w)-len(suf)]
		}
	}
	return w
}

// StemTerm normalizes a raw term and, when stemming is enabled, applies the
// script-appropriate light stemmer. Terms that normalize below two bytes
// vanish.
func StemTerm(term string, enableStem bool) string {
	term = normalizeToken(term)
	if len(term) < 2 {
		return ""
	}
	if !enableStem {
		return term
	}
	if looksASCIIWord(term) {
		return stemEnLight(term)
	}
	if looksCyrillic(term) {
		return stemRuLight(term)
	}
	return term
}
