package value

import (
	"strings"
	"sync"
	"unicode"

	"github.com/kljensen/snowball"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var titleCaser = cases.Title(language.BrazilianPortuguese)

// TitleCase capitalizes each word pt-BR style. The null marker and empty
// strings pass through unchanged.
func TitleCase(s string) string {
	if s == "" || IsNullMarker(s) {
		return s
	}
	return titleCaser.String(s)
}

// LowerCase folds text to lower case, preserving the null marker.
func LowerCase(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || IsNullMarker(s) {
		return s
	}
	return strings.ToLower(s)
}

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// StripAccents removes diacritics: "Requisição" -> "Requisicao".
func StripAccents(s string) string {
	out, _, err := transform.String(accentStripper, s)
	if err != nil {
		return s
	}
	return out
}

var (
	stemMu    sync.RWMutex
	stemCache = map[string]string{}
)

func stemWord(word string) string {
	stemMu.RLock()
	cached, ok := stemCache[word]
	stemMu.RUnlock()
	if ok {
		return cached
	}
	stemmed, err := snowball.Stem(word, "portuguese", true)
	if err != nil || stemmed == "" {
		stemmed = word
	}
	stemMu.Lock()
	stemCache[word] = stemmed
	stemMu.Unlock()
	return stemmed
}

// FoldKey reduces a field name to a comparison key: lower case, accents
// stripped, whitespace collapsed, separators unified, each word stemmed
// with the Portuguese Snowball stemmer. "Data da Requisição" and
// "data da requisicao" fold to the same key.
func FoldKey(s string) string {
	s = strings.ToLower(StripAccents(s))
	s = strings.NewReplacer("_", " ", "-", " ", ":", " ").Replace(s)
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = stemWord(w)
	}
	return strings.Join(words, " ")
}

// KeysEqual reports whether two field names fold to the same key.
func KeysEqual(a, b string) bool { return FoldKey(a) == FoldKey(b) }
