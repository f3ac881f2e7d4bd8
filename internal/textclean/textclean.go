// Package textclean turns raw author names, titles and keywords into the
// token sets compared by the similarity scorer.
package textclean

import (
	"embed"
	"io/fs"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	minWordLen    = 2
	minKeywordLen = 3
)

// One file per language; every list applies to every text.
//
//go:embed stopwords/*.txt
var stopWordFiles embed.FS

var stopWords = sync.OnceValue(func() map[string]struct{} {
	words := make(map[string]struct{})
	files, err := fs.Glob(stopWordFiles, "stopwords/*.txt")
	if err != nil {
		panic(err)
	}
	for _, name := range files {
		data, err := stopWordFiles.ReadFile(name)
		if err != nil {
			panic(err)
		}
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			words[line] = struct{}{}
		}
	}
	return words
})

// StopWordLanguages lists the languages whose stop words are removed.
func StopWordLanguages() []string {
	files, _ := fs.Glob(stopWordFiles, "stopwords/*.txt")
	langs := make([]string, 0, len(files))
	for _, name := range files {
		langs = append(langs, strings.TrimSuffix(strings.TrimPrefix(name, "stopwords/"), ".txt"))
	}
	return langs
}

// IsStopWord reports whether w is on the stop list of any language. w must
// be lower case.
func IsStopWord(w string) bool {
	_, ok := stopWords()[w]
	return ok
}

// Lowerer lower-cases text with full Unicode case mapping.
// A Lowerer is not safe for concurrent use.
type Lowerer struct {
	caser cases.Caser
}

// NewLowerer returns a language-neutral Lowerer.
func NewLowerer() *Lowerer {
	return &Lowerer{caser: cases.Lower(language.Und)}
}

// Lower returns s in lower case.
func (l *Lowerer) Lower(s string) string {
	return l.caser.String(s)
}

// Words splits each text on whitespace and keeps the alphabetic words of at
// least two letters that are not stop words. Leading and trailing
// punctuation, symbols and digits are stripped from every word first.
// Duplicates are kept; callers build sets from the result.
func Words(texts ...string) []string {
	var out []string
	for _, text := range texts {
		for _, field := range strings.Fields(text) {
			w := strings.TrimFunc(field, func(r rune) bool {
				return isNoise(r) || unicode.IsDigit(r)
			})
			if utf8.RuneCountInString(w) < minWordLen || !allRunes(w, unicode.IsLetter) || IsStopWord(w) {
				continue
			}
			out = append(out, w)
		}
	}
	return out
}

// Keywords splits each text on whitespace and keeps the alphanumeric words
// of at least three characters that are not stop words. Leading and trailing
// punctuation and symbols are stripped from every word first.
func Keywords(texts ...string) []string {
	var out []string
	for _, text := range texts {
		for _, field := range strings.Fields(text) {
			w := strings.TrimFunc(field, isNoise)
			if utf8.RuneCountInString(w) < minKeywordLen || !allRunes(w, isAlnum) || IsStopWord(w) {
				continue
			}
			out = append(out, w)
		}
	}
	return out
}

func isNoise(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func allRunes(s string, ok func(rune) bool) bool {
	for _, r := range s {
		if !ok(r) {
			return false
		}
	}
	return s != ""
}
