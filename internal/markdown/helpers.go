package markdown

import (
	"fmt"
	"strings"
)

// Taken from https://core.telegram.org/bots/api#markdownv2-style.
const (
	mdV2SpecialChars = `\_*[]()~` + "`" + `>#+-=|{}.!`
	mdV2URLChars     = `\)`
)

//nolint:gochecknoglobals // Lookup tables meant to be immutable.
var (
	textLookup = lookupOf(mdV2SpecialChars)
	urlLookup  = lookupOf(mdV2URLChars)
)

// EscapeV2 escapes text outside of entities.
func EscapeV2(input string) string {
	return escape(input, &textLookup)
}

// EscapeURL escapes the inside of a (...) part of an inline link.
func EscapeURL(input string) string {
	return escape(input, &urlLookup)
}

func Bold(text string) string {
	return "*" + EscapeV2(text) + "*"
}

func Italic(text string) string {
	return "_" + EscapeV2(text) + "_"
}

// Link renders an inline link. An empty URL renders plain text.
func Link(text string, url string) string {
	url = strings.TrimSpace(url)
	if url == "" {
		return EscapeV2(text)
	}

	return fmt.Sprintf("[%s](%s)", EscapeV2(text), EscapeURL(url))
}

func escape(input string, lookup *[256]bool) string {
	charsToEscape := 0

	for i := range len(input) {
		if lookup[input[i]] {
			charsToEscape++
		}
	}
	if charsToEscape == 0 {
		return input
	}

	var b strings.Builder
	b.Grow(len(input) + charsToEscape)

	for i := range len(input) {
		c := input[i]
		if lookup[c] {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}

	return b.String()
}

func lookupOf(chars string) [256]bool {
	var m [256]bool
	for _, c := range []byte(chars) {
		m[c] = true
	}
	return m
}
