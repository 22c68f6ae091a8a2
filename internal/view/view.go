// Package view renders chat state into Telegram MarkdownV2 messages. Nothing
// here performs I/O; the bot turns messages into API calls.
package view

import (
	"strings"
	"unicode/utf8"

	"bloghub/internal/markdown"
)

const MessageMaxLength = 4096

// Callback data understood by the bot.
const (
	CallbackMenu        = "menu"
	CallbackTabBlog     = "tab_blog"
	CallbackTabActivity = "tab_activity"
	CallbackSaved       = "saved"
	SavePrefix          = "save_"
	UnsavePrefix        = "unsave_"
)

type Button struct {
	Text string
	Data string
}

// Message is one chat message: MarkdownV2 text with an optional inline
// keyboard.
type Message struct {
	Text    string
	Buttons [][]Button
}

// Split cuts text into chunks of at most MessageMaxLength bytes, breaking
// on blank lines where possible so entities stay within a chunk.
func Split(text string) []string {
	if len(text) <= MessageMaxLength {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder

	for _, block := range strings.SplitAfter(text, "\n\n") {
		for len(block) > MessageMaxLength {
			if current.Len() > 0 {
				chunks = append(chunks, current.String())
				current.Reset()
			}

			cut := cutIndex(block, MessageMaxLength)
			chunks = append(chunks, block[:cut])
			block = block[cut:]
		}

		if current.Len()+len(block) > MessageMaxLength {
			chunks = append(chunks, current.String())
			current.Reset()
		}

		current.WriteString(block)
	}

	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}

	return chunks
}

// cutIndex picks where to cut s so the first part has at most limit bytes.
// It never cuts inside an escape sequence, a rune or a bold, italic or link
// entity, and prefers the last such point that follows a newline.
func cutIndex(s string, limit int) int {
	var (
		safe, line                 int
		bold, italic, label, inURL bool
	)

	for i := 0; i < limit; {
		c := s[i]

		switch {
		case c == '\\':
			i += 2
		case inURL:
			inURL = c != ')'
			i++
		case c == '*':
			bold = !bold
			i++
		case c == '_':
			italic = !italic
			i++
		case c == '[':
			label = true
			i++
		case c == ']' && label:
			label = false
			i++
			if i < len(s) && s[i] == '(' {
				inURL = true
				i++
			}
		default:
			i++
		}

		if i > limit || bold || italic || label || inURL || !utf8.RuneStart(s[i]) {
			continue
		}

		safe = i
		if s[i-1] == '\n' {
			line = i
		}
	}

	switch {
	case line > 0:
		return line
	case safe > 0:
		return safe
	}

	// One entity longer than a message: cut at a rune boundary outside an
	// escape and let Telegram reject the broken entity.
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	if trailingBackslashes(s[:limit])%2 == 1 {
		limit--
	}
	return limit
}

func trailingBackslashes(s string) int {
	n := 0
	for n < len(s) && s[len(s)-1-n] == '\\' {
		n++
	}
	return n
}

// Expand splits an oversized message; the keyboard stays on the last part.
func Expand(message Message) []Message {
	chunks := Split(message.Text)
	messages := make([]Message, len(chunks))

	for i, chunk := range chunks {
		messages[i] = Message{Text: chunk}
	}
	messages[len(messages)-1].Buttons = message.Buttons

	return messages
}

func menuRow() []Button {
	return []Button{{Text: "⬅️ Return to menu", Data: CallbackMenu}}
}

func errorLine(message string) string {
	if message == "" {
		return ""
	}
	return "⚠️ " + markdown.EscapeV2(message) + "\n\n"
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit-1])) + "…"
}
