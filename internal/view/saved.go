package view

import (
	"fmt"
	"strings"

	"bloghub/internal/domain"
	"bloghub/internal/markdown"
)

// Saved renders the reading list with a remove button per article.
func Saved(articles []domain.Article) Message {
	var text strings.Builder

	text.WriteString("🔖 *My Weekly List*\n\n")

	if len(articles) == 0 {
		text.WriteString(markdown.EscapeV2(
			"Tap the 🔖 Save button under any article to save it here for your weekly reading list."))

		return Message{Text: text.String(), Buttons: [][]Button{menuRow()}}
	}

	buttons := make([][]Button, 0, len(articles)+1)

	for i, article := range articles {
		fmt.Fprintf(&text, "%d\\. %s\n", i+1, markdown.Link(article.Title, article.Link))
		text.WriteString(markdown.Italic(article.Source) + "\n\n")

		buttons = append(buttons, []Button{{
			Text: fmt.Sprintf("🗑 Remove %d. %s", i+1, truncate(article.Title, cardTitleMaxLen)),
			Data: UnsavePrefix + article.ID,
		}})
	}
	buttons = append(buttons, menuRow())

	return Message{
		Text:    strings.TrimRight(text.String(), "\n"),
		Buttons: buttons,
	}
}
