package view

import (
	"fmt"
	"strings"

	"bloghub/internal/markdown"
	"bloghub/internal/session"
)

const welcomeText = `🤖 *Welcome to the %[1]s Blog Hub\!*

AI\-powered weekly article aggregator\. I can help you:

– Find the latest from %[1]s's top blogs with /articles
– Uncover pop\-ups, secret shows and unique gatherings with /activities
– Keep a weekly reading list with /saved

Pick a tab, then just send me your keywords\.`

func Welcome(city string) Message {
	return Message{
		Text:    fmt.Sprintf(welcomeText, markdown.EscapeV2(city)),
		Buttons: tabRows(session.TabBlog),
	}
}

func Menu(active session.Tab) Message {
	return Message{
		Text:    "❔ *Choose an option:*",
		Buttons: tabRows(active),
	}
}

// Prompt is the search input of a tab. While a search is loading the input
// is disabled, which the text states.
func Prompt(state session.State, city string) Message {
	var text string

	switch state.Tab {
	case session.TabActivity:
		text = fmt.Sprintf(
			"%s\n\nSearch for pop\\-ups, secret shows, and unique gatherings\\. Try “%s pop\\-up”, “secret show %s”, or “weird”\\.",
			markdown.Bold("🔎 Uncover Obscure Activities"),
			markdown.EscapeV2(city),
			markdown.EscapeV2(city),
		)
		if state.Activities.Loading() {
			text += "\n\n" + markdown.Italic("Sleuthing... please wait for the current search.")
		}
	default:
		text = fmt.Sprintf(
			"%s\n\nEnter keywords to find the latest from %s's top blogs\\. Try “live music”, “new restaurants”, or “fall festivals”\\.",
			markdown.Bold("🔎 Start Your Search"),
			markdown.EscapeV2(city),
		)
		if state.Articles.Loading() {
			text += "\n\n" + markdown.Italic("Scraping... please wait for the current search.")
		}
	}

	return Message{Text: text, Buttons: tabRows(state.Tab)}
}

func tabRows(active session.Tab) [][]Button {
	blog := "📰 Blog Hub"
	activity := "✨ Activity Finder"

	switch active {
	case session.TabBlog:
		blog = "• " + blog
	case session.TabActivity:
		activity = "• " + activity
	}

	return [][]Button{
		{
			{Text: blog, Data: CallbackTabBlog},
			{Text: activity, Data: CallbackTabActivity},
		},
		{
			{Text: "🔖 My Weekly List", Data: CallbackSaved},
		},
	}
}

// Failure replaces the skeleton when a search fails or is rejected. Previous
// results stay in the chat above it.
func Failure(message string, tab session.Tab) Message {
	return Message{
		Text:    strings.TrimSuffix(errorLine(message), "\n\n"),
		Buttons: tabRows(tab),
	}
}

func Busy(tab session.Tab) Message {
	return Message{
		Text:    "⏳ A search is already running on this tab\\. Please wait for it to finish\\.",
		Buttons: tabRows(tab),
	}
}
