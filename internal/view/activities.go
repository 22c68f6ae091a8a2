package view

import (
	"fmt"
	"strings"

	"bloghub/internal/markdown"
	"bloghub/internal/session"

	"github.com/samber/lo"
)

const (
	EventsTitle       = "Events (Eventbrite & Meetup)"
	RedditTitle       = "From Reddit"
	GoogleAlertsTitle = "From Around The Web (Google Alerts)"
)

type activitySkeleton struct {
	title string
	cards int
}

//nolint:gochecknoglobals // Immutable layout table.
var activitySkeletons = []activitySkeleton{
	{"Events", 3},
	{"From Reddit", 2},
	{"From Around The Web", 2},
}

// Activities renders the activity tab below the search input.
func Activities(state session.State, city string) []Message {
	search := state.Activities

	switch {
	case search.Loading():
		return []Message{ActivitiesSkeleton(search.Keywords)}

	case search.InitialLoad:
		return []Message{{
			Text: errorLine(search.Error) +
				markdown.Bold(fmt.Sprintf("Find Hidden Gems in %s", city)) + "\n\n" +
				markdown.EscapeV2(
					"Send some keywords to uncover unique, underground, and obscure events happening in the city."),
			Buttons: tabRows(session.TabActivity),
		}}

	case search.Results.Empty():
		return []Message{{
			Text: errorLine(search.Error) +
				markdown.Bold("Nothing Found") + "\n\n" +
				markdown.EscapeV2("The AI couldn't uncover any hidden gems for those keywords. Try something else!"),
			Buttons: tabRows(session.TabActivity),
		}}
	}

	results := search.Results
	messages := []Message{ActivitiesHeader(state)}

	if len(results.Events) > 0 {
		messages = append(messages, activitySection(EventsTitle, "🟢", len(results.Events), func(i int) string {
			event := results.Events[i]
			return activityCard(i+1, event.Title, event.Summary, event.Link, event.Source, event.Date)
		}))
	}

	if len(results.RedditPosts) > 0 {
		messages = append(messages, activitySection(RedditTitle, "🟠", len(results.RedditPosts), func(i int) string {
			post := results.RedditPosts[i]
			author := ""
			if post.Author != "" {
				author = "by " + post.Author
			}
			return activityCard(i+1, post.Title, post.Summary, post.Link, post.Subreddit, author)
		}))
	}

	if len(results.GoogleAlerts) > 0 {
		messages = append(messages, activitySection(GoogleAlertsTitle, "🔵", len(results.GoogleAlerts), func(i int) string {
			alert := results.GoogleAlerts[i]
			return activityCard(i+1, alert.Title, alert.Summary, alert.Link, alert.Source, "")
		}))
	}

	return messages
}

func ActivitiesSkeleton(keywords string) Message {
	var text strings.Builder

	fmt.Fprintf(&text, "⏳ *Sleuthing for “%s”\\.\\.\\.*\n\n", markdown.EscapeV2(keywords))

	for _, section := range activitySkeletons {
		text.WriteString(markdown.Bold(section.title))
		text.WriteString("\n")
		for range section.cards {
			text.WriteString(skeletonLine + "\n")
		}
		text.WriteString("\n")
	}

	return Message{Text: strings.TrimRight(text.String(), "\n")}
}

func ActivitiesHeader(state session.State) Message {
	search := state.Activities
	results := search.Results

	title := fmt.Sprintf("✨ *Hidden gems for “%s”*", markdown.EscapeV2(search.Keywords))
	if search.Status == session.StatusError {
		title = "✨ *Previous results*"
	}

	text := errorLine(search.Error) + fmt.Sprintf(
		"%s\n\n%d events, %d Reddit posts, %d web alerts\\.",
		title,
		len(results.Events),
		len(results.RedditPosts),
		len(results.GoogleAlerts),
	)

	return Message{Text: text}
}

func activitySection(title string, badge string, n int, card func(i int) string) Message {
	var text strings.Builder

	text.WriteString(badge + " " + markdown.Bold(title) + "\n\n")
	for i := range n {
		text.WriteString(card(i))
	}

	return Message{
		Text:    strings.TrimRight(text.String(), "\n"),
		Buttons: [][]Button{menuRow()},
	}
}

func activityCard(n int, title, summary, link, source, meta string) string {
	var card strings.Builder

	fmt.Fprintf(&card, "*%d\\. %s*\n", n, markdown.EscapeV2(title))

	badge := strings.Join(lo.Compact([]string{source, meta}), " · ")
	if badge != "" {
		card.WriteString(markdown.Italic(badge) + "\n")
	}

	card.WriteString(markdown.EscapeV2(summary) + "\n")
	card.WriteString("🔗 " + markdown.Link("View Source", link) + "\n\n")

	return card.String()
}
