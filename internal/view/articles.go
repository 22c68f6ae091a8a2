package view

import (
	"fmt"
	"strings"

	"bloghub/internal/domain"
	"bloghub/internal/markdown"
	"bloghub/internal/session"

	"github.com/samber/lo"
)

const (
	skeletonLine     = "░░░░░░░░░░░░░░░░░░"
	cardTitleMaxLen  = 48
	skeletonPerBlog  = 2
	savedButtonLabel = "✅ Saved"
	saveButtonLabel  = "🔖 Save"
)

// Articles renders the blog tab below the search input: skeletons while
// loading, the initial prompt, the empty state, or a header followed by one
// message per blog section.
func Articles(state session.State, blogs []domain.Blog, city string) []Message {
	search := state.Articles

	switch {
	case search.Loading():
		return []Message{ArticlesSkeleton(blogs, search.Keywords)}

	case search.InitialLoad:
		return []Message{{
			Text: errorLine(search.Error) +
				markdown.Bold(fmt.Sprintf("Welcome to the %s Blog Hub", city)) + "\n\n" +
				markdown.EscapeV2(fmt.Sprintf(
					"Enter some keywords to begin your discovery of %s's latest happenings!", city)),
			Buttons: tabRows(session.TabBlog),
		}}

	case countArticles(search.Results) == 0:
		return []Message{{
			Text: errorLine(search.Error) +
				markdown.Bold("No Articles Found") + "\n\n" +
				markdown.EscapeV2(
					"The AI couldn't find any articles for your keywords. Try being more general or check for typos."),
			Buttons: tabRows(session.TabBlog),
		}}
	}

	messages := []Message{ArticlesHeader(state)}

	for _, section := range search.Results {
		if len(section.Articles) == 0 {
			continue
		}
		messages = append(messages, ArticleSection(section, blogs, &state.Saved))
	}

	return messages
}

// ArticlesSkeleton is shown while a category search is in flight.
func ArticlesSkeleton(blogs []domain.Blog, keywords string) Message {
	var text strings.Builder

	fmt.Fprintf(&text, "⏳ *Scraping for “%s”\\.\\.\\.*\n\n", markdown.EscapeV2(keywords))

	for _, blog := range blogs {
		text.WriteString(markdown.Bold(blog.Name))
		text.WriteString("\n")
		for range skeletonPerBlog {
			text.WriteString(skeletonLine + "\n")
		}
		text.WriteString("\n")
	}

	return Message{Text: strings.TrimRight(text.String(), "\n")}
}

// ArticlesHeader replaces the skeleton once results are in.
func ArticlesHeader(state session.State) Message {
	search := state.Articles

	total := countArticles(search.Results)
	sections := lo.CountBy(search.Results, func(section domain.BlogArticles) bool {
		return len(section.Articles) > 0
	})

	title := fmt.Sprintf("📰 *Results for “%s”*", markdown.EscapeV2(search.Keywords))
	if search.Status == session.StatusError {
		title = "📰 *Previous results*"
	}

	text := errorLine(search.Error) + fmt.Sprintf(
		"%s\n\nFound %d articles from %d blogs\\.",
		title,
		total,
		sections,
	)

	return Message{Text: text}
}

// ArticleSection renders one blog with a save toggle per article.
func ArticleSection(section domain.BlogArticles, blogs []domain.Blog, saved *session.SavedSet) Message {
	var text strings.Builder

	blog, _ := lo.Find(blogs, func(b domain.Blog) bool { return b.Name == section.Blog })
	text.WriteString("📌 *" + markdown.Link(section.Blog, blog.URL) + "*\n\n")

	buttons := make([][]Button, 0, len(section.Articles))

	for i, article := range section.Articles {
		text.WriteString(articleCard(i+1, article))
		buttons = append(buttons, []Button{saveToggle(i+1, article, saved)})
	}

	return Message{
		Text:    strings.TrimRight(text.String(), "\n"),
		Buttons: buttons,
	}
}

// FindSection returns the section holding the article, so a toggled card can
// be re-rendered in place.
func FindSection(state session.State, articleID string) (domain.BlogArticles, bool) {
	return lo.Find(state.Articles.Results, func(section domain.BlogArticles) bool {
		return lo.ContainsBy(section.Articles, func(a domain.Article) bool {
			return a.ID == articleID
		})
	})
}

func articleCard(n int, article domain.Article) string {
	var card strings.Builder

	fmt.Fprintf(&card, "*%d\\. %s*\n", n, markdown.EscapeV2(article.Title))
	if article.Date != "" {
		card.WriteString("📅 " + markdown.EscapeV2(article.Date) + "\n")
	}
	card.WriteString(markdown.EscapeV2(article.Summary) + "\n")
	card.WriteString("🔗 " + markdown.Link("Read More", article.Link) + "\n\n")

	return card.String()
}

func saveToggle(n int, article domain.Article, saved *session.SavedSet) Button {
	label := fmt.Sprintf("%d. %s", n, truncate(article.Title, cardTitleMaxLen))

	if saved.Contains(article.ID) {
		return Button{Text: savedButtonLabel + " " + label, Data: UnsavePrefix + article.ID}
	}
	return Button{Text: saveButtonLabel + " " + label, Data: SavePrefix + article.ID}
}

func countArticles(sections []domain.BlogArticles) int {
	return lo.SumBy(sections, func(section domain.BlogArticles) int {
		return len(section.Articles)
	})
}
