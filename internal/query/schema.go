package query

import (
	"fmt"

	"bloghub/internal/domain"
)

// Schemas are plain JSON Schema documents so that every generator can send
// them as is. Objects are closed and every property is required, which is
// what strict structured output modes expect.

func stringProperty(description string) map[string]any {
	return map[string]any{
		"type":        "string",
		"description": description,
	}
}

func objectSchema(properties map[string]any, order []string) map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             order,
		"additionalProperties": false,
	}
}

func arraySchema(description string, items map[string]any) map[string]any {
	return map[string]any{
		"type":        "array",
		"description": description,
		"items":       items,
	}
}

func articleSchema() map[string]any {
	return objectSchema(map[string]any{
		"title":   stringProperty("A compelling, SEO-friendly title for the blog post."),
		"summary": stringProperty("A concise, engaging summary of the article content, around 2-3 sentences."),
		"link":    stringProperty("A plausible, full URL for the article on the blog's website. Should look realistic."),
		"date": stringProperty(
			"A plausible recent date for the article, in 'Month Day, Year' format (e.g., 'October 28, 2023').",
		),
	}, []string{"title", "summary", "link", "date"})
}

func categorySchema(blogs []domain.Blog) map[string]any {
	properties := make(map[string]any, len(blogs))
	names := make([]string, 0, len(blogs))

	for _, blog := range blogs {
		properties[blog.Name] = arraySchema(
			fmt.Sprintf(
				"An array of exactly %d recent blog posts from %s that are highly relevant to the user's keywords.",
				articlesPerBlog,
				blog.Name,
			),
			articleSchema(),
		)
		names = append(names, blog.Name)
	}

	return objectSchema(properties, names)
}

func activitySchema(city string) map[string]any {
	subreddit := Subreddit(city)

	event := objectSchema(map[string]any{
		"title":   stringProperty("The catchy title of the event."),
		"summary": stringProperty("A short, engaging summary of the event."),
		"link":    stringProperty("A plausible URL for the event page."),
		"date":    stringProperty("A plausible date and time for the event."),
		"source":  stringProperty("The source platform, either 'Eventbrite' or 'Meetup'."),
	}, []string{"title", "summary", "link", "date", "source"})

	post := objectSchema(map[string]any{
		"title":     stringProperty("The title of the Reddit post."),
		"summary":   stringProperty("A brief summary of the post's content or top comment."),
		"link":      stringProperty("A plausible URL for the Reddit post."),
		"subreddit": stringProperty(fmt.Sprintf("The subreddit, likely '%s'.", subreddit)),
		"author":    stringProperty("A plausible Reddit username for the author (e.g., u/username)."),
	}, []string{"title", "summary", "link", "subreddit", "author"})

	alert := objectSchema(map[string]any{
		"title":   stringProperty("The title of the article or blog post found."),
		"summary": stringProperty("A snippet of text from the article."),
		"link":    stringProperty("A plausible URL for the article."),
		"source":  stringProperty("The name of the source website or blog."),
	}, []string{"title", "summary", "link", "source"})

	return objectSchema(map[string]any{
		"events": arraySchema(
			fmt.Sprintf("A list of %d fictional but highly plausible events from Eventbrite or Meetup.", eventCount),
			event,
		),
		"redditPosts": arraySchema(
			fmt.Sprintf("A list of %d fictional but highly plausible Reddit posts from %s.", redditPostCount, subreddit),
			post,
		),
		"googleAlerts": arraySchema(
			fmt.Sprintf("A list of %d fictional 'Google Alert' style results from obscure local blogs.", alertCount),
			alert,
		),
	}, []string{"events", "redditPosts", "googleAlerts"})
}
