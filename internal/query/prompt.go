package query

import (
	"fmt"
	"strings"
	"time"

	"bloghub/internal/domain"
)

const (
	articlesPerBlog = 2
	eventCount      = 3
	redditPostCount = 2
	alertCount      = 2

	articleTemperature  = 0.7
	activityTemperature = 0.8

	dateLayout = "January 2, 2006"
)

const categoryPrompt = `You are a sophisticated blog scraping bot for %[1]s.
Your task is to find the two most recent and relevant articles, posts, or events from a specific list of %[1]s blogs that match the user's keywords.
The current date is %[2]s. All generated articles must have a plausible publication date within the last 7 days.

User Keywords: "%[3]s"

Target Blogs:
%[4]s

Instructions:
1. For EACH of the blogs listed above, generate exactly TWO plausible post summaries that are highly relevant to the user's keywords.
2. The posts must sound like they were published within the last week.
3. Create a realistic title, a concise summary, a plausible URL, and a recent date for each post (e.g., '%[2]s'). The date MUST be within the last 7 days from today's date (%[2]s).
4. Your entire output must be a single JSON object that strictly adheres to the provided schema. Do not include any other text or explanations.`

const activityPrompt = `You are a "digital sleuth" specializing in finding unique, obscure, and underground activities in %[1]s.
Your task is to generate a list of plausible-sounding events, Reddit discussions, and web findings based on user-provided keywords.
The current date is %[2]s. Use this for context.

User's Search Keywords: "%[3]s"
Initial Seed Keywords to Inspire You: %[4]s

Instructions:
1. **Eventbrite & Meetup:** Generate a list of 3 fictional but highly plausible events. **Crucially, all events MUST take place in the future, within the next 30 days from today's date (%[2]s).** They should sound like pop-ups, secret shows, or niche gatherings. Include a realistic title, a future date/time, a short engaging summary, a source (either 'Eventbrite' or 'Meetup'), and a plausible link.
2. **Reddit Scrape:** Generate a list of 2 fictional but highly plausible Reddit posts from %[5]s. These posts should be recent, appearing to be from the last month, discussing upcoming or recent unique activities. Include a catchy post title, a summary of the discussion, a plausible author username, and a link to the post.
3. **Google Alerts:** Generate a list of 2 fictional "Google Alert" style results from obscure blogs. These articles should be recently published, within the last month, announcing or discussing unique local happenings. Include a title, a brief snippet/summary, the source website name, and a link.

Your entire output must be a single JSON object that strictly adheres to the provided schema. Do not include any other text or explanations.`

// CityName returns the part of a "City, Region" string before the comma.
func CityName(city string) string {
	name, _, _ := strings.Cut(city, ",")
	return strings.TrimSpace(name)
}

func formatDate(now time.Time) string {
	return now.Format(dateLayout)
}

func buildCategoryPrompt(city string, blogs []domain.Blog, keywords string, now time.Time) string {
	lines := make([]string, 0, len(blogs))
	for _, blog := range blogs {
		lines = append(lines, fmt.Sprintf("- %s: %s", blog.Name, blog.Description))
	}

	return fmt.Sprintf(
		categoryPrompt,
		city,
		formatDate(now),
		keywords,
		strings.Join(lines, "\n"),
	)
}

func buildActivityPrompt(city string, keywords string, now time.Time) string {
	name := CityName(city)

	seeds := []string{
		name + " pop-up",
		"secret show " + name,
		"hidden " + name,
		"underground",
		"secret",
		"weird",
	}
	quoted := make([]string, 0, len(seeds))
	for _, seed := range seeds {
		quoted = append(quoted, fmt.Sprintf("%q", seed))
	}

	return fmt.Sprintf(
		activityPrompt,
		city,
		formatDate(now),
		keywords,
		strings.Join(quoted, ", "),
		Subreddit(city),
	)
}

// Subreddit guesses the city's subreddit, e.g. "r/nashville".
func Subreddit(city string) string {
	name := strings.ToLower(CityName(city))
	name = strings.Join(strings.Fields(name), "")
	return "r/" + name
}
