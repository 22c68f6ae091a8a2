package query

import (
	"errors"
	"fmt"
	"strings"

	"bloghub/internal/domain"

	"github.com/PuerkitoBio/goquery"
	"mvdan.cc/xurls/v2"
)

//nolint:gochecknoglobals // Compiled once, safe for concurrent use.
var strictURLRe = xurls.Strict()

// normalizeText strips markup the model sometimes leaves in text fields and
// collapses whitespace.
func normalizeText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	if strings.ContainsAny(s, "<&") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
		if err == nil {
			s = doc.Text()
		}
	}

	return strings.Join(strings.Fields(s), " ")
}

// normalizeLink keeps the first strict URL in s, or s itself if none is found.
func normalizeLink(s string) string {
	s = strings.TrimSpace(s)
	if found := strictURLRe.FindString(s); found != "" {
		return found
	}
	return s
}

type field struct {
	name  string
	value string
}

func requireFields(fields ...field) error {
	var errs []error
	for _, f := range fields {
		if f.value == "" {
			errs = append(errs, fmt.Errorf("%s is empty", f.name))
		}
	}
	return errors.Join(errs...)
}

func normalizeDraft(d domain.ArticleDraft) (domain.ArticleDraft, error) {
	n := domain.ArticleDraft{
		Title:   normalizeText(d.Title),
		Summary: normalizeText(d.Summary),
		Link:    normalizeLink(d.Link),
		Date:    normalizeText(d.Date),
	}

	return n, requireFields(
		field{"title", n.Title},
		field{"summary", n.Summary},
		field{"link", n.Link},
		field{"date", n.Date},
	)
}

func normalizeEvent(e domain.Event) (domain.Event, error) {
	n := domain.Event{
		Title:   normalizeText(e.Title),
		Summary: normalizeText(e.Summary),
		Link:    normalizeLink(e.Link),
		Date:    normalizeText(e.Date),
		Source:  normalizeText(e.Source),
	}

	return n, requireFields(
		field{"title", n.Title},
		field{"summary", n.Summary},
		field{"link", n.Link},
		field{"date", n.Date},
		field{"source", n.Source},
	)
}

func normalizeRedditPost(p domain.RedditPost) (domain.RedditPost, error) {
	n := domain.RedditPost{
		Title:     normalizeText(p.Title),
		Summary:   normalizeText(p.Summary),
		Link:      normalizeLink(p.Link),
		Subreddit: normalizeText(p.Subreddit),
		Author:    normalizeText(p.Author),
	}

	return n, requireFields(
		field{"title", n.Title},
		field{"summary", n.Summary},
		field{"link", n.Link},
		field{"subreddit", n.Subreddit},
		field{"author", n.Author},
	)
}

func normalizeGoogleAlert(a domain.GoogleAlert) (domain.GoogleAlert, error) {
	n := domain.GoogleAlert{
		Title:   normalizeText(a.Title),
		Summary: normalizeText(a.Summary),
		Link:    normalizeLink(a.Link),
		Source:  normalizeText(a.Source),
	}

	return n, requireFields(
		field{"title", n.Title},
		field{"summary", n.Summary},
		field{"link", n.Link},
		field{"source", n.Source},
	)
}
