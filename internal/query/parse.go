package query

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"bloghub/internal/domain"
)

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return err
	}

	// More reports false before a stray closer, so read one more token.
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("trailing data after JSON value")
	}

	return nil
}

func jsonKind(data []byte) byte {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

func parseCategoryResponse(
	text string,
	blogs []domain.Blog,
) (map[string][]domain.ArticleDraft, error) {
	raw := []byte(trimReply(text))

	if jsonKind(raw) != '{' {
		return nil, formatErr("reply is not a JSON object")
	}

	var byBlog map[string]json.RawMessage
	if err := decodeStrict(raw, &byBlog); err != nil {
		return nil, formatErr("decode reply: %v", err)
	}

	known := make(map[string]struct{}, len(blogs))
	for _, blog := range blogs {
		known[blog.Name] = struct{}{}
	}

	result := make(map[string][]domain.ArticleDraft, len(byBlog))

	for name, value := range byBlog {
		if _, ok := known[name]; !ok {
			return nil, formatErr("unexpected blog %q", name)
		}

		if jsonKind(value) != '[' {
			return nil, formatErr("articles of %q are not an array", name)
		}

		var drafts []domain.ArticleDraft
		if err := decodeStrict(value, &drafts); err != nil {
			return nil, formatErr("decode articles of %q: %v", name, err)
		}

		for i := range drafts {
			draft, err := normalizeDraft(drafts[i])
			if err != nil {
				return nil, formatErr("article %d of %q: %v", i, name, err)
			}
			drafts[i] = draft
		}

		result[name] = drafts
	}

	return result, nil
}

type activityReply struct {
	Events       *[]domain.Event       `json:"events"`
	RedditPosts  *[]domain.RedditPost  `json:"redditPosts"`
	GoogleAlerts *[]domain.GoogleAlert `json:"googleAlerts"`
}

func parseActivityResponse(text string) (domain.ActivityResults, error) {
	raw := []byte(trimReply(text))

	if jsonKind(raw) != '{' {
		return domain.ActivityResults{}, formatErr("reply is not a JSON object")
	}

	var reply activityReply
	if err := decodeStrict(raw, &reply); err != nil {
		return domain.ActivityResults{}, formatErr("decode reply: %v", err)
	}

	switch {
	case reply.Events == nil:
		return domain.ActivityResults{}, formatErr("events are missing")
	case reply.RedditPosts == nil:
		return domain.ActivityResults{}, formatErr("redditPosts are missing")
	case reply.GoogleAlerts == nil:
		return domain.ActivityResults{}, formatErr("googleAlerts are missing")
	}

	results := domain.ActivityResults{
		Events:       make([]domain.Event, 0, len(*reply.Events)),
		RedditPosts:  make([]domain.RedditPost, 0, len(*reply.RedditPosts)),
		GoogleAlerts: make([]domain.GoogleAlert, 0, len(*reply.GoogleAlerts)),
	}

	for i, event := range *reply.Events {
		normalized, err := normalizeEvent(event)
		if err != nil {
			return domain.ActivityResults{}, formatErr("event %d: %v", i, err)
		}
		results.Events = append(results.Events, normalized)
	}

	for i, post := range *reply.RedditPosts {
		normalized, err := normalizeRedditPost(post)
		if err != nil {
			return domain.ActivityResults{}, formatErr("reddit post %d: %v", i, err)
		}
		results.RedditPosts = append(results.RedditPosts, normalized)
	}

	for i, alert := range *reply.GoogleAlerts {
		normalized, err := normalizeGoogleAlert(alert)
		if err != nil {
			return domain.ActivityResults{}, formatErr("google alert %d: %v", i, err)
		}
		results.GoogleAlerts = append(results.GoogleAlerts, normalized)
	}

	return results, nil
}
