package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bloghub/internal/domain"
)

var (
	ErrRequest        = errors.New("model request failed")
	ErrResponseFormat = errors.New("model response has invalid format")
)

// Request is a single structured-output call to a model.
type Request struct {
	// SchemaName identifies the schema for providers that require a name.
	SchemaName string
	Prompt     string
	// Schema is a JSON Schema document the reply must conform to.
	Schema      map[string]any
	Temperature float64
}

// Generator sends one request to a model and returns the raw reply text.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Service builds prompts for the two query kinds and validates the replies.
// It performs exactly one Generate call per operation and never retries.
type Service struct {
	generator Generator
	city      string
	now       func() time.Time
	log       *slog.Logger
}

func NewService(generator Generator, city string, log *slog.Logger) *Service {
	return &Service{
		generator: generator,
		city:      city,
		now:       time.Now,
		log:       log,
	}
}

// FetchCategoryArticles asks the model for two articles per blog matching the
// keywords. The result is keyed by blog name.
func (s *Service) FetchCategoryArticles(
	ctx context.Context,
	blogs []domain.Blog,
	keywords string,
) (map[string][]domain.ArticleDraft, error) {
	if len(blogs) == 0 {
		return nil, fmt.Errorf("%w: blog list is empty", ErrRequest)
	}

	text, err := s.generator.Generate(ctx, Request{
		SchemaName:  "blog_articles",
		Prompt:      buildCategoryPrompt(s.city, blogs, keywords, s.now()),
		Schema:      categorySchema(blogs),
		Temperature: articleTemperature,
	})
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to fetch blog articles",
			"error", err,
			"keywords", keywords,
			"blogCount", len(blogs))

		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}

	articles, err := parseCategoryResponse(text, blogs)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to parse blog articles",
			"error", err,
			"keywords", keywords,
			"responseLen", len(text))

		return nil, err
	}

	return articles, nil
}

// FetchObscureActivities asks the model for future events, forum posts and
// web alerts matching the keywords.
func (s *Service) FetchObscureActivities(
	ctx context.Context,
	keywords string,
) (domain.ActivityResults, error) {
	text, err := s.generator.Generate(ctx, Request{
		SchemaName:  "obscure_activities",
		Prompt:      buildActivityPrompt(s.city, keywords, s.now()),
		Schema:      activitySchema(s.city),
		Temperature: activityTemperature,
	})
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to fetch obscure activities",
			"error", err,
			"keywords", keywords)

		return domain.ActivityResults{}, fmt.Errorf("%w: %w", ErrRequest, err)
	}

	results, err := parseActivityResponse(text)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to parse obscure activities",
			"error", err,
			"keywords", keywords,
			"responseLen", len(text))

		return domain.ActivityResults{}, err
	}

	return results, nil
}

func formatErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrResponseFormat, fmt.Sprintf(format, args...))
}

func trimReply(text string) string {
	return strings.TrimSpace(text)
}
