package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"bloghub/internal/domain"
)

type stubQueryService struct {
	mu             sync.Mutex
	articleCalls   int
	activityCalls  int
	drafts         map[string][]domain.ArticleDraft
	activities     domain.ActivityResults
	err            error
	lastKeywords   string
	onArticleCall  func()
	onActivityCall func()
}

func (s *stubQueryService) FetchCategoryArticles(
	_ context.Context,
	_ []domain.Blog,
	keywords string,
) (map[string][]domain.ArticleDraft, error) {
	s.mu.Lock()
	s.articleCalls++
	s.lastKeywords = keywords
	hook := s.onArticleCall
	s.mu.Unlock()

	if hook != nil {
		hook()
	}

	if s.err != nil {
		return nil, s.err
	}
	return s.drafts, nil
}

func (s *stubQueryService) FetchObscureActivities(
	_ context.Context,
	keywords string,
) (domain.ActivityResults, error) {
	s.mu.Lock()
	s.activityCalls++
	s.lastKeywords = keywords
	hook := s.onActivityCall
	s.mu.Unlock()

	if hook != nil {
		hook()
	}

	if s.err != nil {
		return domain.ActivityResults{}, s.err
	}
	return s.activities, nil
}

func (s *stubQueryService) calls() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.articleCalls, s.activityCalls
}

type recordingSearchLog struct {
	mu      sync.Mutex
	entries []domain.SearchLogEntry
}

func (r *recordingSearchLog) LogSearch(_ context.Context, entry domain.SearchLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, entry)
	return nil
}

func testBlogs() []domain.Blog {
	return []domain.Blog{
		{Name: "Eater Nashville"},
		{Name: "StyleBlueprint Nashville"},
		{Name: "Nashville Lifestyles"},
		{Name: "I Believe in Nashville"},
	}
}

func twoPerBlog(blogs []domain.Blog) map[string][]domain.ArticleDraft {
	drafts := make(map[string][]domain.ArticleDraft, len(blogs))
	for _, blog := range blogs {
		for i := range 2 {
			drafts[blog.Name] = append(drafts[blog.Name], domain.ArticleDraft{
				Title:   "Live music tonight",
				Summary: "Bands.",
				Link:    fmt.Sprintf("https://example.com/%d", i),
				Date:    "October 18, 2026",
			})
		}
	}
	return drafts
}

func newTestController(service QueryService, searchLog SearchLogger) *Controller {
	c := NewController(
		NewStore(),
		service,
		testBlogs(),
		searchLog,
		time.Minute,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	c.now = func() time.Time { return time.UnixMilli(1760000000000) }
	return c
}

func TestSearchArticlesBlankKeywordsMakesNoCall(t *testing.T) {
	service := &stubQueryService{drafts: twoPerBlog(testBlogs())}
	c := newTestController(service, nil)

	loadingCalled := false
	state, err := c.SearchArticles(context.Background(), 1, "   ", func(State) { loadingCalled = true })

	if !errors.Is(err, ErrEmptyKeywords) {
		t.Fatalf("expected ErrEmptyKeywords, got %v", err)
	}
	if loadingCalled {
		t.Fatalf("loading must not start for blank keywords")
	}
	if articles, _ := service.calls(); articles != 0 {
		t.Fatalf("expected no network call, got %d", articles)
	}
	if state.Articles.Error != EmptyKeywordsMessage {
		t.Fatalf("unexpected error: %q", state.Articles.Error)
	}
	if !state.Articles.InitialLoad || state.Articles.Status != StatusIdle {
		t.Fatalf("expected data state to be kept: %+v", state.Articles)
	}
}

func TestSearchActivitiesBlankKeywordsMakesNoCall(t *testing.T) {
	service := &stubQueryService{}
	c := newTestController(service, nil)

	state, err := c.SearchActivities(context.Background(), 1, "", nil)

	if !errors.Is(err, ErrEmptyKeywords) {
		t.Fatalf("expected ErrEmptyKeywords, got %v", err)
	}
	if _, activities := service.calls(); activities != 0 {
		t.Fatalf("expected no network call, got %d", activities)
	}
	if state.Activities.Error != EmptyKeywordsMessage {
		t.Fatalf("unexpected error: %q", state.Activities.Error)
	}
}

func TestSearchArticlesLiveMusic(t *testing.T) {
	service := &stubQueryService{drafts: twoPerBlog(testBlogs())}
	searchLog := &recordingSearchLog{}
	c := newTestController(service, searchLog)

	var loading State
	state, err := c.SearchArticles(context.Background(), 7, "live music", func(s State) { loading = s })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if loading.Articles.Status != StatusLoading {
		t.Fatalf("expected loading snapshot, got %v", loading.Articles.Status)
	}
	if state.Articles.Status != StatusLoaded || state.Articles.Error != "" {
		t.Fatalf("unexpected final state: %+v", state.Articles)
	}
	if len(state.Articles.Results) != 4 {
		t.Fatalf("expected 4 sections, got %d", len(state.Articles.Results))
	}

	seen := map[string]struct{}{}
	for _, section := range state.Articles.Results {
		if len(section.Articles) != 2 {
			t.Fatalf("expected 2 articles in %q, got %d", section.Blog, len(section.Articles))
		}
		for _, article := range section.Articles {
			if _, dup := seen[article.ID]; dup {
				t.Fatalf("duplicate article ID %q", article.ID)
			}
			seen[article.ID] = struct{}{}
		}
	}

	if len(searchLog.entries) != 1 || searchLog.entries[0].Outcome != domain.SearchOutcomeSuccess {
		t.Fatalf("unexpected search log: %+v", searchLog.entries)
	}
	if searchLog.entries[0].Keywords != "live music" || searchLog.entries[0].ChatID != 7 {
		t.Fatalf("unexpected search log entry: %+v", searchLog.entries[0])
	}
}

func TestSearchArticlesFailureKeepsPreviousResults(t *testing.T) {
	service := &stubQueryService{drafts: twoPerBlog(testBlogs())}
	searchLog := &recordingSearchLog{}
	c := newTestController(service, searchLog)

	if _, err := c.SearchArticles(context.Background(), 1, "live music", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	service.err = errors.New("model response has invalid format")

	state, err := c.SearchArticles(context.Background(), 1, "tacos", nil)
	if err == nil {
		t.Fatalf("expected error")
	}

	if state.Articles.Status != StatusError || state.Articles.Error != ArticlesFailedMessage {
		t.Fatalf("unexpected state: %+v", state.Articles)
	}
	if len(state.Articles.Results) != 4 {
		t.Fatalf("expected previous results to remain, got %d sections", len(state.Articles.Results))
	}
	if searchLog.entries[1].Outcome != domain.SearchOutcomeFailure {
		t.Fatalf("expected failure to be logged, got %+v", searchLog.entries[1])
	}
}

func TestSearchArticlesRejectsConcurrentSubmit(t *testing.T) {
	service := &stubQueryService{drafts: twoPerBlog(testBlogs())}
	c := newTestController(service, nil)

	var innerErr error
	service.onArticleCall = func() {
		service.onArticleCall = nil
		_, innerErr = c.SearchArticles(context.Background(), 1, "again", nil)
	}

	if _, err := c.SearchArticles(context.Background(), 1, "live music", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !errors.Is(innerErr, ErrBusy) {
		t.Fatalf("expected ErrBusy for overlapping submit, got %v", innerErr)
	}
	if articles, _ := service.calls(); articles != 1 {
		t.Fatalf("expected one network call, got %d", articles)
	}
}

func TestSearchActivities(t *testing.T) {
	service := &stubQueryService{activities: domain.ActivityResults{
		Events:       make([]domain.Event, 3),
		RedditPosts:  make([]domain.RedditPost, 2),
		GoogleAlerts: make([]domain.GoogleAlert, 2),
	}}
	c := newTestController(service, nil)

	state, err := c.SearchActivities(context.Background(), 1, " weird ", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if service.lastKeywords != "weird" {
		t.Fatalf("expected trimmed keywords, got %q", service.lastKeywords)
	}
	if state.Activities.Status != StatusLoaded || len(state.Activities.Results.Events) != 3 {
		t.Fatalf("unexpected state: %+v", state.Activities)
	}
	if state.Articles.Status != StatusIdle {
		t.Fatalf("activity search must not touch category state")
	}
}

func TestSaveAndUnsave(t *testing.T) {
	service := &stubQueryService{drafts: twoPerBlog(testBlogs())}
	c := newTestController(service, nil)

	state, err := c.SearchArticles(context.Background(), 1, "live music", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id := state.Articles.Results[0].Articles[0].ID

	if _, err = c.Save(1, id); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}
	state, err = c.Save(1, id)
	if err != nil {
		t.Fatalf("unexpected second save error: %v", err)
	}
	if state.Saved.Len() != 1 {
		t.Fatalf("expected idempotent save, got %d", state.Saved.Len())
	}

	if _, err = c.Save(1, "missing-0-1"); !errors.Is(err, ErrArticleNotFound) {
		t.Fatalf("expected ErrArticleNotFound, got %v", err)
	}

	state = c.Unsave(1, "missing-0-1")
	if state.Saved.Len() != 1 {
		t.Fatalf("expected unsave of absent ID to be a no-op")
	}

	state = c.Unsave(1, id)
	if state.Saved.Len() != 0 {
		t.Fatalf("expected article to be removed")
	}
}

func TestSavedArticleSurvivesNewSearch(t *testing.T) {
	service := &stubQueryService{drafts: twoPerBlog(testBlogs())}
	c := newTestController(service, nil)

	state, _ := c.SearchArticles(context.Background(), 1, "live music", nil)
	id := state.Articles.Results[0].Articles[0].ID
	_, _ = c.Save(1, id)

	state, _ = c.SearchArticles(context.Background(), 1, "tacos", nil)
	if state.Articles.Results[0].Articles[0].ID == id {
		t.Fatalf("expected new search to assign new IDs")
	}
	if !state.Saved.Contains(id) {
		t.Fatalf("expected saved article to survive a new search")
	}

	if _, err := c.Save(1, id); err != nil {
		t.Fatalf("saving an already saved ID must be a no-op, got %v", err)
	}
}

func TestSetTabIsIndependent(t *testing.T) {
	c := newTestController(&stubQueryService{}, nil)

	if c.State(1).Tab != TabBlog {
		t.Fatalf("expected blog tab by default")
	}

	state := c.SetTab(1, TabActivity)
	if state.Tab != TabActivity || state.Articles.Status != StatusIdle {
		t.Fatalf("unexpected state after tab switch: %+v", state)
	}
	if c.State(2).Tab != TabBlog {
		t.Fatalf("expected chats to have independent state")
	}
}

func TestStoreEvictIdle(t *testing.T) {
	store := NewStore()
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.Get(1)
	busy := store.Get(2)
	busy.Update(func(state *State) {
		state.Articles, _ = state.Articles.Submit("x", "req")
	})

	now = now.Add(2 * time.Hour)
	store.Get(3)

	if evicted := store.EvictIdle(time.Hour); evicted != 1 {
		t.Fatalf("expected one evicted session, got %d", evicted)
	}
	if store.Len() != 2 {
		t.Fatalf("expected busy and fresh sessions to remain, got %d", store.Len())
	}
}
