package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"bloghub/internal/domain"

	"github.com/google/uuid"
)

// QueryService is the AI query surface the controller depends on.
type QueryService interface {
	FetchCategoryArticles(
		ctx context.Context,
		blogs []domain.Blog,
		keywords string,
	) (map[string][]domain.ArticleDraft, error)
	FetchObscureActivities(ctx context.Context, keywords string) (domain.ActivityResults, error)
}

// SearchLogger records finished searches. It never sees results.
type SearchLogger interface {
	LogSearch(ctx context.Context, entry domain.SearchLogEntry) error
}

// Controller owns every chat's state and wires submissions to the query
// service.
type Controller struct {
	store     *Store
	service   QueryService
	blogs     []domain.Blog
	searchLog SearchLogger
	timeout   time.Duration
	log       *slog.Logger

	now          func() time.Time
	newRequestID func() string

	stampMu   sync.Mutex
	lastStamp int64
}

func NewController(
	store *Store,
	service QueryService,
	blogs []domain.Blog,
	searchLog SearchLogger,
	timeout time.Duration,
	log *slog.Logger,
) *Controller {
	return &Controller{
		store:        store,
		service:      service,
		blogs:        slices.Clone(blogs),
		searchLog:    searchLog,
		timeout:      timeout,
		log:          log,
		now:          time.Now,
		newRequestID: uuid.NewString,
	}
}

func (c *Controller) Blogs() []domain.Blog {
	return slices.Clone(c.blogs)
}

func (c *Controller) State(chatID int64) State {
	return c.store.Get(chatID).Snapshot()
}

func (c *Controller) SetTab(chatID int64, tab Tab) State {
	return c.store.Get(chatID).Update(func(state *State) {
		state.Tab = tab
	})
}

// Save bookmarks an article from the current results. Saving an already
// saved ID is a no-op even if it is no longer among the results.
func (c *Controller) Save(chatID int64, articleID string) (State, error) {
	var err error

	state := c.store.Get(chatID).Update(func(state *State) {
		if state.Saved.Contains(articleID) {
			return
		}

		article, ok := state.FindArticle(articleID)
		if !ok {
			err = ErrArticleNotFound
			return
		}

		state.Saved.Save(article)
	})

	return state, err
}

func (c *Controller) Unsave(chatID int64, articleID string) State {
	return c.store.Get(chatID).Update(func(state *State) {
		state.Saved.Unsave(articleID)
	})
}

// SearchArticles runs a category query for the chat. onLoading is called with
// the Loading state before the model call starts. On validation failure no
// call is made and ErrEmptyKeywords is returned.
func (c *Controller) SearchArticles(
	ctx context.Context,
	chatID int64,
	keywords string,
	onLoading func(State),
) (State, error) {
	sess := c.store.Get(chatID)
	requestID := c.newRequestID()

	var submitErr error
	state := sess.Update(func(state *State) {
		state.Articles, submitErr = state.Articles.Submit(keywords, requestID)
	})
	if submitErr != nil {
		return state, submitErr
	}

	if onLoading != nil {
		onLoading(state)
	}

	start := c.now()

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	drafts, fetchErr := c.service.FetchCategoryArticles(callCtx, c.blogs, state.Articles.Keywords)
	cancel()

	var applyErr error
	if fetchErr != nil {
		state = sess.Update(func(state *State) {
			state.Articles, applyErr = state.Articles.Fail(requestID, ArticlesFailedMessage)
		})
	} else {
		sections := AssignIDs(c.blogs, drafts, c.nextStamp())
		state = sess.Update(func(state *State) {
			state.Articles, applyErr = state.Articles.Succeed(requestID, sections)
		})
	}

	c.logSearch(ctx, chatID, domain.SearchKindArticles, state.Articles.Keywords, start, fetchErr, applyErr)

	return state, errors.Join(fetchErr, applyErr)
}

// SearchActivities runs an activity query for the chat, like SearchArticles.
func (c *Controller) SearchActivities(
	ctx context.Context,
	chatID int64,
	keywords string,
	onLoading func(State),
) (State, error) {
	sess := c.store.Get(chatID)
	requestID := c.newRequestID()

	var submitErr error
	state := sess.Update(func(state *State) {
		state.Activities, submitErr = state.Activities.Submit(keywords, requestID)
	})
	if submitErr != nil {
		return state, submitErr
	}

	if onLoading != nil {
		onLoading(state)
	}

	start := c.now()

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	results, fetchErr := c.service.FetchObscureActivities(callCtx, state.Activities.Keywords)
	cancel()

	var applyErr error
	if fetchErr != nil {
		state = sess.Update(func(state *State) {
			state.Activities, applyErr = state.Activities.Fail(requestID, ActivitiesFailedMessage)
		})
	} else {
		state = sess.Update(func(state *State) {
			state.Activities, applyErr = state.Activities.Succeed(requestID, results)
		})
	}

	c.logSearch(ctx, chatID, domain.SearchKindActivities, state.Activities.Keywords, start, fetchErr, applyErr)

	return state, errors.Join(fetchErr, applyErr)
}

// nextStamp returns a millisecond timestamp that never repeats within the
// process, so IDs from two searches cannot collide.
func (c *Controller) nextStamp() int64 {
	c.stampMu.Lock()
	defer c.stampMu.Unlock()

	stamp := c.now().UnixMilli()
	if stamp <= c.lastStamp {
		stamp = c.lastStamp + 1
	}
	c.lastStamp = stamp

	return stamp
}

func (c *Controller) logSearch(
	ctx context.Context,
	chatID int64,
	kind domain.SearchKind,
	keywords string,
	start time.Time,
	fetchErr error,
	applyErr error,
) {
	outcome := domain.SearchOutcomeSuccess
	switch {
	case errors.Is(applyErr, ErrStale):
		outcome = domain.SearchOutcomeStale
	case fetchErr != nil:
		outcome = domain.SearchOutcomeFailure
	}

	duration := c.now().Sub(start)

	c.log.InfoContext(ctx, "Search is finished",
		"chatID", chatID,
		"kind", kind,
		"outcome", outcome,
		"durationMs", duration.Milliseconds())

	if c.searchLog == nil {
		return
	}

	if err := c.searchLog.LogSearch(ctx, domain.SearchLogEntry{
		ChatID:     chatID,
		Kind:       kind,
		Keywords:   keywords,
		Outcome:    outcome,
		DurationMS: duration.Milliseconds(),
	}); err != nil {
		c.log.WarnContext(ctx, "Failed to log search",
			"error", fmt.Errorf("log search: %w", err),
			"chatID", chatID,
			"kind", kind)
	}
}
