package session

import (
	"errors"
	"slices"
	"strings"

	"bloghub/internal/domain"

	"github.com/samber/lo"
)

type Tab string

const (
	TabBlog     Tab = "blog"
	TabActivity Tab = "activity"
)

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

const (
	EmptyKeywordsMessage    = "Please enter keywords to search."
	ArticlesFailedMessage   = "Failed to fetch articles. The AI might be busy. Please try again."
	ActivitiesFailedMessage = "Failed to find activities. The AI might be having a moment. Please try again."
)

var (
	ErrEmptyKeywords   = errors.New("keywords are empty")
	ErrBusy            = errors.New("search is already in progress")
	ErrStale           = errors.New("response belongs to a superseded request")
	ErrArticleNotFound = errors.New("article is not found")
)

// Search is the state machine of one search surface. Transitions are value
// methods returning the next state, so a caller commits a transition only by
// storing the returned value.
type Search[T any] struct {
	Status      Status
	InitialLoad bool
	Error       string
	Keywords    string
	RequestID   string
	Results     T
}

func NewSearch[T any]() Search[T] {
	return Search[T]{InitialLoad: true}
}

func (s Search[T]) Loading() bool {
	return s.Status == StatusLoading
}

// Submit starts a request. Blank keywords only set the validation message.
func (s Search[T]) Submit(keywords string, requestID string) (Search[T], error) {
	keywords = strings.TrimSpace(keywords)
	if keywords == "" {
		s.Error = EmptyKeywordsMessage
		return s, ErrEmptyKeywords
	}

	if s.Status == StatusLoading {
		return s, ErrBusy
	}

	s.Status = StatusLoading
	s.Error = ""
	s.InitialLoad = false
	s.Keywords = keywords
	s.RequestID = requestID

	return s, nil
}

func (s Search[T]) Succeed(requestID string, results T) (Search[T], error) {
	if s.Status != StatusLoading || s.RequestID != requestID {
		return s, ErrStale
	}

	s.Status = StatusLoaded
	s.Error = ""
	s.Results = results

	return s, nil
}

// Fail keeps the previous results, which may be stale.
func (s Search[T]) Fail(requestID string, message string) (Search[T], error) {
	if s.Status != StatusLoading || s.RequestID != requestID {
		return s, ErrStale
	}

	s.Status = StatusError
	s.Error = message

	return s, nil
}

// SavedSet is an ordered set of articles keyed by ID.
type SavedSet struct {
	items []domain.Article
}

// Save appends the article unless its ID is already present.
func (s *SavedSet) Save(article domain.Article) bool {
	if s.Contains(article.ID) {
		return false
	}

	s.items = append(s.items, article)
	return true
}

// Unsave removes the article with the ID; it is a no-op if absent.
func (s *SavedSet) Unsave(id string) bool {
	if !s.Contains(id) {
		return false
	}

	s.items = lo.Filter(s.items, func(a domain.Article, _ int) bool {
		return a.ID != id
	})
	return true
}

func (s *SavedSet) Contains(id string) bool {
	return lo.ContainsBy(s.items, func(a domain.Article) bool {
		return a.ID == id
	})
}

func (s *SavedSet) Items() []domain.Article {
	return slices.Clone(s.items)
}

func (s *SavedSet) Len() int {
	return len(s.items)
}

type State struct {
	Tab        Tab
	Articles   Search[[]domain.BlogArticles]
	Activities Search[domain.ActivityResults]
	Saved      SavedSet
}

func NewState() State {
	return State{
		Tab:        TabBlog,
		Articles:   NewSearch[[]domain.BlogArticles](),
		Activities: NewSearch[domain.ActivityResults](),
	}
}

// Snapshot copies the state for rendering outside the session lock.
func (s *State) Snapshot() State {
	snapshot := *s
	snapshot.Saved = SavedSet{items: s.Saved.Items()}
	return snapshot
}

// FindArticle looks the ID up in the current category results.
func (s *State) FindArticle(id string) (domain.Article, bool) {
	for _, section := range s.Articles.Results {
		for _, article := range section.Articles {
			if article.ID == id {
				return article, true
			}
		}
	}
	return domain.Article{}, false
}
