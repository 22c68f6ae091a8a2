package domain

type Blog struct {
	Name        string
	Description string
	URL         string
}

// ArticleDraft is an article as returned by the model, before it is given an
// identity.
type ArticleDraft struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Link    string `json:"link"`
	Date    string `json:"date"`
}

type Article struct {
	ID      string
	Title   string
	Summary string
	Link    string
	Date    string
	Source  string
}

type BlogArticles struct {
	Blog     string
	Articles []Article
}

type Event struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Link    string `json:"link"`
	Date    string `json:"date"`
	Source  string `json:"source"`
}

type RedditPost struct {
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Link      string `json:"link"`
	Subreddit string `json:"subreddit"`
	Author    string `json:"author"`
}

type GoogleAlert struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Link    string `json:"link"`
	Source  string `json:"source"`
}

type ActivityResults struct {
	Events       []Event       `json:"events"`
	RedditPosts  []RedditPost  `json:"redditPosts"`
	GoogleAlerts []GoogleAlert `json:"googleAlerts"`
}

func (r ActivityResults) Empty() bool {
	return len(r.Events) == 0 && len(r.RedditPosts) == 0 && len(r.GoogleAlerts) == 0
}

type SearchKind string

const (
	SearchKindArticles   SearchKind = "articles"
	SearchKindActivities SearchKind = "activities"
)

type SearchOutcome string

const (
	SearchOutcomeSuccess SearchOutcome = "success"
	SearchOutcomeFailure SearchOutcome = "failure"
	SearchOutcomeStale   SearchOutcome = "stale"
)

type SearchLogEntry struct {
	ChatID     int64
	Kind       SearchKind
	Keywords   string
	Outcome    SearchOutcome
	DurationMS int64
}
