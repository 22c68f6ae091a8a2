package session

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"bloghub/internal/domain"
)

// Telegram limits callback data to 64 bytes and the ID travels inside it.
const maxSlugBytes = 32

func slugify(name string) string {
	slug := strings.Join(strings.Fields(name), "-")
	if len(slug) <= maxSlugBytes {
		return slug
	}

	cut := maxSlugBytes
	for cut > 0 && !utf8.RuneStart(slug[cut]) {
		cut--
	}
	return slug[:cut]
}

// CheckCatalogue rejects an empty catalogue and blogs whose names slugify to
// the same prefix, since their articles would share IDs.
func CheckCatalogue(blogs []domain.Blog) error {
	if len(blogs) == 0 {
		return errors.New("blog catalogue is empty")
	}

	seen := make(map[string]string, len(blogs))
	for _, blog := range blogs {
		slug := slugify(blog.Name)
		if other, ok := seen[slug]; ok {
			return fmt.Errorf("blogs %q and %q share the ID prefix %q", other, blog.Name, slug)
		}
		seen[slug] = blog.Name
	}

	return nil
}

// ArticleID builds "<blog-slug>-<index>-<stamp>".
func ArticleID(blogName string, index int, stamp int64) string {
	return slugify(blogName) + "-" + strconv.Itoa(index) + "-" + strconv.FormatInt(stamp, 10)
}

// AssignIDs turns model drafts into articles ordered by the blog catalogue.
// Blogs absent from drafts get no section.
func AssignIDs(
	blogs []domain.Blog,
	drafts map[string][]domain.ArticleDraft,
	stamp int64,
) []domain.BlogArticles {
	sections := make([]domain.BlogArticles, 0, len(drafts))

	for _, blog := range blogs {
		blogDrafts, ok := drafts[blog.Name]
		if !ok {
			continue
		}

		articles := make([]domain.Article, 0, len(blogDrafts))
		for i, draft := range blogDrafts {
			articles = append(articles, domain.Article{
				ID:      ArticleID(blog.Name, i, stamp),
				Title:   draft.Title,
				Summary: draft.Summary,
				Link:    draft.Link,
				Date:    draft.Date,
				Source:  blog.Name,
			})
		}

		sections = append(sections, domain.BlogArticles{
			Blog:     blog.Name,
			Articles: articles,
		})
	}

	return sections
}
