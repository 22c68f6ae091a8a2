package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bloghub/internal/session"
	"bloghub/internal/view"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const typingInterval = 4 * time.Second

// startSearch submits keywords for the chat's active tab. The model call runs
// in its own goroutine so the update loop keeps serving other chats.
func (b *Bot) startSearch(chatID int64, keywords string) {
	tab := b.controller.State(chatID).Tab

	b.searches.Add(1)
	go func() {
		defer b.searches.Done()

		ctx := b.searchCtx

		if err := b.runSearch(ctx, chatID, tab, keywords); err != nil {
			b.log.ErrorContext(ctx, "Failed to run search",
				"error", err,
				"chatID", chatID,
				"tab", tab)
		}
	}()
}

func (b *Bot) runSearch(ctx context.Context, chatID int64, tab session.Tab, keywords string) error {
	var (
		skeletonID  int
		skeletonErr error
	)

	onLoading := func(state session.State) {
		skeleton := view.ActivitiesSkeleton(state.Activities.Keywords)
		if tab == session.TabBlog {
			skeleton = view.ArticlesSkeleton(b.controller.Blogs(), state.Articles.Keywords)
		}

		skeletonID, skeletonErr = b.sendView(ctx, chatID, skeleton)
	}

	stopTyping := b.typing(ctx, chatID)

	var (
		state     session.State
		searchErr error
	)
	switch tab {
	case session.TabActivity:
		state, searchErr = b.controller.SearchActivities(ctx, chatID, keywords, onLoading)
	default:
		state, searchErr = b.controller.SearchArticles(ctx, chatID, keywords, onLoading)
	}

	stopTyping()

	var errs []error
	if skeletonErr != nil {
		errs = append(errs, fmt.Errorf("send skeleton: %w", skeletonErr))
	}

	switch {
	case errors.Is(searchErr, session.ErrEmptyKeywords):
		_, err := b.sendView(ctx, chatID, view.Failure(session.EmptyKeywordsMessage, tab))
		return errors.Join(append(errs, err)...)

	case errors.Is(searchErr, session.ErrBusy):
		_, err := b.sendView(ctx, chatID, view.Busy(tab))
		return errors.Join(append(errs, err)...)

	case errors.Is(searchErr, session.ErrStale):
		return errors.Join(errs...)
	}

	// Model failures are already logged by the controller; the user sees the
	// generic message.
	if err := b.deliverResults(ctx, chatID, skeletonID, tab, state); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// deliverResults turns the skeleton into the header (or the failure notice)
// and sends one message per populated section below it.
func (b *Bot) deliverResults(
	ctx context.Context,
	chatID int64,
	skeletonID int,
	tab session.Tab,
	state session.State,
) error {
	var (
		messages []view.Message
		failed   bool
		errText  string
	)

	switch tab {
	case session.TabActivity:
		failed = state.Activities.Status == session.StatusError
		errText = state.Activities.Error
		messages = view.Activities(state, b.city)
	default:
		failed = state.Articles.Status == session.StatusError
		errText = state.Articles.Error
		messages = view.Articles(state, b.controller.Blogs(), b.city)
	}

	if failed {
		messages = []view.Message{view.Failure(errText, tab)}
	}

	head, rest := messages[0], messages[1:]

	var errs []error

	if skeletonID != 0 {
		if err := b.editView(ctx, chatID, skeletonID, head); err != nil {
			errs = append(errs, fmt.Errorf("edit skeleton: %w", err))
		}
	} else if _, err := b.sendView(ctx, chatID, head); err != nil {
		errs = append(errs, fmt.Errorf("send header: %w", err))
	}

	if err := b.sendViews(ctx, chatID, rest); err != nil {
		errs = append(errs, fmt.Errorf("send sections: %w", err))
	}

	return errors.Join(errs...)
}

// typing keeps the typing indicator on until the returned stop is called.
func (b *Bot) typing(ctx context.Context, chatID int64) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)

		t := time.NewTicker(typingInterval)
		defer t.Stop()

		for {
			b.sendTyping(ctx, chatID)

			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

func (b *Bot) sendTyping(ctx context.Context, chatID int64) {
	if _, err := b.rateLimiter.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		b.log.WarnContext(ctx, "Failed to send chat action",
			"error", err,
			"chatID", chatID)
	}
}
