package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bloghub/internal/session"
	"bloghub/internal/view"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const savedPaneMarker = "🔖 My Weekly List"

func (b *Bot) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	if callback.Message == nil || callback.Message.Chat == nil {
		return b.errorCallbackAnswer(callback, errors.New("callback has no message"))
	}

	chatID := callback.Message.Chat.ID
	data := strings.TrimSpace(callback.Data)

	switch data {
	case view.CallbackMenu:
		return b.withEmptyCallbackAnswer(callback, func() error {
			_, err := b.sendView(ctx, chatID, view.Menu(b.controller.State(chatID).Tab))
			return err
		})
	case view.CallbackTabBlog:
		return b.withEmptyCallbackAnswer(callback, func() error {
			return b.handleTab(ctx, chatID, session.TabBlog)
		})
	case view.CallbackTabActivity:
		return b.withEmptyCallbackAnswer(callback, func() error {
			return b.handleTab(ctx, chatID, session.TabActivity)
		})
	case view.CallbackSaved:
		return b.withEmptyCallbackAnswer(callback, func() error {
			return b.handleSaved(ctx, chatID)
		})
	}

	if articleID, ok := strings.CutPrefix(data, view.SavePrefix); ok {
		return b.handleSaveQuery(ctx, articleID, callback)
	}

	if articleID, ok := strings.CutPrefix(data, view.UnsavePrefix); ok {
		return b.handleUnsaveQuery(ctx, articleID, callback)
	}

	return b.withEmptyCallbackAnswer(callback, func() error { return nil })
}

func (b *Bot) handleSaveQuery(
	ctx context.Context,
	articleID string,
	callback *tgbotapi.CallbackQuery,
) error {
	chatID := callback.Message.Chat.ID

	state, err := b.controller.Save(chatID, articleID)
	if errors.Is(err, session.ErrArticleNotFound) {
		if _, sendErr := b.rateLimiter.Request(tgbotapi.NewCallback(
			callback.ID,
			"✖️ This article is no longer in your results.",
		)); sendErr != nil {
			return fmt.Errorf("send request: %w", sendErr)
		}
		return nil
	}
	if err != nil {
		return b.errorCallbackAnswer(callback, fmt.Errorf("save article: %w", err))
	}

	if _, err = b.rateLimiter.Request(tgbotapi.NewCallback(callback.ID, "🔖 Saved to your weekly list.")); err != nil {
		return fmt.Errorf("send request: %w", err)
	}

	return b.refreshToggle(ctx, state, articleID, callback.Message)
}

func (b *Bot) handleUnsaveQuery(
	ctx context.Context,
	articleID string,
	callback *tgbotapi.CallbackQuery,
) error {
	chatID := callback.Message.Chat.ID

	state := b.controller.Unsave(chatID, articleID)

	if _, err := b.rateLimiter.Request(tgbotapi.NewCallback(callback.ID, "🗑 Removed from your weekly list.")); err != nil {
		return fmt.Errorf("send request: %w", err)
	}

	if strings.HasPrefix(callback.Message.Text, savedPaneMarker) {
		return b.editView(ctx, chatID, callback.Message.MessageID, view.Saved(state.Saved.Items()))
	}

	return b.refreshToggle(ctx, state, articleID, callback.Message)
}

// refreshToggle re-renders the keyboard of the section message the button
// was pressed in. Sections of older searches are left as they are.
func (b *Bot) refreshToggle(
	ctx context.Context,
	state session.State,
	articleID string,
	message *tgbotapi.Message,
) error {
	section, ok := view.FindSection(state, articleID)
	if !ok {
		return nil
	}

	rendered := view.ArticleSection(section, b.controller.Blogs(), &state.Saved)

	return b.editKeyboard(ctx, message.Chat.ID, message.MessageID, rendered.Buttons)
}

func (b *Bot) withEmptyCallbackAnswer(
	callback *tgbotapi.CallbackQuery,
	fn func() error,
) error {
	var errs []error

	if _, err := b.rateLimiter.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		errs = append(errs, b.errorCallbackAnswer(callback, fmt.Errorf("send request: %w", err)))
	}

	err := fn()
	if err != nil {
		errs = append(errs, fmt.Errorf("call fn: %w", err))
	}

	return errors.Join(errs...)
}

func (b *Bot) errorCallbackAnswer(
	callback *tgbotapi.CallbackQuery,
	err error,
) error {
	if _, sendErr := b.rateLimiter.Request(tgbotapi.NewCallback(callback.ID, "❌ Failed.")); sendErr != nil {
		return errors.Join(err, fmt.Errorf("send request: %w", sendErr))
	}
	return err
}
