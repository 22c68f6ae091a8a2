package bot

import (
	"context"
	"errors"
	"fmt"

	"bloghub/internal/session"
	"bloghub/internal/view"
)

// handleTab switches the active tab and shows its input and current results.
func (b *Bot) handleTab(ctx context.Context, chatID int64, tab session.Tab) error {
	state := b.controller.SetTab(chatID, tab)

	var errs []error

	if _, err := b.sendView(ctx, chatID, view.Prompt(state, b.city)); err != nil {
		errs = append(errs, fmt.Errorf("send prompt: %w", err))
	}

	var results []view.Message
	switch tab {
	case session.TabActivity:
		results = view.Activities(state, b.city)
	default:
		results = view.Articles(state, b.controller.Blogs(), b.city)
	}

	if err := b.sendViews(ctx, chatID, results); err != nil {
		errs = append(errs, fmt.Errorf("send results: %w", err))
	}

	return errors.Join(errs...)
}

func (b *Bot) handleSaved(ctx context.Context, chatID int64) error {
	state := b.controller.State(chatID)

	if _, err := b.sendView(ctx, chatID, view.Saved(state.Saved.Items())); err != nil {
		return fmt.Errorf("send saved list: %w", err)
	}

	return nil
}
