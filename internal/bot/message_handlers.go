package bot

import (
	"context"
	"strings"

	"bloghub/internal/session"
	"bloghub/internal/view"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type command string

const (
	commandStart      command = "/start"
	commandMenu       command = "/menu"
	commandArticles   command = "/articles"
	commandActivities command = "/activities"
	commandSaved      command = "/saved"
)

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)

	if !strings.HasPrefix(text, "/") {
		b.startSearch(chatID, text)
		return nil
	}

	switch parseCommand(text) {
	case commandStart:
		_, err := b.sendView(ctx, chatID, view.Welcome(b.city))
		return err
	case commandMenu:
		_, err := b.sendView(ctx, chatID, view.Menu(b.controller.State(chatID).Tab))
		return err
	case commandArticles:
		return b.handleTab(ctx, chatID, session.TabBlog)
	case commandActivities:
		return b.handleTab(ctx, chatID, session.TabActivity)
	case commandSaved:
		return b.handleSaved(ctx, chatID)
	default:
		_, err := b.sendView(ctx, chatID, view.Menu(b.controller.State(chatID).Tab))
		return err
	}
}

// parseCommand strips arguments and the @botname suffix used in groups.
func parseCommand(text string) command {
	name, _, _ := strings.Cut(text, " ")
	name, _, _ = strings.Cut(name, "@")

	return command(strings.ToLower(name))
}
