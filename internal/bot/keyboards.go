package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bloghub/internal/view"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram rejects edits that change nothing; toggling twice quickly does.
const errNotModified = "message is not modified"

func (b *Bot) sendView(ctx context.Context, chatID int64, message view.Message) (int, error) {
	var (
		errs   []error
		lastID int
	)

	for _, part := range view.Expand(message) {
		sent, err := b.sendMessageWithKeyboard(ctx, chatID, part.Text, inlineKeyboard(part.Buttons))
		if err != nil {
			errs = append(errs, fmt.Errorf("send message with keyboard: %w", err))
			continue
		}
		lastID = sent.MessageID
	}

	return lastID, errors.Join(errs...)
}

func (b *Bot) sendViews(ctx context.Context, chatID int64, messages []view.Message) error {
	var errs []error

	for _, message := range messages {
		if _, err := b.sendView(ctx, chatID, message); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// editView rewrites an earlier message. Overflow beyond one message is sent
// as new messages below it.
func (b *Bot) editView(ctx context.Context, chatID int64, messageID int, message view.Message) error {
	parts := view.Expand(message)
	head := parts[0]

	edit := tgbotapi.NewEditMessageText(chatID, messageID, b.normalizeText(ctx, chatID, head.Text))
	edit.ParseMode = tgbotapi.ModeMarkdownV2
	edit.DisableWebPagePreview = true
	if markup := inlineKeyboard(head.Buttons); markup != nil {
		edit.ReplyMarkup = markup
	}

	var errs []error

	if _, err := b.rateLimiter.Send(ctx, edit); err != nil && !isNotModified(err) {
		errs = append(errs, fmt.Errorf("edit message text: %w", err))
	}

	if err := b.sendViews(ctx, chatID, parts[1:]); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (b *Bot) editKeyboard(ctx context.Context, chatID int64, messageID int, buttons [][]view.Button) error {
	markup := inlineKeyboard(buttons)
	if markup == nil {
		markup = &tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
	}

	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, *markup)

	if _, err := b.rateLimiter.Send(ctx, edit); err != nil && !isNotModified(err) {
		return fmt.Errorf("edit message reply markup: %w", err)
	}

	return nil
}

func (b *Bot) sendMessageWithKeyboard(
	ctx context.Context,
	chatID int64,
	text string,
	keyboard *tgbotapi.InlineKeyboardMarkup,
) (tgbotapi.Message, error) {
	message := tgbotapi.NewMessage(chatID, b.normalizeText(ctx, chatID, text))

	// See https://core.telegram.org/bots/api#markdownv2-style.
	message.ParseMode = tgbotapi.ModeMarkdownV2

	message.DisableWebPagePreview = true
	if keyboard != nil {
		message.ReplyMarkup = *keyboard
	}

	return b.rateLimiter.Send(ctx, message)
}

func (b *Bot) normalizeText(ctx context.Context, chatID int64, text string) string {
	normalizedText := strings.ToValidUTF8(text, "?")
	if normalizedText != text {
		b.log.WarnContext(ctx, "Message text had invalid UTF-8 and was normalized",
			"chatID", chatID,
			"originalLen", len(text),
			"normalizedLen", len(normalizedText))
	}

	return normalizedText
}

func inlineKeyboard(buttons [][]view.Button) *tgbotapi.InlineKeyboardMarkup {
	if len(buttons) == 0 {
		return nil
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, row := range buttons {
		keyboardRow := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.Data))
		}
		rows = append(rows, keyboardRow)
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}

func isNotModified(err error) bool {
	return err != nil && strings.Contains(err.Error(), errNotModified)
}
