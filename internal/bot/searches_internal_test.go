package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"bloghub/internal/domain"
	"bloghub/internal/markdown"
	"bloghub/internal/ratelimiter"
	"bloghub/internal/session"
	"bloghub/internal/view"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const testChatID int64 = 42

type stubSender struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
}

func (s *stubSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sent = append(s.sent, c)
	return tgbotapi.Message{MessageID: len(s.sent)}, nil
}

func (s *stubSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (s *stubSender) sentMessages() []tgbotapi.Chattable {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]tgbotapi.Chattable(nil), s.sent...)
}

// callbackAnswers returns the texts of answered callback queries.
func (s *stubSender) callbackAnswers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var answers []string
	for _, c := range s.requests {
		if answer, ok := c.(tgbotapi.CallbackConfig); ok {
			answers = append(answers, answer.Text)
		}
	}
	return answers
}

type stubQueryService struct {
	mu      sync.Mutex
	calls   int
	drafts  map[string][]domain.ArticleDraft
	err     error
	entered chan struct{}
	release chan struct{}
}

func (s *stubQueryService) FetchCategoryArticles(
	ctx context.Context,
	_ []domain.Blog,
	_ string,
) (map[string][]domain.ArticleDraft, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if s.err != nil {
		return nil, s.err
	}
	return s.drafts, nil
}

func (s *stubQueryService) FetchObscureActivities(
	context.Context,
	string,
) (domain.ActivityResults, error) {
	return domain.ActivityResults{}, nil
}

func (s *stubQueryService) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testBlogs() []domain.Blog {
	return []domain.Blog{
		{Name: "Eater Nashville", URL: "https://nashville.eater.com/"},
		{Name: "Nashville Scene", URL: "https://www.nashvillescene.com/"},
		{Name: "Nashville Guru", URL: "https://nashvilleguru.com/"},
		{Name: "Nashville Lifestyles", URL: "https://nashvillelifestyles.com/"},
	}
}

func liveMusicDrafts() map[string][]domain.ArticleDraft {
	drafts := make(map[string][]domain.ArticleDraft)
	for _, blog := range testBlogs() {
		for i := range 2 {
			drafts[blog.Name] = append(drafts[blog.Name], domain.ArticleDraft{
				Title:   fmt.Sprintf("Live music at %s #%d", blog.Name, i+1),
				Summary: "Bands worth seeing this week.",
				Link:    "https://example.com/live-music",
				Date:    "October 17, 2026",
			})
		}
	}
	return drafts
}

func newTestBot(t *testing.T, service *stubQueryService) (*Bot, *stubSender) {
	t.Helper()

	sender := &stubSender{}
	log := discardLogger()

	b := &Bot{
		rateLimiter: ratelimiter.New(sender, log, ratelimiter.WithChatRates(0, 0)),
		controller:  session.NewController(session.NewStore(), service, testBlogs(), nil, time.Second, log),
		city:        "Nashville",
		searchCtx:   context.Background(),
		done:        make(chan struct{}),
		log:         log,
	}
	t.Cleanup(b.rateLimiter.Stop)

	return b, sender
}

func messageText(t *testing.T, c tgbotapi.Chattable) string {
	t.Helper()

	switch m := c.(type) {
	case tgbotapi.MessageConfig:
		return m.Text
	case tgbotapi.EditMessageTextConfig:
		return m.Text
	default:
		t.Fatalf("Unexpected chattable %T", c)
		return ""
	}
}

func callbackData(markup *tgbotapi.InlineKeyboardMarkup) []string {
	if markup == nil {
		return nil
	}

	var data []string
	for _, row := range markup.InlineKeyboard {
		for _, button := range row {
			if button.CallbackData != nil {
				data = append(data, *button.CallbackData)
			}
		}
	}
	return data
}

func TestRunSearchEditsSkeletonIntoHeader(t *testing.T) {
	service := &stubQueryService{drafts: liveMusicDrafts()}
	b, sender := newTestBot(t, service)

	if err := b.runSearch(context.Background(), testChatID, session.TabBlog, "live music"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	sent := sender.sentMessages()
	if len(sent) != 6 {
		t.Fatalf("Expected skeleton, edit and 4 sections, got %d messages", len(sent))
	}

	if _, ok := sent[0].(tgbotapi.MessageConfig); !ok {
		t.Fatalf("Expected the skeleton to be sent first, got %T", sent[0])
	}

	edit, ok := sent[1].(tgbotapi.EditMessageTextConfig)
	if !ok {
		t.Fatalf("Expected the skeleton to be edited, got %T", sent[1])
	}
	if edit.MessageID != 1 || edit.ChatID != testChatID {
		t.Errorf("Expected edit of message 1 in chat %d, got %d in %d", testChatID, edit.MessageID, edit.ChatID)
	}
	if !strings.Contains(edit.Text, "Found 8 articles from 4 blogs") {
		t.Errorf("Unexpected header %q", edit.Text)
	}

	for i, c := range sent[2:] {
		section, ok := c.(tgbotapi.MessageConfig)
		if !ok {
			t.Fatalf("Expected section %d to be a new message, got %T", i, c)
		}
		if strings.Count(section.Text, "Read More") != 2 {
			t.Errorf("Expected 2 cards in section %d, got %q", i, section.Text)
		}
		if section.ParseMode != tgbotapi.ModeMarkdownV2 {
			t.Errorf("Expected MarkdownV2 for section %d", i)
		}
	}

	if service.callCount() != 1 {
		t.Errorf("Expected one model call, got %d", service.callCount())
	}
}

func TestRunSearchEditsSkeletonIntoFailure(t *testing.T) {
	service := &stubQueryService{err: errors.New("model is overloaded")}
	b, sender := newTestBot(t, service)

	if err := b.runSearch(context.Background(), testChatID, session.TabBlog, "live music"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	sent := sender.sentMessages()
	if len(sent) != 2 {
		t.Fatalf("Expected skeleton and one edit, got %d messages", len(sent))
	}

	edit, ok := sent[1].(tgbotapi.EditMessageTextConfig)
	if !ok {
		t.Fatalf("Expected the skeleton to be edited, got %T", sent[1])
	}
	if !strings.Contains(edit.Text, markdown.EscapeV2(session.ArticlesFailedMessage)) {
		t.Errorf("Expected the generic failure message, got %q", edit.Text)
	}
	if strings.Contains(edit.Text, "model is overloaded") {
		t.Errorf("Expected the cause to stay out of the chat, got %q", edit.Text)
	}
}

func TestRunSearchBlankKeywords(t *testing.T) {
	service := &stubQueryService{drafts: liveMusicDrafts()}
	b, sender := newTestBot(t, service)

	if err := b.runSearch(context.Background(), testChatID, session.TabBlog, "   "); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	sent := sender.sentMessages()
	if len(sent) != 1 {
		t.Fatalf("Expected only the validation message, got %d messages", len(sent))
	}
	if _, ok := sent[0].(tgbotapi.MessageConfig); !ok {
		t.Fatalf("Expected a new message, got %T", sent[0])
	}
	if text := messageText(t, sent[0]); !strings.Contains(text, markdown.EscapeV2(session.EmptyKeywordsMessage)) {
		t.Errorf("Expected the validation message, got %q", text)
	}
	if service.callCount() != 0 {
		t.Errorf("Expected no model call, got %d", service.callCount())
	}
}

func TestRunSearchWhileLoadingSendsBusyNotice(t *testing.T) {
	service := &stubQueryService{
		drafts:  liveMusicDrafts(),
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	b, sender := newTestBot(t, service)

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- b.runSearch(context.Background(), testChatID, session.TabBlog, "live music")
	}()

	select {
	case <-service.entered:
	case <-time.After(time.Second):
		t.Fatalf("Expected the first search to reach the model")
	}

	if err := b.runSearch(context.Background(), testChatID, session.TabBlog, "jazz"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	sent := sender.sentMessages()
	if len(sent) != 2 {
		t.Fatalf("Expected skeleton and busy notice, got %d messages", len(sent))
	}
	if text := messageText(t, sent[1]); text != view.Busy(session.TabBlog).Text {
		t.Errorf("Expected the busy notice, got %q", text)
	}

	close(service.release)

	if err := <-firstDone; err != nil {
		t.Fatalf("Unexpected error from the first search: %v", err)
	}
	if service.callCount() != 1 {
		t.Errorf("Expected one model call, got %d", service.callCount())
	}
}

func TestSaveCallbackRefreshesToggle(t *testing.T) {
	service := &stubQueryService{drafts: liveMusicDrafts()}
	b, sender := newTestBot(t, service)

	if err := b.runSearch(context.Background(), testChatID, session.TabBlog, "live music"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	articleID := b.controller.State(testChatID).Articles.Results[0].Articles[1].ID
	message := &tgbotapi.Message{MessageID: 3, Chat: &tgbotapi.Chat{ID: testChatID}}

	callback := &tgbotapi.CallbackQuery{
		ID:      "save",
		From:    &tgbotapi.User{ID: 1},
		Data:    view.SavePrefix + articleID,
		Message: message,
	}
	if err := b.handleCallbackQuery(context.Background(), callback); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	sent := sender.sentMessages()
	edit, ok := sent[len(sent)-1].(tgbotapi.EditMessageReplyMarkupConfig)
	if !ok {
		t.Fatalf("Expected a keyboard edit, got %T", sent[len(sent)-1])
	}
	if edit.MessageID != 3 {
		t.Errorf("Expected the pressed message to be edited, got %d", edit.MessageID)
	}

	data := callbackData(edit.ReplyMarkup)
	if !slices.Contains(data, view.UnsavePrefix+articleID) || slices.Contains(data, view.SavePrefix+articleID) {
		t.Errorf("Expected the toggle to flip to unsave, got %v", data)
	}
	if b.controller.State(testChatID).Saved.Len() != 1 {
		t.Errorf("Expected the article to be saved")
	}

	callback.ID = "unsave"
	callback.Data = view.UnsavePrefix + articleID
	if err := b.handleCallbackQuery(context.Background(), callback); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	sent = sender.sentMessages()
	edit, ok = sent[len(sent)-1].(tgbotapi.EditMessageReplyMarkupConfig)
	if !ok {
		t.Fatalf("Expected a keyboard edit, got %T", sent[len(sent)-1])
	}
	if data = callbackData(edit.ReplyMarkup); !slices.Contains(data, view.SavePrefix+articleID) {
		t.Errorf("Expected the toggle to flip back to save, got %v", data)
	}

	answers := sender.callbackAnswers()
	if len(answers) != 2 || !strings.Contains(answers[0], "Saved") || !strings.Contains(answers[1], "Removed") {
		t.Errorf("Unexpected callback answers %q", answers)
	}
}

func TestUnsaveCallbackRerendersSavedList(t *testing.T) {
	service := &stubQueryService{drafts: liveMusicDrafts()}
	b, sender := newTestBot(t, service)

	if err := b.runSearch(context.Background(), testChatID, session.TabBlog, "live music"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	articleID := b.controller.State(testChatID).Articles.Results[2].Articles[0].ID
	if _, err := b.controller.Save(testChatID, articleID); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	callback := &tgbotapi.CallbackQuery{
		ID:   "unsave",
		From: &tgbotapi.User{ID: 1},
		Data: view.UnsavePrefix + articleID,
		Message: &tgbotapi.Message{
			MessageID: 9,
			Chat:      &tgbotapi.Chat{ID: testChatID},
			Text:      "🔖 My Weekly List\n\n1. Live music at Nashville Guru #1",
		},
	}
	if err := b.handleCallbackQuery(context.Background(), callback); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	sent := sender.sentMessages()
	edit, ok := sent[len(sent)-1].(tgbotapi.EditMessageTextConfig)
	if !ok {
		t.Fatalf("Expected the saved list to be re-rendered, got %T", sent[len(sent)-1])
	}
	if edit.MessageID != 9 {
		t.Errorf("Expected the saved list message to be edited, got %d", edit.MessageID)
	}
	if edit.Text != view.Saved(nil).Text {
		t.Errorf("Expected the empty saved list, got %q", edit.Text)
	}
	if b.controller.State(testChatID).Saved.Len() != 0 {
		t.Errorf("Expected the saved list to be empty")
	}
}

func TestSaveCallbackForUnknownArticle(t *testing.T) {
	b, sender := newTestBot(t, &stubQueryService{})

	callback := &tgbotapi.CallbackQuery{
		ID:      "save",
		From:    &tgbotapi.User{ID: 1},
		Data:    view.SavePrefix + "Eater-Nashville-0-1",
		Message: &tgbotapi.Message{MessageID: 3, Chat: &tgbotapi.Chat{ID: testChatID}},
	}
	if err := b.handleCallbackQuery(context.Background(), callback); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if sent := sender.sentMessages(); len(sent) != 0 {
		t.Errorf("Expected no message edits, got %d", len(sent))
	}

	answers := sender.callbackAnswers()
	if len(answers) != 1 || !strings.Contains(answers[0], "no longer in your results") {
		t.Errorf("Unexpected callback answers %q", answers)
	}
}
