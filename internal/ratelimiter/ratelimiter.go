package ratelimiter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	privateChatRate = time.Second
	groupChatRate   = 3 * time.Second
	queueSize       = 1000
	pruneEvery      = 256
)

// Sender is the part of the Telegram API the limiter drives.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type request struct {
	message  tgbotapi.Chattable
	response chan response
}

type response struct {
	message tgbotapi.Message
	err     error
}

// RateLimiter serialises outgoing messages and spaces them per chat.
// Callback answers and chat actions bypass the queue through Request.
type RateLimiter struct {
	api      Sender
	queue    chan request
	lastSent map[int64]time.Time
	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	handled  int
	log      *slog.Logger

	privateRate time.Duration
	groupRate   time.Duration
}

type Option func(*RateLimiter)

// WithChatRates overrides the minimum spacing between two messages to the
// same private or group chat.
func WithChatRates(private, group time.Duration) Option {
	return func(rl *RateLimiter) {
		rl.privateRate = private
		rl.groupRate = group
	}
}

func New(api Sender, log *slog.Logger, opts ...Option) *RateLimiter {
	ctx, cancel := context.WithCancel(context.Background())

	rl := &RateLimiter{
		api:         api,
		queue:       make(chan request, queueSize),
		lastSent:    make(map[int64]time.Time),
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
		log:         log,
		privateRate: privateChatRate,
		groupRate:   groupChatRate,
	}

	for _, opt := range opts {
		opt(rl)
	}

	go rl.processQueue()

	return rl
}

// Send queues a message, a message edit or a deletion and waits for the
// result.
func (rl *RateLimiter) Send(
	ctx context.Context,
	message tgbotapi.Chattable,
) (tgbotapi.Message, error) {
	req := request{
		message:  message,
		response: make(chan response, 1),
	}

	select {
	case rl.queue <- req:
	case <-rl.ctx.Done():
		return tgbotapi.Message{}, rl.ctx.Err()
	case <-ctx.Done():
		return tgbotapi.Message{}, ctx.Err()
	}

	select {
	case resp := <-req.response:
		return resp.message, resp.err
	case <-rl.done:
		// The worker may have answered right before exiting.
		select {
		case resp := <-req.response:
			return resp.message, resp.err
		default:
			return tgbotapi.Message{}, rl.ctx.Err()
		}
	}
}

func (rl *RateLimiter) Request(
	c tgbotapi.Chattable,
) (*tgbotapi.APIResponse, error) {
	return rl.api.Request(c)
}

// Stop cancels queued messages and waits for the worker to exit.
func (rl *RateLimiter) Stop() {
	rl.cancel()
	<-rl.done
}

func (rl *RateLimiter) processQueue() {
	defer close(rl.done)

	for {
		select {
		case req := <-rl.queue:
			rl.handleRequest(req)
		case <-rl.ctx.Done():
			rl.drain()
			return
		}
	}
}

// drain fails requests that were queued before Stop. Senders blocked on a
// full queue are released by the cancelled context.
func (rl *RateLimiter) drain() {
	for {
		select {
		case req := <-rl.queue:
			req.response <- response{err: rl.ctx.Err()}
		default:
			return
		}
	}
}

func (rl *RateLimiter) handleRequest(req request) {
	chatID := getChatID(req.message)

	rl.mu.Lock()
	lastSent, exists := rl.lastSent[chatID]
	rl.mu.Unlock()

	if exists {
		delay := getDelay(rl.rate(chatID), lastSent)

		if delay > 0 {
			rl.log.DebugContext(rl.ctx, "Rate limiting message",
				"chatID", chatID,
				"delay", delay,
				"chattableType", fmt.Sprintf("%T", req.message),
				"queueLen", len(rl.queue))

			select {
			case <-time.After(delay):
			case <-rl.ctx.Done():
				req.response <- response{err: rl.ctx.Err()}
				return
			}
		}
	}

	message, err := rl.api.Send(req.message)

	rl.mu.Lock()
	rl.lastSent[chatID] = time.Now()
	rl.handled++
	if rl.handled%pruneEvery == 0 {
		rl.pruneLocked()
	}
	rl.mu.Unlock()

	req.response <- response{
		message: message,
		err:     err,
	}
}

// pruneLocked forgets chats whose spacing has already elapsed.
func (rl *RateLimiter) pruneLocked() {
	for chatID, lastSent := range rl.lastSent {
		if getDelay(rl.rate(chatID), lastSent) == 0 {
			delete(rl.lastSent, chatID)
		}
	}
}

func getChatID(message tgbotapi.Chattable) int64 {
	switch m := message.(type) {
	case tgbotapi.MessageConfig:
		return m.ChatID
	case tgbotapi.EditMessageTextConfig:
		return m.ChatID
	case tgbotapi.EditMessageReplyMarkupConfig:
		return m.ChatID
	case tgbotapi.DeleteMessageConfig:
		return m.ChatID
	case tgbotapi.ChatActionConfig:
		return m.ChatID
	default:
		return 0
	}
}

func getDelay(
	rate time.Duration,
	lastSent time.Time,
) time.Duration {
	elapsed := time.Since(lastSent)

	return max(rate-elapsed, 0)
}

// rate treats negative chat IDs as groups.
func (rl *RateLimiter) rate(chatID int64) time.Duration {
	if chatID < 0 {
		return rl.groupRate
	}
	return rl.privateRate
}
