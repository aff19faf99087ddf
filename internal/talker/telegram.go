package talker

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Billy-Davies-2/scorebored/internal/logger"
)

// telegramSendInterval keeps a single chat under Telegram's rate limit.
const telegramSendInterval = 2 * time.Second

// Sender is the slice of the Telegram bot API the talker needs.
// *tgbotapi.BotAPI implements it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramTalker mirrors commentary into a Telegram chat. Say never blocks:
// batches are queued and sent by a background worker, and dropped when the
// queue is full.
type TelegramTalker struct {
	sender   Sender
	chatID   int64
	interval time.Duration

	queue  chan string
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewTelegramTalker authorises the bot token and starts the send worker.
func NewTelegramTalker(token string, chatID int64) (*TelegramTalker, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	bot.Debug = false
	logger.Info("Telegram talker authorised", "bot", bot.Self.UserName, "chat_id", chatID)
	return NewTelegramTalkerWithSender(bot, chatID, telegramSendInterval), nil
}

// NewTelegramTalkerWithSender starts a talker over an existing sender.
func NewTelegramTalkerWithSender(sender Sender, chatID int64, interval time.Duration) *TelegramTalker {
	ctx, cancel := context.WithCancel(context.Background())
	t := &TelegramTalker{
		sender:   sender,
		chatID:   chatID,
		interval: interval,
		queue:    make(chan string, 100),
		ctx:      ctx,
		cancel:   cancel,
	}
	t.wg.Add(1)
	go t.run()
	return t
}

// Say queues the batch as a single message, one phrase per line.
func (t *TelegramTalker) Say(phrases ...string) {
	if len(phrases) == 0 {
		return
	}
	text := strings.Join(phrases, "\n")
	select {
	case <-t.ctx.Done():
	case t.queue <- text:
	default:
		logger.Warn("Telegram queue full, dropping commentary", "chat_id", t.chatID)
	}
}

func (t *TelegramTalker) run() {
	defer t.wg.Done()

	var last time.Time
	for {
		select {
		case <-t.ctx.Done():
			return
		case text := <-t.queue:
			if wait := t.interval - time.Since(last); wait > 0 {
				select {
				case <-t.ctx.Done():
					return
				case <-time.After(wait):
				}
			}
			last = time.Now()
			if _, err := t.sender.Send(tgbotapi.NewMessage(t.chatID, text)); err != nil {
				logger.Error("Failed to send commentary to Telegram", "chat_id", t.chatID, "error", err)
			}
		}
	}
}

// Close stops the worker. Queued batches that were not sent yet are dropped.
func (t *TelegramTalker) Close() {
	t.cancel()
	t.wg.Wait()
}
