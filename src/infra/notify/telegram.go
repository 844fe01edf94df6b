// Package notify pushes batch run summaries to operators.
package notify

import (
	"fmt"
	"log/slog"

	"discmerge/src/features/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramNotifier sends batch summaries to a configured chat.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramNotifier creates a notifier from the telegram config.
func NewTelegramNotifier(cfg *config.Manager) (*TelegramNotifier, error) {
	telegramConfig := cfg.Get().Telegram

	if !telegramConfig.Enabled {
		return nil, fmt.Errorf("telegram notifications are disabled in configuration")
	}
	if telegramConfig.Token == "" {
		return nil, fmt.Errorf("telegram bot token is not configured")
	}
	if telegramConfig.ChatID == 0 {
		return nil, fmt.Errorf("telegram chat_id is not configured")
	}

	bot, err := tgbotapi.NewBotAPI(telegramConfig.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	slog.Info("Telegram notifier initialized", "username", bot.Self.UserName)
	return &TelegramNotifier{bot: bot, chatID: telegramConfig.ChatID}, nil
}

// BatchFinished sends the batch summary to the configured chat.
func (n *TelegramNotifier) BatchFinished(summary string) {
	msg := tgbotapi.NewMessage(n.chatID, summary)
	if _, err := n.bot.Send(msg); err != nil {
		slog.Error("Failed to send telegram notification", "error", err)
	}
}
