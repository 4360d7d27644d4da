package telegram

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/selivandex/menu-analytics/internal/adapters/config"
	"github.com/selivandex/menu-analytics/pkg/logger"
	"github.com/selivandex/menu-analytics/pkg/models"
	"github.com/selivandex/menu-analytics/pkg/templates"
)

const alertTemplate = "trend_alert.tmpl"

// sender is the part of tgbotapi.BotAPI the notifier needs
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier pushes persisted trend alerts to a Telegram chat
type Notifier struct {
	api      sender
	chatID   int64
	renderer templates.Renderer
}

// NewNotifier creates new Telegram notifier
func NewNotifier(cfg *config.TelegramConfig, renderer templates.Renderer) (*Notifier, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	bot.Debug = false

	logger.Info("telegram notifier initialized",
		zap.String("bot_username", bot.Self.UserName),
		zap.Int64("chat_id", cfg.ChatID),
	)

	return newNotifier(bot, cfg.ChatID, renderer), nil
}

func newNotifier(api sender, chatID int64, renderer templates.Renderer) *Notifier {
	return &Notifier{api: api, chatID: chatID, renderer: renderer}
}

// NotifyAlerts sends one message per alert; every alert is attempted even if some fail
func (n *Notifier) NotifyAlerts(ctx context.Context, alerts []models.AlertPayload) error {
	var errs []error

	for _, alert := range alerts {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		text, err := n.renderer.ExecuteTemplate(alertTemplate, alert)
		if err != nil {
			errs = append(errs, fmt.Errorf("render alert %s: %w", alert.ID, err))
			continue
		}

		if err := n.sendMessage(text); err != nil {
			errs = append(errs, fmt.Errorf("send alert %s: %w", alert.ID, err))
			continue
		}

		logger.Debug("trend alert pushed",
			zap.String("alert_id", alert.ID.String()),
			zap.String("ingredient", alert.Ingredient),
		)
	}

	return errors.Join(errs...)
}

func (n *Notifier) sendMessage(text string) error {
	msg := tgbotapi.NewMessage(n.chatID, text)

	if _, err := n.api.Send(msg); err != nil {
		logger.Error("failed to send telegram message",
			zap.Int64("chat_id", n.chatID),
			zap.Error(err),
		)
		return err
	}

	return nil
}
