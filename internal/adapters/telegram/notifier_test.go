package telegram

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selivandex/menu-analytics/pkg/models"
	"github.com/selivandex/menu-analytics/pkg/templates"
)

type fakeSender struct {
	sent   []tgbotapi.MessageConfig
	failOn int
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg := c.(tgbotapi.MessageConfig)
	f.sent = append(f.sent, msg)
	if f.failOn > 0 && len(f.sent) == f.failOn {
		return tgbotapi.Message{}, errors.New("chat not found")
	}
	return tgbotapi.Message{}, nil
}

func TestNotifyAlerts(t *testing.T) {
	renderer, err := templates.NewDefaultManager()
	require.NoError(t, err)

	api := &fakeSender{}
	n := newNotifier(api, 42, renderer)

	alerts := []models.AlertPayload{
		{ID: uuid.New(), Title: "Trend Alert: beef", Insight: "beef price up 25.0%, sales down 10.0%", SuggestedAction: "Switch suppliers.", Severity: models.SeverityHigh, Ingredient: "beef", CorrelationStrength: 0.8123, Icon: "⚠️"},
		{ID: uuid.New(), Title: "Trend Alert: salmon", Insight: "salmon price down 12.0%", Severity: models.SeverityOpportunity, Ingredient: "salmon", Icon: "💡"},
	}

	require.NoError(t, n.NotifyAlerts(context.Background(), alerts))
	require.Len(t, api.sent, 2)

	assert.Equal(t, int64(42), api.sent[0].ChatID)
	assert.Contains(t, api.sent[0].Text, "⚠️ Trend Alert: beef (HIGH)")
	assert.Contains(t, api.sent[0].Text, "Correlation strength: 0.81")
	assert.Contains(t, api.sent[0].Text, "Switch suppliers.")
	assert.Contains(t, api.sent[1].Text, "(OPPORTUNITY)")
}

func TestNotifyAlerts_ContinuesAfterFailure(t *testing.T) {
	renderer, err := templates.NewDefaultManager()
	require.NoError(t, err)

	api := &fakeSender{failOn: 1}
	n := newNotifier(api, 1, renderer)

	err = n.NotifyAlerts(context.Background(), []models.AlertPayload{
		{Title: "a", Severity: models.SeverityHigh},
		{Title: "b", Severity: models.SeverityMedium},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
	assert.Len(t, api.sent, 2)
}
