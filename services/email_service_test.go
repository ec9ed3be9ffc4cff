package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/meridian-ca/meridian-ca-api/config"
)

func TestInitEmailService_FallsBackToLoggingSender(t *testing.T) {
	cfg := &config.Config{SendGridAPIKey: ""}
	sender := InitEmailService(cfg, zap.NewNop())
	defer SetEmailService(nil)

	_, ok := sender.(*LogEmailService)
	assert.True(t, ok, "no API key should select the logging sender")
	assert.Equal(t, sender, GetEmailService())

	// The logging sender always reports success so calling flows keep working
	assert.NoError(t, sender.Send("alice@example.com", "Subject", "<p>hi</p>"))
}

func TestInitEmailService_UsesSendGridWhenConfigured(t *testing.T) {
	cfg := &config.Config{
		SendGridAPIKey:    "SG.test-key",
		SendGridFromEmail: "noreply@meridianca.com",
	}
	sender := InitEmailService(cfg, zap.NewNop())
	defer SetEmailService(nil)

	_, ok := sender.(*SendGridEmailService)
	assert.True(t, ok)
}

func TestMockEmailService(t *testing.T) {
	mock := NewMockEmailService()

	assert.NoError(t, mock.Send("a@example.com", "First", "<p>1</p>"))
	assert.NoError(t, mock.Send("b@example.com", "Second", "<p>2</p>"))

	sent := mock.Sent()
	assert.Len(t, sent, 2)
	assert.Equal(t, "a@example.com", sent[0].To)
	assert.Equal(t, "Second", sent[1].Subject)

	mock.FailWith(fmt.Errorf("boom"))
	assert.Error(t, mock.Send("c@example.com", "Third", "<p>3</p>"))
	assert.Len(t, mock.Sent(), 2, "failed sends are not recorded")

	mock.Clear()
	assert.Empty(t, mock.Sent())
}
