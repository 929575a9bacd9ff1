package mailer

import (
	"testing"

	"outreach-gateway/pkg/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings() Settings {
	return Settings{Host: "smtp.test", Port: 587, User: "u", Pass: "p", From: "noreply@test"}
}

func TestNewSMTPTransportStartsUnconfigured(t *testing.T) {
	transport := NewSMTPTransport(Settings{}, zerolog.Nop())
	assert.False(t, transport.Configured())

	_, err := transport.Send(models.OutboundMessage{To: "a@b.com", Subject: "s", Text: "t"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestReconfigureValidates(t *testing.T) {
	transport := NewSMTPTransport(validSettings(), zerolog.Nop())
	require.True(t, transport.Configured())

	// Missing host, bad ports, missing credentials.
	cases := []Settings{
		{Port: 587, User: "u", Pass: "p"},
		{Host: "smtp.test", Port: 0, User: "u", Pass: "p"},
		{Host: "smtp.test", Port: 70000, User: "u", Pass: "p"},
		{Host: "smtp.test", Port: 587},
	}
	for _, settings := range cases {
		err := transport.Reconfigure(settings)
		assert.ErrorIs(t, err, ErrNotConfigured)
	}

	// The previous valid configuration survives every failed attempt.
	assert.True(t, transport.Configured())
	assert.Equal(t, "noreply@test", transport.From())
}

func TestFromFallsBackToUser(t *testing.T) {
	settings := validSettings()
	settings.From = ""
	transport := NewSMTPTransport(settings, zerolog.Nop())
	assert.Equal(t, "u", transport.From())
}

func TestSendRejectsIncompleteMessages(t *testing.T) {
	transport := NewSMTPTransport(validSettings(), zerolog.Nop())

	cases := []models.OutboundMessage{
		{Subject: "s", Text: "t"},
		{To: "a@b.com", Text: "t"},
		{To: "a@b.com", Subject: "s"},
	}
	for _, msg := range cases {
		_, err := transport.Send(msg)
		assert.ErrorContains(t, err, "missing required fields")
	}
}

func TestVerifyUnconfigured(t *testing.T) {
	transport := NewSMTPTransport(Settings{}, zerolog.Nop())
	assert.ErrorIs(t, transport.Verify(), ErrNotConfigured)
}
